package lookup

import (
	"fmt"
	"math"
	"strings"

	"github.com/asvronsky/cinemabot/internal/domain"
)

// captionLimit is the platform caption ceiling, counted in characters.
const captionLimit = 4096

const (
	fullStar  = "★"
	halfStar  = "⯨"
	emptyStar = "☆"
	starSlots = 5
)

// starString renders a 0–10 rating as exactly five star glyphs:
// floor(rating/2) full stars, a half star iff the remainder of rating/2 is
// at least 1, empty stars for the rest.
func starString(rating float64) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 10 {
		rating = 10
	}

	full := int(rating / 2)
	if full > starSlots {
		full = starSlots
	}
	half := full < starSlots && math.Mod(rating, 2) >= 1

	var b strings.Builder
	for i := 0; i < full; i++ {
		b.WriteString(fullStar)
	}
	if half {
		b.WriteString(halfStar)
	}
	for captionLen(b.String()) < starSlots {
		b.WriteString(emptyStar)
	}
	return b.String()
}

// assemble merges a resolved identity and its enrichment bundle into the
// final presentation record. The caption is built from a mandatory base
// (title, stars, description) plus optional fact and review/link blocks;
// when the budget is exceeded the fact block goes first, then the
// description is shortened until the caption fits.
func assemble(identity domain.MovieIdentity, bundle domain.EnrichmentBundle) domain.PresentationRecord {
	stars := starString(identity.Rating)
	description := firstParagraph(bundle.Description)

	factBlock := ""
	if bundle.Fact != "" {
		factBlock = "\n\nDid you know? " + bundle.Fact
	}

	halfResponse := ""
	if bundle.ReviewTitle != "" {
		halfResponse += "\n\nReview: " + bundle.ReviewTitle
	}
	if bundle.Viewing != nil {
		halfResponse += "\n\nWatch online: " + viewingLine(*bundle.Viewing)
	}

	caption := captionBase(identity, stars, description) + factBlock + halfResponse
	if captionLen(caption) > captionLimit {
		caption = captionBase(identity, stars, description) + halfResponse
	}
	if captionLen(caption) > captionLimit {
		overflow := captionLen(caption) - captionLimit
		description = shorten(description, overflow)
		caption = captionBase(identity, stars, description) + halfResponse
	}
	if captionLen(caption) > captionLimit {
		// Only reachable when the non-description parts alone blow the
		// budget; cut hard rather than exceed the platform limit.
		caption = string([]rune(caption)[:captionLimit])
	}

	return domain.PresentationRecord{
		Identity: identity,
		Bundle:   bundle,
		Stars:    stars,
		Caption:  caption,
	}
}

func captionBase(identity domain.MovieIdentity, stars, description string) string {
	base := fmt.Sprintf("%s (id %d)\n%s %.1f", identity.Title, identity.ID, stars, identity.Rating)
	if description != "" {
		base += "\n\n" + description
	}
	return base
}

func viewingLine(viewing domain.ViewingLink) string {
	title := strings.TrimSpace(viewing.Title)
	if title == "" {
		return viewing.URL
	}
	return title + "\n" + viewing.URL
}

// firstParagraph cuts a description at its first line break; only the
// opening paragraph is ever shown.
func firstParagraph(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// shorten drops overflow+1 characters from the end of text and appends an
// ellipsis, so the rebuilt caption lands exactly on the budget.
func shorten(text string, overflow int) string {
	runes := []rune(text)
	keep := len(runes) - overflow - 1
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + "…"
}

func captionLen(s string) int {
	return len([]rune(s))
}
