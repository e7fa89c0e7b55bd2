package lookup

import (
	"strings"
	"testing"

	"github.com/asvronsky/cinemabot/internal/domain"
)

func TestStarString(t *testing.T) {
	cases := []struct {
		rating float64
		want   string
	}{
		{6.8, "★★★☆☆"},
		{9.0, "★★★★⯨"},
		{10, "★★★★★"},
		{0, "☆☆☆☆☆"},
		{1.0, "⯨☆☆☆☆"},
		{7.0, "★★★⯨☆"},
		{-3, "☆☆☆☆☆"},
		{12, "★★★★★"},
	}
	for _, tc := range cases {
		if got := starString(tc.rating); got != tc.want {
			t.Errorf("starString(%v) = %q, want %q", tc.rating, got, tc.want)
		}
	}
}

func TestAssembleIncludesAllBlocks(t *testing.T) {
	identity := domain.MovieIdentity{ID: 301, Title: "The Matrix", Rating: 8.5}
	bundle := domain.EnrichmentBundle{
		Description: "A hacker learns the truth.",
		Fact:        "Shot in Sydney.",
		ReviewTitle: "A modern classic",
		Viewing:     &domain.ViewingLink{URL: "https://example.com/watch", Title: "Watch The Matrix"},
	}

	record := assemble(identity, bundle)
	if record.Stars != "★★★★☆" {
		t.Fatalf("unexpected stars: %q", record.Stars)
	}
	for _, fragment := range []string{
		"The Matrix",
		"A hacker learns the truth.",
		"Did you know? Shot in Sydney.",
		"Review: A modern classic",
		"https://example.com/watch",
	} {
		if !strings.Contains(record.Caption, fragment) {
			t.Fatalf("caption missing %q:\n%s", fragment, record.Caption)
		}
	}
}

func TestAssembleDropsFactWhenOverBudget(t *testing.T) {
	identity := domain.MovieIdentity{ID: 1, Title: "Long One", Rating: 7.0}
	bundle := domain.EnrichmentBundle{
		Description: "Short description.",
		Fact:        strings.Repeat("f", 5000),
		ReviewTitle: "Fine",
	}

	record := assemble(identity, bundle)
	if captionLen(record.Caption) > captionLimit {
		t.Fatalf("caption over budget: %d", captionLen(record.Caption))
	}
	if strings.Contains(record.Caption, "Did you know?") {
		t.Fatal("fact should be dropped before anything else")
	}
	if !strings.Contains(record.Caption, "Review: Fine") {
		t.Fatal("review must survive the fact drop")
	}
	if !strings.Contains(record.Caption, "Short description.") {
		t.Fatal("description must survive the fact drop")
	}
}

func TestAssembleTruncatesDescriptionToBudget(t *testing.T) {
	identity := domain.MovieIdentity{ID: 1, Title: "Long One", Rating: 7.0}
	bundle := domain.EnrichmentBundle{
		Description: strings.Repeat("д", 6000),
		ReviewTitle: "Fine",
	}

	record := assemble(identity, bundle)
	if got := captionLen(record.Caption); got != captionLimit {
		t.Fatalf("expected caption to land on the budget, got %d", got)
	}
	if !strings.Contains(record.Caption, "…") {
		t.Fatal("truncated description must carry an ellipsis")
	}
	if !strings.Contains(record.Caption, "Review: Fine") {
		t.Fatal("review must survive description truncation")
	}
}

func TestAssembleUsesFirstParagraphOnly(t *testing.T) {
	identity := domain.MovieIdentity{ID: 1, Title: "Two Parts", Rating: 5.0}
	bundle := domain.EnrichmentBundle{
		Description: "First paragraph.\nSecond paragraph stays out.",
	}

	record := assemble(identity, bundle)
	if !strings.Contains(record.Caption, "First paragraph.") {
		t.Fatalf("caption missing first paragraph:\n%s", record.Caption)
	}
	if strings.Contains(record.Caption, "Second paragraph") {
		t.Fatalf("caption must not include later paragraphs:\n%s", record.Caption)
	}
}
