package domain

import "time"

// MovieIdentity is the canonical identity of a resolved movie: the first
// match the catalog returns for a free-text query. Immutable once resolved;
// Title is the key used for history and stats.
type MovieIdentity struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Rating    float64 `json:"rating"`
	PosterURL string  `json:"posterUrl,omitempty"`
}

// ViewingLink points at a page where the movie can likely be watched online.
type ViewingLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// MovieDetails is the detail pool for one movie. Facts contains only
// non-spoiler fact texts; the enricher picks one at random.
type MovieDetails struct {
	Description string
	Facts       []string
}

// EnrichmentBundle carries the optional extras gathered for a movie.
// Every field is independently absent (zero value) when its source failed
// or returned nothing.
type EnrichmentBundle struct {
	Description string       `json:"description,omitempty"`
	Fact        string       `json:"fact,omitempty"`
	ReviewTitle string       `json:"reviewTitle,omitempty"`
	Viewing     *ViewingLink `json:"viewing,omitempty"`
}

// PresentationRecord is the assembled answer for one lookup. It is built per
// request and never persisted. Caption always fits the platform limit.
type PresentationRecord struct {
	Identity MovieIdentity    `json:"identity"`
	Bundle   EnrichmentBundle `json:"bundle"`
	Stars    string           `json:"stars"`
	Caption  string           `json:"caption"`
}

// HistoryEntry is one successful search, appended on every resolved lookup.
type HistoryEntry struct {
	UserID     int64     `json:"userId"`
	Title      string    `json:"title"`
	SearchedAt time.Time `json:"searchedAt"`
}

// HistoryItem is a history entry rendered for display.
type HistoryItem struct {
	Title string `json:"title"`
	Age   string `json:"age"`
}

// TitleCount is one row of a popularity ranking.
type TitleCount struct {
	Title string `json:"title"`
	Count int64  `json:"count"`
}
