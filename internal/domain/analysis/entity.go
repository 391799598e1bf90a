package analysis

import (
	"time"

	"github.com/habarihub/mediamon/internal/domain/media"
)

// RecordID identifier type
type RecordID string

// ThemeRef pairs a matched thematic-area ID with its display name so the
// analysis row stays readable after the taxonomy changes.
type ThemeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Record is the per (project, article) classification outcome. A pair may
// accumulate multiple records over reprocessing runs; the newest by
// CreatedAt is authoritative.
type Record struct {
	ID          RecordID              `json:"id"`
	MediaItemID string                `json:"media_item_id"`
	ProjectID   string                `json:"project_id"`
	Relevant    bool                  `json:"relevant"`
	Confidence  int                   `json:"relevance_confidence"`
	Reason      string                `json:"relevance_reason"`
	ThemeIDs    []string              `json:"matched_thematic_area_ids"`
	ThemeMeta   []ThemeRef            `json:"matched_thematic_area_meta"`
	Fields      media.ExtractedFields `json:"extracted_fields"`
	Summary     string                `json:"summary"`
	CreatedAt   time.Time             `json:"created_at"`
}

// RelevantArticle is the slice of an item the insight synthesizer needs.
type RelevantArticle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// AnalysedItem is a per-project listing row: the item plus its extraction
// fields and resolved theme references.
type AnalysedItem struct {
	MediaItemID string                `json:"media_id"`
	Title       string                `json:"title"`
	URL         string                `json:"url"`
	PublishedAt *time.Time            `json:"published_at,omitempty"`
	ScrapedAt   time.Time             `json:"scraped_at"`
	SourceID    string                `json:"source_id"`
	SourceName  string                `json:"source_name"`
	Fields      media.ExtractedFields `json:"fields"`
	Relevant    bool                  `json:"relevant"`
	Themes      []ThemeRef            `json:"matched_thematic_areas"`
	Summary     string                `json:"summary"`
}
