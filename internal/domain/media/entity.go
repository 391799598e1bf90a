package media

import (
	"time"
)

// ItemID identifier type for media items
type ItemID string

// SourceID identifier type for media sources
type SourceID string

// AnalysisStatus enum
type AnalysisStatus string

const (
	StatusRaw       AnalysisStatus = "raw"
	StatusExtracted AnalysisStatus = "extracted"
)

// MediaSource is a registered syndicated feed
type MediaSource struct {
	ID      SourceID `json:"id"`
	Name    string   `json:"name"`
	FeedURL string   `json:"feed_url"`
}

// ExtractedFields is the structured analytical record derived from an
// article's text. The shape is fixed: a missing value is an empty string
// (or empty list), never an absent key.
type ExtractedFields struct {
	IndustryName      string   `json:"industry_name"`
	IndustryTactic    string   `json:"industry_tactic"`
	Stakeholders      []string `json:"stakeholders"`
	TargetedPolicy    string   `json:"targeted_policy"`
	GeographicalFocus string   `json:"geographical_focus"`
	OutcomeImpact     string   `json:"outcome_impact"`
}

// Aggregate Root: MediaItem. One row per distinct URL across the whole
// corpus; projects reference items through links, never by copying them.
type MediaItem struct {
	ID          ItemID          `json:"id"`
	SourceID    SourceID        `json:"source_id"`
	RawTitle    string          `json:"raw_title"`
	RawText     string          `json:"raw_text"`
	URL         string          `json:"url"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
	ScrapedAt   time.Time       `json:"scraped_at"`
	Fields      ExtractedFields `json:"fields"`
	ArchiveURL  string          `json:"archive_url,omitempty"`
	Status      AnalysisStatus  `json:"analysis_status"`
}

// ItemListing is the compact row used by listing endpoints.
type ItemListing struct {
	ID         ItemID         `json:"id"`
	Title      string         `json:"title"`
	Preview    string         `json:"preview"`
	URL        string         `json:"url"`
	Status     AnalysisStatus `json:"analysis_status"`
	ScrapedAt  time.Time      `json:"scraped_at"`
	SourceName string         `json:"source_name"`
}

// ItemStats are corpus-wide counters for the dashboard.
type ItemStats struct {
	Total     int `json:"total"`
	Raw       int `json:"raw"`
	Extracted int `json:"extracted"`
}

// FeedEntry is one candidate article parsed out of a feed, before dedup.
type FeedEntry struct {
	Title     string
	Link      string
	Published *time.Time
}
