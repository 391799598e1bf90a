package insights

import "time"

// InsightID identifier type
type InsightID string

// Sentiment value object: article counts per tone.
type Sentiment struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Entities groups the named entities surfaced across the coverage.
type Entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// Insight is one synthesized intelligence snapshot for a project.
// Snapshots are immutable once written; "latest" is GeneratedAt descending.
type Insight struct {
	ID               InsightID `json:"id"`
	ProjectID        string    `json:"project_id"`
	GeneratedAt      time.Time `json:"generated_at"`
	ArticleCount     int       `json:"article_count"`
	ExecutiveSummary string    `json:"executive_summary"`
	TopicClusters    []string  `json:"topic_clusters"`
	Subthemes        []string  `json:"subthemes"`
	Sentiment        Sentiment `json:"sentiment"`
	Entities         Entities  `json:"entities"`
	Risks            []string  `json:"risks"`
	Opportunities    []string  `json:"opportunities"`
	Recommendations  string    `json:"recommendations"`
	ArticleLinks     []string  `json:"article_links"`
	Highlights       []string  `json:"highlights"`
}
