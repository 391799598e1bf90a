package analysis

import "context"

// Repository port for per-project analysis outcomes
type Repository interface {
	Save(ctx context.Context, r *Record) error
	// ListByItem returns all analysis records for an item, newest first.
	ListByItem(ctx context.Context, itemID string) ([]*Record, error)
	// RelevantArticles returns the articles whose latest analysis for the
	// project carries a positive verdict.
	RelevantArticles(ctx context.Context, projectID string) ([]*RelevantArticle, error)
	// AnalysedForProject lists extracted items linked to the project with
	// their latest analysis.
	AnalysedForProject(ctx context.Context, projectID string) ([]*AnalysedItem, error)
}
