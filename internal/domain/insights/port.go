package insights

import "context"

// Repository port. Save always inserts a new snapshot row; prior snapshots
// are never overwritten.
type Repository interface {
	Save(ctx context.Context, i *Insight) error
	Latest(ctx context.Context, projectID string) (*Insight, error)
}
