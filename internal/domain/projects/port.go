package projects

import "context"

// Repository port for projects and their source subscriptions
type Repository interface {
	// Save persists the project together with its subscribed source IDs.
	Save(ctx context.Context, p *Project, sourceIDs []string) error
	Get(ctx context.Context, id ProjectID) (*Project, error)
	// SubscribedTo resolves every project subscribed to a media source.
	SubscribedTo(ctx context.Context, sourceID string) ([]*Project, error)
	CountAll(ctx context.Context) (int, error)
	Dashboard(ctx context.Context, id ProjectID) (*Dashboard, error)
}

// ThematicAreaRepository port
type ThematicAreaRepository interface {
	Save(ctx context.Context, a *ThematicArea) error
	ListByProject(ctx context.Context, projectID ProjectID) ([]*ThematicArea, error)
	Delete(ctx context.Context, id string) error
}
