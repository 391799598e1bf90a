package media

import "context"

// ItemRepository port (persistence for the global article corpus)
type ItemRepository interface {
	Save(ctx context.Context, m *MediaItem) error
	Get(ctx context.Context, id ItemID) (*MediaItem, error)
	// FindByURL returns (nil, nil) when no item exists for the URL.
	FindByURL(ctx context.Context, url string) (*MediaItem, error)
	List(ctx context.Context, limit int) ([]*ItemListing, error)
	IDsByStatus(ctx context.Context, status AnalysisStatus) ([]ItemID, error)
	UpdateExtraction(ctx context.Context, id ItemID, f ExtractedFields, status AnalysisStatus) error
	Stats(ctx context.Context) (ItemStats, error)
}

// SourceRepository port
type SourceRepository interface {
	Save(ctx context.Context, s *MediaSource) error
	Get(ctx context.Context, id SourceID) (*MediaSource, error)
	List(ctx context.Context) ([]*MediaSource, error)
}

// LinkRepository port for the project<->item association. Link must be
// idempotent: linking an already-linked pair is a no-op.
type LinkRepository interface {
	Link(ctx context.Context, projectID string, itemID ItemID) error
	ProjectIDsForItem(ctx context.Context, itemID ItemID) ([]string, error)
}

// FeedFetcher port (feed locator -> candidate entries)
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]FeedEntry, error)
}

// BodyExtractor port. Returns the extracted main text plus the raw page
// bytes for archiving; a failed fetch degrades to empty results, not an
// error that would abort the surrounding scrape.
type BodyExtractor interface {
	ExtractBody(ctx context.Context, url string) (text string, html []byte, err error)
}

// ArchiveStore port for raw page payloads (object storage)
type ArchiveStore interface {
	ArchiveHTML(ctx context.Context, key string, html []byte) (string, error)
}
