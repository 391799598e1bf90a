package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/habarihub/mediamon/internal/application"
	"github.com/habarihub/mediamon/internal/domain/analysis"
	"github.com/habarihub/mediamon/internal/domain/media"
	"github.com/habarihub/mediamon/internal/domain/projects"
)

// Service implements the scrape use-case: pull a source's feed, dedup
// entries against the global corpus, and fan links out to every project
// subscribed to the source.
type Service struct {
	Sources   media.SourceRepository
	Items     media.ItemRepository
	Links     media.LinkRepository
	Projects  projects.Repository
	Fetcher   media.FeedFetcher
	Extractor media.BodyExtractor
	Archive   media.ArchiveStore // optional; nil disables archiving
	Analyses  analysis.Repository
	Clock     application.Clock
	Log       zerolog.Logger
}

// ScrapeResult summarizes one scrape run.
type ScrapeResult struct {
	SourceID    string   `json:"source_id"`
	SourceName  string   `json:"source_name"`
	Entries     int      `json:"entries"`
	NewItems    int      `json:"new_items"`
	ReusedItems int      `json:"reused_items"`
	Projects    int      `json:"projects_linked"`
	ProjectIDs  []string `json:"project_ids"`
}

// ScrapeSource runs one scrape for a registered source. A feed that fails
// to download or parse yields an empty result, not an error; an unknown
// source is an error.
func (s *Service) ScrapeSource(ctx context.Context, sourceID string) (ScrapeResult, error) {
	src, err := s.Sources.Get(ctx, media.SourceID(sourceID))
	if err != nil {
		return ScrapeResult{}, fmt.Errorf("source %s: %w", sourceID, err)
	}

	res := ScrapeResult{SourceID: string(src.ID), SourceName: src.Name}

	subscribed, err := s.Projects.SubscribedTo(ctx, sourceID)
	if err != nil {
		return res, fmt.Errorf("resolve subscriptions: %w", err)
	}
	res.Projects = len(subscribed)
	for _, p := range subscribed {
		res.ProjectIDs = append(res.ProjectIDs, string(p.ID))
	}

	entries, err := s.Fetcher.Fetch(ctx, src.FeedURL)
	if err != nil {
		s.Log.Warn().Err(err).Str("source", string(src.ID)).Msg("feed fetch failed, skipping source")
		return res, nil
	}
	res.Entries = len(entries)

	for _, entry := range entries {
		if entry.Link == "" {
			continue
		}

		item, err := s.Items.FindByURL(ctx, entry.Link)
		if err != nil {
			return res, fmt.Errorf("lookup %s: %w", entry.Link, err)
		}
		if item == nil {
			item, err = s.ingestEntry(ctx, src, entry)
			if err != nil {
				return res, err
			}
			res.NewItems++
		} else {
			res.ReusedItems++
		}

		for _, p := range subscribed {
			if err := s.Links.Link(ctx, string(p.ID), item.ID); err != nil {
				return res, fmt.Errorf("link item %s to project %s: %w", item.ID, p.ID, err)
			}
		}
	}

	s.Log.Info().
		Str("source", string(src.ID)).
		Int("entries", res.Entries).
		Int("new", res.NewItems).
		Int("reused", res.ReusedItems).
		Msg("scrape complete")
	return res, nil
}

// ingestEntry fetches the article page and stores a new corpus item. A page
// that cannot be fetched still produces an item with an empty body.
func (s *Service) ingestEntry(ctx context.Context, src *media.MediaSource, entry media.FeedEntry) (*media.MediaItem, error) {
	text, raw, err := s.Extractor.ExtractBody(ctx, entry.Link)
	if err != nil {
		s.Log.Warn().Err(err).Str("url", entry.Link).Msg("body extraction failed, storing entry without text")
		text = ""
	}

	item := &media.MediaItem{
		ID:          media.ItemID(uuid.New().String()),
		SourceID:    src.ID,
		RawTitle:    entry.Title,
		RawText:     text,
		URL:         entry.Link,
		PublishedAt: entry.Published,
		ScrapedAt:   s.Clock.Now().UTC(),
		Status:      media.StatusRaw,
	}

	if s.Archive != nil && len(raw) > 0 {
		key := fmt.Sprintf("%s/%s.html", src.ID, item.ID)
		archiveURL, aerr := s.Archive.ArchiveHTML(ctx, key, raw)
		if aerr != nil {
			s.Log.Warn().Err(aerr).Str("url", entry.Link).Msg("archive upload failed")
		} else {
			item.ArchiveURL = archiveURL
		}
	}

	if err := s.Items.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item %s: %w", entry.Link, err)
	}
	return item, nil
}

// RegisterSource stores a new feed source.
func (s *Service) RegisterSource(ctx context.Context, name, feedURL string) (*media.MediaSource, error) {
	src := &media.MediaSource{
		ID:      media.SourceID(uuid.New().String()),
		Name:    name,
		FeedURL: feedURL,
	}
	if err := s.Sources.Save(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

// ListSources returns every registered source.
func (s *Service) ListSources(ctx context.Context) ([]*media.MediaSource, error) {
	return s.Sources.List(ctx)
}

// ListItems returns recent corpus items.
func (s *Service) ListItems(ctx context.Context, limit int) ([]*media.ItemListing, error) {
	return s.Items.List(ctx, limit)
}

// ItemWithHistory is a corpus item with its per-project analysis rows.
type ItemWithHistory struct {
	Item     *media.MediaItem   `json:"item"`
	Analyses []*analysis.Record `json:"analyses"`
}

// GetItem returns one corpus item with its analysis history, newest first.
func (s *Service) GetItem(ctx context.Context, id string) (*ItemWithHistory, error) {
	item, err := s.Items.Get(ctx, media.ItemID(id))
	if err != nil {
		return nil, err
	}
	records, err := s.Analyses.ListByItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ItemWithHistory{Item: item, Analyses: records}, nil
}

// GlobalStats are the landing-page counters.
type GlobalStats struct {
	Projects int             `json:"projects"`
	Items    media.ItemStats `json:"items"`
}

// Stats returns corpus-wide counters.
func (s *Service) Stats(ctx context.Context) (GlobalStats, error) {
	items, err := s.Items.Stats(ctx)
	if err != nil {
		return GlobalStats{}, err
	}
	projectCount, err := s.Projects.CountAll(ctx)
	if err != nil {
		return GlobalStats{}, err
	}
	return GlobalStats{Projects: projectCount, Items: items}, nil
}
