package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habarihub/mediamon/internal/domain/media"
	"github.com/habarihub/mediamon/internal/domain/projects"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeSources struct {
	sources map[media.SourceID]*media.MediaSource
}

func (f *fakeSources) Save(ctx context.Context, s *media.MediaSource) error {
	f.sources[s.ID] = s
	return nil
}
func (f *fakeSources) Get(ctx context.Context, id media.SourceID) (*media.MediaSource, error) {
	s, ok := f.sources[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}
func (f *fakeSources) List(ctx context.Context) ([]*media.MediaSource, error) {
	var out []*media.MediaSource
	for _, s := range f.sources {
		out = append(out, s)
	}
	return out, nil
}

type fakeItems struct {
	byURL map[string]*media.MediaItem
	saved int
}

func (f *fakeItems) Save(ctx context.Context, m *media.MediaItem) error {
	f.byURL[m.URL] = m
	f.saved++
	return nil
}
func (f *fakeItems) Get(ctx context.Context, id media.ItemID) (*media.MediaItem, error) {
	for _, it := range f.byURL {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, errors.New("not found")
}
func (f *fakeItems) FindByURL(ctx context.Context, url string) (*media.MediaItem, error) {
	return f.byURL[url], nil
}
func (f *fakeItems) List(ctx context.Context, limit int) ([]*media.ItemListing, error) {
	return nil, nil
}
func (f *fakeItems) IDsByStatus(ctx context.Context, status media.AnalysisStatus) ([]media.ItemID, error) {
	return nil, nil
}
func (f *fakeItems) UpdateExtraction(ctx context.Context, id media.ItemID, fields media.ExtractedFields, status media.AnalysisStatus) error {
	return nil
}
func (f *fakeItems) Stats(ctx context.Context) (media.ItemStats, error) {
	return media.ItemStats{}, nil
}

type linkKey struct {
	project string
	item    media.ItemID
}

type fakeLinks struct {
	links map[linkKey]int
}

func (f *fakeLinks) Link(ctx context.Context, projectID string, itemID media.ItemID) error {
	f.links[linkKey{projectID, itemID}]++
	return nil
}
func (f *fakeLinks) ProjectIDsForItem(ctx context.Context, itemID media.ItemID) ([]string, error) {
	var out []string
	for k := range f.links {
		if k.item == itemID {
			out = append(out, k.project)
		}
	}
	return out, nil
}

type fakeProjects struct {
	subscribed []*projects.Project
}

func (f *fakeProjects) Save(ctx context.Context, p *projects.Project, sourceIDs []string) error {
	return nil
}
func (f *fakeProjects) Get(ctx context.Context, id projects.ProjectID) (*projects.Project, error) {
	return nil, errors.New("not found")
}
func (f *fakeProjects) SubscribedTo(ctx context.Context, sourceID string) ([]*projects.Project, error) {
	return f.subscribed, nil
}
func (f *fakeProjects) CountAll(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeProjects) Dashboard(ctx context.Context, id projects.ProjectID) (*projects.Dashboard, error) {
	return nil, errors.New("not implemented")
}

type fakeFetcher struct {
	entries []media.FeedEntry
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) ([]media.FeedEntry, error) {
	return f.entries, f.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractBody(ctx context.Context, url string) (string, []byte, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, []byte("<html>" + f.text + "</html>"), nil
}

type fakeArchive struct {
	keys []string
}

func (f *fakeArchive) ArchiveHTML(ctx context.Context, key string, html []byte) (string, error) {
	f.keys = append(f.keys, key)
	return "minio://archive/" + key, nil
}

func newFixture() (*Service, *fakeItems, *fakeLinks) {
	items := &fakeItems{byURL: make(map[string]*media.MediaItem)}
	links := &fakeLinks{links: make(map[linkKey]int)}
	s := &Service{
		Sources: &fakeSources{sources: map[media.SourceID]*media.MediaSource{
			"src-1": {ID: "src-1", Name: "Daily Nation", FeedURL: "https://example.com/feed"},
		}},
		Items: items,
		Links: links,
		Projects: &fakeProjects{subscribed: []*projects.Project{
			{ID: "proj-1", Title: "Tobacco Control Watch"},
			{ID: "proj-2", Title: "Alcohol Policy Monitor"},
		}},
		Fetcher:   &fakeFetcher{entries: []media.FeedEntry{{Title: "Story", Link: "https://example.com/a"}}},
		Extractor: &fakeExtractor{text: "Article body."},
		Clock:     fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Log:       zerolog.Nop(),
	}
	return s, items, links
}

func TestScrapeSourceIngestsAndLinks(t *testing.T) {
	s, items, links := newFixture()

	res, err := s.ScrapeSource(context.Background(), "src-1")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, 1, res.NewItems)
	assert.Equal(t, 0, res.ReusedItems)
	assert.Equal(t, 2, res.Projects)
	assert.Equal(t, 1, items.saved)

	item := items.byURL["https://example.com/a"]
	require.NotNil(t, item)
	assert.Equal(t, "Article body.", item.RawText)
	assert.Equal(t, media.StatusRaw, item.Status)
	assert.Equal(t, 1, links.links[linkKey{"proj-1", item.ID}])
	assert.Equal(t, 1, links.links[linkKey{"proj-2", item.ID}])
}

func TestScrapeSourceReusesExistingItem(t *testing.T) {
	s, items, links := newFixture()
	existing := &media.MediaItem{ID: "item-0", URL: "https://example.com/a", Status: media.StatusExtracted}
	items.byURL[existing.URL] = existing

	res, err := s.ScrapeSource(context.Background(), "src-1")
	require.NoError(t, err)

	assert.Equal(t, 0, res.NewItems)
	assert.Equal(t, 1, res.ReusedItems)
	assert.Equal(t, 0, items.saved)
	// the reused item is still linked to subscribing projects
	assert.Equal(t, 1, links.links[linkKey{"proj-1", existing.ID}])
}

func TestScrapeSourceUnknownSource(t *testing.T) {
	s, _, _ := newFixture()
	_, err := s.ScrapeSource(context.Background(), "missing")
	assert.Error(t, err)
}

func TestScrapeSourceFeedFailureIsNotAnError(t *testing.T) {
	s, items, _ := newFixture()
	s.Fetcher = &fakeFetcher{err: errors.New("timeout")}

	res, err := s.ScrapeSource(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entries)
	assert.Equal(t, 0, items.saved)
}

func TestScrapeSourceSkipsEntriesWithoutLink(t *testing.T) {
	s, items, _ := newFixture()
	s.Fetcher = &fakeFetcher{entries: []media.FeedEntry{
		{Title: "No link"},
		{Title: "Good", Link: "https://example.com/b"},
	}}

	res, err := s.ScrapeSource(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, 1, res.NewItems)
	assert.Equal(t, 1, items.saved)
}

func TestScrapeSourceExtractionFailureStoresEmptyBody(t *testing.T) {
	s, items, _ := newFixture()
	s.Extractor = &fakeExtractor{err: errors.New("page gone")}

	_, err := s.ScrapeSource(context.Background(), "src-1")
	require.NoError(t, err)

	item := items.byURL["https://example.com/a"]
	require.NotNil(t, item)
	assert.Empty(t, item.RawText)
}

func TestScrapeSourceArchivesHTML(t *testing.T) {
	s, items, _ := newFixture()
	archive := &fakeArchive{}
	s.Archive = archive

	_, err := s.ScrapeSource(context.Background(), "src-1")
	require.NoError(t, err)

	require.Len(t, archive.keys, 1)
	item := items.byURL["https://example.com/a"]
	assert.Equal(t, "minio://archive/"+archive.keys[0], item.ArchiveURL)
}

func TestRegisterSource(t *testing.T) {
	s, _, _ := newFixture()
	src, err := s.RegisterSource(context.Background(), "Standard", "https://example.com/rss")
	require.NoError(t, err)
	assert.NotEmpty(t, src.ID)
	assert.Equal(t, "Standard", src.Name)
}
