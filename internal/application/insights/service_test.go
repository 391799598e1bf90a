package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habarihub/mediamon/internal/domain/analysis"
	"github.com/habarihub/mediamon/internal/domain/insights"
	"github.com/habarihub/mediamon/internal/domain/projects"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeProjects struct {
	p *projects.Project
}

func (f *fakeProjects) Save(ctx context.Context, p *projects.Project, sourceIDs []string) error {
	return nil
}
func (f *fakeProjects) Get(ctx context.Context, id projects.ProjectID) (*projects.Project, error) {
	if f.p == nil || f.p.ID != id {
		return nil, errors.New("not found")
	}
	return f.p, nil
}
func (f *fakeProjects) SubscribedTo(ctx context.Context, sourceID string) ([]*projects.Project, error) {
	return nil, nil
}
func (f *fakeProjects) CountAll(ctx context.Context) (int, error) { return 1, nil }
func (f *fakeProjects) Dashboard(ctx context.Context, id projects.ProjectID) (*projects.Dashboard, error) {
	return nil, errors.New("not implemented")
}

type fakeAnalyses struct {
	relevant []*analysis.RelevantArticle
}

func (f *fakeAnalyses) Save(ctx context.Context, r *analysis.Record) error { return nil }
func (f *fakeAnalyses) ListByItem(ctx context.Context, itemID string) ([]*analysis.Record, error) {
	return nil, nil
}
func (f *fakeAnalyses) RelevantArticles(ctx context.Context, projectID string) ([]*analysis.RelevantArticle, error) {
	return f.relevant, nil
}
func (f *fakeAnalyses) AnalysedForProject(ctx context.Context, projectID string) ([]*analysis.AnalysedItem, error) {
	return nil, nil
}

type fakeInsights struct {
	saved []*insights.Insight
}

func (f *fakeInsights) Save(ctx context.Context, i *insights.Insight) error {
	f.saved = append(f.saved, i)
	return nil
}
func (f *fakeInsights) Latest(ctx context.Context, projectID string) (*insights.Insight, error) {
	if len(f.saved) == 0 {
		return nil, nil
	}
	return f.saved[len(f.saved)-1], nil
}

type fakeChat struct {
	reply string
	err   error
	calls int
}

func (f *fakeChat) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newService(analyses *fakeAnalyses, chat *fakeChat) (*Service, *fakeInsights) {
	store := &fakeInsights{}
	s := &Service{
		Projects:     &fakeProjects{p: &projects.Project{ID: "proj-1", Title: "Tobacco Control Watch"}},
		Analyses:     analyses,
		Insights:     store,
		Chat:         chat,
		Clock:        fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Log:          zerolog.Nop(),
		ExcerptChars: 2000,
	}
	return s, store
}

func TestGenerateEmptySnapshotWithoutProviderCall(t *testing.T) {
	chat := &fakeChat{}
	s, store := newService(&fakeAnalyses{}, chat)

	snap, err := s.Generate(context.Background(), "proj-1")
	require.NoError(t, err)

	assert.Zero(t, chat.calls)
	assert.Equal(t, 0, snap.ArticleCount)
	assert.Empty(t, snap.ExecutiveSummary)
	assert.Equal(t, []string{}, snap.TopicClusters)
	assert.Equal(t, []string{}, snap.Entities.People)
	require.Len(t, store.saved, 1, "the empty snapshot is still persisted")
}

func TestGenerateSynthesizesSnapshot(t *testing.T) {
	chat := &fakeChat{reply: `{
		"executive_summary": "Industry lobbying intensified this quarter.",
		"topic_clusters": ["Excise tax"],
		"subthemes": ["Delay tactics"],
		"sentiment": {"positive": 0, "negative": 2, "neutral": 1},
		"entities": {"people": ["J. Doe"], "organizations": ["BAT"], "locations": ["Kenya"]},
		"risks": ["Tax bill stalls"],
		"opportunities": ["Public support rising"],
		"recommendations": "Brief the ministry before the committee vote.",
		"article_links": ["https://example.com/a"],
		"highlights": ["Tax vote postponed (https://example.com/a)"]
	}`}
	analyses := &fakeAnalyses{relevant: []*analysis.RelevantArticle{
		{ID: "item-1", Title: "Tax vote postponed", URL: "https://example.com/a", Body: "body"},
		{ID: "item-2", Title: "Lobby spending up", URL: "https://example.com/b", Body: "body"},
		{ID: "item-3", Title: "Ministry responds", URL: "https://example.com/c", Body: "body"},
	}}
	s, store := newService(analyses, chat)

	snap, err := s.Generate(context.Background(), "proj-1")
	require.NoError(t, err)

	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, 3, snap.ArticleCount)
	assert.Equal(t, "Industry lobbying intensified this quarter.", snap.ExecutiveSummary)
	assert.Equal(t, insights.Sentiment{Negative: 2, Neutral: 1}, snap.Sentiment)
	assert.Equal(t, []string{"BAT"}, snap.Entities.Organizations)
	require.Len(t, store.saved, 1)

	latest, err := s.Latest(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, latest.ID)
}

func TestGenerateMalformedResponseFails(t *testing.T) {
	chat := &fakeChat{reply: "I could not produce JSON, sorry."}
	analyses := &fakeAnalyses{relevant: []*analysis.RelevantArticle{
		{ID: "item-1", Title: "t", URL: "https://example.com/a", Body: "body"},
	}}
	s, store := newService(analyses, chat)

	_, err := s.Generate(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Empty(t, store.saved, "no snapshot is written on a malformed response")
}

func TestGenerateProviderErrorFails(t *testing.T) {
	chat := &fakeChat{err: errors.New("provider down")}
	analyses := &fakeAnalyses{relevant: []*analysis.RelevantArticle{
		{ID: "item-1", Title: "t", URL: "https://example.com/a", Body: "body"},
	}}
	s, store := newService(analyses, chat)

	_, err := s.Generate(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Empty(t, store.saved)
}
