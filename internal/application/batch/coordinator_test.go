package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habarihub/mediamon/internal/domain/media"
)

type fakeItems struct {
	ids []media.ItemID
}

func (f *fakeItems) Save(ctx context.Context, m *media.MediaItem) error { return nil }
func (f *fakeItems) Get(ctx context.Context, id media.ItemID) (*media.MediaItem, error) {
	return nil, errors.New("not found")
}
func (f *fakeItems) FindByURL(ctx context.Context, url string) (*media.MediaItem, error) {
	return nil, nil
}
func (f *fakeItems) List(ctx context.Context, limit int) ([]*media.ItemListing, error) {
	return nil, nil
}
func (f *fakeItems) IDsByStatus(ctx context.Context, status media.AnalysisStatus) ([]media.ItemID, error) {
	return f.ids, nil
}
func (f *fakeItems) UpdateExtraction(ctx context.Context, id media.ItemID, fields media.ExtractedFields, status media.AnalysisStatus) error {
	return nil
}
func (f *fakeItems) Stats(ctx context.Context) (media.ItemStats, error) {
	return media.ItemStats{}, nil
}

type fakeProcessor struct {
	mu     sync.Mutex
	seen   []string
	failOn map[string]bool
}

func (f *fakeProcessor) ProcessItem(ctx context.Context, itemID string) error {
	f.mu.Lock()
	f.seen = append(f.seen, itemID)
	f.mu.Unlock()
	if f.failOn[itemID] {
		return errors.New("boom")
	}
	return nil
}

func waitDone(t *testing.T, c *Coordinator, batchID string) Progress {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		p, ok := c.Progress(batchID)
		require.True(t, ok)
		if !p.Running {
			return p
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("batch did not finish in time")
	return Progress{}
}

func TestStartAllProcessesBacklog(t *testing.T) {
	items := &fakeItems{ids: []media.ItemID{"a", "b", "c"}}
	proc := &fakeProcessor{}
	c := NewCoordinator(items, proc, 2, zerolog.Nop())

	snap, err := c.StartAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Total)

	p := waitDone(t, c, snap.BatchID)
	assert.Equal(t, 3, p.Done)
	assert.Equal(t, 0, p.Failed)
	assert.NotNil(t, p.FinishedAt)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, proc.seen)
}

func TestStartAllCountsFailuresAsDone(t *testing.T) {
	items := &fakeItems{ids: []media.ItemID{"a", "b", "c"}}
	proc := &fakeProcessor{failOn: map[string]bool{"b": true}}
	c := NewCoordinator(items, proc, 1, zerolog.Nop())

	snap, err := c.StartAll(context.Background())
	require.NoError(t, err)

	p := waitDone(t, c, snap.BatchID)
	assert.Equal(t, 3, p.Done, "failed items still settle")
	assert.Equal(t, 1, p.Failed)
}

func TestStartAllEmptyBacklog(t *testing.T) {
	c := NewCoordinator(&fakeItems{}, &fakeProcessor{}, 1, zerolog.Nop())

	snap, err := c.StartAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Total)

	p, ok := c.Progress(snap.BatchID)
	require.True(t, ok)
	assert.False(t, p.Running)
}

func TestProgressIsPerBatch(t *testing.T) {
	items := &fakeItems{ids: []media.ItemID{"a"}}
	c := NewCoordinator(items, &fakeProcessor{}, 1, zerolog.Nop())

	first, err := c.StartAll(context.Background())
	require.NoError(t, err)
	waitDone(t, c, first.BatchID)

	items.ids = []media.ItemID{"b", "c"}
	second, err := c.StartAll(context.Background())
	require.NoError(t, err)
	waitDone(t, c, second.BatchID)

	assert.NotEqual(t, first.BatchID, second.BatchID)

	p1, ok := c.Progress(first.BatchID)
	require.True(t, ok)
	assert.Equal(t, 1, p1.Total)

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, second.BatchID, latest.BatchID)
	assert.Equal(t, 2, latest.Total)
}

func TestProgressUnknownBatch(t *testing.T) {
	c := NewCoordinator(&fakeItems{}, &fakeProcessor{}, 1, zerolog.Nop())
	_, ok := c.Progress("nope")
	assert.False(t, ok)
	_, ok = c.Latest()
	assert.False(t, ok)
}
