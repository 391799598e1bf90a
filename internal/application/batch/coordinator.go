package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/habarihub/mediamon/internal/domain/media"
)

// Processor handles one item end to end.
type Processor interface {
	ProcessItem(ctx context.Context, itemID string) error
}

// Progress is a snapshot of one batch. Done counts every settled item,
// failures included, so Done == Total always marks completion.
type Progress struct {
	BatchID    string     `json:"batch_id"`
	Total      int        `json:"total"`
	Done       int        `json:"done"`
	Failed     int        `json:"failed"`
	Running    bool       `json:"running"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Coordinator runs classification batches over the raw backlog. Each batch
// gets its own progress entry; concurrent batches do not share counters.
type Coordinator struct {
	Items     media.ItemRepository
	Processor Processor
	Workers   int
	Log       zerolog.Logger

	mu      sync.Mutex
	batches map[string]*Progress
	latest  string
}

func NewCoordinator(items media.ItemRepository, processor Processor, workers int, log zerolog.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		Items:     items,
		Processor: processor,
		Workers:   workers,
		Log:       log,
		batches:   make(map[string]*Progress),
	}
}

// StartAll snapshots the raw backlog and processes it in the background.
// The returned progress is the initial snapshot; poll Progress for updates.
func (c *Coordinator) StartAll(ctx context.Context) (Progress, error) {
	ids, err := c.Items.IDsByStatus(ctx, media.StatusRaw)
	if err != nil {
		return Progress{}, err
	}

	p := &Progress{
		BatchID:   uuid.New().String(),
		Total:     len(ids),
		Running:   len(ids) > 0,
		StartedAt: time.Now().UTC(),
	}
	c.mu.Lock()
	c.batches[p.BatchID] = p
	c.latest = p.BatchID
	snapshot := *p
	c.mu.Unlock()

	if len(ids) == 0 {
		c.finish(p.BatchID)
		return snapshot, nil
	}

	// detached from the request context so the batch survives the response
	go c.run(context.Background(), p.BatchID, ids)
	return snapshot, nil
}

func (c *Coordinator) run(ctx context.Context, batchID string, ids []media.ItemID) {
	work := make(chan media.ItemID)
	var wg sync.WaitGroup
	for i := 0; i < c.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range work {
				err := c.Processor.ProcessItem(ctx, string(id))
				if err != nil {
					c.Log.Error().Err(err).Str("item", string(id)).Str("batch", batchID).Msg("item processing failed")
				}
				c.settle(batchID, err != nil)
			}
		}()
	}
	for _, id := range ids {
		work <- id
	}
	close(work)
	wg.Wait()
	c.finish(batchID)
	c.Log.Info().Str("batch", batchID).Msg("batch complete")
}

func (c *Coordinator) settle(batchID string, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.batches[batchID]
	if !ok {
		return
	}
	p.Done++
	if failed {
		p.Failed++
	}
}

func (c *Coordinator) finish(batchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.batches[batchID]
	if !ok {
		return
	}
	p.Running = false
	now := time.Now().UTC()
	p.FinishedAt = &now
}

// Progress returns a snapshot for one batch.
func (c *Coordinator) Progress(batchID string) (Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.batches[batchID]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// Latest returns the snapshot of the most recently started batch.
func (c *Coordinator) Latest() (Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.batches[c.latest]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}
