package forecast

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// Coordinator fans out one forecast request per visible location, waits for
// the whole batch, and publishes the successful results as the current
// dataset. Each batch carries a generation token; a batch whose generation
// is no longer current at completion time is discarded, so a slow
// superseded batch can never overwrite fresher state.
type Coordinator struct {
	client  PredictClient
	timeout time.Duration

	mu      sync.Mutex
	gen     uint64
	records []Record

	loading atomic.Bool

	onPublish func([]Record)
}

// NewCoordinator creates a Coordinator. The timeout bounds every individual
// request so a hung fetch cannot block the batch barrier indefinitely.
func NewCoordinator(client PredictClient, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Coordinator{client: client, timeout: timeout}
}

// OnPublish registers the callback invoked with the dataset every time a
// current-generation batch settles. Clear does not invoke it.
func (c *Coordinator) OnPublish(fn func([]Record)) {
	c.onPublish = fn
}

// Loading reports whether a fetch batch is in flight. Presentation only;
// control flow never depends on it.
func (c *Coordinator) Loading() bool {
	return c.loading.Load()
}

// Records returns a copy of the currently published dataset.
func (c *Coordinator) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// FetchAll issues one request per location concurrently and returns only
// the successful, well-formed results. Per-location failures are logged and
// dropped; they never abort siblings. An empty input short-circuits with no
// network call.
func (c *Coordinator) FetchAll(ctx context.Context, locations []geo.Location) []Record {
	if len(locations) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	log.Debug().Str("batch", batchID).Int("locations", len(locations)).Msg("Forecast batch started")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		records []Record
	)

	for _, loc := range locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			rec, err := c.client.Predict(reqCtx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Warn().Err(err).Str("batch", batchID).Str("location", loc.Name).Msg("Forecast fetch failed; dropping location from batch")
				return
			}

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
		}()
	}

	wg.Wait()

	log.Debug().Str("batch", batchID).Int("fetched", len(records)).Int("requested", len(locations)).Msg("Forecast batch settled")
	return records
}

// Refresh runs a full fetch batch for the given locations and, if no newer
// refresh or clear has happened meanwhile, publishes the result. It blocks
// until the batch barrier settles.
func (c *Coordinator) Refresh(ctx context.Context, locations []geo.Location) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.loading.Store(true)

	records := c.FetchAll(ctx, locations)

	c.mu.Lock()
	current := gen == c.gen
	if current {
		c.records = records
	}
	c.mu.Unlock()

	if !current {
		// A newer batch or a clear superseded us; it owns the loading flag.
		log.Debug().Uint64("generation", gen).Msg("Discarding superseded forecast batch")
		return
	}

	c.loading.Store(false)

	if c.onPublish != nil {
		c.onPublish(records)
	}
}

// Clear discards the dataset immediately, without waiting for any in-flight
// batch. In-flight batches become stale and will be discarded on settle.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.gen++
	c.records = nil
	c.mu.Unlock()

	c.loading.Store(false)
}
