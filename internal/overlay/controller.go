package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BangBK2510/Digital-Map-Project/internal/catalog"
	"github.com/BangBK2510/Digital-Map-Project/internal/debounce"
	"github.com/BangBK2510/Digital-Map-Project/internal/forecast"
	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// DefaultDebounceWindow is the quiescence window for pan/zoom settle
// events. A drag gesture produces at most one recomputation after release
// instead of one per pixel of movement; each recomputation can fan out a
// batch of network requests, so undebounced triggering would flood the
// forecast service.
const DefaultDebounceWindow = 750 * time.Millisecond

// Controller is the single-selection layer mode state machine. It owns the
// current viewport and drives the tracker → coordinator → presenter
// pipeline on every mode transition and debounced viewport settle.
type Controller struct {
	catalog   *catalog.Catalog
	tracker   *Tracker
	coord     *forecast.Coordinator
	presenter *Presenter
	deb       *debounce.Debouncer

	mu       sync.Mutex
	mode     LayerMode
	viewport geo.Bounds
	visible  *VisibleSet
}

// NewController wires the overlay pipeline. The coordinator's publish
// callback is routed into the presenter so every settled batch is rendered
// under the mode current at render time.
func NewController(cat *catalog.Catalog, tracker *Tracker, coord *forecast.Coordinator, presenter *Presenter, window time.Duration) *Controller {
	if window <= 0 {
		window = DefaultDebounceWindow
	}

	c := &Controller{
		catalog:   cat,
		tracker:   tracker,
		coord:     coord,
		presenter: presenter,
		deb:       debounce.New(window),
	}
	coord.OnPublish(c.publish)
	return c
}

// Mode returns the active layer mode.
func (c *Controller) Mode() LayerMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Toggle applies the transition rule: selecting the active mode again turns
// the overlay off; selecting another mode switches to it directly. Every
// transition performs a full reset, and activating a mode refreshes
// immediately for the current viewport rather than waiting for the next
// map movement.
func (c *Controller) Toggle(mode LayerMode) {
	c.mu.Lock()
	next := mode
	if mode == c.mode {
		next = ModeNone
	}
	prev := c.mode
	c.mode = next
	c.mu.Unlock()

	log.Info().Stringer("from", prev).Stringer("to", next).Msg("Overlay layer transition")

	// Full reset on every transition: markers, popup, strip, dataset.
	c.presenter.Reset()
	c.coord.Clear()

	// The dataset is gone, so the identity short-circuit must not
	// suppress the next refresh even for an unchanged member set.
	c.mu.Lock()
	c.visible = nil
	c.mu.Unlock()

	if next == ModeNone {
		// Keep the tracker's identity state in sync so re-activating the
		// layer refetches even for an unchanged viewport.
		c.mu.Lock()
		c.visible = c.tracker.ComputeVisible(c.viewport, c.catalog.Locations(), false)
		c.mu.Unlock()
		return
	}

	c.refreshNow()
}

// SetViewport records a pan/zoom settle and schedules a debounced refresh.
func (c *Controller) SetViewport(viewport geo.Bounds) {
	c.mu.Lock()
	c.viewport = viewport
	c.mu.Unlock()

	c.deb.Call(c.refreshNow)
}

// Viewport returns the last recorded viewport.
func (c *Controller) Viewport() geo.Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// Loading reports whether a forecast batch is in flight.
func (c *Controller) Loading() bool {
	return c.coord.Loading()
}

// Close stops the debounced pipeline.
func (c *Controller) Close() {
	c.deb.Stop()
}

// refreshNow recomputes the visible set and, if its identity changed,
// refreshes the forecast dataset. An identity-equal set short-circuits so
// churn in the underlying catalog objects never re-fetches.
func (c *Controller) refreshNow() {
	c.mu.Lock()
	mode := c.mode
	vp := c.viewport
	c.mu.Unlock()

	vs := c.tracker.ComputeVisible(vp, c.catalog.Locations(), mode != ModeNone)

	c.mu.Lock()
	if vs == c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = vs
	c.mu.Unlock()

	if mode == ModeNone {
		return
	}

	c.coord.Refresh(context.Background(), vs.Locations())
}

// publish renders a settled dataset under the mode current at completion
// time. Stale batches never reach here; the coordinator's generation token
// drops them.
func (c *Controller) publish(records []forecast.Record) {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()

	c.presenter.Render(records, mode)
}
