// Package overlay implements the viewport-driven weather overlay: visible
// set tracking, marker/popup presentation, and the layer mode state machine.
package overlay

import (
	"sort"
	"strings"
	"sync"

	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// DefaultMaxVisible bounds how many catalog locations one viewport can
// select. Selection keeps catalog order, not distance to the viewport
// center; a deterministic simplification, not a proximity guarantee.
const DefaultMaxVisible = 20

// VisibleSet is the ordered subset of the catalog inside the current
// viewport, truncated to the tracker's maximum. Sets are replaced wholesale
// on recomputation; an unchanged member-id set keeps the previous instance
// so downstream fetch logic keyed on identity does not re-fire.
type VisibleSet struct {
	locations []geo.Location
	key       string
}

// Locations returns the members in catalog order.
func (s *VisibleSet) Locations() []geo.Location {
	if s == nil {
		return nil
	}
	return s.locations
}

// Len returns the member count.
func (s *VisibleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.locations)
}

// Key is the order-independent identity of the member-id set.
func (s *VisibleSet) Key() string {
	if s == nil {
		return ""
	}
	return s.key
}

func newVisibleSet(locations []geo.Location) *VisibleSet {
	ids := make([]string, len(locations))
	for i, loc := range locations {
		ids[i] = loc.ID
	}
	sort.Strings(ids)
	return &VisibleSet{locations: locations, key: strings.Join(ids, "\x1f")}
}

// Filter returns the catalog locations whose point lies inside the viewport,
// in catalog order, truncated to maxVisible. Locations without usable
// coordinates are excluded.
func Filter(viewport geo.Bounds, catalog []geo.Location, maxVisible int) []geo.Location {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}

	visible := make([]geo.Location, 0, maxVisible)
	for _, loc := range catalog {
		if !loc.HasCoordinates() {
			continue
		}
		if !viewport.Contains(loc.Lat, loc.Lon) {
			continue
		}
		visible = append(visible, loc)
		if len(visible) >= maxVisible {
			break
		}
	}
	return visible
}

// Tracker computes the visible set for viewport changes and retains the
// previous instance when the member-id set is unchanged.
type Tracker struct {
	maxVisible int

	mu   sync.Mutex
	last *VisibleSet
}

// NewTracker creates a Tracker with the given member bound; non-positive
// values fall back to DefaultMaxVisible.
func NewTracker(maxVisible int) *Tracker {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}
	return &Tracker{maxVisible: maxVisible}
}

// ComputeVisible recomputes the visible set. An inactive layer always
// yields an empty set so no overlay work runs while hidden. If the new
// member-id set equals the previous one, the previous *VisibleSet instance
// is returned unchanged.
func (t *Tracker) ComputeVisible(viewport geo.Bounds, catalog []geo.Location, layerActive bool) *VisibleSet {
	var visible []geo.Location
	if layerActive {
		visible = Filter(viewport, catalog, t.maxVisible)
	}

	next := newVisibleSet(visible)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil && t.last.key == next.key {
		return t.last
	}
	t.last = next
	return next
}
