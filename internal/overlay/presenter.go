package overlay

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/BangBK2510/Digital-Map-Project/internal/forecast"
)

// Presenter reconciles the rendered marker set, the single detail popup,
// and the hourly strip against the current dataset and layer mode.
//
// Every render removes all previous markers and recreates the set from
// scratch. At the scale of one viewport (tens of markers) this is cheaper
// to reason about than incremental diffing and makes stale-marker bugs
// structurally impossible.
type Presenter struct {
	view MapView

	mu        sync.Mutex
	markers   []MarkerHandle
	openPopup string
	stripFor  string
}

// NewPresenter creates a Presenter on top of the given map view.
func NewPresenter(view MapView) *Presenter {
	return &Presenter{view: view}
}

// Render replaces the rendered markers with one marker per renderable
// record. Records missing coordinates or forecast entries are skipped
// without failing the rest.
func (p *Presenter) Render(records []forecast.Record, mode LayerMode) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeAllMarkersLocked()

	if mode == ModeNone {
		return
	}

	for _, rec := range records {
		rec := rec
		if !rec.Renderable() {
			log.Warn().Str("location", rec.DisplayName).Msg("Skipping forecast record with missing coordinates or forecast data")
			continue
		}

		marker := p.buildMarker(rec, mode)
		handle, err := p.view.AddMarker(marker)
		if err != nil {
			log.Warn().Err(err).Str("location", rec.DisplayName).Msg("Marker construction failed; skipping location")
			continue
		}
		p.markers = append(p.markers, handle)
	}
}

// Reset removes all markers, closes any open popup, and clears the hourly
// strip.
func (p *Presenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeAllMarkersLocked()
	p.closePopupLocked()
}

// MarkerCount returns the number of currently rendered markers.
func (p *Presenter) MarkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.markers)
}

func (p *Presenter) removeAllMarkersLocked() {
	for _, h := range p.markers {
		h.Remove()
	}
	p.markers = nil
}

func (p *Presenter) closePopupLocked() {
	if p.openPopup != "" {
		p.openPopup = ""
		p.view.ClosePopup()
	}
	if p.stripFor != "" {
		p.stripFor = ""
		p.view.ClearHourlyStrip()
	}
}

func (p *Presenter) buildMarker(rec forecast.Record, mode LayerMode) Marker {
	day0 := rec.Daily[0]

	m := Marker{
		LocationID: rec.LocationID,
		Name:       rec.DisplayName,
		Lat:        rec.Lat,
		Lon:        rec.Lon,
		Mode:       mode,
		OnClick:    func() { p.handleMarkerClick(rec, mode) },
	}

	switch mode {
	case ModeWeather:
		m.Icon = IconFor(day0.Symbol)
		m.Tooltip = fmt.Sprintf("%s: %s, %.0f°C - %.0f°C", rec.DisplayName, day0.Symbol, day0.MinTemp, day0.MaxTemp)
	case ModeHumidity:
		m.Badge = fmt.Sprintf("%d%%", int(math.Round(day0.AvgHumidity)))
		m.Tooltip = fmt.Sprintf("%s: avg humidity %s", rec.DisplayName, m.Badge)
	case ModeWind:
		m.Badge = fmt.Sprintf("%d m/s", int(math.Round(day0.AvgWindSpeed)))
		m.Tooltip = fmt.Sprintf("%s: avg wind %s", rec.DisplayName, m.Badge)
	}

	return m
}

// handleMarkerClick opens the detail popup and/or hourly strip for the
// clicked location. Opening a new popup closes any previous one first.
func (p *Presenter) handleMarkerClick(rec forecast.Record, mode LayerMode) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closePopupLocked()

	if mode == ModeWeather {
		popup := Popup{
			LocationID: rec.LocationID,
			Title:      rec.DisplayName,
			Days:       buildPopupDays(rec.Daily),
			OnClose:    func() { p.HandlePopupClosed() },
		}
		p.openPopup = rec.LocationID
		p.view.ShowPopup(popup)
	}

	p.stripFor = rec.LocationID
	p.view.ShowHourlyStrip(buildStrip(rec, mode))
}

// HandlePopupClosed must be called when the user closes the popup; it
// clears the popup state and the hourly strip.
func (p *Presenter) HandlePopupClosed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.openPopup = ""
	if p.stripFor != "" {
		p.stripFor = ""
		p.view.ClearHourlyStrip()
	}
}

// OpenPopupFor returns the location id of the open popup, or "".
func (p *Presenter) OpenPopupFor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.openPopup
}

// StripFor returns the location id the hourly strip shows, or "".
func (p *Presenter) StripFor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stripFor
}

func buildPopupDays(daily []forecast.DayForecast) []PopupDay {
	days := make([]PopupDay, 0, len(daily))
	for i, d := range daily {
		label := d.Date
		switch i {
		case 0:
			label = "Today"
		case 1:
			label = "Tomorrow"
		case 2:
			label = "Day after"
		}
		days = append(days, PopupDay{
			Label:   label,
			Icon:    IconFor(d.Symbol),
			Symbol:  d.Symbol,
			MinTemp: d.MinTemp,
			MaxTemp: d.MaxTemp,
		})
	}
	return days
}

func buildStrip(rec forecast.Record, mode LayerMode) HourlyStrip {
	strip := HourlyStrip{
		LocationID: rec.LocationID,
		Title:      rec.DisplayName,
		Mode:       mode,
		Hours:      make([]HourEntry, 0, len(rec.Hourly)),
	}

	for _, h := range rec.Hourly {
		entry := HourEntry{Time: h.Time, Icon: IconFor(h.Symbol)}
		switch mode {
		case ModeHumidity:
			entry.Value = fmt.Sprintf("%.0f%%", h.Humidity)
		case ModeWind:
			entry.Value = fmt.Sprintf("%.1f m/s", h.WindSpeed)
		default:
			entry.Value = fmt.Sprintf("%.0f°C", h.Temperature)
		}
		strip.Hours = append(strip.Hours, entry)
	}

	return strip
}
