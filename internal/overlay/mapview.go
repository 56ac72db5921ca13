package overlay

// LayerMode selects which overlay is drawn on top of the base map. Modes
// are mutually exclusive; transitions flow through the Controller.
type LayerMode int

const (
	ModeNone LayerMode = iota
	ModeWeather
	ModeHumidity
	ModeWind
)

func (m LayerMode) String() string {
	switch m {
	case ModeWeather:
		return "weather"
	case ModeHumidity:
		return "humidity"
	case ModeWind:
		return "wind"
	default:
		return "none"
	}
}

// ParseLayerMode maps a mode name to a LayerMode; unknown names map to
// ModeNone.
func ParseLayerMode(s string) LayerMode {
	switch s {
	case "weather":
		return ModeWeather
	case "humidity":
		return ModeHumidity
	case "wind":
		return ModeWind
	default:
		return ModeNone
	}
}

// Marker describes one overlay marker for the map widget. Weather markers
// carry an icon; humidity and wind markers carry a compact text badge.
type Marker struct {
	LocationID string
	Name       string
	Lat        float64
	Lon        float64
	Mode       LayerMode
	Icon       string
	Badge      string
	Tooltip    string

	// OnClick is invoked by the map widget when the marker is clicked.
	OnClick func()
}

// MarkerHandle is the widget-owned handle for a rendered marker.
type MarkerHandle interface {
	Remove()
}

// PopupDay is one row of the multi-day detail popup.
type PopupDay struct {
	Label   string
	Icon    string
	Symbol  string
	MinTemp float64
	MaxTemp float64
}

// Popup is the single detail popup; at most one is open at a time.
type Popup struct {
	LocationID string
	Title      string
	Days       []PopupDay

	// OnClose must be invoked by the map widget whenever the popup is
	// closed by the user, so dependent state (the hourly strip) is cleared.
	OnClose func()
}

// HourEntry is one cell of the hourly strip.
type HourEntry struct {
	Time  string
	Icon  string
	Value string
}

// HourlyStrip is the bottom-of-screen per-hour panel for the selected
// location, flavored by the active layer mode.
type HourlyStrip struct {
	LocationID string
	Title      string
	Mode       LayerMode
	Hours      []HourEntry
}

// MapView is the rendering capability the presenter drives. The map widget
// itself (tiles, panning, graphics) is an external collaborator; the
// overlay only needs these operations.
type MapView interface {
	AddMarker(m Marker) (MarkerHandle, error)
	ShowPopup(p Popup)
	ClosePopup()
	ShowHourlyStrip(s HourlyStrip)
	ClearHourlyStrip()
}
