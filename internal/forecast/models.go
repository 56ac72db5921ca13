package forecast

import "math"

// DayForecast is one aggregated day of a location's forecast.
type DayForecast struct {
	Date         string  `json:"date"`
	Symbol       string  `json:"symbol"`
	MinTemp      float64 `json:"min_temp"`
	MaxTemp      float64 `json:"max_temp"`
	AvgHumidity  float64 `json:"avg_humidity"`
	AvgWindSpeed float64 `json:"avg_wind_speed"`
}

// HourPoint is one hourly forecast value.
type HourPoint struct {
	Time        string  `json:"time"`
	Symbol      string  `json:"symbol"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Record is the normalized forecast for a single location. Records exist
// only for successful, well-formed fetches; failed locations are dropped
// rather than kept as placeholders.
type Record struct {
	LocationID  string        `json:"location_id"`
	DisplayName string        `json:"display_name"`
	Lat         float64       `json:"lat"`
	Lon         float64       `json:"lon"`
	Daily       []DayForecast `json:"daily"`
	Hourly      []HourPoint   `json:"hourly"`
}

// Renderable reports whether the record carries everything the overlay
// needs: real coordinates and at least one daily and hourly entry.
func (r Record) Renderable() bool {
	if math.IsNaN(r.Lat) || math.IsNaN(r.Lon) {
		return false
	}
	if r.Lat < -90 || r.Lat > 90 || r.Lon < -180 || r.Lon > 180 {
		return false
	}
	return len(r.Daily) > 0 && len(r.Hourly) > 0
}
