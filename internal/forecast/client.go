// Package forecast talks to the external prediction service and reconciles
// per-location results into a consistent in-memory dataset.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// ErrMalformedPayload marks a response that decoded but is missing the
// daily or hourly arrays the overlay requires.
var ErrMalformedPayload = errors.New("malformed forecast payload")

// PredictClient abstracts the forecast service for the coordinator and for
// tests.
type PredictClient interface {
	Predict(ctx context.Context, loc geo.Location) (Record, error)
}

// Client fetches forecasts from the prediction service over
// GET /predict?lat=<float>&lon=<float>.
type Client struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a forecast Client against the given base URL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "forecast",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: httpClient,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

// predictPayload mirrors the prediction service's wire format.
type predictPayload struct {
	Province string  `json:"province"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Daily    []struct {
		Date         string  `json:"date"`
		TempMin      float64 `json:"temp_min"`
		TempMax      float64 `json:"temp_max"`
		AvgHumidity  float64 `json:"avg_humidity"`
		AvgWindSpeed float64 `json:"avg_wind_speed"`
		Symbol       string  `json:"symbol_url"`
	} `json:"daily"`
	Hourly []struct {
		Time             string  `json:"time"`
		Temperature      float64 `json:"temperature"`
		RelativeHumidity float64 `json:"relative_humidity"`
		WindSpeed        float64 `json:"wind_speed"`
		Symbol           string  `json:"symbol_url"`
	} `json:"hourly"`
}

// Predict fetches and normalizes the forecast for a single location.
func (c *Client) Predict(ctx context.Context, loc geo.Location) (Record, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return Record{}, err
	}
	defer resp.Body.Close()

	var payload predictPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Record{}, err
	}

	if len(payload.Daily) == 0 || len(payload.Hourly) == 0 {
		return Record{}, fmt.Errorf("%w: missing daily or hourly data for %s", ErrMalformedPayload, loc.Name)
	}

	rec := Record{
		LocationID:  loc.ID,
		DisplayName: loc.Name,
		Lat:         loc.Lat,
		Lon:         loc.Lon,
		Daily:       make([]DayForecast, 0, len(payload.Daily)),
		Hourly:      make([]HourPoint, 0, len(payload.Hourly)),
	}
	if rec.DisplayName == "" {
		rec.DisplayName = payload.Province
	}

	for _, d := range payload.Daily {
		rec.Daily = append(rec.Daily, DayForecast{
			Date:         d.Date,
			Symbol:       d.Symbol,
			MinTemp:      d.TempMin,
			MaxTemp:      d.TempMax,
			AvgHumidity:  d.AvgHumidity,
			AvgWindSpeed: d.AvgWindSpeed,
		})
	}
	for _, h := range payload.Hourly {
		rec.Hourly = append(rec.Hourly, HourPoint{
			Time:        h.Time,
			Symbol:      h.Symbol,
			Temperature: h.Temperature,
			Humidity:    h.RelativeHumidity,
			WindSpeed:   h.WindSpeed,
		})
	}

	return rec, nil
}
