// Package routing consumes an external OSRM-compatible driving-directions
// service and returns route geometry for display.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoRoute is returned when the routing service finds no route between
// the given points.
var ErrNoRoute = errors.New("no route found")

// Geometry is the GeoJSON LineString of a route, coordinates as [lon, lat]
// pairs.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// Route is a single driving route.
type Route struct {
	Geometry  Geometry `json:"geometry"`
	DistanceM float64  `json:"distance"`
	DurationS float64  `json:"duration"`
}

// Client talks to an OSRM-compatible HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a routing client against the given base URL
// (e.g. https://router.project-osrm.org).
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{baseURL: baseURL, client: httpClient}
}

// Drive requests a driving route between two points and returns the first
// route with full GeoJSON geometry.
func (c *Client) Drive(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (Route, error) {
	u := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, fromLon, fromLat, toLon, toLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Route{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Route{}, fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Routes []Route `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Route{}, fmt.Errorf("decode routing response: %w", err)
	}

	if len(payload.Routes) == 0 {
		return Route{}, ErrNoRoute
	}
	return payload.Routes[0], nil
}
