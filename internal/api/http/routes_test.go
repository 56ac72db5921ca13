package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/BangBK2510/Digital-Map-Project/internal/catalog"
	"github.com/BangBK2510/Digital-Map-Project/internal/config"
	"github.com/BangBK2510/Digital-Map-Project/internal/forecast"
	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
	"github.com/BangBK2510/Digital-Map-Project/internal/routing"
	"github.com/BangBK2510/Digital-Map-Project/internal/search"
)

type stubSearch struct {
	places []search.Place
	err    error
}

func (s *stubSearch) Search(context.Context, string) ([]search.Place, error) {
	return s.places, s.err
}

type stubRouting struct {
	route routing.Route
	err   error
}

func (s *stubRouting) Drive(context.Context, float64, float64, float64, float64) (routing.Route, error) {
	return s.route, s.err
}

type stubPredict struct {
	err error
}

func (s *stubPredict) Predict(_ context.Context, loc geo.Location) (forecast.Record, error) {
	if s.err != nil {
		return forecast.Record{}, s.err
	}
	return forecast.Record{
		LocationID:  loc.ID,
		DisplayName: loc.Name,
		Lat:         loc.Lat,
		Lon:         loc.Lon,
		Daily:       []forecast.DayForecast{{Date: "Today", Symbol: "clearsky_day", MinTemp: 24, MaxTemp: 32}},
		Hourly:      []forecast.HourPoint{{Time: "13:00", Temperature: 31.2}},
	}, nil
}

func testApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})
	RegisterRoutes(app, deps)
	return app
}

func defaultDeps() Deps {
	predict := &stubPredict{}
	return Deps{
		Catalog: catalog.New([]geo.Location{
			{ID: "hanoi", Name: "Hà Nội", Lat: 21.028511, Lon: 105.804817},
			{ID: "haiphong", Name: "Hải Phòng", Lat: 20.844912, Lon: 106.688084},
			{ID: "danang", Name: "Đà Nẵng", Lat: 16.047079, Lon: 108.20623},
		}),
		Search:      &stubSearch{},
		Routing:     &stubRouting{},
		Forecast:    predict,
		Coordinator: forecast.NewCoordinator(predict, time.Second),
		MaxVisible:  20,
		MapConfig:   config.DefaultMapConfig(),
	}
}

func doRequest(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s failed: %v", target, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	resp.Body.Close()
	return resp, body
}

func TestMapConfigEndpoint(t *testing.T) {
	app := testApp(defaultDeps())

	resp, body := doRequest(t, app, "/api/mapconfig")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var cfg config.MapConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		t.Fatalf("decode map config: %v", err)
	}
	if cfg.Zoom == 0 || cfg.CenterLat == 0 {
		t.Errorf("expected defaults populated, got %+v", cfg)
	}
}

func TestSearchEndpoint(t *testing.T) {
	deps := defaultDeps()
	deps.Search = &stubSearch{places: []search.Place{
		{PlaceID: "hanoi", DisplayName: "Hà Nội", Lat: 21.028511, Lon: 105.804817},
	}}
	app := testApp(deps)

	resp, body := doRequest(t, app, "/api/search?q=ha")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var places []search.Place
	if err := json.Unmarshal(body, &places); err != nil {
		t.Fatalf("decode places: %v", err)
	}
	if len(places) != 1 || places[0].PlaceID != "hanoi" {
		t.Errorf("unexpected result %+v", places)
	}
}

func TestSearchEndpointFailure(t *testing.T) {
	deps := defaultDeps()
	deps.Search = &stubSearch{err: errors.New("db down")}
	app := testApp(deps)

	resp, _ := doRequest(t, app, "/api/search?q=ha")
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}

func TestRouteEndpoint(t *testing.T) {
	deps := defaultDeps()
	deps.Routing = &stubRouting{route: routing.Route{
		Geometry:  routing.Geometry{Type: "LineString", Coordinates: [][]float64{{105.8, 21.0}, {106.7, 20.8}}},
		DistanceM: 120500,
		DurationS: 7410,
	}}
	app := testApp(deps)

	resp, body := doRequest(t, app, "/api/route?from_lat=21.0&from_lon=105.8&to_lat=20.8&to_lon=106.7")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var route routing.Route
	if err := json.Unmarshal(body, &route); err != nil {
		t.Fatalf("decode route: %v", err)
	}
	if route.Geometry.Type != "LineString" || route.DistanceM != 120500 {
		t.Errorf("unexpected route %+v", route)
	}
}

func TestRouteEndpointValidation(t *testing.T) {
	app := testApp(defaultDeps())

	cases := []string{
		"/api/route",
		"/api/route?from_lat=21.0&from_lon=105.8&to_lat=20.8",
		"/api/route?from_lat=abc&from_lon=105.8&to_lat=20.8&to_lon=106.7",
		"/api/route?from_lat=91.0&from_lon=105.8&to_lat=20.8&to_lon=106.7",
	}
	for _, target := range cases {
		resp, _ := doRequest(t, app, target)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, resp.StatusCode)
		}
	}
}

func TestRouteEndpointNoRoute(t *testing.T) {
	deps := defaultDeps()
	deps.Routing = &stubRouting{err: routing.ErrNoRoute}
	app := testApp(deps)

	resp, _ := doRequest(t, app, "/api/route?from_lat=21.0&from_lon=105.8&to_lat=-20.8&to_lon=30.7")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for unroutable points, got %d", resp.StatusCode)
	}
}

func TestProvincesEndpoint(t *testing.T) {
	app := testApp(defaultDeps())

	resp, body := doRequest(t, app, "/provinces")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var provinces []map[string]any
	if err := json.Unmarshal(body, &provinces); err != nil {
		t.Fatalf("decode provinces: %v", err)
	}
	if len(provinces) != 3 {
		t.Fatalf("expected 3 provinces, got %d", len(provinces))
	}
	if provinces[0]["name"] != "Hà Nội" {
		t.Errorf("unexpected first province %+v", provinces[0])
	}
}

func TestPredictEndpoint(t *testing.T) {
	app := testApp(defaultDeps())

	resp, body := doRequest(t, app, "/predict?lat=21.028511&lon=105.804817&name=Hanoi")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var rec forecast.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if len(rec.Daily) != 1 || len(rec.Hourly) != 1 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestPredictEndpointValidation(t *testing.T) {
	app := testApp(defaultDeps())

	for _, target := range []string{"/predict", "/predict?lat=21.0", "/predict?lat=95&lon=105.8"} {
		resp, _ := doRequest(t, app, target)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, resp.StatusCode)
		}
	}
}

func TestPredictEndpointUpstreamFailure(t *testing.T) {
	deps := defaultDeps()
	deps.Forecast = &stubPredict{err: forecast.ErrMalformedPayload}
	app := testApp(deps)

	resp, _ := doRequest(t, app, "/predict?lat=21.0&lon=105.8")
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}

func TestOverlayEndpoint(t *testing.T) {
	app := testApp(defaultDeps())

	resp, body := doRequest(t, app, "/api/overlay?sw_lat=20.5&sw_lon=105.0&ne_lat=21.5&ne_lon=106.8&mode=weather")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Mode    string            `json:"mode"`
		Count   int               `json:"count"`
		Records []forecast.Record `json:"records"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode overlay payload: %v", err)
	}
	if payload.Mode != "weather" {
		t.Errorf("expected weather mode, got %q", payload.Mode)
	}
	// Hà Nội and Hải Phòng sit inside these bounds; Đà Nẵng does not.
	if payload.Count != 2 || len(payload.Records) != 2 {
		t.Errorf("expected 2 records, got count=%d len=%d", payload.Count, len(payload.Records))
	}
}

func TestOverlayEndpointNoneMode(t *testing.T) {
	app := testApp(defaultDeps())

	resp, body := doRequest(t, app, "/api/overlay?sw_lat=20.5&sw_lon=105.0&ne_lat=21.5&ne_lon=106.8&mode=none")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Count   int               `json:"count"`
		Records []forecast.Record `json:"records"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode overlay payload: %v", err)
	}
	if payload.Count != 0 || len(payload.Records) != 0 {
		t.Errorf("expected empty payload for hidden layer, got %+v", payload)
	}
}

func TestOverlayEndpointValidation(t *testing.T) {
	app := testApp(defaultDeps())

	resp, _ := doRequest(t, app, "/api/overlay?sw_lat=20.5&sw_lon=105.0&ne_lat=91.0&ne_lon=106.8")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range bounds, got %d", resp.StatusCode)
	}
}
