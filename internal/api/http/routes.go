package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/BangBK2510/Digital-Map-Project/internal/catalog"
	"github.com/BangBK2510/Digital-Map-Project/internal/config"
	"github.com/BangBK2510/Digital-Map-Project/internal/forecast"
	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
	"github.com/BangBK2510/Digital-Map-Project/internal/overlay"
	"github.com/BangBK2510/Digital-Map-Project/internal/routing"
	"github.com/BangBK2510/Digital-Map-Project/internal/search"
)

var validate = validator.New()

// SearchService is what the search endpoint needs.
type SearchService interface {
	Search(ctx context.Context, query string) ([]search.Place, error)
}

// RouteClient is what the route proxy endpoint needs.
type RouteClient interface {
	Drive(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (routing.Route, error)
}

// Deps bundles the collaborators the HTTP handlers use.
type Deps struct {
	Catalog     *catalog.Catalog
	Search      SearchService
	Routing     RouteClient
	Forecast    forecast.PredictClient
	Coordinator *forecast.Coordinator
	MaxVisible  int
	MapConfig   config.MapConfig
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/api/mapconfig", func(c *fiber.Ctx) error {
		return c.JSON(deps.MapConfig)
	})

	app.Get("/api/search", func(c *fiber.Ctx) error {
		query := c.Query("q")

		places, err := deps.Search.Search(c.Context(), query)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to query places")
		}
		return c.JSON(places)
	})

	app.Get("/api/route", func(c *fiber.Ctx) error {
		var req routeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		route, err := deps.Routing.Drive(c.Context(), req.FromLat, req.FromLon, req.ToLat, req.ToLon)
		if err != nil {
			if errors.Is(err, routing.ErrNoRoute) {
				return fiber.NewError(fiber.StatusNotFound, "no route found between the given points")
			}
			return fiber.NewError(fiber.StatusBadGateway, "routing service unavailable")
		}
		return c.JSON(route)
	})

	app.Get("/provinces", func(c *fiber.Ctx) error {
		locations := deps.Catalog.Locations()
		out := make([]fiber.Map, 0, len(locations))
		for _, loc := range locations {
			out = append(out, fiber.Map{"name": loc.Name, "lat": loc.Lat, "lon": loc.Lon})
		}
		return c.JSON(out)
	})

	app.Get("/predict", func(c *fiber.Ctx) error {
		var req pointQuery
		if err := req.bind(c, "lat", "lon"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := deps.Forecast.Predict(c.Context(), geo.Location{
			Name: c.Query("name"),
			Lat:  req.Lat,
			Lon:  req.Lon,
		})
		if err != nil {
			if errors.Is(err, forecast.ErrMalformedPayload) {
				return fiber.NewError(fiber.StatusBadGateway, "forecast service returned incomplete data")
			}
			return fiber.NewError(fiber.StatusBadGateway, "forecast service unavailable")
		}
		return c.JSON(rec)
	})

	app.Get("/api/overlay", func(c *fiber.Ctx) error {
		var req overlayQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		mode := overlay.ParseLayerMode(c.Query("mode", "weather"))
		if mode == overlay.ModeNone {
			return c.JSON(fiber.Map{"mode": mode.String(), "count": 0, "records": []forecast.Record{}})
		}

		visible := overlay.Filter(req.bounds(), deps.Catalog.Locations(), deps.MaxVisible)
		records := deps.Coordinator.FetchAll(c.Context(), visible)
		if records == nil {
			records = []forecast.Record{}
		}

		return c.JSON(fiber.Map{
			"mode":    mode.String(),
			"count":   len(records),
			"records": records,
		})
	})
}

// pointQuery holds a validated coordinate pair.
type pointQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (p *pointQuery) bind(c *fiber.Ctx, latKey, lonKey string) error {
	var err error
	if p.Lat, err = parseFloat(c.Query(latKey), latKey); err != nil {
		return err
	}
	if p.Lon, err = parseFloat(c.Query(lonKey), lonKey); err != nil {
		return err
	}
	return validate.Struct(p)
}

// routeQuery holds query parameters for the route proxy.
type routeQuery struct {
	FromLat float64 `validate:"gte=-90,lte=90"`
	FromLon float64 `validate:"gte=-180,lte=180"`
	ToLat   float64 `validate:"gte=-90,lte=90"`
	ToLon   float64 `validate:"gte=-180,lte=180"`
}

func (r *routeQuery) bind(c *fiber.Ctx) error {
	var err error
	if r.FromLat, err = parseFloat(c.Query("from_lat"), "from_lat"); err != nil {
		return err
	}
	if r.FromLon, err = parseFloat(c.Query("from_lon"), "from_lon"); err != nil {
		return err
	}
	if r.ToLat, err = parseFloat(c.Query("to_lat"), "to_lat"); err != nil {
		return err
	}
	if r.ToLon, err = parseFloat(c.Query("to_lon"), "to_lon"); err != nil {
		return err
	}
	return validate.Struct(r)
}

// overlayQuery holds the viewport bounds for the overlay endpoint.
type overlayQuery struct {
	SWLat float64 `validate:"gte=-90,lte=90"`
	SWLon float64 `validate:"gte=-180,lte=180"`
	NELat float64 `validate:"gte=-90,lte=90"`
	NELon float64 `validate:"gte=-180,lte=180"`
}

func (o *overlayQuery) bind(c *fiber.Ctx) error {
	var err error
	if o.SWLat, err = parseFloat(c.Query("sw_lat"), "sw_lat"); err != nil {
		return err
	}
	if o.SWLon, err = parseFloat(c.Query("sw_lon"), "sw_lon"); err != nil {
		return err
	}
	if o.NELat, err = parseFloat(c.Query("ne_lat"), "ne_lat"); err != nil {
		return err
	}
	if o.NELon, err = parseFloat(c.Query("ne_lon"), "ne_lon"); err != nil {
		return err
	}
	return validate.Struct(o)
}

func (o *overlayQuery) bounds() geo.Bounds {
	return geo.Bounds{
		SouthWestLat: o.SWLat,
		SouthWestLon: o.SWLon,
		NorthEastLat: o.NELat,
		NorthEastLon: o.NELon,
	}
}

func parseFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, errors.New(name + " query parameter is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid " + name + ": must be a number")
	}
	return v, nil
}
