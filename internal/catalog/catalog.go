// Package catalog loads and holds the static list of candidate locations
// shown on the weather overlay.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// Catalog is the immutable set of locations loaded once at startup.
type Catalog struct {
	locations []geo.Location
}

// New wraps an already-built location list.
func New(locations []geo.Location) *Catalog {
	return &Catalog{locations: locations}
}

// Empty returns a catalog with no locations.
func Empty() *Catalog {
	return &Catalog{}
}

// Locations returns the catalog entries in load order.
func (c *Catalog) Locations() []geo.Location {
	return c.locations
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.locations)
}

// coord accepts coordinates encoded either as JSON numbers or as strings,
// which the processed city list mixes freely.
type coord float64

func (f *coord) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("empty coordinate")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = coord(v)
	return nil
}

type fileEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lat  *coord `json:"lat"`
	Lon  *coord `json:"lon"`
}

// LoadFile reads a processed city list JSON file. Failures are soft: any
// error yields an empty catalog, and entries with unusable coordinates are
// skipped so one malformed row never poisons the rest.
func LoadFile(path string) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Catalog file load failed; starting with empty catalog")
		return Empty()
	}

	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Catalog file parse failed; starting with empty catalog")
		return Empty()
	}

	return fromEntries(entries)
}

// LoadProvinces fetches the catalog from a provinces endpoint returning a
// JSON array of {name, lat, lon}. Fail-soft like LoadFile.
func LoadProvinces(ctx context.Context, client *http.Client, url string) *Catalog {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Provinces request build failed; starting with empty catalog")
		return Empty()
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Provinces fetch failed; starting with empty catalog")
		return Empty()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("url", url).Msg("Provinces fetch returned non-success status; starting with empty catalog")
		return Empty()
	}

	var entries []fileEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		log.Error().Err(err).Str("url", url).Msg("Provinces payload parse failed; starting with empty catalog")
		return Empty()
	}

	return fromEntries(entries)
}

func fromEntries(entries []fileEntry) *Catalog {
	locations := make([]geo.Location, 0, len(entries))
	skipped := 0

	for _, e := range entries {
		if e.Lat == nil || e.Lon == nil {
			skipped++
			continue
		}

		loc := geo.Location{
			ID:   e.ID,
			Name: e.Name,
			Lat:  float64(*e.Lat),
			Lon:  float64(*e.Lon),
		}
		if loc.ID == "" {
			loc.ID = loc.Name
		}
		if loc.ID == "" || !loc.HasCoordinates() {
			skipped++
			continue
		}

		locations = append(locations, loc)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(locations)).Msg("Some catalog entries had missing or invalid coordinates")
	}
	log.Info().Int("locations", len(locations)).Msg("Catalog loaded")

	return New(locations)
}
