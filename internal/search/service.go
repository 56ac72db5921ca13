package search

import (
	"context"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog/log"
)

// Service wraps the store with an optional geocoder fallback: when the
// local database has no match and a Google API key is configured, the raw
// query is geocoded and returned as a single synthesized result. Fallback
// failures are soft and yield an empty result.
type Service struct {
	store       *Store
	geocoderKey string
}

// NewService creates the search service. geocoderKey may be empty, which
// disables the fallback.
func NewService(store *Store, geocoderKey string) *Service {
	if geocoderKey != "" {
		geocoder.ApiKey = geocoderKey
	}
	return &Service{store: store, geocoderKey: geocoderKey}
}

// Search queries the store first and falls back to the geocoder.
func (s *Service) Search(ctx context.Context, query string) ([]Place, error) {
	places, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(places) > 0 || s.geocoderKey == "" {
		return places, nil
	}

	location, err := geocoder.Geocoding(geocoder.Address{City: query})
	if err != nil {
		log.Debug().Err(err).Str("query", query).Msg("Geocoder fallback found nothing")
		return []Place{}, nil
	}

	return []Place{{
		PlaceID:     "geocoded:" + query,
		DisplayName: query,
		Lat:         location.Latitude,
		Lon:         location.Longitude,
	}}, nil
}
