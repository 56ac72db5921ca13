// Package scheduler pre-warms the forecast cache for catalog locations so
// the first overlay activation and the predict proxy answer from memory.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/BangBK2510/Digital-Map-Project/internal/forecast"
	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
	"github.com/BangBK2510/Digital-Map-Project/internal/store"
)

// Scheduler periodically fetches forecasts for a bounded prefix of the
// catalog and stores them in the cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	client    forecast.PredictClient
	cache     *store.ForecastCache
	locations []geo.Location
	interval  time.Duration
}

// New creates a Scheduler. limit bounds how many catalog locations are
// pre-warmed each cycle; non-positive means all of them.
func New(locations []geo.Location, limit int, interval time.Duration, client forecast.PredictClient, cache *store.ForecastCache) *Scheduler {
	if limit > 0 && limit < len(locations) {
		locations = locations[:limit]
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		cache:     cache,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the periodic pre-warm job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Info().Msg("Scheduler: no locations to pre-warm; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Debug().Int("locations", len(s.locations)).Msg("Scheduler: pre-warming forecast cache")

		var wg sync.WaitGroup
		for _, loc := range s.locations {
			loc := loc
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				rec, err := s.client.Predict(ctx, loc)
				if err != nil {
					log.Warn().Err(err).Str("location", loc.Name).Msg("Scheduler: pre-warm fetch failed")
					return
				}
				s.cache.Put(store.Key(loc.Lat, loc.Lon), rec)
			}()
		}
		wg.Wait()

		if removed := s.cache.Purge(); removed > 0 {
			log.Debug().Int("removed", removed).Msg("Scheduler: purged expired cache entries")
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
