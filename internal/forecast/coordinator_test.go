package forecast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// stubClient fabricates one record per location, failing the configured
// ids, and optionally blocking until released.
type stubClient struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
	block chan struct{}
}

func (s *stubClient) Predict(ctx context.Context, loc geo.Location) (Record, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return Record{}, ctx.Err()
		}
	}

	if s.fail[loc.ID] {
		return Record{}, errors.New("boom")
	}

	return Record{
		LocationID:  loc.ID,
		DisplayName: loc.Name,
		Lat:         loc.Lat,
		Lon:         loc.Lon,
		Daily:       []DayForecast{{Date: "Today", Symbol: "cloudy"}},
		Hourly:      []HourPoint{{Time: "13:00"}},
	}, nil
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var testLocations = []geo.Location{
	{ID: "a", Name: "A", Lat: 21.0, Lon: 105.8},
	{ID: "b", Name: "B", Lat: 21.1, Lon: 105.9},
	{ID: "c", Name: "C", Lat: 10.0, Lon: 106.7},
}

func TestFetchAllToleratesPartialFailure(t *testing.T) {
	client := &stubClient{fail: map[string]bool{"b": true}}
	c := NewCoordinator(client, time.Second)

	records := c.FetchAll(context.Background(), testLocations)
	if len(records) != 2 {
		t.Fatalf("expected 2 records (3 locations, 1 failure), got %d", len(records))
	}
	for _, rec := range records {
		if rec.LocationID == "b" {
			t.Error("failed location must not appear in the dataset")
		}
	}
}

func TestFetchAllEmptyShortCircuits(t *testing.T) {
	client := &stubClient{}
	c := NewCoordinator(client, time.Second)

	if records := c.FetchAll(context.Background(), nil); len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
	if client.callCount() != 0 {
		t.Errorf("expected no network calls for an empty set, got %d", client.callCount())
	}
}

func TestRefreshPublishesAndClearsLoading(t *testing.T) {
	client := &stubClient{fail: map[string]bool{"c": true}}
	c := NewCoordinator(client, time.Second)

	var published atomic.Int32
	c.OnPublish(func(records []Record) {
		published.Store(int32(len(records)))
	})

	c.Refresh(context.Background(), testLocations)

	if got := published.Load(); got != 2 {
		t.Errorf("expected publish with 2 records, got %d", got)
	}
	if c.Loading() {
		t.Error("loading must be false after the batch settles, failures included")
	}
	if len(c.Records()) != 2 {
		t.Errorf("expected 2 records in dataset, got %d", len(c.Records()))
	}
}

func TestRefreshLoadingDuringBatch(t *testing.T) {
	client := &stubClient{block: make(chan struct{})}
	c := NewCoordinator(client, time.Second)

	done := make(chan struct{})
	go func() {
		c.Refresh(context.Background(), testLocations[:1])
		close(done)
	}()

	deadline := time.After(time.Second)
	for !c.Loading() {
		select {
		case <-deadline:
			t.Fatal("loading never became true")
		case <-time.After(time.Millisecond):
		}
	}

	close(client.block)
	<-done

	if c.Loading() {
		t.Error("loading must be false after settlement")
	}
}

func TestSupersededBatchIsDiscarded(t *testing.T) {
	client := &stubClient{block: make(chan struct{})}
	c := NewCoordinator(client, time.Second)

	publishes := 0
	c.OnPublish(func([]Record) { publishes++ })

	done := make(chan struct{})
	go func() {
		c.Refresh(context.Background(), testLocations)
		close(done)
	}()

	// Give the batch time to get in flight, then supersede it.
	time.Sleep(10 * time.Millisecond)
	c.Clear()

	close(client.block)
	<-done

	if publishes != 0 {
		t.Errorf("stale batch must not publish, got %d publishes", publishes)
	}
	if len(c.Records()) != 0 {
		t.Errorf("stale batch must not overwrite cleared state, got %d records", len(c.Records()))
	}
	if c.Loading() {
		t.Error("loading must be false after clear")
	}
}
