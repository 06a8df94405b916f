package application

import (
	"sync"
	"time"
)

// TickScheduler drives the per-station countdown. A registered callback
// fires periodically until canceled; registering a station again replaces
// its previous callback. Backing it with an interface keeps the engine
// independent of real timers so tests can drive ticks by hand.
type TickScheduler interface {
	Register(stationID string, tick func(now time.Time))
	Cancel(stationID string)
	Stop()
}

// IntervalScheduler runs one ticker goroutine per registered station.
type IntervalScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	cancels map[string]chan struct{}
	wg      sync.WaitGroup
}

// NewIntervalScheduler constructs a scheduler. A non-positive interval
// falls back to one second, the cadence the countdown display expects.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &IntervalScheduler{
		interval: interval,
		cancels:  make(map[string]chan struct{}),
	}
}

// Register starts ticking for a station.
func (s *IntervalScheduler) Register(stationID string, tick func(now time.Time)) {
	if stationID == "" || tick == nil {
		return
	}
	s.mu.Lock()
	if prev, ok := s.cancels[stationID]; ok {
		close(prev)
	}
	done := make(chan struct{})
	s.cancels[stationID] = done
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				tick(now.UTC())
			}
		}
	}()
}

// Cancel stops ticking for a station. Safe to call for stations that were
// never registered.
func (s *IntervalScheduler) Cancel(stationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if done, ok := s.cancels[stationID]; ok {
		close(done)
		delete(s.cancels, stationID)
	}
}

// Stop cancels all stations and waits for their tickers to exit.
func (s *IntervalScheduler) Stop() {
	s.mu.Lock()
	for id, done := range s.cancels {
		close(done)
		delete(s.cancels, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
