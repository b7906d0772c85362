package httpserver

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ThrottleStore keeps a token-bucket limiter per client key with periodic
// cleanup of idle entries.
type ThrottleStore struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry

	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewThrottleStore constructs a store allowing rps sustained requests with the
// given burst per client key.
func NewThrottleStore(rps float64, burst int) *ThrottleStore {
	return &ThrottleStore{
		entries:      make(map[string]*throttleEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
}

// Allow reports whether the key may proceed now.
func (s *ThrottleStore) Allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	ent, ok := s.entries[key]
	if !ok {
		ent = &throttleEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = ent
	}
	ent.lastSeen = now
	s.mu.Unlock()

	return ent.lim.Allow()
}

func (s *ThrottleStore) cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor cleans idle keys periodically until the context is canceled.
func (s *ThrottleStore) StartJanitor(ctx context.Context) {
	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.cleanup()
			}
		}
	}()
}
