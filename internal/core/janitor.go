package core

// janitor.go runs the background eviction of idle sessions.
//
// The janitor is long-running and context-aware for graceful shutdown. Idle
// sessions hold whole tables in memory, so they are dropped once their TTL
// passes.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultJanitorInterval is used when the configured interval is not positive.
const DefaultJanitorInterval = 5 * time.Minute

// StartSessionJanitor evicts idle sessions every interval until ctx is
// cancelled. It runs once immediately on start.
func (s *Service) StartSessionJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	slog.Info("session janitor started",
		"interval", interval.String(),
		"ttl", s.sessions.TTL().String(),
	)

	s.runJanitor()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			s.runJanitor()
		}
	}
}

// runJanitor performs one eviction pass.
func (s *Service) runJanitor() {
	start := time.Now()
	evicted := s.sessions.Evict()
	live := s.sessions.Len()
	s.metrics.SetSessions(live)

	if evicted > 0 {
		slog.Info("evicted idle sessions",
			"evicted", evicted,
			"live", live,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Debug("session janitor pass", "live", live)
}
