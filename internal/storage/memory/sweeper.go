package memory

import (
	"context"
	"log/slog"
	"time"

	"roomapi/internal/lib/clockwork"
)

// Swept is implemented by the stores whose expired entries the Sweeper drops.
type Swept interface {
	Sweep(now time.Time) int
}

// Sweeper periodically reclaims expired entries from the given stores. It
// shares their lock discipline through Sweep, so a sweep-driven delete never
// races a concurrent create of the same key.
type Sweeper struct {
	log      *slog.Logger
	clock    clockwork.Clock
	interval time.Duration
	targets  []Swept
}

func NewSweeper(log *slog.Logger, clock clockwork.Clock, interval time.Duration, targets ...Swept) *Sweeper {
	return &Sweeper{
		log:      log,
		clock:    clock,
		interval: interval,
		targets:  targets,
	}
}

// Run blocks until ctx is cancelled, sweeping every interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.clock.Now()
			removed := 0
			for _, target := range s.targets {
				removed += target.Sweep(now)
			}
			if removed > 0 {
				s.log.Debug("swept expired entries", slog.Int("removed", removed))
			}
		}
	}
}
