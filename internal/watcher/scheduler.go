package watcher

import (
	"context"
	"sync"

	"github.com/slabs-dev/slabs/internal/logging"
)

// Rescan recomputes the block set from scratch.
type Rescan func(ctx context.Context) error

// Scheduler serializes rescans triggered by file events. Triggers arriving
// while a rescan is in flight coalesce into exactly one trailing rescan, so
// overlapping rescans can never mutate shared results concurrently.
type Scheduler struct {
	rescan  Rescan
	logger  logging.Logger
	trigger chan struct{}

	startOnce sync.Once
}

// NewScheduler creates a scheduler around the given rescan function.
func NewScheduler(rescan Rescan, logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Scheduler{
		rescan:  rescan,
		logger:  logger.WithComponent("scheduler"),
		trigger: make(chan struct{}, 1),
	}
}

// Trigger requests a rescan. Safe to call from any goroutine; redundant
// triggers while one is pending are collapsed.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Start runs the scheduling loop until ctx is cancelled. Rescans execute
// one at a time on this goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.loop(ctx)
	})
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
			if err := s.rescan(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error(ctx, err, "rescan failed")
			}
		}
	}
}
