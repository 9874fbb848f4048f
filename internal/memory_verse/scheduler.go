package memoryverse

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartScheduler runs the rotation until ctx is cancelled.
// - On start: syncs the widget and tops up an empty schedule.
// - Every promote interval: promotes the next due reveal, and refills the
//   schedule once it has drained.
func (s *MemoryVerseService) StartScheduler(ctx context.Context) {
	ticker := time.NewTicker(s.promoteInterval)
	defer ticker.Stop()

	s.log.Info("verse scheduler started", zap.Duration("interval", s.promoteInterval))

	if _, err := s.OnAppForeground(ctx); err != nil {
		s.log.Error("initial widget sync failed", zap.Error(err))
	}
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("verse scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *MemoryVerseService) tick(ctx context.Context) {
	if _, err := s.PromoteNextDue(ctx); err != nil {
		s.log.Error("promote failed", zap.Error(err))
	}

	if s.RefreshInterval(ctx) == 0 || len(s.Pending(ctx)) > 0 {
		return
	}
	if _, err := s.PopulateSchedule(ctx, s.populateCount); err != nil {
		s.log.Error("populate failed", zap.Error(err))
	}
}
