package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DeletionScheduler runs deferred channel teardown. Each pending deletion is
// keyed by channel id so it can be cancelled before it fires.
type DeletionScheduler struct {
	logger *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDeletionScheduler constructs the scheduler.
func NewDeletionScheduler(logger *zap.Logger) *DeletionScheduler {
	return &DeletionScheduler{
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arranges for fn to run after delay. Scheduling again for the
// same channel replaces the previous pending deletion.
func (s *DeletionScheduler) Schedule(channelID string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[channelID]; ok {
		existing.Stop()
	}
	s.timers[channelID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, channelID)
		s.mu.Unlock()
		fn()
	})
	s.logger.Info("deletion scheduled",
		zap.String("channel_id", channelID),
		zap.Duration("delay", delay))
}

// Cancel stops a pending deletion. Returns false when nothing was pending
// or the timer already fired.
func (s *DeletionScheduler) Cancel(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[channelID]
	if !ok {
		return false
	}
	delete(s.timers, channelID)
	return timer.Stop()
}

// Stop cancels every pending deletion, for shutdown.
func (s *DeletionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for channelID, timer := range s.timers {
		timer.Stop()
		delete(s.timers, channelID)
	}
}
