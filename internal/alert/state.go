// Package alert evaluates persisted pool history against price and volume
// thresholds and emits notifications, with per-pool cooldowns.
package alert

import (
	"context"
	"sync"
	"time"
)

// Notifier delivers an alert message. Delivery may fail; callers must not
// let a notify failure mask the condition being reported.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// State tracks when each pool last alerted, separately per alert type. It
// is owned by the scheduler and passed into every evaluation; it is not
// persisted, so cooldowns reset on restart.
type State struct {
	mu         sync.Mutex
	lastPrice  map[string]time.Time
	lastVolume map[string]time.Time
}

func NewState() *State {
	return &State{
		lastPrice:  make(map[string]time.Time),
		lastVolume: make(map[string]time.Time),
	}
}

func (s *State) lastPriceAlert(poolID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastPrice[poolID]
	return t, ok
}

func (s *State) markPriceAlert(poolID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPrice[poolID] = at
}

func (s *State) lastVolumeAlert(poolID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastVolume[poolID]
	return t, ok
}

func (s *State) markVolumeAlert(poolID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastVolume[poolID] = at
}
