package collagelib

import (
	"sync"
	"time"
)

// Schedule holds the transition delays. It can be updated while pipelines are
// running, a change only affects timers armed after it.
type Schedule struct {
	mu       sync.RWMutex
	global   time.Duration
	monitors map[int]time.Duration
}

func NewSchedule(global time.Duration, monitors []MonitorSpec) *Schedule {
	s := &Schedule{}
	s.Update(global, monitors)
	return s
}

// Update replaces every delay.
func (s *Schedule) Update(global time.Duration, monitors []MonitorSpec) {
	overrides := make(map[int]time.Duration)
	for _, m := range monitors {
		if m.TransitionDelay > 0 {
			overrides[m.Index] = m.TransitionDelay
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = global
	s.monitors = overrides
}

// SetGlobal replaces only the default delay.
func (s *Schedule) SetGlobal(global time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = global
}

// Delay returns the monitor's own delay, or the global one if it has none.
func (s *Schedule) Delay(index int) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.monitors[index]; ok {
		return d
	}
	return s.global
}
