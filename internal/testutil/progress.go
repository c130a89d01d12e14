package testutil

import (
	"context"
	"sync"

	"github.com/dtroode/audiograb-server/internal/model"
)

// RecordingSink is a model.ProgressSink that keeps every event it receives.
type RecordingSink struct {
	mu     sync.Mutex
	events []model.Event
	Err    error
}

func (s *RecordingSink) Send(_ context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return s.Err
}

// Events returns a copy of the received events.
func (s *RecordingSink) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Event(nil), s.events...)
}

// Statuses returns the status lines of the received events.
func (s *RecordingSink) Statuses() []string {
	var out []string
	for _, e := range s.Events() {
		if e.Status != "" {
			out = append(out, e.Status)
		}
	}
	return out
}
