package converter

import (
	"context"
	"sync"
)

// Session allows one operation at a time. Starting a new operation cancels
// the one in flight, whose result must then be discarded.
type Session struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// Begin cancels any running operation and returns a context for the next
// one. The returned func releases it.
func (s *Session) Begin(parent context.Context) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	gen := s.gen
	s.cancel = cancel

	return ctx, func() {
		cancel()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen == gen {
			s.cancel = nil
		}
	}
}

// Cancel stops the running operation, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
