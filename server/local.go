package server

import (
	"context"
	"sync"
	"sync/atomic"
)

// Local models out-of-process hosting. Object references and explicit
// server locks share one count; when it falls to zero the server
// signals shutdown exactly once and a blocked Run returns.
type Local struct {
	count atomic.Int32
	done  chan struct{}
	once  sync.Once
}

// NewLocal returns a local server ready to run.
func NewLocal() *Local {
	return &Local{done: make(chan struct{})}
}

// Lock adds one to the combined object/lock count.
func (s *Local) Lock() {
	s.count.Add(1)
}

// Unlock removes one; the final release signals shutdown.
func (s *Local) Unlock() {
	if s.count.Add(-1) == 0 {
		s.once.Do(func() {
			Logger().Debug("last lock released, signaling shutdown")
			close(s.done)
		})
	}
}

// Done returns a channel closed when the server has signaled shutdown.
func (s *Local) Done() <-chan struct{} {
	return s.done
}

// Run blocks until the last lock is released or ctx is cancelled. This
// is the dedicated thread of the out-of-process hosting model.
func (s *Local) Run(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
