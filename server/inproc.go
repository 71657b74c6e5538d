package server

import (
	"sync/atomic"

	"github.com/oleworks/com-runtime/hresult"
)

// Inproc models in-process hosting. Unload-readiness is a pure query:
// no blocking, no shutdown signal.
type Inproc struct {
	locks atomic.Int32
}

// NewInproc returns an in-process server with no locks held.
func NewInproc() *Inproc {
	return &Inproc{}
}

// Lock takes a server lock.
func (s *Inproc) Lock() {
	s.locks.Add(1)
}

// Unlock releases a server lock.
func (s *Inproc) Unlock() {
	s.locks.Add(-1)
}

// Locks returns the current lock count.
func (s *Inproc) Locks() int32 {
	return s.locks.Load()
}

// CanUnloadNow reports whether the hosting process may unload: S_OK
// when no lock and no live object remains, S_FALSE while busy.
func (s *Inproc) CanUnloadNow(reg *Registry) hresult.HRESULT {
	if s.locks.Load() > 0 {
		return hresult.S_FALSE
	}
	if reg != nil && !reg.Empty() {
		return hresult.S_FALSE
	}
	return hresult.S_OK
}
