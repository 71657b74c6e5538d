package server

import (
	"sync"

	"go.uber.org/zap"
)

// Locker is notified when the registry gains or loses a member. Hosting
// servers use it to hold a process lock while objects are outstanding.
type Locker interface {
	Lock()
	Unlock()
}

// Registry is the live-instance set: every object whose reference count
// is currently nonzero. It decides nothing itself; hosting servers
// query it to answer unload and shutdown questions.
type Registry struct {
	mu     sync.Mutex
	live   map[any]struct{}
	locker Locker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[any]struct{})}
}

// SetLocker attaches the hosting server notified on membership changes.
func (r *Registry) SetLocker(l Locker) {
	r.mu.Lock()
	r.locker = l
	r.mu.Unlock()
}

// Add records obj as live. Called exactly when its reference count
// transitions zero to one.
func (r *Registry) Add(obj any) {
	r.mu.Lock()
	r.live[obj] = struct{}{}
	n := len(r.live)
	l := r.locker
	r.mu.Unlock()

	Logger().Debug("object added to live registry", zap.Int("live", n))
	if l != nil {
		l.Lock()
	}
}

// Remove drops obj. Called exactly when its reference count reaches
// zero; tolerates an absent entry so teardown ordering cannot fault.
func (r *Registry) Remove(obj any) {
	r.mu.Lock()
	_, present := r.live[obj]
	delete(r.live, obj)
	n := len(r.live)
	l := r.locker
	r.mu.Unlock()

	if !present {
		Logger().Debug("object already absent from live registry")
		return
	}
	Logger().Debug("object removed from live registry", zap.Int("live", n))
	if l != nil {
		l.Unlock()
	}
}

// Count returns the number of live objects.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Empty reports whether no objects are outstanding.
func (r *Registry) Empty() bool {
	return r.Count() == 0
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry used by objects created
// without an explicit one.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
