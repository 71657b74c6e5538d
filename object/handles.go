package object

import "sync"

// handleTable issues the identity pointers handed to native callers as
// the "this" argument. Handle zero is reserved and always invalid;
// dropped slots are reused through a free list.
type handleTable struct {
	mu      sync.Mutex
	entries []*Instance
	free    []uintptr
}

func (t *handleTable) put(inst *Instance) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.free); n > 0 {
		h := t.free[n-1]
		t.free = t.free[:n-1]
		t.entries[h-1] = inst
		return h
	}
	t.entries = append(t.entries, inst)
	return uintptr(len(t.entries))
}

func (t *handleTable) get(h uintptr) (*Instance, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h == 0 || int(h) > len(t.entries) {
		return nil, false
	}
	inst := t.entries[h-1]
	return inst, inst != nil
}

func (t *handleTable) drop(h uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h == 0 || int(h) > len(t.entries) || t.entries[h-1] == nil {
		return
	}
	t.entries[h-1] = nil
	t.free = append(t.free, h)
}

var handles handleTable

// Lookup resolves an identity pointer back to its instance. Native
// implementations that take the identity pointer themselves use this to
// reach their object.
func Lookup(this uintptr) (*Instance, bool) {
	return handles.get(this)
}
