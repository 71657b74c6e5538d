package vtable

import "github.com/oleworks/com-runtime/hresult"

// Slot is the shape of one native table entry: the identity pointer
// first, then one argument per declared parameter in declared order.
type Slot func(this uintptr, args ...any) hresult.HRESULT

// Out is a native out-parameter cell. The caller passes a cell at each
// out position and reads it back after the call returns.
type Out struct {
	val any
	set bool
}

// Set writes the cell.
func (o *Out) Set(v any) {
	o.val = v
	o.set = true
}

// Get returns the written value, or nil when the slot never wrote one.
func (o *Out) Get() any { return o.val }

// IsSet reports whether the slot wrote the cell.
func (o *Out) IsSet() bool { return o.set }
