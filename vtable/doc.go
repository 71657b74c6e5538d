// Package vtable builds the per-interface call tables presented to
// native callers.
//
// A table is a fixed-order sequence of slots, one per method across an
// interface's full inheritance chain, base-first. Each slot has the
// native entry-point shape — identity pointer first, then one argument
// per declared parameter — and returns an HRESULT. Out parameters travel
// as *Out cells.
//
// Three pieces cooperate:
//
//	Resolver  finds the managed implementation of a member, or reports
//	          the not-implemented stub
//	Adapt     wraps a managed implementation into a slot, separating
//	          input from output arguments and translating failures
//	Build     walks the chain, adapts every method, interns the table
//	          layout, and produces the late-bound dispatch map
//
// Every slot in a built table is non-nil; unimplemented members resolve
// to a stub returning E_NOTIMPL. Table layouts are interned process-wide
// by their exact slot-signature sequence, so structurally identical
// chains share one layout.
package vtable
