// Package object implements the object core: it turns one managed Go
// value into a native-callable component.
//
// At construction the core assembles the supported-interface set (the
// declared interfaces plus automatic defaults), builds one call table
// per interface through the vtable package, and installs them in a
// per-identity map that is frozen before the object becomes callable.
// The core itself implements the universal base interface — identity
// query, atomic reference counting, identity-support query — plus the
// late-bound invocation engine and the class-metadata accessors.
//
// Native callers hold a Ref, the Go rendition of an interface pointer:
// it carries the instance's identity pointer and dispatches through the
// table exactly as a native vtable call would.
package object
