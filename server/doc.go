// Package server tracks what keeps a hosting process alive: the set of
// objects with outstanding references and an independent lock count.
//
// The Registry is an explicit service object rather than ambient global
// state; the object core holds a reference to the registry it was
// created with, so deregistration stays functional during process
// teardown. A Locker attached to the registry is notified on every
// membership change.
//
// Two hosting models are provided. Inproc answers unload-readiness as a
// pure query (CanUnloadNow). Local counts objects and explicit locks
// together and releases a blocked Run call once the count reaches zero.
package server
