// Package typedesc holds the immutable metadata that describes component
// interfaces: method specifications with per-parameter direction flags,
// single-inheritance interface chains, late-bound member declarations,
// and the argument block used for late-bound invocation.
//
// Descriptors are plain data. They are consumed by the vtable package to
// build call tables and by the object package to assemble an instance's
// supported-interface set. The built-in descriptors for the base
// interfaces (IUnknown, IDispatch, ISupportErrorInfo, IPersist,
// IProvideClassInfo, IProvideClassInfo2) live here with their real
// identities.
package typedesc
