// Package comruntime provides a COM-style component hosting runtime for
// Go objects.
//
// The runtime turns plain Go values into components callable through
// binary-stable interface tables: each supported interface becomes an
// ordered slot table built at construction, every slot returns a native
// result code, and failures never unwind past the boundary.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	com-runtime/         Root package documentation
//	├── hresult/         Native result-code protocol (HRESULT)
//	├── comerr/          Failure taxonomy and boundary translation
//	├── typedesc/        Interface, method, and parameter descriptors
//	├── vtable/          Member resolution, call adaptation, table building
//	├── object/          Object core: identity, ref counting, dispatch
//	├── server/          Hosting models and the live-object registry
//	└── cmd/comhost/     Demo host binary with an interactive browser
//
// # Quick Start
//
// Expose a Go value through an interface descriptor:
//
//	obj := object.New(&Calculator{}, []*typedesc.Interface{calcInterface})
//
//	ref, hr := obj.Query(calcInterface.IID)
//	if hr.Failed() {
//	    log.Fatal(hr)
//	}
//	defer ref.Release()
//
//	sum := &vtable.Out{}
//	hr = ref.CallNamed("Add", 2, 3, sum)
//	fmt.Println(hr, sum.Get()) // S_OK 5
//
// # Member Resolution
//
// Interface members bind to the managed value in tiers: an explicit
// registration table, reflected methods (qualified "Interface_Member"
// before bare "Member"), the object core's built-in base-interface
// handlers, and finally direct field access for simple property
// accessors. Unbound members become stubs reporting E_NOTIMPL.
//
// # Thread Safety
//
// Interface tables are frozen at construction and safe for concurrent
// calls. The reference count is atomic; QueryInterface, AddRef, and
// Release may race freely. The managed implementation itself must
// provide its own synchronization if its members mutate state.
package comruntime
