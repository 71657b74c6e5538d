package object

import (
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/server"
	"github.com/oleworks/com-runtime/typedesc"
	"github.com/oleworks/com-runtime/vtable"
)

// Finalizer is implemented by managed values that want to run teardown
// when the last reference is released.
type Finalizer interface {
	FinalRelease()
}

// Instance is one component: a managed implementation value plus the
// built interface tables, a process-unique identity pointer, and an
// atomic reference count. Tables are frozen at construction; only the
// count mutates afterwards.
type Instance struct {
	impl     any
	handle   uintptr
	refs     atomic.Int32
	released atomic.Bool

	declared []*typedesc.Interface
	tables   map[typedesc.IID]*vtable.Table
	dispatch map[vtable.DispKey]*vtable.Adapted

	clsid    *typedesc.CLSID
	typeInfo TypeLibrary
	outgoing []*typedesc.Interface
	registry *server.Registry
	finalize func()
}

// Option configures an Instance at construction.
type Option func(*Instance)

// WithClassID attaches the registered class identity. Objects with a
// class identity automatically support the persistence and class-info
// interfaces.
func WithClassID(clsid typedesc.CLSID) Option {
	return func(o *Instance) { o.clsid = &clsid }
}

// WithTypeLibrary attaches reflection metadata used for late-bound
// fallback invocation and class-info queries.
func WithTypeLibrary(lib TypeLibrary) Option {
	return func(o *Instance) { o.typeInfo = lib }
}

// WithOutgoing declares the object's outgoing (event source) interfaces,
// default first.
func WithOutgoing(interfaces ...*typedesc.Interface) Option {
	return func(o *Instance) { o.outgoing = interfaces }
}

// WithFinalizer overrides the teardown hook run when the last reference
// is released. It takes precedence over a Finalizer implementation on
// the managed value.
func WithFinalizer(fn func()) Option {
	return func(o *Instance) { o.finalize = fn }
}

// WithRegistry places the object in a specific live-object registry
// instead of the process default.
func WithRegistry(reg *server.Registry) Option {
	return func(o *Instance) { o.registry = reg }
}

// New constructs a component over impl supporting the declared
// interfaces. Construction resolves and adapts every slot of every
// supported interface; the returned instance has a reference count of
// zero until a caller queries or addrefs it.
func New(impl any, interfaces []*typedesc.Interface, opts ...Option) *Instance {
	o := &Instance{
		impl:     impl,
		declared: slices.Clone(interfaces),
		tables:   map[typedesc.IID]*vtable.Table{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = server.Default()
	}
	o.handle = handles.put(o)

	// Build from the last supported interface to the first so the
	// defaults appended at the end never shadow an explicit declaration
	// occupying the same identity.
	all := o.supported()
	res := vtable.NewResolver(impl, o.builtins())
	for i := len(all) - 1; i >= 0; i-- {
		built := vtable.Build(res, all[i], o.clsid)
		for _, iid := range built.IIDs {
			o.tables[iid] = built.Table
		}
		if built.Dispatch != nil {
			if o.dispatch == nil {
				o.dispatch = map[vtable.DispKey]*vtable.Adapted{}
			}
			for k, ad := range built.Dispatch {
				o.dispatch[k] = ad
			}
		}
	}

	Logger().Debug("object prepared",
		zap.Uintptr("handle", o.handle),
		zap.Int("interfaces", len(o.tables)))
	return o
}

// supported returns the declared interfaces followed by the automatic
// defaults: rich-error support always, and the class-metadata
// interfaces when a class identity is attached.
func (o *Instance) supported() []*typedesc.Interface {
	all := slices.Clone(o.declared)
	has := func(iid typedesc.IID) bool {
		for _, itf := range all {
			for _, level := range itf.Chain() {
				if level.IID == iid {
					return true
				}
			}
		}
		return false
	}

	if !has(typedesc.IID_ISupportErrorInfo) {
		all = append(all, typedesc.ISupportErrorInfo)
	}
	if o.clsid != nil {
		if !has(typedesc.IID_IProvideClassInfo) {
			all = append(all, typedesc.IProvideClassInfo)
		}
		if len(o.outgoing) > 0 && !has(typedesc.IID_IProvideClassInfo2) {
			all = append(all, typedesc.IProvideClassInfo2)
		}
		if !has(typedesc.IID_IPersist) {
			all = append(all, typedesc.IPersist)
		}
	}
	return all
}

// Handle returns the object's identity pointer.
func (o *Instance) Handle() uintptr { return o.handle }

// Impl returns the managed implementation value.
func (o *Instance) Impl() any { return o.impl }

// Refs returns the current reference count.
func (o *Instance) Refs() int32 { return o.refs.Load() }

// Supports reports whether the object exposes the given identity.
func (o *Instance) Supports(iid typedesc.IID) bool {
	_, ok := o.tables[iid]
	return ok
}

// Table returns the built table for the given identity.
func (o *Instance) Table(iid typedesc.IID) (*vtable.Table, bool) {
	t, ok := o.tables[iid]
	return t, ok
}

// Query resolves an identity to an interface reference, taking one
// reference on success. Unknown identities report E_NOINTERFACE.
func (o *Instance) Query(iid typedesc.IID) (*Ref, hresult.HRESULT) {
	t, ok := o.tables[iid]
	if !ok {
		Logger().Debug("query for unsupported interface",
			zap.Uintptr("handle", o.handle),
			zap.String("iid", iid.String()))
		return nil, hresult.E_NOINTERFACE
	}
	o.AddRef()
	return &Ref{obj: o, iid: iid, table: t}, hresult.S_OK
}

// AddRef takes one reference and returns the new count. The transition
// from zero to one registers the object with its server registry.
func (o *Instance) AddRef() int32 {
	n := o.refs.Add(1)
	if n == 1 {
		o.registry.Add(o)
	}
	return n
}

// Release drops one reference and returns the new count. The final
// release runs the teardown hook, deregisters the object, and retires
// its identity pointer. An underflowing release is clamped and logged.
func (o *Instance) Release() int32 {
	n := o.refs.Add(-1)
	if n < 0 {
		Logger().Error("reference count underflow",
			zap.Uintptr("handle", o.handle),
			zap.Int32("refs", n))
		o.refs.Store(0)
		return 0
	}
	if n == 0 {
		o.finalizeOnce()
	}
	return n
}

func (o *Instance) finalizeOnce() {
	if !o.released.CompareAndSwap(false, true) {
		return
	}
	Logger().Debug("final release", zap.Uintptr("handle", o.handle))
	switch {
	case o.finalize != nil:
		o.finalize()
	default:
		if f, ok := o.impl.(Finalizer); ok {
			f.FinalRelease()
		}
	}
	o.registry.Remove(o)
	handles.drop(o.handle)
	o.tables = nil
	o.dispatch = nil
}

// Ref is an interface reference: one identity on one object, holding
// one counted reference. It is the managed rendition of an interface
// pointer.
type Ref struct {
	obj   *Instance
	iid   typedesc.IID
	table *vtable.Table
}

// IID returns the identity this reference was queried as.
func (r *Ref) IID() typedesc.IID { return r.iid }

// Object returns the underlying instance.
func (r *Ref) Object() *Instance { return r.obj }

// Table returns the interface table behind the reference.
func (r *Ref) Table() *vtable.Table { return r.table }

// Call invokes slot i of the referenced interface.
func (r *Ref) Call(i int, args ...any) hresult.HRESULT {
	return r.table.Call(i, r.obj.handle, args...)
}

// CallNamed invokes the slot by method name.
func (r *Ref) CallNamed(name string, args ...any) hresult.HRESULT {
	return r.table.CallNamed(name, r.obj.handle, args...)
}

// AddRef takes an additional reference through this interface.
func (r *Ref) AddRef() int32 { return r.obj.AddRef() }

// Release drops the reference held through this interface.
func (r *Ref) Release() int32 { return r.obj.Release() }
