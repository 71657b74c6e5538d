package object

import (
	"github.com/google/uuid"

	"github.com/oleworks/com-runtime/comerr"
	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/typedesc"
	"github.com/oleworks/com-runtime/vtable"
)

// builtins returns the baseline handlers installed beneath the managed
// value's own members. Raw identity operations are native-shaped slots;
// the class-metadata accessors are ordinary managed handlers that go
// through the adapter like any other.
func (o *Instance) builtins() map[string]any {
	return map[string]any{
		"IUnknown.QueryInterface": o.queryInterfaceSlot,
		"IUnknown.AddRef":         o.addRefSlot,
		"IUnknown.Release":        o.releaseSlot,

		"ISupportErrorInfo.InterfaceSupportsErrorInfo": o.supportsErrorInfoSlot,

		"IPersist.GetClassID":            o.classID,
		"IProvideClassInfo.GetClassInfo": o.classInfo,
		"IProvideClassInfo2.GetGUID":     o.outgoingGUID,

		"IDispatch.GetTypeInfoCount": o.getTypeInfoCountSlot,
		"IDispatch.GetTypeInfo":      o.getTypeInfoSlot,
		"IDispatch.GetIDsOfNames":    o.getIDsOfNamesSlot,
		"IDispatch.Invoke":           o.invokeSlot,
	}
}

// iidArg extracts an identity from a slot argument. Callers may pass
// the value, a pointer to it, or its string form.
func iidArg(v any) (typedesc.IID, bool) {
	switch g := v.(type) {
	case typedesc.IID:
		return g, true
	case *typedesc.IID:
		if g != nil {
			return *g, true
		}
	case string:
		if parsed, err := uuid.Parse(g); err == nil {
			return parsed, true
		}
	}
	return typedesc.IID{}, false
}

func (o *Instance) queryInterfaceSlot(this uintptr, args ...any) hresult.HRESULT {
	if len(args) != 2 {
		return hresult.E_INVALIDARG
	}
	iid, ok := iidArg(args[0])
	if !ok {
		return hresult.E_INVALIDARG
	}
	out, ok := args[1].(*vtable.Out)
	if !ok || out == nil {
		return hresult.E_POINTER
	}
	ref, hr := o.Query(iid)
	if hr.Failed() {
		return hr
	}
	out.Set(ref)
	return hresult.S_OK
}

// The count operations report the new count in place of an HRESULT, as
// the native calling convention demands.
func (o *Instance) addRefSlot(this uintptr, args ...any) hresult.HRESULT {
	return hresult.HRESULT(o.AddRef())
}

func (o *Instance) releaseSlot(this uintptr, args ...any) hresult.HRESULT {
	return hresult.HRESULT(o.Release())
}

func (o *Instance) supportsErrorInfoSlot(this uintptr, args ...any) hresult.HRESULT {
	if len(args) != 1 {
		return hresult.E_INVALIDARG
	}
	iid, ok := iidArg(args[0])
	if !ok {
		return hresult.E_INVALIDARG
	}
	if o.Supports(iid) {
		return hresult.S_OK
	}
	return hresult.S_FALSE
}

func (o *Instance) classID() (typedesc.CLSID, error) {
	if o.clsid == nil {
		return typedesc.CLSID{}, comerr.ErrNotImplemented
	}
	return *o.clsid, nil
}

func (o *Instance) classInfo() (any, error) {
	if o.typeInfo == nil || o.clsid == nil {
		return nil, comerr.ErrNotImplemented
	}
	ti, ok := o.typeInfo.TypeInfoOf(*o.clsid)
	if !ok {
		return nil, comerr.ErrNotImplemented
	}
	return ti, nil
}

func (o *Instance) outgoingGUID(kind uint32) (typedesc.IID, error) {
	if kind != 1 {
		return typedesc.IID{}, comerr.New(hresult.E_INVALIDARG, "unsupported GUID kind %d", kind)
	}
	if len(o.outgoing) == 0 {
		return typedesc.IID{}, comerr.ErrNotImplemented
	}
	return o.outgoing[0].IID, nil
}
