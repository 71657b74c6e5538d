package object

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/typedesc"
	"github.com/oleworks/com-runtime/vtable"
)

// TypeLibrary supplies reflection metadata for objects whose dispatch
// members are not declared on their interfaces. It backs the class-info
// accessors, name-to-identifier translation, and fallback invocation.
type TypeLibrary interface {
	// TypeInfoOf returns the type description registered under guid.
	TypeInfoOf(guid typedesc.IID) (any, bool)
	// IDsOfNames translates member names to dispatch identifiers.
	IDsOfNames(names []string) ([]int32, hresult.HRESULT)
	// Invoke performs a metadata-driven late-bound call on impl.
	Invoke(impl any, dispID int32, kind typedesc.InvokeKind,
		params *typedesc.DispParams, result *vtable.Out) hresult.HRESULT
}

// Invoke performs a late-bound call. The member is located by its
// dispatch identifier and invocation kind; arguments are unpacked from
// the dispatch block into positional call order. Objects without
// declared dispatch members fall back to their type library.
func (o *Instance) Invoke(dispID int32, kind typedesc.InvokeKind,
	params *typedesc.DispParams, result *vtable.Out) hresult.HRESULT {

	if o.dispatch == nil {
		if o.typeInfo != nil {
			return o.typeInfo.Invoke(o.impl, dispID, kind, params, result)
		}
		return hresult.DISP_E_MEMBERNOTFOUND
	}

	ad, ok := o.dispatch[vtable.DispKey{ID: dispID, Kind: kind}]
	if !ok {
		Logger().Debug("dispatch member not found",
			zap.Int32("dispid", dispID),
			zap.Uint16("kind", uint16(kind)))
		return hresult.DISP_E_MEMBERNOTFOUND
	}

	var args []any
	if kind&(typedesc.DispatchPropertyPut|typedesc.DispatchPropertyPutRef) != 0 {
		// A put call carries its value among the named arguments,
		// packed in reverse. The result cell is never forwarded.
		for i := params.NamedCount() - 1; i >= 0; i-- {
			args = append(args, params.Args[i])
		}
		return ad.Call(o.handle, args...)
	}

	// Named arguments sit at their declared positions; unnamed ones
	// follow highest-index-first. The index list recovers positional
	// call order.
	total, named := params.Count(), params.NamedCount()
	indexes := make([]int, 0, total)
	if params != nil {
		for _, id := range params.NamedIDs {
			indexes = append(indexes, int(id))
		}
	}
	for i := total - named - 1; i >= 0; i-- {
		indexes = append(indexes, i)
	}
	for _, idx := range indexes {
		if idx < 0 || idx >= total {
			return hresult.DISP_E_BADINDEX
		}
		args = append(args, params.Args[idx])
	}
	if result != nil && ad.HasOutArgs() {
		args = append(args, result)
	}
	return ad.Call(o.handle, args...)
}

func (o *Instance) getTypeInfoCountSlot(this uintptr, args ...any) hresult.HRESULT {
	if len(args) != 1 {
		return hresult.E_INVALIDARG
	}
	out, ok := args[0].(*vtable.Out)
	if !ok || out == nil {
		return hresult.E_POINTER
	}
	if o.typeInfo == nil {
		out.Set(uint32(0))
	} else {
		out.Set(uint32(1))
	}
	return hresult.S_OK
}

func (o *Instance) getTypeInfoSlot(this uintptr, args ...any) hresult.HRESULT {
	if len(args) != 3 {
		return hresult.E_INVALIDARG
	}
	itinfo, ok := toInt32(args[0])
	if !ok {
		return hresult.E_INVALIDARG
	}
	if itinfo != 0 {
		return hresult.DISP_E_BADINDEX
	}
	out, ok := args[2].(*vtable.Out)
	if !ok || out == nil {
		return hresult.E_POINTER
	}
	if o.typeInfo == nil || len(o.declared) == 0 {
		return hresult.E_NOTIMPL
	}
	ti, found := o.typeInfo.TypeInfoOf(o.declared[0].IID)
	if !found {
		return hresult.E_FAIL
	}
	out.Set(ti)
	return hresult.S_OK
}

func (o *Instance) getIDsOfNamesSlot(this uintptr, args ...any) hresult.HRESULT {
	if len(args) != 4 {
		return hresult.E_INVALIDARG
	}
	var names []string
	switch n := args[1].(type) {
	case []string:
		names = n
	case string:
		names = []string{n}
	default:
		return hresult.E_INVALIDARG
	}
	out, ok := args[3].(*vtable.Out)
	if !ok || out == nil {
		return hresult.E_POINTER
	}
	if o.typeInfo == nil {
		return hresult.E_NOTIMPL
	}
	ids, hr := o.typeInfo.IDsOfNames(names)
	if hr.Failed() {
		return hr
	}
	out.Set(ids)
	return hr
}

func (o *Instance) invokeSlot(this uintptr, args ...any) hresult.HRESULT {
	if len(args) < 5 {
		return hresult.E_INVALIDARG
	}
	dispID, ok := toInt32(args[0])
	if !ok {
		return hresult.E_INVALIDARG
	}
	kind, ok := toInt32(args[3])
	if !ok {
		return hresult.E_INVALIDARG
	}
	var params *typedesc.DispParams
	if p, isParams := args[4].(*typedesc.DispParams); isParams {
		params = p
	}
	var result *vtable.Out
	if len(args) > 5 {
		if cell, isOut := args[5].(*vtable.Out); isOut {
			result = cell
		}
	}
	return o.Invoke(dispID, typedesc.InvokeKind(kind), params, result)
}

func toInt32(v any) (int32, bool) {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int32(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int32(rv.Uint()), true
	}
	return 0, false
}
