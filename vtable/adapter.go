package vtable

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/oleworks/com-runtime/comerr"
	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/typedesc"
)

// Adapted is one managed implementation wrapped as a native-callable
// slot. HasOutArgs tells late-bound callers whether to supply a result
// cell.
type Adapted struct {
	slot   Slot
	hasOut bool
	itf    string
	method string
}

// Slot returns the native-callable entry point.
func (a *Adapted) Slot() Slot { return a.slot }

// HasOutArgs reports whether the member declares at least one output
// slot.
func (a *Adapted) HasOutArgs() bool { return a.hasOut }

// Call invokes the adapted member exactly as a table slot would be
// called.
func (a *Adapted) Call(this uintptr, args ...any) hresult.HRESULT {
	return a.slot(this, args...)
}

// NotImplemented returns the stub installed for members without an
// implementation. It only logs a diagnostic and reports E_NOTIMPL.
func NotImplemented(interfaceName, method string) Slot {
	return func(this uintptr, args ...any) hresult.HRESULT {
		Logger().Debug("unimplemented method called",
			zap.String("interface", interfaceName),
			zap.String("method", method))
		return hresult.E_NOTIMPL
	}
}

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	hresultType = reflect.TypeOf(hresult.HRESULT(0))
)

// Adapt wraps handler as a slot for method m of itf. A nil handler
// yields the not-implemented stub. Handlers whose first parameter is
// the identity pointer pass arguments through unchanged; all others are
// called with the input arguments only, and their return values are
// written into the declared output cells.
func Adapt(handler any, itf *typedesc.Interface, m typedesc.Method, clsid *typedesc.CLSID) *Adapted {
	a := &Adapted{itf: itf.Name, method: m.Name}
	for _, p := range m.Params {
		if p.Flags.Out() {
			a.hasOut = true
		}
	}

	if handler == nil {
		a.slot = NotImplemented(itf.Name, m.Name)
		a.hasOut = false
		return a
	}

	switch h := handler.(type) {
	case Slot:
		a.slot = guard(h, itf, m.Name, clsid)
		return a
	case func(uintptr, ...any) hresult.HRESULT:
		a.slot = guard(Slot(h), itf, m.Name, clsid)
		return a
	}

	fn := reflect.ValueOf(handler)
	if fn.Kind() != reflect.Func {
		Logger().Error("handler is not callable",
			zap.String("interface", itf.Name),
			zap.String("method", m.Name),
			zap.String("type", fmt.Sprintf("%T", handler)))
		a.slot = NotImplemented(itf.Name, m.Name)
		a.hasOut = false
		return a
	}

	ft := fn.Type()
	if ft.NumIn() >= 1 && ft.In(0).Kind() == reflect.Uintptr {
		a.slot = guard(passthrough(fn, itf, m, clsid), itf, m.Name, clsid)
		return a
	}

	a.slot = guard(adapt(fn, itf, m, clsid), itf, m.Name, clsid)
	return a
}

// guard catches panics at the exact point where control crosses from
// managed to native. Nothing may unwind past a slot.
func guard(s Slot, itf *typedesc.Interface, method string, clsid *typedesc.CLSID) Slot {
	return func(this uintptr, args ...any) (hr hresult.HRESULT) {
		defer func() {
			if p := recover(); p != nil {
				Logger().Error("panic in method implementation",
					zap.String("interface", itf.Name),
					zap.String("method", method),
					zap.Any("clsid", clsid),
					zap.Any("panic", p))
				hr = comerr.Report(&comerr.Error{
					Code:        hresult.E_FAIL,
					Description: fmt.Sprint(p),
					Source:      itf.Name,
					IID:         itf.IID,
					CLSID:       clsid,
				})
			}
		}()
		return s(this, args...)
	}
}

// passthrough handles implementations that declare the identity pointer
// themselves: every native argument is forwarded unchanged, only
// failure translation applies.
func passthrough(fn reflect.Value, itf *typedesc.Interface, m typedesc.Method, clsid *typedesc.CLSID) Slot {
	ft := fn.Type()
	return func(this uintptr, args ...any) hresult.HRESULT {
		in := make([]reflect.Value, 0, len(args)+1)
		in = append(in, reflect.ValueOf(this))
		for i, arg := range args {
			pt := paramType(ft, i+1)
			cv, ok := convertValue(arg, pt)
			if !ok {
				Logger().Error("argument type mismatch",
					zap.String("interface", itf.Name),
					zap.String("method", m.Name),
					zap.Int("arg", i),
					zap.String("got", fmt.Sprintf("%T", arg)))
				return hresult.E_INVALIDARG
			}
			in = append(in, cv)
		}
		rets, err := call(fn, in)
		if err != nil {
			return translate(err, itf, m.Name, clsid)
		}
		if len(rets) > 0 && rets[0].Type() == hresultType {
			return hresult.HRESULT(rets[0].Int())
		}
		return hresult.S_OK
	}
}

// adapt partitions the declared parameters by direction, calls the
// implementation with the inputs, and writes its results into the
// output cells in declared order.
func adapt(fn reflect.Value, itf *typedesc.Interface, m typedesc.Method, clsid *typedesc.CLSID) Slot {
	ft := fn.Type()
	var inIdx, outIdx []int
	for i, p := range m.Params {
		if p.Flags.In() {
			inIdx = append(inIdx, i)
		}
		if p.Flags.Out() {
			outIdx = append(outIdx, i)
		}
	}

	return func(this uintptr, args ...any) hresult.HRESULT {
		if len(args) != len(m.Params) {
			Logger().Error("argument count mismatch",
				zap.String("interface", itf.Name),
				zap.String("method", m.Name),
				zap.Int("want", len(m.Params)),
				zap.Int("got", len(args)))
			return hresult.E_INVALIDARG
		}

		if !ft.IsVariadic() && ft.NumIn() != len(inIdx) {
			return translate(
				fmt.Errorf("implementation takes %d arguments, interface declares %d inputs",
					ft.NumIn(), len(inIdx)),
				itf, m.Name, clsid)
		}

		in := make([]reflect.Value, 0, len(inIdx))
		for k, idx := range inIdx {
			cv, ok := convertValue(args[idx], paramType(ft, k))
			if !ok {
				Logger().Error("argument type mismatch",
					zap.String("interface", itf.Name),
					zap.String("method", m.Name),
					zap.Int("arg", idx),
					zap.String("got", fmt.Sprintf("%T", args[idx])))
				return hresult.E_INVALIDARG
			}
			in = append(in, cv)
		}

		rets, err := call(fn, in)
		if err != nil {
			return translate(err, itf, m.Name, clsid)
		}

		switch len(outIdx) {
		case 0:
			// No declared outputs: a returned value has nowhere to go
			// and is dropped.
			return hresult.S_OK
		case 1:
			if len(rets) == 0 {
				return hresult.S_OK
			}
			return writeOut(args, outIdx[0], rets[0], itf, m.Name)
		default:
			if len(rets) != len(outIdx) {
				Logger().Error("output count mismatch",
					zap.String("interface", itf.Name),
					zap.String("method", m.Name),
					zap.Int("want", len(outIdx)),
					zap.Int("got", len(rets)))
				return comerr.Report(&comerr.Error{
					Code: hresult.E_INVALIDARG,
					Description: fmt.Sprintf(
						"method %s should have returned %d values, got %d",
						m.Name, len(outIdx), len(rets)),
					Source: itf.Name,
					IID:    itf.IID,
					CLSID:  clsid,
				})
			}
			for k, idx := range outIdx {
				if hr := writeOut(args, idx, rets[k], itf, m.Name); hr.Failed() {
					return hr
				}
			}
			return hresult.S_OK
		}
	}
}

func writeOut(args []any, idx int, v reflect.Value, itf *typedesc.Interface, method string) hresult.HRESULT {
	cell, ok := args[idx].(*Out)
	if !ok || cell == nil {
		Logger().Error("output argument is not a cell",
			zap.String("interface", itf.Name),
			zap.String("method", method),
			zap.Int("arg", idx))
		return hresult.E_POINTER
	}
	cell.Set(v.Interface())
	return hresult.S_OK
}

// call invokes fn and splits off a trailing error return.
func call(fn reflect.Value, in []reflect.Value) ([]reflect.Value, error) {
	ft := fn.Type()
	if !ft.IsVariadic() && ft.NumIn() != len(in) {
		return nil, fmt.Errorf("implementation takes %d arguments, %d supplied", ft.NumIn(), len(in))
	}
	rets := fn.Call(in)
	n := ft.NumOut()
	if n == 0 {
		return nil, nil
	}
	last := ft.Out(n - 1)
	if last.Implements(errorType) {
		rv := rets[n-1]
		rets = rets[:n-1]
		switch rv.Kind() {
		case reflect.Interface, reflect.Pointer:
			if rv.IsNil() {
				return rets, nil
			}
		}
		return rets, rv.Interface().(error)
	}
	return rets, nil
}

// translate resolves a managed failure to a result code at the
// boundary, attaching interface and class identity to the rich-error
// record.
func translate(err error, itf *typedesc.Interface, method string, clsid *typedesc.CLSID) hresult.HRESULT {
	var app *comerr.Error
	if errors.As(err, &app) {
		e := *app
		if e.Source == "" {
			e.Source = itf.Name
		}
		e.IID = itf.IID
		if e.CLSID == nil {
			e.CLSID = clsid
		}
		Logger().Debug("application failure",
			zap.String("interface", itf.Name),
			zap.String("method", method),
			zap.Stringer("hresult", e.HResult()))
		return comerr.Report(&e)
	}
	if errors.Is(err, comerr.ErrNotImplemented) {
		Logger().Warn("unimplemented method called",
			zap.String("interface", itf.Name),
			zap.String("method", method))
		return hresult.E_NOTIMPL
	}
	var hres comerr.HResulter
	if errors.As(err, &hres) {
		Logger().Error("native failure in method implementation",
			zap.String("interface", itf.Name),
			zap.String("method", method),
			zap.Any("clsid", clsid),
			zap.Error(err))
		return comerr.Normalize(err)
	}
	Logger().Error("unexpected failure in method implementation",
		zap.String("interface", itf.Name),
		zap.String("method", method),
		zap.Any("clsid", clsid),
		zap.Error(err))
	return comerr.Report(&comerr.Error{
		Code:        hresult.E_FAIL,
		Description: err.Error(),
		Source:      itf.Name,
		IID:         itf.IID,
		CLSID:       clsid,
	})
}

// paramType returns the type of positional parameter i, unrolling a
// variadic tail.
func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	if i >= ft.NumIn() {
		return nil
	}
	return ft.In(i)
}

// convertValue coerces a boundary value to the implementation's
// parameter type. Numeric widths convert freely; anything else must be
// directly assignable.
func convertValue(v any, t reflect.Type) (reflect.Value, bool) {
	if t == nil {
		return reflect.Value{}, false
	}
	if v == nil {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
			reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if numeric(rv.Kind()) && numeric(t.Kind()) && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
