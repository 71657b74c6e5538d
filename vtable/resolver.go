package vtable

import (
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/oleworks/com-runtime/comerr"
	"github.com/oleworks/com-runtime/typedesc"
)

// Property accessor markers. A member whose name carries one of these
// prefixes is a property accessor for the un-prefixed name.
const (
	GetterPrefix = "Get_"
	SetterPrefix = "Set_"
	SetRefPrefix = "SetRef_"
)

// Registrar lets an object type supply an explicit registration table
// mapping members to handlers, keyed "Interface.Member" or bare
// "Member". Explicit entries take precedence over reflected methods.
type Registrar interface {
	COMRegister() map[string]any
}

// Resolver finds the managed implementation of an interface member on
// one object. Lookup tiers, qualified name before bare name in each:
// the explicit registration table, reflected methods on the object
// (qualified as "Interface_Member"), the baseline handlers installed by
// the object core, and finally direct field access for parameterless
// property accessors. A miss is a normal state, never an error.
type Resolver struct {
	impl     any
	rv       reflect.Value
	methods  map[string]string // lower-cased name -> exported spelling
	fields   map[string]string
	explicit map[string]any
	expLower map[string]string
	builtins map[string]any
	bltLower map[string]string
}

// NewResolver builds a resolver over impl. The builtins map holds the
// lowest-precedence handlers (the object core's base-interface
// implementations), keyed "Interface.Member".
func NewResolver(impl any, builtins map[string]any) *Resolver {
	r := &Resolver{
		impl:     impl,
		rv:       reflect.ValueOf(impl),
		methods:  map[string]string{},
		fields:   map[string]string{},
		builtins: builtins,
		bltLower: map[string]string{},
	}
	if r.rv.IsValid() {
		rt := r.rv.Type()
		for i := 0; i < rt.NumMethod(); i++ {
			name := rt.Method(i).Name
			r.methods[strings.ToLower(name)] = name
		}
		st := rt
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() == reflect.Struct {
			for i := 0; i < st.NumField(); i++ {
				name := st.Field(i).Name
				if st.Field(i).IsExported() {
					r.fields[strings.ToLower(name)] = name
				}
			}
		}
	}
	if reg, ok := impl.(Registrar); ok {
		r.explicit = reg.COMRegister()
		r.expLower = map[string]string{}
		for k := range r.explicit {
			r.expLower[strings.ToLower(k)] = k
		}
	}
	for k := range builtins {
		r.bltLower[strings.ToLower(k)] = k
	}
	return r
}

// Resolve finds the implementation of m on itf, or reports a miss.
func (r *Resolver) Resolve(itf *typedesc.Interface, m typedesc.Method) (any, bool) {
	ci := itf.CaseInsensitive
	qualified := itf.Name + "." + m.Name

	if h, ok := lookup(r.explicit, r.expLower, qualified, ci); ok {
		return h, true
	}
	if h, ok := lookup(r.explicit, r.expLower, m.Name, ci); ok {
		return h, true
	}

	if mv, ok := r.method(itf.Name+"_"+m.Name, ci); ok {
		return mv, true
	}
	if mv, ok := r.method(m.Name, ci); ok {
		return mv, true
	}

	if h, ok := lookup(r.builtins, r.bltLower, qualified, ci); ok {
		return h, true
	}
	if h, ok := lookup(r.builtins, r.bltLower, m.Name, ci); ok {
		return h, true
	}

	if h, ok := r.property(m, ci); ok {
		return h, true
	}

	Logger().Debug("member not implemented",
		zap.String("interface", itf.Name),
		zap.String("member", m.Name))
	return nil, false
}

func lookup(m map[string]any, lower map[string]string, key string, ci bool) (any, bool) {
	if m == nil {
		return nil, false
	}
	if h, ok := m[key]; ok {
		return h, true
	}
	if ci {
		if actual, ok := lower[strings.ToLower(key)]; ok {
			return m[actual], true
		}
	}
	return nil, false
}

func (r *Resolver) method(name string, ci bool) (any, bool) {
	if !r.rv.IsValid() {
		return nil, false
	}
	if ci {
		if actual, ok := r.methods[strings.ToLower(name)]; ok {
			name = actual
		}
	}
	mv := r.rv.MethodByName(name)
	if !mv.IsValid() {
		return nil, false
	}
	return mv.Interface(), true
}

// property handles the accessor fallback: a getter or setter with no
// parameters beyond the value itself maps to direct access on an
// exported field of the un-prefixed name.
func (r *Resolver) property(m typedesc.Method, ci bool) (any, bool) {
	if len(m.Params) != 1 {
		return nil, false
	}
	var propname string
	var set bool
	switch {
	case strings.HasPrefix(m.Name, GetterPrefix):
		propname = m.Name[len(GetterPrefix):]
	case strings.HasPrefix(m.Name, SetRefPrefix):
		propname, set = m.Name[len(SetRefPrefix):], true
	case strings.HasPrefix(m.Name, SetterPrefix):
		propname, set = m.Name[len(SetterPrefix):], true
	default:
		return nil, false
	}
	if ci {
		if actual, ok := r.fields[strings.ToLower(propname)]; ok {
			propname = actual
		}
	}
	sv := r.structValue()
	if !sv.IsValid() {
		return nil, false
	}
	if _, ok := sv.Type().FieldByName(propname); !ok {
		return nil, false
	}
	if set {
		return r.setter(propname), true
	}
	return r.getter(propname), true
}

func (r *Resolver) structValue() reflect.Value {
	if !r.rv.IsValid() {
		return reflect.Value{}
	}
	sv := r.rv
	if sv.Kind() == reflect.Pointer {
		sv = sv.Elem()
	}
	if sv.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return sv
}

func (r *Resolver) getter(propname string) any {
	return func() (any, error) {
		fv := r.structValue().FieldByName(propname)
		if !fv.IsValid() {
			return nil, comerr.ErrNotImplemented
		}
		return fv.Interface(), nil
	}
}

func (r *Resolver) setter(propname string) any {
	return func(v any) error {
		fv := r.structValue().FieldByName(propname)
		if !fv.IsValid() || !fv.CanSet() {
			return comerr.ErrNotImplemented
		}
		cv, ok := convertValue(v, fv.Type())
		if !ok {
			return comerr.New(0, "cannot assign %T to property %s", v, propname)
		}
		fv.Set(cv)
		return nil
	}
}
