package vtable

import (
	"slices"

	"github.com/oleworks/com-runtime/typedesc"
)

// DispKey identifies one late-bound dispatch entry: the member's
// numeric identifier plus the invocation kind.
type DispKey struct {
	ID   int32
	Kind typedesc.InvokeKind
}

// Built is the product of one builder pass over an interface: the
// table, the identity of every chain level sharing it, and, when the
// interface declares late-bound members, the dispatch map.
type Built struct {
	Table    *Table
	IIDs     []typedesc.IID
	Dispatch map[DispKey]*Adapted
}

// Build walks itf's inheritance chain from the most-base interface to
// the most-derived, adapting one slot per method in declaration order.
// Interfaces whose chains produce the same slot-signature sequence
// share one interned layout.
func Build(res *Resolver, itf *typedesc.Interface, clsid *typedesc.CLSID) *Built {
	var (
		names []string
		sigs  []string
		slots []Slot
		iids  []typedesc.IID
	)
	for _, level := range itf.Chain() {
		iids = append(iids, level.IID)
		for _, m := range level.Methods {
			handler, _ := res.Resolve(level, m)
			ad := Adapt(handler, level, m, clsid)
			names = append(names, m.Name)
			sigs = append(sigs, signature(m))
			slots = append(slots, ad.Slot())
		}
	}

	b := &Built{
		Table: &Table{layout: internLayout(names, sigs), slots: slots},
		IIDs:  iids,
	}
	if len(itf.DispMembers) > 0 {
		b.Dispatch = buildDispatch(res, itf, clsid)
	}
	return b
}

func buildDispatch(res *Resolver, itf *typedesc.Interface, clsid *typedesc.CLSID) map[DispKey]*Adapted {
	dm := make(map[DispKey]*Adapted, len(itf.DispMembers))
	for _, member := range itf.DispMembers {
		switch member.Kind {
		case typedesc.DispMethod:
			name := member.Name
			kind := typedesc.DispatchMethod
			params := member.Params
			switch {
			case member.Flags&typedesc.PropGet != 0:
				name = GetterPrefix + name
				kind = typedesc.DispatchPropertyGet
			case member.Flags&typedesc.PropPut != 0:
				name = SetterPrefix + name
				kind = typedesc.DispatchPropertyPut
			case member.Flags&typedesc.PropPutRef != 0:
				name = SetRefPrefix + name
				kind = typedesc.DispatchPropertyPutRef
			default:
				// A declared result becomes an implicit trailing output.
				if member.Result != "" {
					params = appendOut(params, member.Result)
				}
			}
			addDispEntry(dm, res, itf, clsid, name, params, member, kind)

		case typedesc.DispProperty:
			getParams := member.Params
			if member.Result != "" {
				getParams = appendOut(getParams, member.Result)
			}
			addDispEntry(dm, res, itf, clsid,
				GetterPrefix+member.Name, getParams, member, typedesc.DispatchPropertyGet)
			if member.Flags&typedesc.ReadOnly == 0 {
				setParams := append(slices.Clone(member.Params), typedesc.Param{
					Name: "value", Type: member.Result, Flags: typedesc.FIn,
				})
				addDispEntry(dm, res, itf, clsid,
					SetterPrefix+member.Name, setParams, member, typedesc.DispatchPropertyPut)
			}
		}
	}
	return dm
}

// addDispEntry resolves and adapts one late-bound member. A getter and
// the generic method kind share a combined key so callers using either
// convention resolve to the same adapted callable.
func addDispEntry(dm map[DispKey]*Adapted, res *Resolver, itf *typedesc.Interface,
	clsid *typedesc.CLSID, name string, params []typedesc.Param,
	member typedesc.DispMember, kind typedesc.InvokeKind) {

	m := typedesc.Method{Name: name, Params: params, Flags: member.Flags}
	handler, _ := res.Resolve(itf, m)
	ad := Adapt(handler, itf, m, clsid)
	dm[DispKey{member.DispID, kind}] = ad
	if kind == typedesc.DispatchMethod || kind == typedesc.DispatchPropertyGet {
		dm[DispKey{member.DispID, typedesc.DispatchMethod | typedesc.DispatchPropertyGet}] = ad
	}
}

func appendOut(params []typedesc.Param, result string) []typedesc.Param {
	return append(slices.Clone(params), typedesc.Param{
		Name: "retval", Type: result, Flags: typedesc.FOut,
	})
}
