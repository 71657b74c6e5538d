package typedesc

import "github.com/google/uuid"

// IID identifies an interface. Equality of the 128-bit value is the sole
// identity test used for table lookup.
type IID = uuid.UUID

// CLSID identifies a registered class.
type CLSID = uuid.UUID

// ParamFlags marks the direction of one parameter. A parameter with no
// flags set is treated as an input.
type ParamFlags uint16

const (
	FIn     ParamFlags = 0x1
	FOut    ParamFlags = 0x2
	FLCID   ParamFlags = 0x4
	FRetval ParamFlags = 0x8
)

// In reports whether the parameter feeds the managed call. Direction
// bits left unset count as input.
func (f ParamFlags) In() bool { return f&FIn != 0 || f&FOut == 0 }

// Out reports whether the parameter receives a result.
func (f ParamFlags) Out() bool { return f&FOut != 0 }

// Param describes one declared parameter. Type is informational: the
// boundary carries values dynamically and out parameters travel as cells.
type Param struct {
	Name  string
	Type  string
	Flags ParamFlags
}

// MethodFlags carries the descriptive flags of a member.
type MethodFlags uint16

const (
	PropGet MethodFlags = 1 << iota
	PropPut
	PropPutRef
	ReadOnly
)

// Method specifies one table slot: its name, declared parameters in
// order, and descriptive flags. Result names the logical return type for
// late-bound members; the native slot itself always returns an HRESULT.
type Method struct {
	Name   string
	Result string
	Params []Param
	Flags  MethodFlags
}

// DispKind distinguishes the two member forms a dispatch interface may
// declare.
type DispKind uint8

const (
	DispMethod DispKind = iota
	DispProperty
)

// DispMember declares one late-bound member with its numeric dispatch
// identifier. Properties implicitly expose a getter and, unless marked
// ReadOnly, a setter.
type DispMember struct {
	Kind   DispKind
	DispID int32
	Name   string
	Result string
	Params []Param
	Flags  MethodFlags
}

// Interface describes one interface: identity, ordered methods, optional
// late-bound members, and the single base interface. A nil Base means
// the interface derives directly from IUnknown; IUnknown itself
// terminates the chain.
type Interface struct {
	Name            string
	IID             IID
	Base            *Interface
	CaseInsensitive bool
	Methods         []Method
	DispMembers     []DispMember
}

// Chain returns the inheritance chain in base-to-derived order,
// including the IUnknown root. Interfaces form a chain, not a graph.
func (i *Interface) Chain() []*Interface {
	var rev []*Interface
	for cur := i; cur != nil; {
		rev = append(rev, cur)
		if cur == IUnknown {
			break
		}
		if cur.Base != nil {
			cur = cur.Base
		} else {
			cur = IUnknown
		}
	}
	chain := make([]*Interface, len(rev))
	for k, itf := range rev {
		chain[len(rev)-1-k] = itf
	}
	return chain
}

// SlotCount returns the total method count across the chain, which is
// the number of slots in the interface's built table.
func (i *Interface) SlotCount() int {
	n := 0
	for _, itf := range i.Chain() {
		n += len(itf.Methods)
	}
	return n
}

// InvokeKind is the invocation-kind flag set used by late-bound calls.
type InvokeKind uint16

const (
	DispatchMethod         InvokeKind = 1
	DispatchPropertyGet    InvokeKind = 2
	DispatchPropertyPut    InvokeKind = 4
	DispatchPropertyPutRef InvokeKind = 8
)

// DispParams is the late-bound argument block: a value array plus the
// dispatch identifiers of the named arguments. Unnamed arguments are
// packed in reverse order (highest index first) per the object model's
// convention; named arguments occupy the leading positions.
type DispParams struct {
	Args     []any
	NamedIDs []int32
}

// Count returns the total argument count.
func (d *DispParams) Count() int {
	if d == nil {
		return 0
	}
	return len(d.Args)
}

// NamedCount returns the named argument count.
func (d *DispParams) NamedCount() int {
	if d == nil {
		return 0
	}
	return len(d.NamedIDs)
}
