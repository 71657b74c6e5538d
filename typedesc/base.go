package typedesc

import "github.com/google/uuid"

// Built-in descriptors for the base interfaces every object may carry.
// Identities are the protocol-defined values.
var (
	IID_IUnknown           = uuid.MustParse("00000000-0000-0000-C000-000000000046")
	IID_IDispatch          = uuid.MustParse("00020400-0000-0000-C000-000000000046")
	IID_ISupportErrorInfo  = uuid.MustParse("DF0B3D60-548F-101B-8E65-08002B2BD119")
	IID_IPersist           = uuid.MustParse("0000010C-0000-0000-C000-000000000046")
	IID_IProvideClassInfo  = uuid.MustParse("B196B283-BAB4-101A-B69C-00AA00341D07")
	IID_IProvideClassInfo2 = uuid.MustParse("A6BC3AC0-DBAA-11CE-9DE3-00AA004BB851")
)

// IUnknown is the universal base: identity query plus reference
// counting. AddRef and Release return the new count in the result slot
// position rather than an HRESULT; both are always safe to call.
var IUnknown = &Interface{
	Name: "IUnknown",
	IID:  IID_IUnknown,
	Methods: []Method{
		{
			Name: "QueryInterface",
			Params: []Param{
				{Name: "riid", Type: "refiid", Flags: FIn},
				{Name: "ppvObject", Type: "ptr", Flags: FOut},
			},
		},
		{Name: "AddRef", Result: "ulong"},
		{Name: "Release", Result: "ulong"},
	},
}

// IDispatch is the late-bound invocation interface.
var IDispatch = &Interface{
	Name: "IDispatch",
	IID:  IID_IDispatch,
	Methods: []Method{
		{
			Name: "GetTypeInfoCount",
			Params: []Param{
				{Name: "pctinfo", Type: "uint", Flags: FOut},
			},
		},
		{
			Name: "GetTypeInfo",
			Params: []Param{
				{Name: "itinfo", Type: "uint", Flags: FIn},
				{Name: "lcid", Type: "lcid", Flags: FIn},
				{Name: "ppTInfo", Type: "ptr", Flags: FOut},
			},
		},
		{
			Name: "GetIDsOfNames",
			Params: []Param{
				{Name: "riid", Type: "refiid", Flags: FIn},
				{Name: "rgszNames", Type: "strings", Flags: FIn},
				{Name: "lcid", Type: "lcid", Flags: FIn},
				{Name: "rgDispId", Type: "ptr", Flags: FOut},
			},
		},
		{
			Name: "Invoke",
			Params: []Param{
				{Name: "dispIdMember", Type: "int", Flags: FIn},
				{Name: "riid", Type: "refiid", Flags: FIn},
				{Name: "lcid", Type: "lcid", Flags: FIn},
				{Name: "wFlags", Type: "word", Flags: FIn},
				{Name: "pDispParams", Type: "ptr", Flags: FIn},
				{Name: "pVarResult", Type: "ptr", Flags: FOut},
				{Name: "pExcepInfo", Type: "ptr", Flags: FOut},
				{Name: "puArgErr", Type: "ptr", Flags: FOut},
			},
		},
	},
}

// ISupportErrorInfo reports whether an interface participates in
// rich-error reporting.
var ISupportErrorInfo = &Interface{
	Name: "ISupportErrorInfo",
	IID:  IID_ISupportErrorInfo,
	Methods: []Method{
		{
			Name: "InterfaceSupportsErrorInfo",
			Params: []Param{
				{Name: "riid", Type: "refiid", Flags: FIn},
			},
		},
	},
}

// IPersist exposes the registered class identity.
var IPersist = &Interface{
	Name: "IPersist",
	IID:  IID_IPersist,
	Methods: []Method{
		{
			Name: "GetClassID",
			Params: []Param{
				{Name: "pClassID", Type: "clsid", Flags: FOut},
			},
		},
	},
}

// IProvideClassInfo exposes the class's reflection metadata.
var IProvideClassInfo = &Interface{
	Name: "IProvideClassInfo",
	IID:  IID_IProvideClassInfo,
	Methods: []Method{
		{
			Name: "GetClassInfo",
			Params: []Param{
				{Name: "ppTI", Type: "ptr", Flags: FOut},
			},
		},
	},
}

// IProvideClassInfo2 additionally exposes the default outgoing
// interface's identity.
var IProvideClassInfo2 = &Interface{
	Name: "IProvideClassInfo2",
	IID:  IID_IProvideClassInfo2,
	Base: IProvideClassInfo,
	Methods: []Method{
		{
			Name: "GetGUID",
			Params: []Param{
				{Name: "dwGuidKind", Type: "uint", Flags: FIn},
				{Name: "pGUID", Type: "guid", Flags: FOut},
			},
		},
	},
}
