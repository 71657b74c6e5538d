package object

import (
	"testing"

	"github.com/google/uuid"

	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/server"
	"github.com/oleworks/com-runtime/typedesc"
	"github.com/oleworks/com-runtime/vtable"
)

var (
	iidGreeter = uuid.MustParse("66666666-0000-0000-0000-000000000001")

	greeterInterface = &typedesc.Interface{
		Name: "IGreeter",
		IID:  iidGreeter,
		Base: typedesc.IDispatch,
		DispMembers: []typedesc.DispMember{
			{Kind: typedesc.DispMethod, DispID: 1, Name: "Add", Result: "int",
				Params: []typedesc.Param{
					{Name: "a", Type: "int", Flags: typedesc.FIn},
					{Name: "b", Type: "int", Flags: typedesc.FIn},
				}},
			{Kind: typedesc.DispMethod, DispID: 2, Name: "Concat", Result: "string",
				Params: []typedesc.Param{
					{Name: "a", Type: "string", Flags: typedesc.FIn},
					{Name: "b", Type: "string", Flags: typedesc.FIn},
					{Name: "c", Type: "string", Flags: typedesc.FIn},
				}},
			{Kind: typedesc.DispProperty, DispID: 3, Name: "Prefix", Result: "string"},
		},
	}
)

type greeter struct {
	Prefix string
}

func (g *greeter) Add(a, b int) int { return a + b }

func (g *greeter) Concat(a, b, c string) string { return a + b + c }

func newGreeter() (*greeter, *Instance) {
	g := &greeter{Prefix: "Hello"}
	return g, New(g, []*typedesc.Interface{greeterInterface},
		WithRegistry(server.NewRegistry()))
}

func TestInvoke_UnnamedReversed(t *testing.T) {
	_, inst := newGreeter()

	// Unnamed arguments arrive highest-index-first, so positional call
	// order reads the block backwards.
	result := &vtable.Out{}
	hr := inst.Invoke(2, typedesc.DispatchMethod,
		&typedesc.DispParams{Args: []any{"C", "B", "A"}}, result)
	if hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if result.Get() != "ABC" {
		t.Fatalf("result = %v", result.Get())
	}
}

func TestInvoke_NamedAndUnnamed(t *testing.T) {
	_, inst := newGreeter()

	// One named argument targeting position 2, two unnamed filling the
	// tail in reverse.
	result := &vtable.Out{}
	hr := inst.Invoke(2, typedesc.DispatchMethod,
		&typedesc.DispParams{Args: []any{"C", "B", "Z"}, NamedIDs: []int32{2}}, result)
	if hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if result.Get() != "ZBC" {
		t.Fatalf("result = %v", result.Get())
	}
}

func TestInvoke_PropertyPut(t *testing.T) {
	g, inst := newGreeter()

	// A put call never forwards the result cell, even when supplied.
	result := &vtable.Out{}
	hr := inst.Invoke(3, typedesc.DispatchPropertyPut,
		&typedesc.DispParams{Args: []any{"Dr."}, NamedIDs: []int32{-3}}, result)
	if hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if g.Prefix != "Dr." {
		t.Fatalf("field = %q", g.Prefix)
	}
	if result.IsSet() {
		t.Fatal("put must not write the result cell")
	}
}

func TestInvoke_PropertyGet(t *testing.T) {
	_, inst := newGreeter()

	result := &vtable.Out{}
	if hr := inst.Invoke(3, typedesc.DispatchPropertyGet, nil, result); hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if result.Get() != "Hello" {
		t.Fatalf("result = %v", result.Get())
	}
}

func TestInvoke_CombinedKind(t *testing.T) {
	_, inst := newGreeter()

	// Callers asking for method-or-propertyget reach the getter.
	result := &vtable.Out{}
	kind := typedesc.DispatchMethod | typedesc.DispatchPropertyGet
	if hr := inst.Invoke(3, kind, nil, result); hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if result.Get() != "Hello" {
		t.Fatalf("result = %v", result.Get())
	}
}

func TestInvoke_MemberNotFound(t *testing.T) {
	_, inst := newGreeter()

	if hr := inst.Invoke(99, typedesc.DispatchMethod, nil, nil); hr != hresult.DISP_E_MEMBERNOTFOUND {
		t.Fatalf("got %s", hr)
	}
	// A known member invoked with the wrong kind also misses.
	if hr := inst.Invoke(1, typedesc.DispatchPropertyPut, nil, nil); hr != hresult.DISP_E_MEMBERNOTFOUND {
		t.Fatalf("wrong kind: got %s", hr)
	}
}

func TestInvoke_BadIndex(t *testing.T) {
	_, inst := newGreeter()

	hr := inst.Invoke(2, typedesc.DispatchMethod,
		&typedesc.DispParams{Args: []any{"A"}, NamedIDs: []int32{5}}, nil)
	if hr != hresult.DISP_E_BADINDEX {
		t.Fatalf("got %s", hr)
	}
}

type fakeLibrary struct {
	invoked bool
	dispID  int32
}

func (l *fakeLibrary) TypeInfoOf(guid typedesc.IID) (any, bool) {
	return "typeinfo:" + guid.String(), true
}

func (l *fakeLibrary) IDsOfNames(names []string) ([]int32, hresult.HRESULT) {
	ids := make([]int32, len(names))
	for i := range names {
		ids[i] = int32(i + 100)
	}
	return ids, hresult.S_OK
}

func (l *fakeLibrary) Invoke(impl any, dispID int32, kind typedesc.InvokeKind,
	params *typedesc.DispParams, result *vtable.Out) hresult.HRESULT {
	l.invoked = true
	l.dispID = dispID
	return hresult.S_OK
}

func TestInvoke_TypeLibraryFallback(t *testing.T) {
	lib := &fakeLibrary{}
	inst := New(&thermostat{}, []*typedesc.Interface{thermoInterface},
		WithRegistry(server.NewRegistry()), WithTypeLibrary(lib))

	// No dispatch members anywhere, so the library handles the call.
	if hr := inst.Invoke(7, typedesc.DispatchMethod, nil, nil); hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if !lib.invoked || lib.dispID != 7 {
		t.Fatalf("library saw invoked=%v dispID=%d", lib.invoked, lib.dispID)
	}
}

func TestInvoke_NoFallback(t *testing.T) {
	_, inst := newThermo()
	if hr := inst.Invoke(7, typedesc.DispatchMethod, nil, nil); hr != hresult.DISP_E_MEMBERNOTFOUND {
		t.Fatalf("got %s", hr)
	}
}

func TestDispatchSlots_TypeInfoCount(t *testing.T) {
	_, inst := newGreeter()
	ref, _ := inst.Query(typedesc.IID_IDispatch)
	defer ref.Release()

	cell := &vtable.Out{}
	if hr := ref.CallNamed("GetTypeInfoCount", cell); hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if cell.Get() != uint32(0) {
		t.Fatalf("count = %v without a library", cell.Get())
	}

	lib := &fakeLibrary{}
	inst2 := New(&greeter{}, []*typedesc.Interface{greeterInterface},
		WithRegistry(server.NewRegistry()), WithTypeLibrary(lib))
	ref2, _ := inst2.Query(typedesc.IID_IDispatch)
	defer ref2.Release()

	cell = &vtable.Out{}
	ref2.CallNamed("GetTypeInfoCount", cell)
	if cell.Get() != uint32(1) {
		t.Fatalf("count = %v with a library", cell.Get())
	}
}

func TestDispatchSlots_TypeInfo(t *testing.T) {
	lib := &fakeLibrary{}
	inst := New(&greeter{}, []*typedesc.Interface{greeterInterface},
		WithRegistry(server.NewRegistry()), WithTypeLibrary(lib))
	ref, _ := inst.Query(typedesc.IID_IDispatch)
	defer ref.Release()

	// Only index zero exists.
	if hr := ref.CallNamed("GetTypeInfo", 1, 0, &vtable.Out{}); hr != hresult.DISP_E_BADINDEX {
		t.Fatalf("nonzero index: %s", hr)
	}

	cell := &vtable.Out{}
	if hr := ref.CallNamed("GetTypeInfo", 0, 0, cell); hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if cell.Get() != "typeinfo:"+iidGreeter.String() {
		t.Fatalf("got %v", cell.Get())
	}
}

func TestDispatchSlots_IDsOfNames(t *testing.T) {
	lib := &fakeLibrary{}
	inst := New(&greeter{}, []*typedesc.Interface{greeterInterface},
		WithRegistry(server.NewRegistry()), WithTypeLibrary(lib))
	ref, _ := inst.Query(typedesc.IID_IDispatch)
	defer ref.Release()

	cell := &vtable.Out{}
	hr := ref.CallNamed("GetIDsOfNames", typedesc.IID{}, []string{"Add", "Concat"}, 0, cell)
	if hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	ids, ok := cell.Get().([]int32)
	if !ok || len(ids) != 2 || ids[0] != 100 || ids[1] != 101 {
		t.Fatalf("ids = %v", cell.Get())
	}
}

func TestDispatchSlots_InvokeThroughTable(t *testing.T) {
	_, inst := newGreeter()
	ref, _ := inst.Query(iidGreeter)
	defer ref.Release()

	// The full native path: the Invoke slot on the built table feeds
	// the engine.
	result := &vtable.Out{}
	params := &typedesc.DispParams{Args: []any{3, 2}}
	hr := ref.CallNamed("Invoke",
		int32(1), typedesc.IID_IDispatch, 0, uint16(typedesc.DispatchMethod),
		params, result, nil, nil)
	if hr != hresult.S_OK {
		t.Fatalf("got %s", hr)
	}
	if result.Get() != 5 {
		t.Fatalf("result = %v", result.Get())
	}
}
