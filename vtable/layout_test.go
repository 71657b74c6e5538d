package vtable

import (
	"testing"

	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/typedesc"
)

func TestLayout_Interning(t *testing.T) {
	names := []string{"QueryInterface", "AddRef", "Release", "Do"}
	sigs := []string{"hresult(refiid,out ptr)", "ulong()", "ulong()", "hresult(int)"}

	a := internLayout(names, sigs)
	b := internLayout(append([]string(nil), names...), append([]string(nil), sigs...))
	if a != b {
		t.Fatal("identical sequences must share one layout")
	}

	// A differing signature breaks sharing.
	other := append([]string(nil), sigs...)
	other[3] = "hresult(string)"
	c := internLayout(names, other)
	if c == a {
		t.Fatal("different sequences must not share")
	}
}

func TestLayout_SlotIndex(t *testing.T) {
	l := internLayout(
		[]string{"A", "B", "A"},
		[]string{"hresult()", "hresult()", "hresult(int)"},
	)
	i, ok := l.SlotIndex("A")
	if !ok || i != 0 {
		t.Fatalf("got %d/%v, want first occurrence", i, ok)
	}
	if _, ok := l.SlotIndex("Missing"); ok {
		t.Fatal("unknown name should miss")
	}
}

func TestSignature_Rendering(t *testing.T) {
	m := typedesc.Method{
		Name: "DivMod",
		Params: []typedesc.Param{
			{Name: "a", Type: "int", Flags: typedesc.FIn},
			{Name: "b", Type: "int", Flags: typedesc.FIn},
			{Name: "quot", Type: "int", Flags: typedesc.FOut},
			{Name: "rem", Type: "int", Flags: typedesc.FOut},
		},
	}
	got := signature(m)
	want := "hresult(int,int,out int,out int)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// Parameter names never leak into the signature, so renamed
	// parameters still intern to the same layout.
	m.Params[0].Name = "x"
	if signature(m) != want {
		t.Fatal("signature must not depend on parameter names")
	}

	// Declared result types replace the implicit hresult.
	got = signature(typedesc.Method{Name: "AddRef", Result: "ulong"})
	if got != "ulong()" {
		t.Fatalf("got %q", got)
	}
}

func TestTable_CallBounds(t *testing.T) {
	called := false
	tbl := &Table{
		layout: internLayout([]string{"Do"}, []string{"hresult()"}),
		slots: []Slot{func(this uintptr, args ...any) hresult.HRESULT {
			called = true
			return hresult.S_OK
		}},
	}
	if hr := tbl.Call(0, 1); hr != hresult.S_OK || !called {
		t.Fatalf("call: %s, called=%v", hr, called)
	}
	if hr := tbl.Call(5, 1); hr != hresult.E_UNEXPECTED {
		t.Fatalf("out of range: %s", hr)
	}
	if hr := tbl.CallNamed("Do", 1); hr != hresult.S_OK {
		t.Fatalf("named call: %s", hr)
	}
	if hr := tbl.CallNamed("Nope", 1); hr != hresult.DISP_E_MEMBERNOTFOUND {
		t.Fatalf("named miss: %s", hr)
	}
}
