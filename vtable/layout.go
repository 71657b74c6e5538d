package vtable

import (
	"strings"
	"sync"

	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/typedesc"
)

// Layout describes the structural shape of a table: the ordered slot
// names and signatures across a full inheritance chain. Layouts are
// interned, so two interfaces whose chains produce the same sequence
// share one instance.
type Layout struct {
	key   string
	names []string
	sigs  []string
	index map[string]int
}

// Key returns the interning key: the exact ordered slot-signature
// sequence.
func (l *Layout) Key() string { return l.key }

// NumSlots returns the slot count.
func (l *Layout) NumSlots() int { return len(l.names) }

// SlotName returns the method name occupying slot i.
func (l *Layout) SlotName(i int) string { return l.names[i] }

// SlotSignature returns the signature string of slot i.
func (l *Layout) SlotSignature(i int) string { return l.sigs[i] }

// SlotIndex returns the position of the first slot with the given
// method name.
func (l *Layout) SlotIndex(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// The process-wide layout cache. Signatures are finite and small, so
// entries are never evicted.
var (
	layoutMu sync.Mutex
	layouts  = map[string]*Layout{}
)

func internLayout(names, sigs []string) *Layout {
	var b strings.Builder
	for i := range names {
		b.WriteString(names[i])
		b.WriteByte(' ')
		b.WriteString(sigs[i])
		b.WriteByte(';')
	}
	key := b.String()

	layoutMu.Lock()
	defer layoutMu.Unlock()
	if l, ok := layouts[key]; ok {
		return l
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := index[n]; !dup {
			index[n] = i
		}
	}
	l := &Layout{key: key, names: names, sigs: sigs, index: index}
	layouts[key] = l
	return l
}

// signature renders one method's slot signature: logical result type
// plus each parameter's direction and type, never the parameter names.
func signature(m typedesc.Method) string {
	var b strings.Builder
	res := m.Result
	if res == "" {
		res = "hresult"
	}
	b.WriteString(res)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		if p.Flags.Out() {
			b.WriteString("out ")
		}
		b.WriteString(p.Type)
	}
	b.WriteByte(')')
	return b.String()
}

// Table is one built interface table: an interned layout plus the
// adapted slot per method. Native callers invoke slots directly.
type Table struct {
	layout *Layout
	slots  []Slot
}

// Layout returns the table's interned layout.
func (t *Table) Layout() *Layout { return t.layout }

// NumSlots returns the slot count.
func (t *Table) NumSlots() int { return len(t.slots) }

// Call invokes slot i exactly as a native caller would.
func (t *Table) Call(i int, this uintptr, args ...any) hresult.HRESULT {
	if i < 0 || i >= len(t.slots) {
		return hresult.E_UNEXPECTED
	}
	return t.slots[i](this, args...)
}

// CallNamed invokes the first slot whose method name matches.
func (t *Table) CallNamed(name string, this uintptr, args ...any) hresult.HRESULT {
	i, ok := t.layout.SlotIndex(name)
	if !ok {
		return hresult.DISP_E_MEMBERNOTFOUND
	}
	return t.slots[i](this, args...)
}
