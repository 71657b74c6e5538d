package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/oleworks/com-runtime/comerr"
	"github.com/oleworks/com-runtime/hresult"
	"github.com/oleworks/com-runtime/object"
	"github.com/oleworks/com-runtime/server"
	"github.com/oleworks/com-runtime/typedesc"
	"github.com/oleworks/com-runtime/vtable"
)

func main() {
	var (
		list        = flag.Bool("list", false, "List built interface tables and exit")
		call        = flag.String("call", "", "Slot to call (Interface.Method)")
		argStr      = flag.String("args", "", "Call arguments (comma-separated)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		vtable.SetLogger(dev)
		object.SetLogger(dev)
		server.SetLogger(dev)
	}

	if !*list && *call == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: comhost -list")
		fmt.Fprintln(os.Stderr, "       comhost -call Interface.Method [-args a,b,...]")
		fmt.Fprintln(os.Stderr, "       comhost -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*call, *argStr, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// The demo component: a calculator exposing both an early-bound custom
// interface and late-bound dispatch members.
var (
	clsidCalculator = uuid.MustParse("7A4C31D5-9E2B-4F6E-8C1D-3B5A90E47F21")
	iidCalculator   = uuid.MustParse("E3F8A2B7-1C4D-4E9A-B6F0-52D7C8391A64")

	calculatorInterface = &typedesc.Interface{
		Name:            "ICalculator",
		IID:             iidCalculator,
		Base:            typedesc.IDispatch,
		CaseInsensitive: true,
		Methods: []typedesc.Method{
			{
				Name: "Add",
				Params: []typedesc.Param{
					{Name: "a", Type: "int", Flags: typedesc.FIn},
					{Name: "b", Type: "int", Flags: typedesc.FIn},
					{Name: "sum", Type: "int", Flags: typedesc.FOut},
				},
			},
			{
				Name: "Sub",
				Params: []typedesc.Param{
					{Name: "a", Type: "int", Flags: typedesc.FIn},
					{Name: "b", Type: "int", Flags: typedesc.FIn},
					{Name: "diff", Type: "int", Flags: typedesc.FOut},
				},
			},
			{
				Name: "DivMod",
				Params: []typedesc.Param{
					{Name: "a", Type: "int", Flags: typedesc.FIn},
					{Name: "b", Type: "int", Flags: typedesc.FIn},
					{Name: "quot", Type: "int", Flags: typedesc.FOut},
					{Name: "rem", Type: "int", Flags: typedesc.FOut},
				},
			},
			{
				Name: "Get_Value",
				Params: []typedesc.Param{
					{Name: "value", Type: "int", Flags: typedesc.FOut},
				},
			},
			{
				Name: "Set_Value",
				Params: []typedesc.Param{
					{Name: "value", Type: "int", Flags: typedesc.FIn},
				},
			},
		},
		DispMembers: []typedesc.DispMember{
			{Kind: typedesc.DispMethod, DispID: 1, Name: "Add", Result: "int",
				Params: []typedesc.Param{
					{Name: "a", Type: "int", Flags: typedesc.FIn},
					{Name: "b", Type: "int", Flags: typedesc.FIn},
				}},
			{Kind: typedesc.DispProperty, DispID: 2, Name: "Value", Result: "int"},
		},
	}
)

// Calculator is the managed implementation behind the demo object.
type Calculator struct {
	Value int
}

func (c *Calculator) Add(a, b int) int { return a + b }

func (c *Calculator) Sub(a, b int) int { return a - b }

func (c *Calculator) DivMod(a, b int) (int, int, error) {
	if b == 0 {
		return 0, 0, comerr.New(hresult.E_INVALIDARG, "division by zero")
	}
	return a / b, a % b, nil
}

func newDemo() *object.Instance {
	return object.New(&Calculator{},
		[]*typedesc.Interface{calculatorInterface},
		object.WithClassID(clsidCalculator))
}

var (
	headStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	slotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	sigStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

func run(call, argStr string, listOnly bool) error {
	inst := newDemo()
	ref, hr := inst.Query(iidCalculator)
	if hr.Failed() {
		return fmt.Errorf("query %s: %s", iidCalculator, hr)
	}
	defer ref.Release()

	if listOnly {
		listTables(inst)
		return nil
	}

	itfName, method, ok := strings.Cut(call, ".")
	if !ok {
		method = itfName
		itfName = calculatorInterface.Name
	}
	if !strings.EqualFold(itfName, calculatorInterface.Name) {
		return fmt.Errorf("unknown interface %q", itfName)
	}

	m, ok := findMethod(calculatorInterface, method)
	if !ok {
		return fmt.Errorf("unknown method %q", method)
	}

	args, outs := packArgs(m, argStr)
	fmt.Printf("Calling %s.%s(%s)...\n", calculatorInterface.Name, m.Name, argStr)
	hr = ref.CallNamed(m.Name, args...)
	printResult(m, hr, outs)
	return nil
}

func listTables(inst *object.Instance) {
	fmt.Println(headStyle.Render("comhost"), "demo object")
	fmt.Println()
	for _, itf := range []*typedesc.Interface{
		calculatorInterface,
		typedesc.ISupportErrorInfo,
		typedesc.IProvideClassInfo,
		typedesc.IPersist,
	} {
		t, ok := inst.Table(itf.IID)
		if !ok {
			continue
		}
		layout := t.Layout()
		fmt.Printf("%s  {%s}  %d slots\n", headStyle.Render(itf.Name), itf.IID, layout.NumSlots())
		for i := 0; i < layout.NumSlots(); i++ {
			fmt.Printf("  [%2d] %s %s\n", i,
				slotStyle.Render(layout.SlotName(i)),
				sigStyle.Render(layout.SlotSignature(i)))
		}
		fmt.Println()
	}
}

// findMethod locates a method descriptor anywhere on the chain,
// honoring the interface's case rule.
func findMethod(itf *typedesc.Interface, name string) (typedesc.Method, bool) {
	for _, level := range itf.Chain() {
		for _, m := range level.Methods {
			if m.Name == name || (itf.CaseInsensitive && strings.EqualFold(m.Name, name)) {
				return m, true
			}
		}
	}
	return typedesc.Method{}, false
}

// packArgs turns the comma-separated argument string into a slot
// argument list: parsed values for the inputs, fresh cells for the
// outputs.
func packArgs(m typedesc.Method, argStr string) ([]any, []*vtable.Out) {
	var parsed []any
	if argStr != "" {
		for _, raw := range strings.Split(argStr, ",") {
			parsed = append(parsed, parseArg(strings.TrimSpace(raw)))
		}
	}

	var (
		args []any
		outs []*vtable.Out
	)
	for _, p := range m.Params {
		if p.Flags.Out() {
			cell := &vtable.Out{}
			args = append(args, cell)
			outs = append(outs, cell)
			continue
		}
		if len(parsed) > 0 {
			args = append(args, parsed[0])
			parsed = parsed[1:]
		} else {
			args = append(args, nil)
		}
	}
	return args, outs
}

func parseArg(s string) any {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(v)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}

func printResult(m typedesc.Method, hr hresult.HRESULT, outs []*vtable.Out) {
	fmt.Printf("HRESULT: %s\n", hr)
	if hr.Failed() {
		if rec := comerr.LastRecord(); rec != nil {
			fmt.Printf("Error: %s\n", rec.Error())
		}
		return
	}
	i := 0
	for _, p := range m.Params {
		if !p.Flags.Out() {
			continue
		}
		if i < len(outs) && outs[i].IsSet() {
			fmt.Printf("  %s = %v\n", p.Name, outs[i].Get())
		}
		i++
	}
}
