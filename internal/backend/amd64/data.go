package amd64

import (
	"fmt"
	"strings"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/types"
)

// dataEntry is one global in the data section.
type dataEntry struct {
	name      string
	directive string
	init      string
	times     int // >0: zero-filled array of that many elements
}

func (d dataEntry) String() string {
	if d.times > 0 {
		return fmt.Sprintf("%s times %d %s 0", d.name, d.times, d.directive)
	}
	return fmt.Sprintf("%s %s %s", d.name, d.directive, d.init)
}

// global records a module-level variable. Globals are sized by type:
// char and bool take a byte, int a dword.
func (e *Emitter) global(n *ir.VarDecl) error {
	v, ok := n.Var.(*ir.Named)
	if !ok || !v.Global {
		return diag.Errorf(diag.MisplacedStatement, n.Line, "%s outside of a function", ir.NodeString(e.c, n))
	}
	for _, d := range e.data {
		if d.name == v.Name {
			return diag.Errorf(diag.DuplicateGlobal, n.Line, "global %s is declared twice", v.Name)
		}
	}
	if v.Type.Is(types.KindStr) || v.Type.Is(types.KindArray) && v.Type.Elem.Is(types.KindStr) {
		return diag.Errorf(diag.UnsupportedFeature, n.Line, "global %s: strings can only live in locals", v.Name)
	}
	if v.Value.IsRef() {
		return diag.Errorf(diag.UnsupportedFeature, n.Line, "global %s must be initialized with a constant", v.Name)
	}
	if err := e.declareSymbol(v.Name, n.Line); err != nil {
		return err
	}

	d := dataEntry{name: v.Name, directive: v.Type.Directive(), init: v.Value.Lit}
	if d.init == "" {
		d.init = v.Type.DefaultValue()
	}
	if v.Type.Is(types.KindArray) && zeroFilled(d.init) {
		d.times = v.Type.Length
	}
	e.data = append(e.data, d)
	return nil
}

func zeroFilled(init string) bool {
	for _, part := range strings.Split(init, ",") {
		if strings.TrimSpace(part) != "0" {
			return false
		}
	}
	return true
}

func (e *Emitter) emitData() {
	e.buf.WriteString("section .data\n")
	for _, f := range formats {
		fmt.Fprintf(&e.buf, "\t%s db %s\n", f.name, f.spec)
	}
	for _, s := range e.c.Strings.Entries() {
		fmt.Fprintf(&e.buf, "\t%s db `%s`, 0\n", s.Symbol, escapeBackquoted(s.Content))
	}
	for _, d := range e.data {
		fmt.Fprintf(&e.buf, "\t%s\n", d)
	}
	e.buf.WriteByte('\n')
}

// escapeBackquoted renders s for a NASM backquoted string, where C-style
// escapes are interpreted.
func escapeBackquoted(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '`':
			sb.WriteString("\\`")
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
