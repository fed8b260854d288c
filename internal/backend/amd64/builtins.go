package amd64

import (
	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/types"
)

const (
	printRoutine = "printf"
	sysExit      = 60
)

// printf format strings in the data section.
var formats = []struct {
	name string
	spec string
}{
	{"strFormat", `"%s", 0`},
	{"intFormat", `"%d", 0`},
	{"charFormat", `"%c", 0`},
	{"strFormatNl", `"%s", 10, 0`},
	{"intFormatNl", `"%d", 10, 0`},
	{"charFormatNl", `"%c", 10, 0`},
}

func formatNames() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = f.name
	}
	return out
}

func externs() []string {
	return []string{printRoutine}
}

// formatFor picks the printf format for a value of type t.
func formatFor(t *types.Type, newline bool) (string, bool) {
	var name string
	switch {
	case t.Is(types.KindStr):
		name = "strFormat"
	case t.Is(types.KindChar):
		name = "charFormat"
	case t.Is(types.KindInt), t.Is(types.KindBool):
		name = "intFormat"
	default:
		return "", false
	}
	if newline {
		name += "Nl"
	}
	return name, true
}

func (e *Emitter) builtin(n *ir.Call) error {
	b, ok := ir.LookupBuiltin(n.Name)
	if !ok {
		return diag.Errorf(diag.UnknownBuiltin, n.Line, "unknown builtin %s%s", ir.BuiltinSigil, n.Name)
	}
	if len(n.Args) != b.Arity {
		return diag.Errorf(diag.ArityMismatch, n.Line, "%s%s expects %d arguments, got %d", ir.BuiltinSigil, b.Name, b.Arity, len(n.Args))
	}
	arg := n.Args[0]
	if t := arg.Base().Type; !b.Accepts(t) {
		return diag.Errorf(diag.InvalidOperandType, n.Line, "%s%s cannot take a %s argument", ir.BuiltinSigil, b.Name, t)
	}
	if b.Name == "exit" {
		return e.exit(arg)
	}
	return e.print(arg, b.Newline)
}

// print calls printf(format, value):
//
//	mov rdi, <format>
//	mov rsi, <value>
//	xor rax, rax    ; no vector registers for the variadic call
//	call printf
func (e *Emitter) print(arg ir.Variable, newline bool) error {
	format, ok := formatFor(arg.Base().Type, newline)
	if !ok {
		return diag.Errorf(diag.InvalidOperandType, 0, "cannot print a %s value", arg.Base().Type)
	}
	b := e.body()
	saved := e.saveLive(0)
	b.ins("mov %s, %s", RDI, format)
	if err := e.load(RSI, arg); err != nil {
		return err
	}
	b.ins("xor %s, %s", RAX, RAX)
	b.ins("call %s", printRoutine)
	e.restoreLive(saved)
	return nil
}

// exit terminates the process with the exit system call:
//
//	mov rax, 60
//	mov rdi, <code>
//	syscall
func (e *Emitter) exit(code ir.Variable) error {
	b := e.body()
	b.ins("mov %s, %d", RAX, sysExit)
	if err := e.load(RDI, code); err != nil {
		return err
	}
	b.ins("syscall")
	return nil
}
