package amd64

import (
	"ilsc/internal/diag"
	"ilsc/internal/ir"
)

func (e *Emitter) call(n *ir.Call) error {
	if n.Builtin {
		return e.builtin(n)
	}
	return e.userCall(n)
}

// userCall emits a call to a user function. Arguments are pushed right to
// left and popped by the caller. A call whose result was already taken
// through its FuncReturn is not emitted twice.
func (e *Emitter) userCall(n *ir.Call) error {
	if _, done := e.calls[n]; done {
		return nil
	}
	e.calls[n] = struct{}{}
	if n.Func == nil {
		return diag.Errorf(diag.UndeclaredFunction, n.Line, "function %q is not declared", n.Name)
	}
	if len(n.Args) != len(n.Func.Params) {
		return diag.Errorf(diag.ArityMismatch, n.Line, "%s expects %d arguments, got %d", n.Name, len(n.Func.Params), len(n.Args))
	}

	b := e.body()
	saved := e.saveLive(len(n.Args))
	for i := len(n.Args) - 1; i >= 0; i-- {
		op, err := e.resolve(n.Args[i], srcIndexReg)
		if err != nil {
			return err
		}
		if op.narrow() || op.wideImm() {
			e.moveInto(retReg, op)
			op = regOp(retReg)
		}
		b.ins("push %s", op)
		e.fn.frame.pushed++
	}
	b.ins("call %s", n.Name)
	e.dropArgs(len(n.Args))
	e.restoreLive(saved)
	return nil
}

// callSave is what saveLive pushed around one call.
type callSave struct {
	regs []Reg
	pad  bool
}

// saveLive pushes the volatile registers holding live temporaries and pads
// the stack so rsp is 16-byte aligned once args more words are pushed.
func (e *Emitter) saveLive(args int) callSave {
	b := e.body()
	fr := e.fn.frame
	s := callSave{regs: e.pool.Live()}
	for _, r := range s.regs {
		b.ins("push %s", r)
		fr.pushed++
	}
	if (fr.pushed+args)%2 != 0 {
		b.ins("sub rsp, %d", slotSize)
		fr.pushed++
		s.pad = true
	}
	return s
}

func (e *Emitter) dropArgs(args int) {
	if args == 0 {
		return
	}
	e.body().ins("add rsp, %d", slotSize*args)
	e.fn.frame.pushed -= args
}

func (e *Emitter) restoreLive(s callSave) {
	b := e.body()
	fr := e.fn.frame
	if s.pad {
		b.ins("add rsp, %d", slotSize)
		fr.pushed--
	}
	for i := len(s.regs) - 1; i >= 0; i-- {
		b.ins("pop %s", s.regs[i])
		fr.pushed--
	}
}
