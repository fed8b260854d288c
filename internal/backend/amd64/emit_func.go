package amd64

import (
	"fmt"

	"ilsc/internal/ir"
	"ilsc/internal/trace"
)

func (e *Emitter) funcEntry(n *ir.FuncEntry) error {
	if err := e.declareSymbol(n.Func.Name, n.Func.Line); err != nil {
		return err
	}
	trace.Point(e.tracer, trace.ScopeFunc, "emit func", n.Func.Name, e.span)
	e.pool.Reset()
	e.fn = &funcEmitter{f: n.Func, frame: newFrame(n.Func)}
	e.fn.body.raw(n.Func.Name + ":")
	return nil
}

// prologue saves the caller's frame pointer. Reserving the frame and
// saving callee-saved registers is left to a placeholder that epilogue
// fills in once every register the body uses is known.
func (e *Emitter) prologue(n *ir.Prologue) {
	fr := e.fn.frame
	fr.locals = n.LocalCount
	b := e.body()
	b.ins("push rbp")
	b.ins("mov rbp, rsp")
	fr.prologueAt = b.placeholder()
}

func (e *Emitter) epilogue() {
	fe := e.fn
	fr := fe.frame
	b := &fe.body
	saved := e.pool.Touched()
	size := fr.size(len(saved))

	var setup []string
	if size > 0 {
		setup = append(setup, fmt.Sprintf("\tsub rsp, %d", frameWords(size)))
	}
	for _, r := range saved {
		setup = append(setup, "\tpush "+r.String())
	}

	if fe.f.IsVoid() {
		b.ins("xor rax, rax")
	}
	if len(saved) > 0 {
		b.ins("lea rsp, [rbp-%d]", size+slotSize*len(saved))
		for i := len(saved) - 1; i >= 0; i-- {
			b.ins("pop %s", saved[i])
		}
	}
	b.ins("mov rsp, rbp")
	b.ins("pop rbp")
	b.patch(fr.prologueAt, setup...)
}

// funcEnd closes the function and flushes its text.
func (e *Emitter) funcEnd() {
	fe := e.fn
	fe.body.ins("ret")
	fe.body.writeTo(&e.buf)
	e.buf.WriteByte('\n')
	e.fn = nil
}

func (e *Emitter) ret(n *ir.Return) error {
	if n.Value == nil {
		return nil
	}
	return e.load(retReg, n.Value)
}
