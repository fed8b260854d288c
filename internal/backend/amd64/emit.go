// Package amd64 turns the pruned IR into NASM x86-64 text for Linux. Code
// is linked against libc (printf) as a non-PIE executable:
//
//	nasm -felf64 out.asm && gcc -no-pie out.o
package amd64

import (
	"context"
	"fmt"
	"strings"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/trace"
)

type Emitter struct {
	ctx    context.Context
	c      *ir.Context
	tracer trace.Tracer
	span   uint64

	buf     strings.Builder
	data    []dataEntry
	symbols map[string]struct{}

	pool  *Pool
	fn    *funcEmitter
	calls map[*ir.Call]struct{} // calls already emitted
}

type funcEmitter struct {
	f     *ir.Function
	frame *frame
	body  text
}

// Emit renders nodes as one assembly file.
func Emit(ctx context.Context, c *ir.Context, nodes []ir.Node) (string, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "emit", trace.CurrentSpan(ctx))
	defer span.End(c.File)

	e := &Emitter{
		ctx:     ctx,
		c:       c,
		tracer:  tracer,
		span:    span.ID(),
		symbols: make(map[string]struct{}),
		pool:    NewPool(),
		calls:   make(map[*ir.Call]struct{}),
	}
	if err := e.emitProgram(nodes); err != nil {
		return "", diag.InFile(err, c.File)
	}
	return e.buf.String(), nil
}

func (e *Emitter) emitProgram(nodes []ir.Node) error {
	for _, name := range formatNames() {
		e.symbols[name] = struct{}{}
	}
	for _, s := range e.c.Strings.Entries() {
		e.symbols[s.Symbol] = struct{}{}
	}

	fmt.Fprintf(&e.buf, "global %s\n\n", ir.EntryName)
	e.buf.WriteString("section .text\n")
	for _, n := range nodes {
		if err := e.ctx.Err(); err != nil {
			return err
		}
		if e.tracer.Enabled() && e.tracer.Level().ShouldEmit(trace.ScopeNode) {
			trace.Point(e.tracer, trace.ScopeNode, "emit node", ir.NodeString(e.c, n), e.span)
		}
		if err := e.emitNode(n); err != nil {
			return err
		}
	}
	if e.fn != nil {
		return diag.Errorf(diag.UnresolvedOperand, 0, "function %s has no epilogue", e.fn.f.Name)
	}
	e.emitData()
	for _, ext := range externs() {
		fmt.Fprintf(&e.buf, "extern %s\n", ext)
	}
	return nil
}

func (e *Emitter) emitNode(n ir.Node) error {
	if e.fn == nil {
		switch n := n.(type) {
		case *ir.FuncEntry:
			return e.funcEntry(n)
		case *ir.VarDecl:
			return e.global(n)
		}
		return diag.Errorf(diag.MisplacedStatement, 0, "%s outside of a function", ir.NodeString(e.c, n))
	}
	switch n := n.(type) {
	case *ir.Label:
		e.fn.body.label(n.Name)
	case *ir.FuncEntry:
		return diag.Errorf(diag.MisplacedStatement, n.Func.Line, "function %s starts inside %s", n.Func.Name, e.fn.f.Name)
	case *ir.Prologue:
		e.prologue(n)
	case *ir.Epilogue:
		e.epilogue()
	case *ir.ScopeStart:
		// frame set up by the prologue
	case *ir.ScopeEnd:
		if n.Func != nil {
			e.funcEnd()
		}
	case *ir.VarDecl:
		return diag.AtLine(e.varDecl(n), n.Line)
	case *ir.Assign:
		return diag.AtLine(e.assign(n), n.Line)
	case *ir.Arith:
		return diag.AtLine(e.arith(n), n.Line)
	case *ir.Compare:
		return diag.AtLine(e.compare(n), n.Line)
	case *ir.Jump:
		e.jump(n)
	case *ir.Call:
		return diag.AtLine(e.call(n), n.Line)
	case *ir.Return:
		return diag.AtLine(e.ret(n), n.Line)
	case *ir.DestroyTemp:
		e.pool.Release(n.ID)
	default:
		return diag.Errorf(diag.UnresolvedOperand, 0, "unexpected node %T", n)
	}
	return nil
}

func (e *Emitter) body() *text {
	return &e.fn.body
}

func (e *Emitter) declareSymbol(name string, line int) error {
	if IsRegName(name) {
		return diag.Errorf(diag.UnsupportedFeature, line, "%q is a register name and cannot be used as a symbol", name)
	}
	if _, dup := e.symbols[name]; dup {
		return diag.Errorf(diag.DuplicateLabel, line, "symbol %q is already defined", name)
	}
	e.symbols[name] = struct{}{}
	return nil
}
