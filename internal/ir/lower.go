package ir

import (
	"context"
	"fmt"
	"slices"

	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/scope"
	"ilsc/internal/trace"
	"ilsc/internal/types"
)

// Lower walks prog and appends its IR to c.Nodes.
//
// Module-level declarations are hoisted: globals are lowered first, then
// every function signature is registered, then function bodies are lowered
// in source order. Executable statements at module level are rejected.
func Lower(ctx context.Context, c *Context, prog *ast.Program) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "lower", trace.CurrentSpan(ctx))
	defer span.End(c.File)

	l := &lowerer{
		ctx:    ctx,
		c:      c,
		tracer: tracer,
		span:   span.ID(),
		cur:    c.Scopes.Global(),
		frames: make(map[scope.ID]*frame),
	}
	l.frames[l.cur.ID] = &frame{scope: l.cur}
	return diag.InFile(l.program(prog), c.File)
}

type lowerer struct {
	ctx    context.Context
	c      *Context
	tracer trace.Tracer
	span   uint64

	cur    *scope.Scope
	fn     *Function
	locals int // named locals of fn, all nested scopes included

	frames map[scope.ID]*frame
}

// frame is the lowering-side bookkeeping attached to one scope.
type frame struct {
	scope *scope.Scope
	start string
	end   string
	exit  string // loops: where break goes

	temps []*Temp  // not yet destroyed, creation order
	named []*Named // locals needing a DestroyTemp at scope exit
}

func (l *lowerer) frame() *frame {
	return l.frames[l.cur.ID]
}

func (l *lowerer) program(prog *ast.Program) error {
	for _, st := range prog.Stmts {
		if d, ok := st.(*ast.VarDecl); ok {
			if err := l.varDecl(d); err != nil {
				return err
			}
		}
	}
	for _, st := range prog.Stmts {
		if fd, ok := st.(*ast.FuncDecl); ok {
			if err := l.declareFunc(fd); err != nil {
				return err
			}
		}
	}
	if _, ok := l.c.Function(EntryName); !ok {
		return diag.Errorf(diag.MissingEntry, 0, "no %q function declared", EntryName)
	}
	for _, st := range prog.Stmts {
		switch st := st.(type) {
		case *ast.VarDecl:
			// hoisted above
		case *ast.FuncDecl:
			if err := l.ctx.Err(); err != nil {
				return err
			}
			if err := l.funcBody(st); err != nil {
				return fmt.Errorf("function %s: %w", st.Name, err)
			}
		default:
			return diag.Errorf(diag.MisplacedStatement, st.Line(), "only declarations are allowed at module level")
		}
	}
	return nil
}

// emit appends n to the IR and to the current function body.
func (l *lowerer) emit(n Node) {
	l.c.Nodes = append(l.c.Nodes, n)
	if l.fn != nil {
		l.fn.Nodes = append(l.fn.Nodes, n)
	}
	for _, v := range Operands(n) {
		if v != nil {
			v.Base().LastUse = n
		}
	}
}

func (l *lowerer) label(name string) error {
	if err := l.c.declareLabel(name); err != nil {
		return err
	}
	l.emit(&Label{Name: name})
	return nil
}

func (l *lowerer) declareFunc(fd *ast.FuncDecl) error {
	ret := fd.Result
	if ret == nil {
		ret = types.Void
	}
	f := &Function{Name: fd.Name, Return: ret, Line: fd.Line()}
	for i, p := range fd.Params {
		if p.Type.Is(types.KindArray) || p.Type.Is(types.KindVoid) {
			return diag.Errorf(diag.UnsupportedFeature, p.Line(), "parameter %q of type %s", p.Name, p.Type)
		}
		arg := l.c.NewNamed(p.Name, p.Type, false, true, 0)
		arg.Index = i
		f.Params = append(f.Params, arg)
	}
	if f.IsEntry() && len(f.Params) > 0 {
		return diag.Errorf(diag.ArityMismatch, fd.Line(), "%s must not take parameters", EntryName)
	}
	return l.c.addFunction(f)
}

func (l *lowerer) funcBody(fd *ast.FuncDecl) error {
	f, _ := l.c.Function(fd.Name)
	l.fn, l.locals = f, 0
	defer func() { l.fn = nil }()

	trace.Point(l.tracer, trace.ScopeFunc, "lower func", f.Name, l.span)
	l.emit(&FuncEntry{Func: f})
	return l.scoped(scope.KindFunction, "", func() error {
		return l.stmts(fd.Body.Stmts)
	})
}

// scoped lowers body inside a new child scope of kind, surrounding it with
// the scope protocol: labels, ScopeStart, DestroyTemp on exit and, for
// functions, prologue/epilogue.
func (l *lowerer) scoped(kind scope.Kind, exit string, body func() error) error {
	parent := l.cur
	s := l.c.Scopes.NewChild(parent, kind)
	fr := &frame{scope: s, exit: exit}
	fr.start, fr.end = scopeLabels(s, l.fn)
	l.frames[s.ID] = fr
	l.cur = s
	defer func() { l.cur = parent }()

	var prologue *Prologue
	var fn *Function
	if kind == scope.KindFunction {
		fn = l.fn
		fn.Scope = s
		prologue = &Prologue{Func: fn}
		l.emit(prologue)
	}
	if err := l.label(fr.start); err != nil {
		return err
	}
	l.emit(&ScopeStart{Scope: s, Func: fn})
	if fn != nil {
		for _, p := range fn.Params {
			p.Scope = s.ID
			if _, _, err := l.c.Scopes.Declare(s, p.Name, scope.Ref(p.ID)); err != nil {
				return diag.AtLine(err, fn.Line)
			}
		}
	}

	if err := body(); err != nil {
		return err
	}

	l.release(fr)
	for _, v := range fr.named {
		l.emit(&DestroyTemp{ID: v.ID})
	}
	if err := l.label(fr.end); err != nil {
		return err
	}
	if fn != nil {
		prologue.LocalCount = l.locals
		l.emit(&Epilogue{Func: fn})
		l.emit(&ScopeEnd{Scope: s, Func: fn})
	}
	return nil
}

func scopeLabels(s *scope.Scope, fn *Function) (start, end string) {
	if s.Kind == scope.KindFunction && fn != nil && fn.IsEntry() {
		return "FUNC_MAIN_START", "FUNC_MAIN_END"
	}
	return fmt.Sprintf("%s_%d_START", s.Kind.Label(), s.ID), fmt.Sprintf("%s_%d_END", s.Kind.Label(), s.ID)
}

// stmts lowers a statement list. Temporaries it leaves pending stay
// alive until the enclosing scope exits.
func (l *lowerer) stmts(list []ast.Stmt) error {
	for _, st := range list {
		if err := l.stmt(st); err != nil {
			return diag.AtLine(err, st.Line())
		}
	}
	return nil
}

// newTemp creates a temporary in the current scope and declares it.
func (l *lowerer) newTemp(typ *types.Type, val Value, result bool, line int) *Temp {
	t := l.c.NewTemp(typ, val, result, l.cur.ID)
	fr := l.frame()
	fr.temps = append(fr.temps, t)
	l.emit(&VarDecl{Var: t, Line: line})
	return t
}

// destroy releases v immediately if it is a pending temporary. Only
// arithmetic and comparison operands go through here.
func (l *lowerer) destroy(v Variable) {
	t, ok := v.(*Temp)
	if !ok {
		return
	}
	fr := l.frames[t.Scope]
	if fr == nil {
		return
	}
	i := slices.Index(fr.temps, t)
	if i < 0 {
		return
	}
	fr.temps = slices.Delete(fr.temps, i, i+1)
	l.emit(&DestroyTemp{ID: t.ID})
}

// release destroys every pending temporary of fr in creation order.
func (l *lowerer) release(fr *frame) {
	for _, t := range fr.temps {
		l.emit(&DestroyTemp{ID: t.ID})
	}
	fr.temps = fr.temps[:0]
}
