package ir

import (
	"strconv"

	"ilsc/internal/ast"
	"ilsc/internal/consteval"
	"ilsc/internal/diag"
	"ilsc/internal/types"
)

// value lowers e and insists on a result.
func (l *lowerer) value(e ast.Expr) (Variable, error) {
	v, err := l.expr(e)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, diag.Errorf(diag.InvalidOperandType, e.Line(), "expression has no value")
	}
	return v, nil
}

func (l *lowerer) expr(e ast.Expr) (Variable, error) {
	switch e := e.(type) {
	case *ast.Ident:
		return l.resolve(e.Name, e.Line())
	case *ast.Literal:
		return l.c.NewLiteral(e.Type, e.Value), nil
	case *ast.Binary:
		return l.binary(e)
	case *ast.Index:
		arr, err := l.resolve(e.Name, e.Line())
		if err != nil {
			return nil, err
		}
		return l.element(arr, e.Index, e.Line())
	case *ast.ArrayLit:
		return nil, diag.Errorf(diag.UnsupportedFeature, e.Line(), "array literals are only allowed in module-level declarations")
	case *ast.Call:
		return l.call(e, false)
	case nil:
		return nil, diag.Errorf(diag.InvalidOperandType, 0, "missing expression")
	}
	return nil, diag.Errorf(diag.InvalidOperandType, e.Line(), "unsupported expression %T", e)
}

func (l *lowerer) resolve(name string, line int) (*Named, error) {
	ref, err := l.c.Scopes.Resolve(l.cur, name)
	if err != nil {
		return nil, diag.AtLine(err, line)
	}
	v, ok := l.c.Var(VarID(ref)).(*Named)
	if !ok {
		return nil, diag.Errorf(diag.UndeclaredVariable, line, "%q does not name a variable", name)
	}
	return v, nil
}

// element builds the access arr[index].
func (l *lowerer) element(arr *Named, index ast.Expr, line int) (*ArrayIndexed, error) {
	if !arr.Type.Is(types.KindArray) {
		return nil, diag.Errorf(diag.InvalidOperandType, line, "%q is not an array", arr.Name)
	}
	idx, err := l.value(index)
	if err != nil {
		return nil, err
	}
	if !idx.Base().Type.Arithmetic() {
		return nil, diag.Errorf(diag.InvalidOperandType, line, "array index must be int, got %s", idx.Base().Type)
	}
	if lit, ok := idx.(*Literal); ok {
		n, err := strconv.Atoi(lit.Value.Lit)
		if err != nil || n < 0 || n >= arr.Type.Length {
			return nil, diag.Errorf(diag.InvalidOperandType, line, "index %s out of range for %s", lit.Value.Lit, arr.Type)
		}
	}
	idx = l.materialize(idx, line)
	return l.c.NewArrayIndexed(arr, idx), nil
}

// binary lowers arithmetic. Constant subtrees are folded; everything else
// produces a TEMP_OP_RES temporary, and temporaries consumed as operands are
// destroyed right after the operation.
func (l *lowerer) binary(e *ast.Binary) (Variable, error) {
	if consteval.CanEval(e) {
		n, err := consteval.Eval(e)
		if err != nil {
			return nil, err
		}
		return l.c.NewLiteral(types.Int, strconv.FormatInt(n, 10)), nil
	}
	lhs, err := l.value(e.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := l.value(e.Right)
	if err != nil {
		return nil, err
	}
	for _, v := range []Variable{lhs, rhs} {
		if t := v.Base().Type; !t.Arithmetic() {
			return nil, diag.Errorf(diag.InvalidOperandType, e.Line(), "operator %s is not defined on %s", e.Op, t)
		}
	}
	lhs = l.materialize(lhs, e.Line())
	rhs = l.materialize(rhs, e.Line())

	res := l.newTemp(types.Int, Lit("0"), true, e.Line())
	l.emit(&Arith{Result: res, LHS: lhs, RHS: rhs, Op: e.Op, Line: e.Line()})
	l.destroy(lhs)
	l.destroy(rhs)
	return res, nil
}

// materialize copies a pending call result into a temporary so that a
// second call in the same expression cannot clobber it.
func (l *lowerer) materialize(v Variable, line int) Variable {
	fr, ok := v.(*FuncReturn)
	if !ok {
		return v
	}
	return l.newTemp(fr.Type, RefTo(fr.ID), false, line)
}

// call lowers a call expression or statement. It returns nil for calls
// without a value.
func (l *lowerer) call(e *ast.Call, stmt bool) (Variable, error) {
	if e.Builtin {
		return nil, l.builtinCall(e)
	}
	f, ok := l.c.Function(e.Name)
	if !ok {
		return nil, diag.Errorf(diag.UndeclaredFunction, e.Line(), "function %q is not declared", e.Name)
	}
	if len(e.Args) != len(f.Params) {
		return nil, diag.Errorf(diag.ArityMismatch, e.Line(), "%s expects %d arguments, got %d", f.Name, len(f.Params), len(e.Args))
	}
	args, err := l.callArgs(e)
	if err != nil {
		return nil, err
	}
	for i, a := range args {
		if err := assignable(f.Params[i].Type, a.Base().Type, e.Line()); err != nil {
			return nil, err
		}
	}
	f.CallCount++
	node := &Call{Name: f.Name, Func: f, Args: args, Line: e.Line()}

	if f.IsVoid() {
		for _, a := range args {
			a.Base().NeedsPreserved = true
		}
		l.emit(node)
		return nil, nil
	}
	ret := l.c.NewFuncReturn(f, node)
	if stmt {
		// result discarded: the call still has to happen
		l.emit(node)
	}
	return ret, nil
}

func (l *lowerer) builtinCall(e *ast.Call) error {
	b, ok := LookupBuiltin(e.Name)
	if !ok {
		return diag.Errorf(diag.UnknownBuiltin, e.Line(), "unknown builtin %s%s", BuiltinSigil, e.Name)
	}
	if len(e.Args) != b.Arity {
		return diag.Errorf(diag.ArityMismatch, e.Line(), "%s%s expects %d arguments, got %d", BuiltinSigil, b.Name, b.Arity, len(e.Args))
	}
	args, err := l.callArgs(e)
	if err != nil {
		return err
	}
	for _, a := range args {
		if t := a.Base().Type; !b.Accepts(t) {
			return diag.Errorf(diag.InvalidOperandType, e.Line(), "%s%s cannot take a %s argument", BuiltinSigil, b.Name, t)
		}
	}
	l.emit(&Call{Name: b.Name, Builtin: true, Args: args, Line: e.Line()})
	return nil
}

// callArgs lowers arguments left to right. Plain variable references are
// copied into temporaries so a call never works on the caller's variable.
func (l *lowerer) callArgs(e *ast.Call) ([]Variable, error) {
	args := make([]Variable, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := l.value(a)
		if err != nil {
			return nil, err
		}
		switch v.(type) {
		case *Named, *ArrayIndexed:
			if v.Base().Type.Is(types.KindArray) {
				return nil, diag.Errorf(diag.InvalidOperandType, e.Line(), "arrays cannot be passed to %s", e.Name)
			}
			v = l.newTemp(v.Base().Type, RefTo(v.Base().ID), false, e.Line())
		case *FuncReturn:
			v = l.materialize(v, e.Line())
		}
		args = append(args, v)
	}
	return args, nil
}
