package ir

import (
	"fmt"
	"strconv"
	"strings"

	"ilsc/internal/ast"
	"ilsc/internal/consteval"
	"ilsc/internal/diag"
	"ilsc/internal/scope"
	"ilsc/internal/types"
)

func (l *lowerer) stmt(st ast.Stmt) error {
	switch st := st.(type) {
	case *ast.VarDecl:
		return l.varDecl(st)
	case *ast.Assign:
		return l.assign(st)
	case *ast.CallStmt:
		_, err := l.call(st.Call, true)
		return err
	case *ast.Return:
		return l.ret(st)
	case *ast.If:
		return l.ifStmt(st)
	case *ast.While:
		return l.while(st)
	case *ast.Break:
		return l.brk()
	case *ast.Block:
		return l.scoped(scope.KindDefault, "", func() error {
			return l.stmts(st.Stmts)
		})
	case *ast.FuncDecl:
		return diag.Errorf(diag.MisplacedStatement, st.Line(), "function %q must be declared at module level", st.Name)
	}
	return diag.Errorf(diag.MisplacedStatement, st.Line(), "unsupported statement %T", st)
}

func (l *lowerer) varDecl(d *ast.VarDecl) error {
	global := l.cur.IsGlobal()
	if global && l.c.Scopes.IsGlobalName(d.Name) {
		return nil
	}
	if d.Type == nil || d.Type.Is(types.KindVoid) {
		return diag.Errorf(diag.UnresolvedType, d.Line(), "variable %q has no usable type", d.Name)
	}
	if !global && d.Type.Is(types.KindArray) {
		return diag.Errorf(diag.UnsupportedFeature, d.Line(), "local array %q: arrays must be declared at module level", d.Name)
	}

	var val Value
	var err error
	switch {
	case global:
		val, err = l.constant(d)
	case d.Value == nil:
		val = l.defaultValue(d.Type)
	default:
		val, err = l.initializer(d)
	}
	if err != nil {
		return err
	}

	v := l.c.NewNamed(d.Name, d.Type, global, false, l.cur.ID)
	v.Value = val
	if _, _, err := l.c.Scopes.Declare(l.cur, d.Name, scope.Ref(v.ID)); err != nil {
		return diag.AtLine(err, d.Line())
	}
	if !global {
		fr := l.frame()
		fr.named = append(fr.named, v)
		l.locals++
	}
	l.emit(&VarDecl{Var: v, Line: d.Line()})
	return nil
}

func (l *lowerer) defaultValue(t *types.Type) Value {
	if t.Is(types.KindStr) {
		return Lit(l.c.Strings.Intern(""))
	}
	return Lit(t.DefaultValue())
}

func (l *lowerer) initializer(d *ast.VarDecl) (Value, error) {
	v, err := l.value(d.Value)
	if err != nil {
		return Value{}, err
	}
	if err := assignable(d.Type, v.Base().Type, d.Line()); err != nil {
		return Value{}, err
	}
	return bind(v), nil
}

// constant evaluates the initializer of a global. Globals live in the data
// section, so only constants can initialize them.
func (l *lowerer) constant(d *ast.VarDecl) (Value, error) {
	if d.Value == nil {
		return l.defaultValue(d.Type), nil
	}
	if d.Type.Is(types.KindArray) {
		lit, ok := d.Value.(*ast.ArrayLit)
		if !ok {
			return Value{}, diag.Errorf(diag.UnsupportedFeature, d.Line(), "array %q must be initialized with an array literal", d.Name)
		}
		if len(lit.Elems) != d.Type.Length {
			return Value{}, diag.Errorf(diag.InvalidOperandType, d.Line(), "array %q has length %d but %d values were given", d.Name, d.Type.Length, len(lit.Elems))
		}
		parts := make([]string, len(lit.Elems))
		for i, e := range lit.Elems {
			s, t, err := l.scalarConstant(e)
			if err != nil {
				return Value{}, err
			}
			if err := assignable(d.Type.Elem, t, e.Line()); err != nil {
				return Value{}, err
			}
			parts[i] = s
		}
		arr := l.c.NewArray(d.Type.Elem, d.Type.Length, strings.Join(parts, ", "))
		return bind(arr), nil
	}
	if lit, ok := d.Value.(*ast.Literal); ok && lit.Type.Is(types.KindStr) {
		return Lit(l.c.Strings.Intern(lit.Value)), nil
	}
	s, t, err := l.scalarConstant(d.Value)
	if err != nil {
		return Value{}, err
	}
	if err := assignable(d.Type, t, d.Line()); err != nil {
		return Value{}, err
	}
	return Lit(s), nil
}

func (l *lowerer) scalarConstant(e ast.Expr) (string, *types.Type, error) {
	if lit, ok := e.(*ast.Literal); ok && !lit.Type.Is(types.KindStr) {
		return lit.Value, lit.Type, nil
	}
	if consteval.CanEval(e) {
		n, err := consteval.Eval(e)
		if err != nil {
			return "", nil, err
		}
		return strconv.FormatInt(n, 10), types.Int, nil
	}
	return "", nil, diag.Errorf(diag.UnsupportedFeature, e.Line(), "module-level initializers must be constant")
}

func (l *lowerer) assign(a *ast.Assign) error {
	target, err := l.resolve(a.Name, a.Line())
	if err != nil {
		return err
	}
	want := target.Type
	var indexed *ArrayIndexed
	if a.Index != nil {
		indexed, err = l.element(target, a.Index, a.Line())
		if err != nil {
			return err
		}
		want = indexed.Type
	} else if target.Type.Is(types.KindArray) {
		return diag.Errorf(diag.UnsupportedFeature, a.Line(), "whole-array assignment to %q", a.Name)
	}

	v, err := l.value(a.Value)
	if err != nil {
		return err
	}
	if err := assignable(want, v.Base().Type, a.Line()); err != nil {
		return err
	}
	l.emit(&Assign{
		Target:    target,
		Value:     bind(v),
		ValueType: valueType(v),
		Indexed:   indexed,
		Line:      a.Line(),
	})
	return nil
}

// bind turns the result of an expression into the value stored by a
// declaration or assignment: literals are copied, everything else is
// referenced by id.
func bind(v Variable) Value {
	switch v := v.(type) {
	case *Literal:
		return Lit(v.Value.Lit)
	case *Array:
		return Lit(v.Init)
	}
	return RefTo(v.Base().ID)
}

func valueType(v Variable) *types.Type {
	switch v := v.(type) {
	case *Literal:
		return v.Type
	case *Array:
		return v.Type
	}
	return types.Ident
}

// assignable checks that a value of type got can be stored where want is
// expected. int and char convert freely.
func assignable(want, got *types.Type, line int) error {
	if got == nil || got.Is(types.KindVoid) {
		return diag.Errorf(diag.InvalidOperandType, line, "void value used where %s is expected", want)
	}
	if want.Equal(got) {
		return nil
	}
	if want.Arithmetic() && got.Arithmetic() {
		return nil
	}
	return diag.Errorf(diag.InvalidOperandType, line, "cannot use %s value as %s", got, want)
}

func (l *lowerer) ret(r *ast.Return) error {
	f := l.fn
	fnScope := l.cur.Function()
	if f == nil || fnScope == nil {
		return diag.Errorf(diag.MisplacedStatement, r.Line(), "return outside of a function")
	}
	var v Variable
	switch {
	case r.Value == nil && !f.IsVoid():
		return diag.Errorf(diag.ReturnTypeMismatch, r.Line(), "%s must return a %s value", f.Name, f.Return)
	case r.Value != nil && f.IsVoid():
		return diag.Errorf(diag.ReturnTypeMismatch, r.Line(), "%s does not return a value", f.Name)
	case r.Value != nil:
		var err error
		if v, err = l.value(r.Value); err != nil {
			return err
		}
		if err := assignable(f.Return, v.Base().Type, r.Line()); err != nil {
			return err
		}
	}
	l.emit(&Return{Value: v, Func: f, Line: r.Line()})
	l.emit(&Jump{Label: l.frames[fnScope.ID].end})
	return nil
}

// ifStmt lowers an if chain:
//
//	IFn_START: <cond → IFn_BODY | IFn_ALT0 or IFn_END>
//	IFn_BODY:  <if scope> jmp IFn_END
//	IFn_ALT0:  <elif cond → IFn_ALT0_BODY | IFn_ALT1 or IFn_END> ...
//	IFn_ALTk:  <else scope>
//	IFn_END:
func (l *lowerer) ifStmt(st *ast.If) error {
	n := l.c.nextLabelSeq()
	start := fmt.Sprintf("IF%d_START", n)
	body := fmt.Sprintf("IF%d_BODY", n)
	end := fmt.Sprintf("IF%d_END", n)
	onFalse := end
	if st.Next != nil {
		onFalse = altLabel(n, 0)
	}

	if err := l.label(start); err != nil {
		return err
	}
	if err := l.cond(st.Cond, body, onFalse, false); err != nil {
		return err
	}
	if err := l.label(body); err != nil {
		return err
	}
	if err := l.scoped(scope.KindIf, "", func() error { return l.stmts(st.Body.Stmts) }); err != nil {
		return err
	}
	if st.Next != nil {
		l.emit(&Jump{Label: end})
		if err := l.branch(st.Next, n, 0, end); err != nil {
			return err
		}
	}
	return l.label(end)
}

func altLabel(n, k int) string {
	return fmt.Sprintf("IF%d_ALT%d", n, k)
}

func (l *lowerer) branch(b ast.Branch, n, k int, end string) error {
	if err := l.label(altLabel(n, k)); err != nil {
		return err
	}
	switch b := b.(type) {
	case *ast.Else:
		return l.scoped(scope.KindElse, "", func() error { return l.stmts(b.Body.Stmts) })
	case *ast.Elif:
		body := altLabel(n, k) + "_BODY"
		onFalse := end
		if b.Next != nil {
			onFalse = altLabel(n, k+1)
		}
		if err := l.cond(b.Cond, body, onFalse, false); err != nil {
			return err
		}
		if err := l.label(body); err != nil {
			return err
		}
		if err := l.scoped(scope.KindElif, "", func() error { return l.stmts(b.Body.Stmts) }); err != nil {
			return err
		}
		if b.Next == nil {
			return nil
		}
		l.emit(&Jump{Label: end})
		return l.branch(b.Next, n, k+1, end)
	}
	return diag.Errorf(diag.MisplacedStatement, b.Line(), "unexpected branch %T", b)
}

// while lowers a jump-to-test loop:
//
//	jmp WHILEn_COND
//	WHILEn_START: <loop scope>
//	WHILEn_COND:  <cond → WHILEn_START, falls through otherwise>
//	WHILEn_END:
func (l *lowerer) while(st *ast.While) error {
	n := l.c.nextLabelSeq()
	start := fmt.Sprintf("WHILE%d_START", n)
	test := fmt.Sprintf("WHILE%d_COND", n)
	end := fmt.Sprintf("WHILE%d_END", n)

	l.emit(&Jump{Label: test})
	if err := l.label(start); err != nil {
		return err
	}
	if err := l.scoped(scope.KindLoop, end, func() error { return l.stmts(st.Body.Stmts) }); err != nil {
		return err
	}
	if err := l.label(test); err != nil {
		return err
	}
	if err := l.cond(st.Cond, start, end, true); err != nil {
		return err
	}
	return l.label(end)
}

// brk jumps out of the nearest enclosing loop of the current function. With
// no loop around it, it leaves the innermost scope instead.
func (l *lowerer) brk() error {
	if loop := l.cur.Enclosing(func(s *scope.Scope) bool { return s.Kind == scope.KindLoop }); loop != nil {
		l.emit(&Jump{Label: l.frames[loop.ID].exit})
		return nil
	}
	l.emit(&Jump{Label: l.frame().end})
	return nil
}
