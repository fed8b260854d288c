package ir_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/scope"
	"ilsc/internal/trace"
	"ilsc/internal/types"
)

func TestConstantArithmeticFolds(t *testing.T) {
	c := mustLower(t, "fn main() { x: int = 1 + 2 * (3 + 4); }")
	if n := countNodes[*ir.Arith](c.Nodes); n != 0 {
		t.Errorf("got %d arithmetic nodes, want 0", n)
	}
	for _, n := range c.Nodes {
		d, ok := n.(*ir.VarDecl)
		if !ok {
			continue
		}
		if x, ok := d.Var.(*ir.Named); ok && x.Name == "x" {
			if x.Value.IsRef() || x.Value.Lit != "15" {
				t.Errorf("x = %+v, want literal 15", x.Value)
			}
			return
		}
	}
	t.Fatal("declaration of x not found")
}

func TestArithmeticTempsAreShortLived(t *testing.T) {
	c := mustLower(t, "fn main() { a: int = 1; x: int = (a + 1) * (a + 2); }")
	var arith []*ir.Arith
	for _, n := range c.Nodes {
		if a, ok := n.(*ir.Arith); ok {
			arith = append(arith, a)
		}
	}
	if len(arith) != 3 {
		t.Fatalf("got %d arithmetic nodes, want 3", len(arith))
	}
	mul := arith[2]
	if mul.Op != ast.OpMul {
		t.Fatalf("last op = %v", mul.Op)
	}
	// operands of the multiplication die right after it
	i := slices.Index(c.Nodes, ir.Node(mul))
	for k, operand := range []ir.Variable{mul.LHS, mul.RHS} {
		d, ok := c.Nodes[i+1+k].(*ir.DestroyTemp)
		if !ok || d.ID != operand.Base().ID {
			t.Errorf("node after multiplication %d = %s, want destroy of %s", k, ir.NodeString(c, c.Nodes[i+1+k]), ir.Describe(operand))
		}
	}
	if err := ir.Validate(c, c.Nodes); err != nil {
		t.Errorf("validate: %v", err)
	}
}

const nestedProgram = `
g: int = 1;

fn f(a: int) -> int {
    t: int = a * 2;
    if (t > 2) {
        u: int = t + g;
        return u;
    }
    return t;
}

fn main() {
    x: int = f(3) + f(4);
    while (x > 0) {
        y: int = x % 2;
        x = x - 1;
        if (y == 1) { break; }
    }
    @println(x);
}
`

func TestDestroyWithinScope(t *testing.T) {
	c := mustLower(t, nestedProgram)
	if err := ir.Validate(c, c.Nodes); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var stack []*ir.ScopeStart
	declaredIn := make(map[ir.VarID]scope.ID)
	destroyedIn := make(map[ir.VarID]scope.ID)
	for _, n := range c.Nodes {
		switch n := n.(type) {
		case *ir.ScopeStart:
			stack = append(stack, n)
		case *ir.Label:
			if len(stack) > 0 && n.Name == endLabel(stack[len(stack)-1]) {
				stack = stack[:len(stack)-1]
			}
		case *ir.VarDecl:
			if sc, ok := varScope(n.Var); ok {
				declaredIn[n.Var.Base().ID] = sc
			}
		case *ir.DestroyTemp:
			if len(stack) == 0 {
				t.Fatalf("destroy of %s outside any scope", ir.Describe(c.Var(n.ID)))
			}
			if _, dup := destroyedIn[n.ID]; dup {
				t.Errorf("%s destroyed twice", ir.Describe(c.Var(n.ID)))
			}
			destroyedIn[n.ID] = stack[len(stack)-1].Scope.ID
		}
	}
	if len(stack) != 0 {
		t.Errorf("%d scopes left open", len(stack))
	}
	for id, sc := range declaredIn {
		got, ok := destroyedIn[id]
		if !ok {
			t.Errorf("%s never destroyed", ir.Describe(c.Var(id)))
			continue
		}
		if got != sc {
			t.Errorf("%s declared in scope %d but destroyed in scope %d", ir.Describe(c.Var(id)), sc, got)
		}
	}
	if len(destroyedIn) != len(declaredIn) {
		t.Errorf("destroyed %d variables, declared %d", len(destroyedIn), len(declaredIn))
	}
}

func TestScopeExitOrder(t *testing.T) {
	c := mustLower(t, "fn main() { a: int = 1; b: int = 2; }")
	var destroyed []string
	for _, n := range c.Nodes {
		if d, ok := n.(*ir.DestroyTemp); ok {
			destroyed = append(destroyed, ir.Describe(c.Var(d.ID)))
		}
	}
	if !slices.Equal(destroyed, []string{"a", "b"}) {
		t.Errorf("destroy order = %v, want [a b]", destroyed)
	}
}

func TestTemporariesLiveUntilScopeExit(t *testing.T) {
	c := mustLower(t, "fn main() { x: int = 1; @println(x); y: int = 2; }")
	main, _ := c.Function("main")
	nodes := main.Nodes

	end := slices.IndexFunc(nodes, func(n ir.Node) bool {
		l, ok := n.(*ir.Label)
		return ok && l.Name == "FUNC_MAIN_END"
	})
	if end < 0 {
		t.Fatal("no FUNC_MAIN_END label")
	}
	var tail []string
	for i := end - 1; i >= 0; i-- {
		d, ok := nodes[i].(*ir.DestroyTemp)
		if !ok {
			break
		}
		v := c.Var(d.ID)
		if _, temp := v.(*ir.Temp); temp {
			tail = append([]string{"temp"}, tail...)
		} else {
			tail = append([]string{ir.Describe(v)}, tail...)
		}
	}
	// the argument copy outlives the call and dies with the scope
	if !slices.Equal(tail, []string{"temp", "x", "y"}) {
		t.Errorf("scope exit destroys %v, want [temp x y]", tail)
	}
	if n := countNodes[*ir.DestroyTemp](nodes); n != len(tail) {
		t.Errorf("%d destroys in main, %d of them at scope exit", n, len(tail))
	}
	if err := ir.Validate(c, c.Nodes); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidateUseAfterDestroy(t *testing.T) {
	c := ir.NewContext("validate")
	tmp := c.NewTemp(types.Int, ir.Lit("0"), false, 0)
	cmp := &ir.Compare{LHS: tmp, RHS: tmp}
	tmp.LastUse = cmp
	nodes := []ir.Node{&ir.VarDecl{Var: tmp}, &ir.DestroyTemp{ID: tmp.ID}, cmp}

	err := ir.Validate(c, nodes)
	if err == nil || !strings.Contains(err.Error(), "used after its destroy") {
		t.Fatalf("err = %v", err)
	}
	nodes[1], nodes[2] = nodes[2], nodes[1]
	if err := ir.Validate(c, nodes); err != nil {
		t.Errorf("destroy after last use rejected: %v", err)
	}
}

func TestFunctionLayout(t *testing.T) {
	c := mustLower(t, "fn main() { a: int = 1; { b: int = 2; } }")
	var names []string
	for _, n := range c.Nodes {
		switch n := n.(type) {
		case *ir.FuncEntry, *ir.Prologue, *ir.Epilogue, *ir.ScopeEnd:
			names = append(names, strings.Trim(strings.SplitN(ir.NodeString(c, n), ",", 2)[0], "()"))
		case *ir.Label:
			names = append(names, n.Name)
		}
	}
	want := []string{"FUNC", "PROLOGUE", "FUNC_MAIN_START", "SCOPE_2_START", "SCOPE_2_END", "FUNC_MAIN_END", "EPILOGUE", "END_SCOPE"}
	if !slices.Equal(names, want) {
		t.Errorf("layout = %v\nwant     %v", names, want)
	}
	f, _ := c.Function("main")
	for _, n := range f.Nodes {
		if p, ok := n.(*ir.Prologue); ok && p.LocalCount != 2 {
			t.Errorf("LocalCount = %d, want 2", p.LocalCount)
		}
	}
}

func TestWhileLowering(t *testing.T) {
	c := mustLower(t, "x: int = 0;\nfn main() {\n    while (x < 3) { x = x + 1; }\n}")

	toCond := 0
	for _, n := range c.Nodes {
		if j, ok := n.(*ir.Jump); ok && j.Label == "WHILE0_COND" {
			if !j.Unconditional() {
				t.Errorf("jump to condition is conditional: %v", j.Cond)
			}
			toCond++
		}
	}
	if toCond != 1 {
		t.Errorf("got %d jumps to the condition block, want 1", toCond)
	}

	g, err := ir.BuildGraph(c.Nodes)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	cond, ok := g.Block("WHILE0_COND")
	if !ok {
		t.Fatal("no condition block")
	}
	if countNodes[*ir.Compare](cond.Nodes) != 1 {
		t.Errorf("condition block = %d compares", countNodes[*ir.Compare](cond.Nodes))
	}
	if len(cond.Succs) != 2 {
		t.Fatalf("condition block has %d successors, want 2", len(cond.Succs))
	}
	if s := cond.Succs[0]; s.To.Label != "WHILE0_START" || s.Cond != ast.CmpLess {
		t.Errorf("loop edge = %s on %v", s.To.Label, s.Cond)
	}
	if s := cond.Succs[1]; s.To.Label != "WHILE0_END" || s.Cond != ast.CmpNone {
		t.Errorf("exit edge = %s on %v", s.To.Label, s.Cond)
	}
	start, _ := g.Block("WHILE0_START")
	if len(start.Succs) != 1 || start.Succs[0].To.Label != "LOOP_2_START" {
		t.Errorf("loop entry falls into %v", start.Succs)
	}
	body, _ := g.Block("LOOP_2_START")
	if countNodes[*ir.Arith](body.Nodes) != 1 || countNodes[*ir.Assign](body.Nodes) != 1 {
		t.Errorf("loop body = %d nodes", len(body.Nodes))
	}
}

func TestIfEqualGlobalsTakesTrueBranch(t *testing.T) {
	c := mustLower(t, `
a: int = 5;
b: int = 5;
fn main() {
    if (a == b) { @print(1); } else { @print(2); }
}`)
	labels, printed := run(t, c, c.Nodes)
	if !slices.Contains(labels, "IF0_BODY") {
		t.Errorf("true branch not reached: %v", labels)
	}
	if slices.Contains(labels, "IF0_ALT0") {
		t.Errorf("false branch reached: %v", labels)
	}
	if !slices.Equal(printed, []string{"1"}) {
		t.Errorf("printed %v, want [1]", printed)
	}

	g, err := ir.BuildGraph(c.Nodes)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	start, _ := g.Block("IF0_START")
	body, _ := g.Block("IF0_BODY")
	onEqual := func(e ir.Edge) bool { return e.Cond == ast.CmpEqual || e.Cond == ast.CmpNone && e.To != start }
	if !g.Reachable(start, body, onEqual) {
		t.Error("IF0_BODY not reachable from IF0_START on EQUAL")
	}
}

func TestConditionChains(t *testing.T) {
	tests := []struct {
		name  string
		cond  string
		taken bool
	}{
		{"and both", "a == 5 && b == 5", true},
		{"and second fails", "a == 5 && b == 6", false},
		{"or first", "a == 5 || b == 6", true},
		{"or second", "a == 6 || b == 5", true},
		{"or none", "a == 6 || b == 6", false},
		{"mixed", "a < 6 && b > 6 || a == 5", true},
		{"truthiness", "t", true},
		{"truthiness false", "f", false},
		{"negated ops", "a >= 5 && a <= 5 && a != 4", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustLower(t, "a: int = 5;\nb: int = 5;\nt: bool = true;\nf: bool = false;\n"+
				"fn main() { if ("+tt.cond+") { @print(1); } }")
			_, printed := run(t, c, c.Nodes)
			if got := len(printed) == 1; got != tt.taken {
				t.Errorf("branch taken = %v, want %v", got, tt.taken)
			}
		})
	}
}

func TestElifChain(t *testing.T) {
	src := "a: int = 2;\nfn main() { if (a == 1) { @print(1); } elif (a == 2) { @print(2); } elif (a == 3) { @print(3); } else { @print(4); } @print(5); }"
	c := mustLower(t, src)
	_, printed := run(t, c, c.Nodes)
	if !slices.Equal(printed, []string{"2", "5"}) {
		t.Errorf("printed %v, want [2 5]", printed)
	}
	for _, l := range []string{"IF0_START", "IF0_BODY", "IF0_ALT0", "IF0_ALT0_BODY", "IF0_ALT1", "IF0_ALT1_BODY", "IF0_ALT2", "IF0_END"} {
		if !c.HasLabel(l) {
			t.Errorf("label %s missing", l)
		}
	}
}

func TestBreakLeavesEnclosingLoop(t *testing.T) {
	c := mustLower(t, `
x: int = 0;
fn main() {
    while (x < 10) {
        if (x > 1) {
            if (x == 3) { break; }
        }
        x = x + 1;
    }
}`)
	var targets []string
	for _, n := range c.Nodes {
		if j, ok := n.(*ir.Jump); ok && j.Unconditional() && strings.HasPrefix(j.Label, "WHILE") {
			targets = append(targets, j.Label)
		}
	}
	if !slices.Contains(targets, "WHILE0_END") {
		t.Errorf("break does not reach the loop end: %v", targets)
	}
}

func TestBreakOutsideLoopLeavesScope(t *testing.T) {
	c := mustLower(t, "fn main() { { break; } }")
	for _, n := range c.Nodes {
		if j, ok := n.(*ir.Jump); ok {
			if j.Label != "SCOPE_2_END" {
				t.Errorf("break jumps to %s, want SCOPE_2_END", j.Label)
			}
			return
		}
	}
	t.Fatal("no jump emitted for break")
}

func TestStringInterning(t *testing.T) {
	c := mustLower(t, `fn main() { a: str = "hi"; b: str = "hi"; @println("other"); }`)
	if c.Strings.Len() != 2 {
		t.Fatalf("string table has %d entries, want 2", c.Strings.Len())
	}
	sym, ok := c.Strings.Symbol("hi")
	if !ok {
		t.Fatal(`"hi" not interned`)
	}
	literals := 0
	for id := 1; id <= c.VarCount(); id++ {
		if lit, ok := c.Var(ir.VarID(id)).(*ir.Literal); ok && lit.Value.Lit == sym {
			literals++
		}
	}
	if literals != 2 {
		t.Errorf("got %d literals referencing %s, want 2", literals, sym)
	}
}

func TestCallArgumentsAreCopied(t *testing.T) {
	c := mustLower(t, "fn show(v: int) { @print(v); }\nfn main() { x: int = 4; show(x); show(x + 1); }")
	f, _ := c.Function("show")
	if f.CallCount != 2 {
		t.Errorf("CallCount = %d, want 2", f.CallCount)
	}
	main, _ := c.Function("main")
	for _, n := range main.Nodes {
		call, ok := n.(*ir.Call)
		if !ok || call.Builtin {
			continue
		}
		temp, ok := call.Args[0].(*ir.Temp)
		if !ok {
			t.Errorf("argument %s is not a temporary", ir.Describe(call.Args[0]))
			continue
		}
		if !temp.NeedsPreserved {
			t.Errorf("argument of void call %s not marked preserved", temp.Name)
		}
	}
	if err := ir.Validate(c, c.Nodes); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestNonVoidCallAsStatementIsEmitted(t *testing.T) {
	c := mustLower(t, "fn one() -> int { return 1; }\nfn main() { one(); }")
	main, _ := c.Function("main")
	if countNodes[*ir.Call](main.Nodes) != 1 {
		t.Error("discarded call result dropped the call")
	}
}

func TestReturnJumpsToEpilogue(t *testing.T) {
	c := mustLower(t, "fn one() -> int { return 1; }\nfn main() { x: int = one(); }")
	f, _ := c.Function("one")
	for i, n := range f.Nodes {
		if _, ok := n.(*ir.Return); ok {
			j, ok := f.Nodes[i+1].(*ir.Jump)
			if !ok || !j.Unconditional() || j.Label != "FUNC_1_END" {
				t.Errorf("return followed by %s", ir.NodeString(c, f.Nodes[i+1]))
			}
			return
		}
	}
	t.Fatal("no return node")
}

func TestGlobalRedeclarationIsIgnored(t *testing.T) {
	c := mustLower(t, "g: int = 1;\ng: int = 2;\nfn main() {}")
	if n := len(c.Globals()); n != 1 {
		t.Fatalf("got %d globals, want 1", n)
	}
	if v := c.Globals()[0].Value.Lit; v != "1" {
		t.Errorf("g = %s, want the first declaration", v)
	}
}

func TestGlobalArrays(t *testing.T) {
	c := mustLower(t, "xs: int[3] = [1, 2 * 3, -1];\nys: char[2];\nfn main() { xs[1] = 9; @print(xs[2]); }")
	globals := c.Globals()
	if globals[0].Value.Lit != "1, 6, -1" {
		t.Errorf("xs init = %q", globals[0].Value.Lit)
	}
	if globals[1].Value.Lit != "0, 0" {
		t.Errorf("ys init = %q", globals[1].Value.Lit)
	}
	for _, n := range c.Nodes {
		if a, ok := n.(*ir.Assign); ok {
			if a.Indexed == nil || a.Indexed.Array != globals[0] {
				t.Errorf("indexed assignment = %s", ir.NodeString(c, a))
			}
		}
	}
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"undeclared variable", "fn main() { x = 1; }", diag.UndeclaredVariable},
		{"duplicate local", "fn main() { x: int = 1; x: int = 2; }", diag.DuplicateVariable},
		{"local shadows global", "g: int = 1;\nfn main() { g: int = 2; }", diag.DuplicateVariable},
		{"local shadows outer local", "fn main() { x: int = 1; { x: int = 2; } }", diag.DuplicateVariable},
		{"undeclared function", "fn main() { nope(); }", diag.UndeclaredFunction},
		{"arity", "fn f(a: int) {}\nfn main() { f(); }", diag.ArityMismatch},
		{"builtin arity", "fn main() { @print(1, 2); }", diag.ArityMismatch},
		{"unknown builtin", "fn main() { @nope(1); }", diag.UnknownBuiltin},
		{"bool arithmetic", "fn main() { b: bool = true; x: int = b + 1; }", diag.InvalidOperandType},
		{"str arithmetic", `fn main() { s: str = "a"; x: int = s + 1; }`, diag.InvalidOperandType},
		{"print array", "xs: int[2];\nfn main() { @print(xs); }", diag.InvalidOperandType},
		{"compare strings", `fn main() { s: str = "a"; if (s == s) { } }`, diag.InvalidOperandType},
		{"void as value", "fn f() {}\nfn main() { x: int = f(); }", diag.InvalidOperandType},
		{"assign mismatch", `fn main() { s: str = "a"; x: int = 0; x = s; }`, diag.InvalidOperandType},
		{"index out of range", "xs: int[2];\nfn main() { xs[2] = 1; }", diag.InvalidOperandType},
		{"index non-array", "fn main() { x: int = 1; x[0] = 1; }", diag.InvalidOperandType},
		{"missing entry", "fn f() {}", diag.MissingEntry},
		{"module statement", "x: int = 1;\nx = 2;\nfn main() {}", diag.MisplacedStatement},
		{"nested function", "fn main() { fn g() {} }", diag.MisplacedStatement},
		{"local array", "fn main() { xs: int[2]; }", diag.UnsupportedFeature},
		{"non-constant global", "a: int = 1;\nb: int = a;\nfn main() {}", diag.UnsupportedFeature},
		{"return value from void", "fn f() { return 1; }\nfn main() {}", diag.ReturnTypeMismatch},
		{"missing return value", "fn f() -> int { return; }\nfn main() {}", diag.ReturnTypeMismatch},
		{"duplicate function", "fn main() {}\nfn main() {}", diag.DuplicateFunction},
		{"division by zero", "fn main() { x: int = 1 / 0; }", diag.DivisionByZero},
		{"global constant overflow", "g: int = 100000 * 100000;\nfn main() {}", diag.ConstantOverflow},
		{"local constant overflow", "fn main() { x: int = 2147483647 + 1; }", diag.ConstantOverflow},
		{"main with params", "fn main(a: int) {}", diag.ArityMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lowerSource(t, tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := diag.CodeOf(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got.ID(), tt.code.ID(), err)
			}
		})
	}
}

func TestLowerErrorCarriesLine(t *testing.T) {
	_, err := lowerSource(t, "fn main() {\n    a: int = 1;\n    b = a;\n}")
	var de *diag.Error
	if !errors.As(err, &de) {
		t.Fatalf("err = %v", err)
	}
	if de.Diag.Line != 3 || de.Diag.File != "test.ils" {
		t.Errorf("location = %s, want test.ils:3", de.Diag.Location())
	}
}

func TestLowerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := ir.NewContext("test.ils")
	prog := &ast.Program{Stmts: []ast.Stmt{&ast.FuncDecl{Name: "main", Body: &ast.Block{}}}}
	if err := ir.Lower(ctx, c, prog); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLowerTracesFunctions(t *testing.T) {
	var buf bytes.Buffer
	tr, err := trace.New(trace.Config{Level: trace.LevelDetail, Format: trace.FormatText, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ctx := trace.WithTracer(context.Background(), tr)
	c := ir.NewContext("test.ils")
	prog := &ast.Program{Stmts: []ast.Stmt{&ast.FuncDecl{Name: "main", Body: &ast.Block{}}}}
	if err := ir.Lower(ctx, c, prog); err != nil {
		t.Fatal(err)
	}
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "lower") || !strings.Contains(out, "main") {
		t.Errorf("trace output = %q", out)
	}
}
