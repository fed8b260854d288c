package ir_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"ilsc/internal/ast"
	"ilsc/internal/ir"
	"ilsc/internal/parser"
	"ilsc/internal/scope"
)

func lowerSource(t *testing.T, src string) (*ir.Context, error) {
	t.Helper()
	prog, err := parser.Parse("test.ils", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := ir.NewContext("test.ils")
	return c, ir.Lower(context.Background(), c, prog)
}

func mustLower(t *testing.T, src string) *ir.Context {
	t.Helper()
	c, err := lowerSource(t, src)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return c
}

func countNodes[T ir.Node](nodes []ir.Node) int {
	n := 0
	for _, node := range nodes {
		if _, ok := node.(T); ok {
			n++
		}
	}
	return n
}

func endLabel(start *ir.ScopeStart) string {
	if start.Func != nil && start.Func.IsEntry() {
		return "FUNC_MAIN_END"
	}
	return fmt.Sprintf("%s_%d_END", start.Scope.Kind.Label(), start.Scope.ID)
}

func varScope(v ir.Variable) (scope.ID, bool) {
	switch v := v.(type) {
	case *ir.Temp:
		return v.Scope, true
	case *ir.Named:
		return v.Scope, !v.Global && !v.Arg
	}
	return 0, false
}

// run walks the IR of main the way the generated code would, following
// jumps with the values of constant globals and literals. It returns the
// labels it passed and the literal arguments of builtin calls.
func run(t *testing.T, c *ir.Context, nodes []ir.Node) (labels []string, printed []string) {
	t.Helper()
	at := make(map[string]int)
	for i, n := range nodes {
		if l, ok := n.(*ir.Label); ok {
			at[l.Name] = i
		}
	}
	value := func(v ir.Variable) int {
		lit := v.Base().Value.Lit
		n, err := strconv.Atoi(lit)
		if err != nil {
			t.Fatalf("cannot evaluate %s (%q)", ir.Describe(v), lit)
		}
		return n
	}
	var lhs, rhs int
	pc, ok := at["FUNC_MAIN_START"]
	if !ok {
		t.Fatal("no FUNC_MAIN_START")
	}
	for steps := 0; pc < len(nodes); steps++ {
		if steps > 10000 {
			t.Fatal("walk does not terminate")
		}
		switch n := nodes[pc].(type) {
		case *ir.Label:
			labels = append(labels, n.Name)
		case *ir.Compare:
			lhs, rhs = value(n.LHS), value(n.RHS)
		case *ir.Call:
			for _, a := range n.Args {
				printed = append(printed, a.Base().Value.Lit)
			}
		case *ir.Jump:
			if holds(n.Cond, lhs, rhs) {
				pc = at[n.Label]
				continue
			}
		case *ir.Epilogue:
			return labels, printed
		}
		pc++
	}
	return labels, printed
}

func holds(op ast.CmpOp, a, b int) bool {
	switch op {
	case ast.CmpNone:
		return true
	case ast.CmpEqual:
		return a == b
	case ast.CmpNotEqual:
		return a != b
	case ast.CmpLess:
		return a < b
	case ast.CmpLessEqual:
		return a <= b
	case ast.CmpGreater:
		return a > b
	case ast.CmpGreaterEqual:
		return a >= b
	}
	return false
}
