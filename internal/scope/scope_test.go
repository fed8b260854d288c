package scope_test

import (
	"slices"
	"testing"

	"ilsc/internal/diag"
	"ilsc/internal/scope"
)

func TestNewChildAssignsSequentialIDs(t *testing.T) {
	tree := scope.NewTree()
	fn := tree.NewChild(tree.Global(), scope.KindFunction)
	loop := tree.NewChild(fn, scope.KindLoop)
	inner := tree.NewChild(loop, scope.KindIf)

	for i, s := range []*scope.Scope{tree.Global(), fn, loop, inner} {
		if int(s.ID) != i {
			t.Errorf("scope %d has id %d", i, s.ID)
		}
	}
	if fn.Children[loop.ID] != loop {
		t.Error("loop not registered as child of fn")
	}
	if tree.Get(inner.ID) != inner {
		t.Error("Get(inner) mismatch")
	}
}

func TestDeclareDuplicateInVisibleSet(t *testing.T) {
	tree := scope.NewTree()
	fn := tree.NewChild(tree.Global(), scope.KindFunction)
	if _, _, err := tree.Declare(fn, "x", 1); err != nil {
		t.Fatal(err)
	}
	inner := tree.NewChild(fn, scope.KindDefault)
	_, _, err := tree.Declare(inner, "x", 2)
	if diag.CodeOf(err) != diag.DuplicateVariable {
		t.Fatalf("expected DuplicateVariable, got %v", err)
	}
}

func TestGlobalRedeclarationIsNoop(t *testing.T) {
	tree := scope.NewTree()
	ref, declared, err := tree.Declare(tree.Global(), "g", 7)
	if err != nil || !declared || ref != 7 {
		t.Fatalf("first declare: ref=%d declared=%v err=%v", ref, declared, err)
	}
	ref, declared, err = tree.Declare(tree.Global(), "g", 9)
	if err != nil {
		t.Fatalf("redeclare at module level must not fail: %v", err)
	}
	if declared || ref != 7 {
		t.Errorf("redeclare should keep the first binding, got ref=%d declared=%v", ref, declared)
	}
}

func TestResolveWalksParentsThenGlobals(t *testing.T) {
	tree := scope.NewTree()
	if _, _, err := tree.Declare(tree.Global(), "g", 1); err != nil {
		t.Fatal(err)
	}
	fn := tree.NewChild(tree.Global(), scope.KindFunction)
	if _, _, err := tree.Declare(fn, "a", 2); err != nil {
		t.Fatal(err)
	}
	loop := tree.NewChild(fn, scope.KindLoop)

	if ref, err := tree.Resolve(loop, "a"); err != nil || ref != 2 {
		t.Errorf("Resolve(a) = %d, %v", ref, err)
	}
	if ref, err := tree.Resolve(loop, "g"); err != nil || ref != 1 {
		t.Errorf("Resolve(g) = %d, %v", ref, err)
	}
	if _, err := tree.Resolve(loop, "missing"); diag.CodeOf(err) != diag.UndeclaredVariable {
		t.Errorf("expected UndeclaredVariable, got %v", err)
	}
	if _, err := tree.Resolve(tree.Global(), "a"); err == nil {
		t.Error("function local must not leak to module scope")
	}
}

func TestVisibleIsComputedOnDemand(t *testing.T) {
	tree := scope.NewTree()
	fn := tree.NewChild(tree.Global(), scope.KindFunction)
	child := tree.NewChild(fn, scope.KindDefault)
	if _, _, err := tree.Declare(child, "y", 3); err != nil {
		t.Fatal(err)
	}
	if _, _, err := tree.Declare(fn, "x", 4); err != nil {
		t.Fatal(err)
	}
	got := child.Visible()
	if !slices.Equal(got, []string{"y", "x"}) {
		t.Errorf("Visible() = %v", got)
	}
	if !slices.Equal(child.Locals(), []string{"y"}) {
		t.Errorf("Locals() = %v", child.Locals())
	}
}

func TestEnclosingStopsAtFunction(t *testing.T) {
	tree := scope.NewTree()
	outerLoop := tree.NewChild(tree.Global(), scope.KindLoop)
	fn := tree.NewChild(outerLoop, scope.KindFunction)
	ifs := tree.NewChild(fn, scope.KindIf)

	isLoop := func(s *scope.Scope) bool { return s.Kind == scope.KindLoop }
	if got := ifs.Enclosing(isLoop); got != nil {
		t.Errorf("search crossed a function boundary: %v", got.ID)
	}
	if ifs.Function() != fn {
		t.Error("Function() should find fn")
	}
}

func TestKindLabel(t *testing.T) {
	tests := map[scope.Kind]string{
		scope.KindDefault:  "SCOPE",
		scope.KindIf:       "IF",
		scope.KindElif:     "ELIF",
		scope.KindElse:     "ELSE",
		scope.KindLoop:     "LOOP",
		scope.KindFunction: "FUNC",
	}
	for k, want := range tests {
		if got := k.Label(); got != want {
			t.Errorf("%v.Label() = %q, want %q", k, got, want)
		}
	}
}
