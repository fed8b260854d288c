package ir_test

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
)

const pruneProgram = `
fn unused() { @print(1); }
fn helper() { @print(2); }
fn value() -> int { return 3; }
fn main() {
    helper();
    x: int = value();
}
`

func TestPruneRemovesUncalledFunctions(t *testing.T) {
	c := mustLower(t, pruneProgram)
	nodes, removed := ir.Prune(c)
	if len(removed) != 1 || removed[0].Name != "unused" {
		t.Fatalf("removed = %v, want [unused]", removed)
	}
	kept := make(map[ir.Node]bool, len(nodes))
	for _, n := range nodes {
		kept[n] = true
	}
	for _, f := range c.Functions() {
		survived := 0
		for _, n := range f.Nodes {
			if kept[n] {
				survived++
			}
		}
		switch f.Name {
		case "unused":
			if survived != 0 {
				t.Errorf("%d nodes of unused survived", survived)
			}
		default:
			if survived != len(f.Nodes) {
				t.Errorf("%s lost %d nodes", f.Name, len(f.Nodes)-survived)
			}
		}
	}
	if err := ir.Validate(c, nodes); err != nil {
		t.Errorf("pruned IR invalid: %v", err)
	}
}

func TestCallTargetsFollowReturnValues(t *testing.T) {
	c := mustLower(t, pruneProgram)
	targets := ir.CallTargets(c, c.Nodes)
	for _, name := range []string{"helper", "value"} {
		if _, ok := targets[name]; !ok {
			t.Errorf("%s missing from call targets %v", name, targets)
		}
	}
	if _, ok := targets["print"]; ok {
		t.Error("builtins must not count as call targets")
	}
}

func TestPruneKeepsEntryAndNothingElse(t *testing.T) {
	c := mustLower(t, "fn main() {}")
	nodes, removed := ir.Prune(c)
	if len(removed) != 0 || len(nodes) != len(c.Nodes) {
		t.Errorf("pruned %d functions from a program with only main", len(removed))
	}
}

func TestParentlessBlocks(t *testing.T) {
	c := mustLower(t, "x: int = 1;\nfn f() -> int { return 1; }\nfn main() { while (x < 3) { x = x + 1; break; } }")
	g, err := ir.BuildGraph(c.Nodes)
	if err != nil {
		t.Fatal(err)
	}
	var dead []string
	for _, b := range g.Parentless() {
		dead = append(dead, b.Label)
	}
	// break leaves the body, so nothing falls into the loop scope's end
	if !slices.Contains(dead, "LOOP_3_END") {
		t.Errorf("LOOP_3_END not reported as parentless: %v", dead)
	}
	for _, d := range dead {
		if d == "FUNC_MAIN_START" || d == "FUNC_1_START" {
			t.Errorf("function entry %s reported as parentless", d)
		}
	}
}

func TestDumpAndDOT(t *testing.T) {
	c := mustLower(t, "g: int = 2;\nfn main() { if (g > 1) { @println(g * 3); } }")
	var dump bytes.Buffer
	if err := ir.Dump(&dump, c, c.Nodes); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"(NAMED_VAR, g, int, 2)",
		"(FUNC, main, void)",
		"(LABEL, FUNC_MAIN_START)",
		"(COMPARE, g, 1)",
		"(JUMP_GREATER, IF0_BODY)",
		"(MUL, TEMP_OP_RES_",
		"(FUNC_CALL, @println, TEMP_OP_RES_",
		"(EPILOGUE)",
	} {
		if !strings.Contains(dump.String(), want) {
			t.Errorf("dump lacks %q:\n%s", want, dump.String())
		}
	}

	g, err := ir.BuildGraph(c.Nodes)
	if err != nil {
		t.Fatal(err)
	}
	var dot bytes.Buffer
	if err := g.WriteDOT(&dot, c); err != nil {
		t.Fatal(err)
	}
	out := dot.String()
	if !strings.HasPrefix(out, "digraph \"test.ils\" {") {
		t.Errorf("DOT header = %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, `"IF0_START" -> "IF0_BODY" [label="GREATER"];`) {
		t.Errorf("DOT lacks the conditional edge:\n%s", out)
	}
}

func TestBuildGraphErrors(t *testing.T) {
	tests := []struct {
		name  string
		nodes []ir.Node
		code  diag.Code
	}{
		{"duplicate label", []ir.Node{&ir.Label{Name: "A"}, &ir.Label{Name: "A"}}, diag.DuplicateLabel},
		{"undefined target", []ir.Node{&ir.Label{Name: "A"}, &ir.Jump{Label: "B"}}, diag.UndefinedLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ir.BuildGraph(tt.nodes)
			if got := diag.CodeOf(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got.ID(), tt.code.ID(), err)
			}
		})
	}
}
