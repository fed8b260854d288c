package amd64_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ilsc/internal/backend/amd64"
	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/parser"
)

func compile(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.Parse("test.ils", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := ir.NewContext("test.ils")
	if err := ir.Lower(context.Background(), c, prog); err != nil {
		t.Fatalf("lower: %v", err)
	}
	nodes, _ := ir.Prune(c)
	return amd64.Emit(context.Background(), c, nodes)
}

func mustCompile(t *testing.T, src string) string {
	t.Helper()
	out, err := compile(t, src)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	return out
}

func expectContains(t *testing.T, asm string, snippets ...string) {
	t.Helper()
	for _, s := range snippets {
		if !strings.Contains(asm, s) {
			t.Errorf("missing %q in:\n%s", s, asm)
		}
	}
}

func TestHelloLayout(t *testing.T) {
	asm := mustCompile(t, `fn main() { @println("hi"); }`)

	expectContains(t, asm,
		"global main\n",
		"main:\n\tpush rbp\n\tmov rbp, rsp\n.FUNC_MAIN_START:\n",
		"\tmov rdi, strFormatNl\n\tmov rsi, STR_0\n\txor rax, rax\n\tcall printf\n",
		".FUNC_MAIN_END:\n\txor rax, rax\n\tmov rsp, rbp\n\tpop rbp\n\tret\n",
		"section .data\n",
		"\tintFormat db \"%d\", 0\n",
		"\tcharFormatNl db \"%c\", 10, 0\n",
		"\tSTR_0 db `hi`, 0\n",
		"extern printf\n",
	)
	order := []string{"global main", "section .text", "main:", "section .data", "extern printf"}
	last := -1
	for _, s := range order {
		i := strings.Index(asm, s)
		if i < last {
			t.Errorf("%q out of order", s)
		}
		last = i
	}
}

func TestStringEscapes(t *testing.T) {
	asm := mustCompile(t, "fn main() { @print(\"a\\tb`c\\n\"); }")
	expectContains(t, asm, "\tSTR_0 db `a\\tb\\`c\\n`, 0\n")
}

func TestDivisionUsesFixedRegisters(t *testing.T) {
	asm := mustCompile(t, `fn main() { x: int = 7; y: int = x % 3; z: int = x / y; }`)
	expectContains(t, asm,
		"\tsub rsp, 32\n",
		"\tmov qword [rbp-8], 7\n",
		"\tmov rax, qword [rbp-8]\n\tmov rsi, 3\n\tcqo\n\tidiv rsi\n\tmov rcx, rdx\n",
		"\tmov qword [rbp-16], rcx\n",
		// y's temporary keeps rcx until the scope ends
		"\tmov rsi, qword [rbp-16]\n\tcqo\n\tidiv rsi\n\tmov r8, rax\n",
	)
	for _, line := range strings.Split(asm, "\n") {
		if strings.HasPrefix(line, "\tmov rdx,") || strings.HasPrefix(line, "\tmov rax, 0") {
			t.Errorf("unexpected %q", line)
		}
	}
}

func TestCallerSavesLiveRegisters(t *testing.T) {
	asm := mustCompile(t, `
fn id(a: int) -> int { return a; }
fn main() { x: int = 1; y: int = (x + 1) * id(2); }
`)
	expectContains(t, asm,
		"id:\n\tpush rbp\n\tmov rbp, rsp\n.FUNC_1_START:\n\tmov rax, qword [rbp+16]\n\tjmp .FUNC_1_END\n",
		"\tmov rcx, qword [rbp-8]\n\tadd rcx, 1\n",
		"\tpush rcx\n\tpush 2\n\tcall id\n\tadd rsp, 8\n\tpop rcx\n\tmov r8, rax\n",
		"\tmov r9, rcx\n\timul r9, r8\n",
		"\tmov qword [rbp-16], r9\n",
	)
	if strings.Contains(asm, "mov r9, 0") || strings.Contains(asm, "mov rcx, 0") {
		t.Errorf("dead initial moves were not merged:\n%s", asm)
	}
}

func TestVoidCallArgumentsArePreserved(t *testing.T) {
	asm := mustCompile(t, `
fn show(v: int) { @println(v); }
fn main() { x: int = 5; show(x); }
`)
	expectContains(t, asm,
		// callee: printf clobbers rcx, so it is saved around the call
		"\tmov rcx, qword [rbp+16]\n\tpush rcx\n\tsub rsp, 8\n\tmov rdi, intFormatNl\n\tmov rsi, rcx\n",
		"\tcall printf\n\tadd rsp, 8\n\tpop rcx\n",
		// caller: the argument copy lives in rbx, which main must save
		"main:\n\tpush rbp\n\tmov rbp, rsp\n\tsub rsp, 8\n\tpush rbx\n",
		"\tmov rbx, qword [rbp-8]\n\tsub rsp, 8\n\tpush rbx\n\tcall show\n\tadd rsp, 8\n\tadd rsp, 8\n",
		"\tlea rsp, [rbp-16]\n\tpop rbx\n\tmov rsp, rbp\n\tpop rbp\n\tret\n",
	)
}

func TestGlobalsAndConditions(t *testing.T) {
	asm := mustCompile(t, `
count: int = 3;
flag: bool = true;
letter: char = 'a';
fn main() {
    while (count > 0) { count = count - 1; }
    if (flag) { @exit(2); }
    if (letter == 'b' || count != letter) { @print(letter); }
}
`)
	expectContains(t, asm,
		"\tcount dd 3\n", "\tflag db 1\n", "\tletter db 97\n",
		"\tjmp .WHILE0_COND\n.WHILE0_START:\n",
		"\tmovsxd rcx, dword [count]\n\tsub rcx, 1\n\tmov dword [count], ecx\n",
		".WHILE0_COND:\n\tcmp dword [count], 0\n\tjg .WHILE0_START\n.WHILE0_END:\n",
		"\tcmp byte [flag], 1\n\tje .IF1_BODY\n\tjmp .IF1_END\n",
		"\tmov rax, 60\n\tmov rdi, 2\n\tsyscall\n",
		"\tcmp byte [letter], 98\n\tje .IF2_BODY\n",
		"\tmovzx rsi, byte [letter]\n\tmovsxd rax, dword [count]\n\tcmp rax, rsi\n\tjne .IF2_BODY\n",
		"\tmovzx r8, byte [letter]\n",
	)
}

func TestGlobalArrays(t *testing.T) {
	asm := mustCompile(t, `
xs: int[3] = [1, 2, 3];
zs: int[4];
fn main() { i: int = 1; xs[i] = 9; zs[0] = xs[2]; @println(xs[i]); }
`)
	expectContains(t, asm,
		"\txs dd 1, 2, 3\n",
		"\tzs times 4 dd 0\n",
		"\tmov rdi, qword [rbp-8]\n\tmov dword [xs + rdi*4], 9\n",
		"\tmovsxd rax, dword [xs + 8]\n\tmov dword [zs], eax\n",
		"\tmov rsi, qword [rbp-8]\n\tmovsxd rcx, dword [xs + rsi*4]\n",
	)
}

func TestReturnValueFromCall(t *testing.T) {
	asm := mustCompile(t, `
fn two() -> int { return 2; }
fn main() { @exit(two()); }
`)
	expectContains(t, asm,
		"two:\n",
		"\tmov rax, 2\n\tjmp .FUNC_1_END\n",
		"\tcall two\n\tmov rcx, rax\n",
		"\tmov rax, 60\n\tmov rdi, rcx\n\tsyscall\n",
	)
}

func TestUnusedFunctionsAreNotEmitted(t *testing.T) {
	asm := mustCompile(t, `
fn unused() { @println(1); }
fn main() { }
`)
	if strings.Contains(asm, "unused:") {
		t.Errorf("pruned function emitted:\n%s", asm)
	}
}

func TestRegisterExhaustion(t *testing.T) {
	// every (x + x) on the left stays live while the right side is built
	nested := func(depth int) string {
		expr := "x"
		for range depth {
			expr = "(x + x) + (" + expr + ")"
		}
		return expr
	}
	if _, err := compile(t, "fn main() { x: int = 1; y: int = "+nested(4)+"; }"); err != nil {
		t.Fatalf("shallow expression: %v", err)
	}
	_, err := compile(t, "fn main() { x: int = 1; y: int = "+nested(12)+"; }")
	if diag.CodeOf(err) != diag.RegisterExhaustion {
		t.Fatalf("expected RegisterExhaustion, got %v", err)
	}
}

func TestEmitErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"string global", `s: str = "x"; fn main() { }`, diag.UnsupportedFeature},
		{"global shadows function", `count: int = 1; fn count() { } fn main() { count(); }`, diag.DuplicateLabel},
		{"format name", `intFormat: int = 1; fn main() { }`, diag.DuplicateLabel},
		{"register name", `rcx: int = 1; fn main() { }`, diag.UnsupportedFeature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src)
			if got := diag.CodeOf(err); got != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", got.ID(), tt.code.ID(), err)
			}
		})
	}
}

func TestEmitHonoursCancellation(t *testing.T) {
	prog, err := parser.Parse("test.ils", []byte(`fn main() { }`))
	if err != nil {
		t.Fatal(err)
	}
	c := ir.NewContext("test.ils")
	if err := ir.Lower(context.Background(), c, prog); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := amd64.Emit(ctx, c, c.Nodes); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
