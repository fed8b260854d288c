package ir

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one node per line in the (NAME, operands...) form.
func Dump(w io.Writer, c *Context, nodes []Node) error {
	ew := &errWriter{w: w}
	for _, n := range nodes {
		if _, ok := n.(*Label); !ok {
			ew.printf("    ")
		}
		ew.printf("%s\n", NodeString(c, n))
	}
	return ew.err
}

// NodeString renders a single node.
func NodeString(c *Context, n Node) string {
	switch n := n.(type) {
	case *Label:
		return tuple("LABEL", n.Name)
	case *FuncEntry:
		parts := []string{n.Func.Name, n.Func.Return.String()}
		for _, p := range n.Func.Params {
			parts = append(parts, p.Name)
		}
		return tuple("FUNC", parts...)
	case *Prologue:
		return tuple("PROLOGUE", fmt.Sprint(n.LocalCount))
	case *Epilogue:
		return tuple("EPILOGUE")
	case *ScopeStart:
		return tuple("START_SCOPE", n.Scope.Kind.String())
	case *ScopeEnd:
		return tuple("END_SCOPE", n.Scope.Kind.String())
	case *VarDecl:
		return declString(c, n.Var)
	case *Assign:
		target := Describe(n.Target)
		if n.Indexed != nil {
			target = Describe(n.Indexed)
		}
		return tuple("ASSIGN", target, c.Describe(n.Value))
	case *Arith:
		return tuple(n.Op.Name(), Describe(n.Result)+" = "+Describe(n.LHS), Describe(n.RHS))
	case *Compare:
		return tuple("COMPARE", Describe(n.LHS), Describe(n.RHS))
	case *Jump:
		if n.Unconditional() {
			return tuple("JUMP", n.Label)
		}
		return tuple("JUMP_"+n.Cond.String(), n.Label)
	case *Call:
		name := n.Name
		if n.Builtin {
			name = BuiltinSigil + name
		}
		parts := []string{name}
		for _, a := range n.Args {
			parts = append(parts, Describe(a))
		}
		return tuple("FUNC_CALL", parts...)
	case *Return:
		return tuple("RETURN", Describe(n.Value))
	case *DestroyTemp:
		return tuple("DESTROY_TEMP", Describe(c.Var(n.ID)))
	}
	return fmt.Sprintf("(%T)", n)
}

func declString(c *Context, v Variable) string {
	switch v := v.(type) {
	case *Named:
		return tuple("NAMED_VAR", v.Name, v.Type.String(), c.Describe(v.Value))
	case *Temp:
		return tuple("TEMP_VAR", v.Name, c.Describe(v.Value))
	case *Literal:
		return tuple("LIT_VAR", v.Value.Lit)
	case *Array:
		return tuple("ARRAY_VAR", v.Init)
	case *FuncReturn:
		return tuple("FUNC_RETURN_VAR", Describe(v))
	}
	return tuple("VAR", Describe(v))
}

func tuple(name string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + name + ")"
	}
	return "(" + name + ", " + strings.Join(parts, ", ") + ")"
}
