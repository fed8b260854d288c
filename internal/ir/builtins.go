package ir

import "ilsc/internal/types"

// BuiltinSigil prefixes builtin names in source.
const BuiltinSigil = "@"

// Builtin describes one intrinsic. Builtins have no IR body and never
// take part in pruning.
type Builtin struct {
	Name    string
	Arity   int
	Newline bool
	Accepts func(*types.Type) bool
}

func printable(t *types.Type) bool {
	return t.Is(types.KindInt) || t.Is(types.KindStr) || t.Is(types.KindChar) || t.Is(types.KindBool)
}

func exitCode(t *types.Type) bool {
	return t.Is(types.KindInt) || t.Is(types.KindChar) || t.Is(types.KindBool)
}

var builtins = map[string]Builtin{
	"print":   {Name: "print", Arity: 1, Accepts: printable},
	"println": {Name: "println", Arity: 1, Newline: true, Accepts: printable},
	"exit":    {Name: "exit", Arity: 1, Accepts: exitCode},
}

// LookupBuiltin finds a builtin by its name without the sigil.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}
