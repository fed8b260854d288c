// Package scope implements the lexical scope tree used while lowering.
//
// Scopes hold names only; the variable records they point at live in the
// lowering context and are addressed by Ref. Scope 0 is the module scope.
// Declaring there also records the name in a module-wide global table that
// Resolve consults after the parent chain, so globals stay visible where no
// lexical link reaches them.
package scope

import "slices"

// ID identifies a scope. IDs are handed out sequentially starting at 0.
type ID uint32

// Ref is an opaque handle to the variable a name is bound to.
type Ref uint32

type Kind uint8

const (
	KindDefault Kind = iota
	KindIf
	KindElif
	KindElse
	KindLoop
	KindFunction
)

// Label is the prefix used for the scope's start/end labels.
func (k Kind) Label() string {
	switch k {
	case KindIf:
		return "IF"
	case KindElif:
		return "ELIF"
	case KindElse:
		return "ELSE"
	case KindLoop:
		return "LOOP"
	case KindFunction:
		return "FUNC"
	default:
		return "SCOPE"
	}
}

func (k Kind) String() string {
	switch k {
	case KindIf:
		return "if"
	case KindElif:
		return "elif"
	case KindElse:
		return "else"
	case KindLoop:
		return "loop"
	case KindFunction:
		return "function"
	default:
		return "default"
	}
}

// Conditional reports whether the scope is one arm of an if chain.
func (k Kind) Conditional() bool {
	return k == KindIf || k == KindElif || k == KindElse
}

type Scope struct {
	ID       ID
	Kind     Kind
	Parent   *Scope
	Children map[ID]*Scope

	names  []string
	locals map[string]Ref
}

// IsGlobal reports whether s is the module scope.
func (s *Scope) IsGlobal() bool {
	return s.Parent == nil
}

// Locals returns the names declared directly in s, in declaration order.
func (s *Scope) Locals() []string {
	return slices.Clone(s.names)
}

// Local returns the binding declared directly in s.
func (s *Scope) Local(name string) (Ref, bool) {
	ref, ok := s.locals[name]
	return ref, ok
}

// Visible returns every name visible from s: its own locals followed by
// those of its ancestors. The set is recomputed on every call.
func (s *Scope) Visible() []string {
	var out []string
	seen := make(map[string]struct{})
	for cur := s; cur != nil; cur = cur.Parent {
		for _, n := range cur.names {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// Enclosing walks up from s (inclusive) and returns the first scope for
// which match returns true. The walk stops before leaving a function.
func (s *Scope) Enclosing(match func(*Scope) bool) *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if match(cur) {
			return cur
		}
		if cur.Kind == KindFunction {
			return nil
		}
	}
	return nil
}

// Function returns the nearest enclosing function scope, or nil at module
// level.
func (s *Scope) Function() *Scope {
	return s.Enclosing(func(c *Scope) bool { return c.Kind == KindFunction })
}

func (s *Scope) lookup(name string) (Ref, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if ref, ok := cur.locals[name]; ok {
			return ref, true
		}
	}
	return 0, false
}
