package scope

import (
	"fmt"

	"fortio.org/safecast"

	"ilsc/internal/diag"
)

// Tree owns every scope of one compilation unit.
type Tree struct {
	scopes  []*Scope
	globals map[string]Ref
}

// NewTree returns a tree holding only the module scope.
func NewTree() *Tree {
	t := &Tree{globals: make(map[string]Ref)}
	t.scopes = append(t.scopes, newScope(0, KindDefault, nil))
	return t
}

func newScope(id ID, kind Kind, parent *Scope) *Scope {
	return &Scope{
		ID:       id,
		Kind:     kind,
		Parent:   parent,
		Children: make(map[ID]*Scope),
		locals:   make(map[string]Ref),
	}
}

// Global returns scope 0.
func (t *Tree) Global() *Scope {
	return t.scopes[0]
}

// Get returns the scope with the given id.
func (t *Tree) Get(id ID) *Scope {
	if int(id) >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// Len reports how many scopes exist.
func (t *Tree) Len() int {
	return len(t.scopes)
}

// NewChild creates a scope under parent with the next sequential id.
func (t *Tree) NewChild(parent *Scope, kind Kind) *Scope {
	if parent == nil {
		parent = t.Global()
	}
	n, err := safecast.Conv[uint32](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("len(scopes) overflow: %w", err))
	}
	child := newScope(ID(n), kind, parent)
	t.scopes = append(t.scopes, child)
	parent.Children[child.ID] = child
	return child
}

// Declare binds name in s. Redeclaring a name at module level is a silent
// no-op and reports declared=false together with the existing binding;
// anywhere else a name that is already visible is a DuplicateVariable.
func (t *Tree) Declare(s *Scope, name string, ref Ref) (Ref, bool, error) {
	if s.IsGlobal() {
		if prev, ok := t.globals[name]; ok {
			return prev, false, nil
		}
		t.globals[name] = ref
		s.names = append(s.names, name)
		s.locals[name] = ref
		return ref, true, nil
	}
	if _, ok := t.lookup(s, name); ok {
		return 0, false, diag.Errorf(diag.DuplicateVariable, 0, "variable %q is already declared", name)
	}
	s.names = append(s.names, name)
	s.locals[name] = ref
	return ref, true, nil
}

// Resolve finds the binding for name visible from s, falling back to the
// module-wide global table.
func (t *Tree) Resolve(s *Scope, name string) (Ref, error) {
	if ref, ok := t.lookup(s, name); ok {
		return ref, nil
	}
	return 0, diag.Errorf(diag.UndeclaredVariable, 0, "variable %q is not declared", name)
}

// IsGlobalName reports whether name is in the module-wide global table.
func (t *Tree) IsGlobalName(name string) bool {
	_, ok := t.globals[name]
	return ok
}

func (t *Tree) lookup(s *Scope, name string) (Ref, bool) {
	if s != nil {
		if ref, ok := s.lookup(name); ok {
			return ref, true
		}
	}
	ref, ok := t.globals[name]
	return ref, ok
}
