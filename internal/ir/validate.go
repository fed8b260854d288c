package ir

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Validate checks structural invariants of an IR sequence:
// jumps target declared labels, prologues and epilogues pair up, and every
// temporary and local is destroyed exactly once, after its last use.
func Validate(c *Context, nodes []Node) error {
	var errs []error

	labels := make(map[string]struct{})
	for _, n := range nodes {
		if l, ok := n.(*Label); ok {
			labels[l.Name] = struct{}{}
		}
	}

	declared := make(map[VarID]int)
	destroyed := make(map[VarID]int)
	destroyedAt := make(map[VarID]int)
	pos := make(map[Node]int, len(nodes))
	depth := 0
	for i, n := range nodes {
		pos[n] = i
		switch n := n.(type) {
		case *Jump:
			if _, ok := labels[n.Label]; !ok {
				errs = append(errs, fmt.Errorf("node %d: jump to undefined label %q", i, n.Label))
			}
		case *Prologue:
			depth++
			if depth > 1 {
				errs = append(errs, fmt.Errorf("node %d: nested prologue in %s", i, n.Func.Name))
			}
		case *Epilogue:
			depth--
			if depth < 0 {
				errs = append(errs, fmt.Errorf("node %d: epilogue without prologue in %s", i, n.Func.Name))
				depth = 0
			}
		case *VarDecl:
			if needsDestroy(n.Var) {
				declared[n.Var.Base().ID] = i
			}
		case *DestroyTemp:
			if _, ok := declared[n.ID]; !ok {
				errs = append(errs, fmt.Errorf("node %d: destroy of undeclared %s", i, Describe(c.Var(n.ID))))
			}
			destroyed[n.ID]++
			destroyedAt[n.ID] = i
		}
	}
	if depth != 0 {
		errs = append(errs, errors.New("unterminated function at end of sequence"))
	}
	for _, id := range slices.Sorted(maps.Keys(declared)) {
		at := declared[id]
		switch destroyed[id] {
		case 1:
		case 0:
			errs = append(errs, fmt.Errorf("node %d: %s is never destroyed", at, Describe(c.Var(id))))
		default:
			errs = append(errs, fmt.Errorf("node %d: %s destroyed %d times", at, Describe(c.Var(id)), destroyed[id]))
		}
	}
	for _, id := range slices.Sorted(maps.Keys(destroyedAt)) {
		v := c.Var(id)
		if v == nil || v.Base().LastUse == nil {
			continue
		}
		// LastUse outside nodes (a pruned body) is not checked
		if used, ok := pos[v.Base().LastUse]; ok && used > destroyedAt[id] {
			errs = append(errs, fmt.Errorf("node %d: %s used after its destroy at node %d", used, Describe(v), destroyedAt[id]))
		}
	}
	return errors.Join(errs...)
}

func needsDestroy(v Variable) bool {
	switch v := v.(type) {
	case *Temp:
		return true
	case *Named:
		return !v.Global && !v.Arg
	}
	return false
}
