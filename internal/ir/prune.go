package ir

// CallTargets collects the names of user functions called anywhere in
// nodes. Calls whose results are consumed are found through the
// FuncReturn variables that carry them.
func CallTargets(c *Context, nodes []Node) map[string]struct{} {
	out := make(map[string]struct{})
	note := func(v Variable) {
		if fr, ok := v.(*FuncReturn); ok {
			out[fr.Func.Name] = struct{}{}
		}
	}
	for _, n := range nodes {
		switch n := n.(type) {
		case *Call:
			if !n.Builtin {
				out[n.Name] = struct{}{}
			}
		case *VarDecl:
			if n.Var.Base().Value.IsRef() {
				note(c.Var(n.Var.Base().Value.Ref))
			}
		case *Assign:
			if n.Value.IsRef() {
				note(c.Var(n.Value.Ref))
			}
		}
		for _, v := range Operands(n) {
			note(v)
		}
	}
	return out
}

// Prune drops the bodies of functions nothing calls. The entry function
// always survives. It returns the remaining sequence and the functions
// that were removed.
func Prune(c *Context) ([]Node, []*Function) {
	called := CallTargets(c, c.Nodes)
	drop := make(map[Node]struct{})
	var removed []*Function
	for _, f := range c.Functions() {
		if f.IsEntry() {
			continue
		}
		if _, ok := called[f.Name]; ok {
			continue
		}
		removed = append(removed, f)
		for _, n := range f.Nodes {
			drop[n] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return c.Nodes, nil
	}
	out := make([]Node, 0, len(c.Nodes)-len(drop))
	for _, n := range c.Nodes {
		if _, ok := drop[n]; !ok {
			out = append(out, n)
		}
	}
	return out, removed
}
