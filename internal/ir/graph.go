package ir

import (
	"fmt"
	"io"
	"strconv"

	"ilsc/internal/ast"
	"ilsc/internal/diag"
)

// Block is a maximal run of IR nodes starting at a Label.
type Block struct {
	Label string
	Start int // index of the Label node
	End   int // index one past the last node scanned
	Nodes []Node
	Succs []Edge
	Preds []*Block

	// Entry is set for the first block of a function body.
	Entry bool
}

// Edge is a control transfer out of a block. Cond is ast.CmpNone for
// unconditional jumps and fallthrough.
type Edge struct {
	To   *Block
	Cond ast.CmpOp
}

// Graph is the label-delimited control-flow graph of an IR sequence.
type Graph struct {
	Blocks  []*Block
	byLabel map[string]*Block
}

// BuildGraph splits nodes into blocks and links them. A block ends at the
// next label (fallthrough edge), at an unconditional jump, or at a function
// epilogue together with its ScopeEnd.
func BuildGraph(nodes []Node) (*Graph, error) {
	g := &Graph{byLabel: make(map[string]*Block)}
	for i, n := range nodes {
		lbl, ok := n.(*Label)
		if !ok {
			continue
		}
		if _, dup := g.byLabel[lbl.Name]; dup {
			return nil, diag.Errorf(diag.DuplicateLabel, 0, "label %q defined twice (node %d)", lbl.Name, i)
		}
		b := &Block{Label: lbl.Name, Start: i, End: len(nodes)}
		if i > 0 {
			_, b.Entry = nodes[i-1].(*Prologue)
		}
		g.byLabel[lbl.Name] = b
		g.Blocks = append(g.Blocks, b)
	}
	for _, b := range g.Blocks {
		if err := g.scan(nodes, b); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) scan(nodes []Node, b *Block) error {
	for i := b.Start + 1; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case *Label:
			g.link(b, g.byLabel[n.Name], ast.CmpNone)
			b.End = i
			return nil
		case *Jump:
			to, ok := g.byLabel[n.Label]
			if !ok {
				return diag.Errorf(diag.UndefinedLabel, 0, "block %s: jump to undefined label %q", b.Label, n.Label)
			}
			b.Nodes = append(b.Nodes, n)
			g.link(b, to, n.Cond)
			if n.Unconditional() {
				b.End = i + 1
				return nil
			}
		case *Epilogue:
			b.Nodes = append(b.Nodes, n)
			if i+1 < len(nodes) {
				if end, ok := nodes[i+1].(*ScopeEnd); ok {
					b.Nodes = append(b.Nodes, end)
					i++
				}
			}
			b.End = i + 1
			return nil
		default:
			b.Nodes = append(b.Nodes, n)
		}
	}
	return nil
}

func (g *Graph) link(from, to *Block, cond ast.CmpOp) {
	from.Succs = append(from.Succs, Edge{To: to, Cond: cond})
	to.Preds = append(to.Preds, from)
}

// Block returns the block started by label.
func (g *Graph) Block(label string) (*Block, bool) {
	b, ok := g.byLabel[label]
	return b, ok
}

// Parentless lists blocks nothing jumps or falls into. Function entry
// blocks are reached by calls and are not reported.
func (g *Graph) Parentless() []*Block {
	var out []*Block
	for _, b := range g.Blocks {
		if len(b.Preds) == 0 && !b.Entry {
			out = append(out, b)
		}
	}
	return out
}

// Reachable reports whether to can be reached from from by following
// edges. cut, when non-nil, decides which edges may be taken.
func (g *Graph) Reachable(from, to *Block, cut func(Edge) bool) bool {
	seen := map[*Block]bool{from: true}
	stack := []*Block{from}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b == to {
			return true
		}
		for _, e := range b.Succs {
			if cut != nil && !cut(e) {
				continue
			}
			if !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	return false
}

// WriteDOT renders the graph in Graphviz syntax. Each block lists its
// instructions; conditional edges are labelled with their condition.
func (g *Graph) WriteDOT(w io.Writer, c *Context) error {
	ew := &errWriter{w: w}
	ew.printf("digraph %s {\n", strconv.Quote(c.File))
	ew.printf("\tnode [shape=box, fontname=monospace];\n")
	for _, b := range g.Blocks {
		text := b.Label + `:\l`
		for _, n := range b.Nodes {
			text += NodeString(c, n) + `\l`
		}
		ew.printf("\t%s [label=\"%s\"];\n", strconv.Quote(b.Label), dotEscape(text))
	}
	for _, b := range g.Blocks {
		for _, e := range b.Succs {
			if e.Cond == ast.CmpNone {
				ew.printf("\t%s -> %s;\n", strconv.Quote(b.Label), strconv.Quote(e.To.Label))
				continue
			}
			ew.printf("\t%s -> %s [label=%s];\n", strconv.Quote(b.Label), strconv.Quote(e.To.Label), strconv.Quote(e.Cond.String()))
		}
	}
	ew.printf("}\n")
	return ew.err
}

func dotEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
