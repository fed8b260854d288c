package amd64

import (
	"fmt"
	"strings"
)

// text collects the lines of one function body so that the prologue can be
// patched once the body is known.
type text struct {
	lines []string
}

// ins appends an instruction. A plain mov that overwrites the destination
// of the mov right before it replaces that mov.
func (t *text) ins(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if n := len(t.lines); n > 0 && redundantMove(t.lines[n-1], line) {
		t.lines[n-1] = "\t" + line
		return
	}
	t.lines = append(t.lines, "\t"+line)
}

func (t *text) label(name string) {
	t.lines = append(t.lines, "."+name+":")
}

func (t *text) raw(line string) {
	t.lines = append(t.lines, line)
}

// placeholder reserves a line to be filled in later.
func (t *text) placeholder() int {
	t.lines = append(t.lines, "")
	return len(t.lines) - 1
}

func (t *text) patch(at int, lines ...string) {
	rest := append(lines, t.lines[at+1:]...)
	t.lines = append(t.lines[:at], rest...)
}

func (t *text) writeTo(sb *strings.Builder) {
	for _, l := range t.lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}

// redundantMove reports whether next makes prev dead: both are plain movs
// to the same destination and next does not read it.
func redundantMove(prev, next string) bool {
	pd, _, ok := splitMov(strings.TrimPrefix(prev, "\t"))
	if !ok {
		return false
	}
	nd, ns, ok := splitMov(next)
	if !ok || pd != nd {
		return false
	}
	if r, isReg := aliases[nd]; isReg {
		return !mentions(ns, r)
	}
	// memory destination: the source must not be memory at all
	return !strings.Contains(ns, "[")
}

func splitMov(line string) (dst, src string, ok bool) {
	rest, found := strings.CutPrefix(line, "mov ")
	if !found {
		return "", "", false
	}
	dst, src, ok = strings.Cut(rest, ", ")
	return strings.TrimSpace(dst), strings.TrimSpace(src), ok
}

func mentions(operand string, r Reg) bool {
	for _, f := range strings.FieldsFunc(operand, func(c rune) bool {
		return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
	}) {
		if a, ok := aliases[f]; ok && a == r {
			return true
		}
	}
	return false
}
