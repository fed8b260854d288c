package ir

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// StringTable interns string literal contents under STR_n symbols. Lookups
// work both ways. Contents are NFC-normalized first so canonically equal
// spellings share one entry.
type StringTable struct {
	bySymbol  map[string]string
	byContent map[string]string
	order     []string
}

type StringEntry struct {
	Symbol  string
	Content string
}

func NewStringTable() *StringTable {
	return &StringTable{
		bySymbol:  make(map[string]string),
		byContent: make(map[string]string),
	}
}

// Intern returns the symbol for content, creating it on first sight.
func (t *StringTable) Intern(content string) string {
	content = norm.NFC.String(content)
	if sym, ok := t.byContent[content]; ok {
		return sym
	}
	sym := fmt.Sprintf("STR_%d", len(t.order))
	t.byContent[content] = sym
	t.bySymbol[sym] = content
	t.order = append(t.order, sym)
	return sym
}

func (t *StringTable) Content(symbol string) (string, bool) {
	c, ok := t.bySymbol[symbol]
	return c, ok
}

func (t *StringTable) Symbol(content string) (string, bool) {
	s, ok := t.byContent[norm.NFC.String(content)]
	return s, ok
}

func (t *StringTable) Len() int {
	return len(t.order)
}

// Entries lists the table in interning order.
func (t *StringTable) Entries() []StringEntry {
	out := make([]StringEntry, len(t.order))
	for i, sym := range t.order {
		out[i] = StringEntry{Symbol: sym, Content: t.bySymbol[sym]}
	}
	return out
}
