package token_test

import (
	"testing"

	"ilsc/internal/token"
)

func TestLookupKeyword(t *testing.T) {
	for word, want := range map[string]token.Kind{
		"fn":     token.KwFn,
		"elif":   token.KwElif,
		"return": token.KwReturn,
		"true":   token.KwTrue,
	} {
		got, ok := token.LookupKeyword(word)
		if !ok || got != want {
			t.Errorf("LookupKeyword(%q) = %v, %v; want %v", word, got, ok, want)
		}
	}
	for _, word := range []string{"Fn", "int", "main", "print"} {
		if _, ok := token.LookupKeyword(word); ok {
			t.Errorf("%q must not be a keyword", word)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := token.Arrow.String(); got != "->" {
		t.Errorf("Arrow = %q", got)
	}
	if got := token.Kind(200).String(); got != "Kind(?)" {
		t.Errorf("unknown kind = %q", got)
	}
	tok := token.Token{Kind: token.KwWhile}
	if !tok.IsKeyword() || tok.IsLiteral() {
		t.Error("while is a keyword, not a literal")
	}
}
