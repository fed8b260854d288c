package token

// Token represents a single source token with its line.
type Token struct {
	Kind Kind
	Line int
	Text string
}

// IsLiteral reports whether the token is a literal, true/false included.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, StringLit, CharLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwFn, KwIf, KwElif, KwElse, KwWhile, KwBreak, KwReturn, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
