package lexer

import "ilsc/internal/token"

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	line := lx.cursor.Line
	start := lx.cursor.Mark()
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	text := lx.cursor.SliceFrom(start)
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Line: line, Text: text}
	}
	return token.Token{Kind: token.Ident, Line: line, Text: text}
}
