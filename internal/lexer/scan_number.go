package lexer

import (
	"ilsc/internal/diag"
	"ilsc/internal/token"
)

// Только десятичные целые. Буквы сразу после цифр ("12ab") считаются ошибкой,
// токен всё равно дочитываем до конца.
func (lx *Lexer) scanNumber() token.Token {
	line := lx.cursor.Line
	start := lx.cursor.Mark()
	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		text := lx.cursor.SliceFrom(start)
		lx.errLex(diag.LexBadNumber, line, "invalid number literal "+text)
		return token.Token{Kind: token.Invalid, Line: line, Text: text}
	}
	return token.Token{Kind: token.IntLit, Line: line, Text: lx.cursor.SliceFrom(start)}
}
