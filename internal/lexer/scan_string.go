package lexer

import (
	"strings"

	"ilsc/internal/diag"
	"ilsc/internal/token"
)

// scanString читает "..." и кладёт в Text уже раскрытое содержимое.
// Поддерживаются escape \n \t \r \0 \\ \" \'.
func (lx *Lexer) scanString() token.Token {
	line := lx.cursor.Line
	lx.cursor.Bump() // opening '"'
	var sb strings.Builder
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			return token.Token{Kind: token.StringLit, Line: line, Text: sb.String()}
		case '\\':
			lx.cursor.Bump()
			r, ok := lx.escape()
			if !ok {
				return token.Token{Kind: token.Invalid, Line: line, Text: sb.String()}
			}
			sb.WriteByte(r)
			continue
		case '\n':
			lx.errLex(diag.LexUnterminatedString, line, "newline in string literal")
			return token.Token{Kind: token.Invalid, Line: line, Text: sb.String()}
		}
		sb.WriteByte(lx.cursor.Bump())
	}
	lx.errLex(diag.LexUnterminatedString, line, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Line: line, Text: sb.String()}
}

// scanChar читает 'x' или '\n'. Text: один байт содержимого.
func (lx *Lexer) scanChar() token.Token {
	line := lx.cursor.Line
	lx.cursor.Bump() // opening '\''
	var c byte
	switch b := lx.cursor.Peek(); b {
	case '\\':
		lx.cursor.Bump()
		r, ok := lx.escape()
		if !ok {
			return token.Token{Kind: token.Invalid, Line: line}
		}
		c = r
	case '\'', '\n', 0:
		lx.errLex(diag.LexUnterminatedChar, line, "empty or unterminated char literal")
		return token.Token{Kind: token.Invalid, Line: line}
	default:
		c = lx.cursor.Bump()
	}
	if lx.cursor.Peek() != '\'' {
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\'' && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		if lx.cursor.Peek() == '\'' {
			lx.cursor.Bump()
		}
		lx.errLex(diag.LexUnterminatedChar, line, "char literal must hold exactly one character")
		return token.Token{Kind: token.Invalid, Line: line}
	}
	lx.cursor.Bump()
	return token.Token{Kind: token.CharLit, Line: line, Text: string([]byte{c})}
}

func (lx *Lexer) escape() (byte, bool) {
	line := lx.cursor.Line
	b := lx.cursor.Bump()
	switch b {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '"', '\'':
		return b, true
	}
	lx.errLex(diag.LexBadEscape, line, "unknown escape sequence \\"+string([]byte{b}))
	return 0, false
}
