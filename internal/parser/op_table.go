package parser

import (
	"ilsc/internal/ast"
	"ilsc/internal/token"
)

// Таблица приоритетов для бинарных операторов.
// Чем больше число, тем выше приоритет.
const (
	precAdditive       = 1 // + -
	precMultiplicative = 2 // * / %
)

// arithPrec возвращает приоритет арифметического оператора или 0, если это не оператор.
func arithPrec(kind token.Kind) int {
	switch kind {
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	}
	return 0
}

func arithOp(kind token.Kind) ast.ArithOp {
	switch kind {
	case token.Plus:
		return ast.OpAdd
	case token.Minus:
		return ast.OpSub
	case token.Star:
		return ast.OpMul
	case token.Slash:
		return ast.OpDiv
	case token.Percent:
		return ast.OpMod
	}
	return 0
}

func cmpOp(kind token.Kind) ast.CmpOp {
	switch kind {
	case token.EqEq:
		return ast.CmpEqual
	case token.BangEq:
		return ast.CmpNotEqual
	case token.Lt:
		return ast.CmpLess
	case token.LtEq:
		return ast.CmpLessEqual
	case token.Gt:
		return ast.CmpGreater
	case token.GtEq:
		return ast.CmpGreaterEqual
	}
	return ast.CmpNone
}
