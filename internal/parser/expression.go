package parser

import (
	"strconv"
	"strings"

	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/token"
	"ilsc/internal/types"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (ast.Expr, bool) {
	return p.parseBinaryExpr(precAdditive)
}

// parseBinaryExpr: Pratt parsing для арифметики, все операторы левоассоциативны.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.Expr, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}
	for {
		tok := p.lx.Peek()
		prec := arithPrec(tok.Kind)
		if prec == 0 || prec < minPrec {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return nil, false
		}
		left = &ast.Binary{Pos: ast.Pos{L: left.Line()}, Op: arithOp(tok.Kind), Left: left, Right: right}
	}
}

// parseUnaryExpr: унарный минус. Для целых литералов сворачивается сразу,
// иначе превращается в 0 - x.
func (p *Parser) parseUnaryExpr() (ast.Expr, bool) {
	if !p.at(token.Minus) {
		return p.parsePrimaryExpr()
	}
	minus := p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}
	if lit, isLit := operand.(*ast.Literal); isLit && lit.Type.Is(types.KindInt) {
		if strings.HasPrefix(lit.Value, "-") {
			lit.Value = lit.Value[1:]
		} else {
			lit.Value = "-" + lit.Value
		}
		lit.Pos = pos(minus)
		return lit, true
	}
	zero := &ast.Literal{Pos: pos(minus), Type: types.Int, Value: "0"}
	return &ast.Binary{Pos: pos(minus), Op: ast.OpSub, Left: zero, Right: operand}, true
}

func (p *Parser) parsePrimaryExpr() (ast.Expr, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		if _, err := strconv.ParseInt(tok.Text, 10, 32); err != nil {
			return nil, p.errAt(diag.LexBadNumber, tok.Line, "integer literal "+tok.Text+" does not fit in 32 bits")
		}
		return &ast.Literal{Pos: pos(tok), Type: types.Int, Value: tok.Text}, true
	case token.StringLit:
		p.advance()
		return &ast.Literal{Pos: pos(tok), Type: types.Str, Value: tok.Text}, true
	case token.CharLit:
		p.advance()
		return &ast.Literal{Pos: pos(tok), Type: types.Char, Value: strconv.Itoa(int(tok.Text[0]))}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		v := "0"
		if tok.Kind == token.KwTrue {
			v = "1"
		}
		return &ast.Literal{Pos: pos(tok), Type: types.Bool, Value: v}, true
	case token.At:
		return p.parseBuiltinCall()
	case token.Ident:
		p.advance()
		switch {
		case p.at(token.LParen):
			return p.parseCallArgs(tok, false)
		case p.at(token.LBracket):
			idx, ok := p.parseIndex()
			if !ok {
				return nil, false
			}
			return &ast.Index{Pos: pos(tok), Name: tok.Text, Index: idx}, true
		}
		return &ast.Ident{Pos: pos(tok), Name: tok.Text}, true
	case token.LParen:
		open := p.advance()
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if !p.at(token.RParen) {
			return nil, p.errAt(diag.SynUnclosedParen, open.Line, "unclosed '('")
		}
		p.advance()
		return e, true
	case token.LBracket:
		return p.parseArrayLit()
	}
	return nil, p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
}

// parseIndex: [ expr ]
func (p *Parser) parseIndex() (ast.Expr, bool) {
	open := p.advance()
	idx, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if !p.at(token.RBracket) {
		return nil, p.errAt(diag.SynUnclosedBracket, open.Line, "unclosed '['")
	}
	p.advance()
	return idx, true
}

func (p *Parser) parseArrayLit() (ast.Expr, bool) {
	open := p.advance()
	lit := &ast.ArrayLit{Pos: pos(open)}
	for !p.atOr(token.RBracket, token.EOF) {
		if len(lit.Elems) > 0 {
			if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' between array elements"); !ok {
				return nil, false
			}
		}
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		lit.Elems = append(lit.Elems, e)
	}
	if !p.at(token.RBracket) {
		return nil, p.errAt(diag.SynUnclosedBracket, open.Line, "unclosed '['")
	}
	p.advance()
	return lit, true
}

// parseBuiltinCall: @name(args)
func (p *Parser) parseBuiltinCall() (*ast.Call, bool) {
	p.advance() // '@'
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected builtin name after '@'")
	if !ok {
		return nil, false
	}
	if !p.at(token.LParen) {
		return nil, p.err(diag.SynUnexpectedToken, "expected '(' after builtin name")
	}
	return p.parseCallArgs(name, true)
}

// parseCallArgs: ( expr, ... ): имя уже съедено.
func (p *Parser) parseCallArgs(name token.Token, builtin bool) (*ast.Call, bool) {
	open := p.advance()
	call := &ast.Call{Pos: pos(name), Name: name.Text, Builtin: builtin}
	for !p.atOr(token.RParen, token.EOF) {
		if len(call.Args) > 0 {
			if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' between arguments"); !ok {
				return nil, false
			}
		}
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		call.Args = append(call.Args, e)
	}
	if !p.at(token.RParen) {
		return nil, p.errAt(diag.SynUnclosedParen, open.Line, "unclosed '(' in call")
	}
	p.advance()
	return call, true
}
