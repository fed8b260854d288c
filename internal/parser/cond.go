package parser

import (
	"ilsc/internal/ast"
	"ilsc/internal/token"
)

// parseCond: cmp ((&& | ||) cmp)*, операторы объединяются слева направо без приоритета.
func (p *Parser) parseCond() (*ast.Cond, bool) {
	c := &ast.Cond{Pos: ast.Pos{L: p.line()}}
	for {
		term, ok := p.parseComparison()
		if !ok {
			return nil, false
		}
		c.Terms = append(c.Terms, term)
		switch {
		case p.at(token.AndAnd):
			p.advance()
			c.Joins = append(c.Joins, ast.LogicAnd)
		case p.at(token.OrOr):
			p.advance()
			c.Joins = append(c.Joins, ast.LogicOr)
		default:
			return c, true
		}
	}
}

// parseComparison: expr [op expr]. Без оператора это проверка на истинность.
func (p *Parser) parseComparison() (ast.Comparison, bool) {
	left, ok := p.parseExpr()
	if !ok {
		return ast.Comparison{}, false
	}
	cmp := ast.Comparison{Pos: ast.Pos{L: left.Line()}, Left: left}
	op := cmpOp(p.lx.Peek().Kind)
	if op == ast.CmpNone {
		return cmp, true
	}
	p.advance()
	right, ok := p.parseExpr()
	if !ok {
		return ast.Comparison{}, false
	}
	cmp.Op, cmp.Right = op, right
	return cmp, true
}
