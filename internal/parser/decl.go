package parser

import (
	"strconv"

	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/token"
	"ilsc/internal/types"
)

// parseFn: fn name(p: type, ...) [-> type] { ... }
func (p *Parser) parseFn() (ast.Stmt, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		return nil, false
	}
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name")
	if !ok {
		return nil, false
	}
	fn := &ast.FuncDecl{Pos: pos(kw), Name: name.Text, Result: types.Void}
	for !p.atOr(token.RParen, token.EOF) {
		if len(fn.Params) > 0 {
			if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' between parameters"); !ok {
				return nil, false
			}
		}
		pname, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' after parameter name"); !ok {
			return nil, false
		}
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fn.Params = append(fn.Params, ast.Param{Pos: pos(pname), Name: pname.Text, Type: typ})
	}
	if !p.at(token.RParen) {
		return nil, p.errAt(diag.SynUnclosedParen, open.Line, "unclosed '(' in parameter list")
	}
	p.advance()
	if p.at(token.Arrow) {
		p.advance()
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fn.Result = typ
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	fn.Body = body
	return fn, true
}

// parseVarDecl: name : type [= expr] ;  (name уже съеден)
func (p *Parser) parseVarDecl(name token.Token) (ast.Stmt, bool) {
	p.advance() // ':'
	typ, ok := p.parseType()
	if !ok {
		return nil, false
	}
	d := &ast.VarDecl{Pos: pos(name), Name: name.Text, Type: typ}
	if p.at(token.Assign) {
		p.advance()
		v, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if !p.checkLiteral(typ, v) {
			return nil, false
		}
		d.Value = v
	}
	if !p.semicolon() {
		return nil, false
	}
	return d, true
}

// parseType: int | str | char | bool | void, опционально [N].
func (p *Parser) parseType() (*types.Type, bool) {
	tok, ok := p.expect(token.Ident, diag.SynExpectType, "expected type")
	if !ok {
		return nil, false
	}
	typ, known := types.Primitive(tok.Text)
	if !known {
		return nil, p.errAt(diag.UnresolvedType, tok.Line, "unknown type \""+tok.Text+"\"")
	}
	if !p.at(token.LBracket) {
		return typ, true
	}
	open := p.advance()
	n, ok := p.expect(token.IntLit, diag.SynBadArrayLength, "expected array length")
	if !ok {
		return nil, false
	}
	length, err := strconv.Atoi(n.Text)
	if err != nil || length <= 0 {
		return nil, p.errAt(diag.SynBadArrayLength, n.Line, "array length must be a positive integer")
	}
	if typ.Is(types.KindVoid) || typ.Is(types.KindStr) {
		return nil, p.errAt(diag.UnresolvedType, tok.Line, "arrays of "+typ.String()+" are not supported")
	}
	if !p.at(token.RBracket) {
		return nil, p.errAt(diag.SynUnclosedBracket, open.Line, "unclosed '['")
	}
	p.advance()
	return types.ArrayOf(typ, length), true
}

// checkLiteral: литерал в инициализаторе обязан совпадать по типу с объявлением.
// Для массивов проверяется каждый элемент-литерал.
func (p *Parser) checkLiteral(want *types.Type, v ast.Expr) bool {
	switch v := v.(type) {
	case *ast.Literal:
		if want.Equal(v.Type) {
			return true
		}
		return p.errAt(diag.SynLiteralMismatch, v.Line(), "expected "+want.String()+" literal, got "+v.Type.String())
	case *ast.ArrayLit:
		if !want.Is(types.KindArray) {
			return p.errAt(diag.SynLiteralMismatch, v.Line(), "array literal assigned to "+want.String())
		}
		for _, e := range v.Elems {
			if !p.checkLiteral(want.Elem, e) {
				return false
			}
		}
	}
	return true
}
