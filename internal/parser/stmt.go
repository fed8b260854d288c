package parser

import (
	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/token"
)

// parseBlock разбирает { stmt* }.
func (p *Parser) parseBlock() (*ast.Block, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return nil, false
	}
	b := &ast.Block{Pos: pos(open)}
	for !p.atOr(token.RBrace, token.EOF) {
		st, ok := p.parseStmt()
		if !ok {
			return nil, false
		}
		b.Stmts = append(b.Stmts, st)
	}
	if !p.at(token.RBrace) {
		return nil, p.errAt(diag.SynUnclosedBrace, open.Line, "unclosed '{'")
	}
	p.advance()
	return b, true
}

// parseStmt выбирает распознаватель по первому токену.
func (p *Parser) parseStmt() (ast.Stmt, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.KwFn:
		// вложенные функции отвергает понижение в IR, здесь только разбираем
		return p.parseFn()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwBreak:
		p.advance()
		if !p.semicolon() {
			return nil, false
		}
		return &ast.Break{Pos: pos(tok)}, true
	case token.LBrace:
		return p.parseBlock()
	case token.At:
		call, ok := p.parseBuiltinCall()
		if !ok || !p.semicolon() {
			return nil, false
		}
		return &ast.CallStmt{Pos: pos(tok), Call: call}, true
	case token.Ident:
		return p.parseIdentStmt()
	}
	return nil, p.err(diag.SynUnexpectedToken, "unexpected "+describe(tok)+" at start of statement")
}

// parseIdentStmt: name: type [= expr]; | name[idx] = expr; | name = expr; | name(args);
func (p *Parser) parseIdentStmt() (ast.Stmt, bool) {
	name := p.advance()
	switch {
	case p.at(token.Colon):
		return p.parseVarDecl(name)
	case p.at(token.LParen):
		call, ok := p.parseCallArgs(name, false)
		if !ok || !p.semicolon() {
			return nil, false
		}
		return &ast.CallStmt{Pos: pos(name), Call: call}, true
	case p.atOr(token.Assign, token.LBracket):
		a := &ast.Assign{Pos: pos(name), Name: name.Text}
		if p.at(token.LBracket) {
			idx, ok := p.parseIndex()
			if !ok {
				return nil, false
			}
			a.Index = idx
		}
		if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '='"); !ok {
			return nil, false
		}
		v, ok := p.parseExpr()
		if !ok || !p.semicolon() {
			return nil, false
		}
		a.Value = v
		return a, true
	}
	return nil, p.err(diag.SynUnexpectedToken, "expected ':', '=', '[' or '(' after \""+name.Text+"\"")
}

func (p *Parser) parseReturn() (ast.Stmt, bool) {
	kw := p.advance()
	r := &ast.Return{Pos: pos(kw)}
	if !p.at(token.Semicolon) {
		v, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		r.Value = v
	}
	if !p.semicolon() {
		return nil, false
	}
	return r, true
}

func (p *Parser) parseIf() (ast.Stmt, bool) {
	kw := p.advance()
	cond, body, ok := p.parseCondBlock()
	if !ok {
		return nil, false
	}
	st := &ast.If{Pos: pos(kw), Cond: cond, Body: body}
	next, ok := p.parseBranch()
	if !ok {
		return nil, false
	}
	st.Next = next
	return st, true
}

// parseBranch разбирает хвост цепочки: elif (...) {...} ... | else {...} | ничего.
func (p *Parser) parseBranch() (ast.Branch, bool) {
	switch tok := p.lx.Peek(); tok.Kind {
	case token.KwElif:
		p.advance()
		cond, body, ok := p.parseCondBlock()
		if !ok {
			return nil, false
		}
		next, ok := p.parseBranch()
		if !ok {
			return nil, false
		}
		return &ast.Elif{Pos: pos(tok), Cond: cond, Body: body, Next: next}, true
	case token.KwElse:
		p.advance()
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return &ast.Else{Pos: pos(tok), Body: body}, true
	}
	return nil, true
}

func (p *Parser) parseWhile() (ast.Stmt, bool) {
	kw := p.advance()
	cond, body, ok := p.parseCondBlock()
	if !ok {
		return nil, false
	}
	return &ast.While{Pos: pos(kw), Cond: cond, Body: body}, true
}

// parseCondBlock: ( cond ) { ... }
func (p *Parser) parseCondBlock() (*ast.Cond, *ast.Block, bool) {
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' before condition")
	if !ok {
		return nil, nil, false
	}
	cond, ok := p.parseCond()
	if !ok {
		return nil, nil, false
	}
	if !p.at(token.RParen) {
		return nil, nil, p.errAt(diag.SynUnclosedParen, open.Line, "unclosed '(' around condition")
	}
	p.advance()
	body, ok := p.parseBlock()
	if !ok {
		return nil, nil, false
	}
	return cond, body, true
}

func (p *Parser) semicolon() bool {
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'")
	return ok
}
