// Package parser turns source text into an ast.Program. It stops at the
// first syntax error; lexical errors are collected alongside it.
package parser

import (
	"slices"

	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/lexer"
	"ilsc/internal/token"
)

type Options struct {
	MaxErrors int
	Reporter  diag.Reporter // nil: диагностики только в Result.Bag
}

type Result struct {
	Program *ast.Program
	Bag     *diag.Bag
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx     *lexer.Lexer
	file   string
	rep    diag.Reporter
	failed bool
	last   token.Token // последний съеденный токен, для номера строки в диагностике
}

// ParseFile: входная точка для разбора одного файла.
func ParseFile(file string, src []byte, opts Options) Result {
	bag := diag.NewBag(opts.MaxErrors)
	var rep diag.Reporter = diag.BagReporter{Bag: bag, File: file}
	if opts.Reporter != nil {
		rep = teeReporter{rep, opts.Reporter}
	}
	p := &Parser{
		lx:   lexer.New(src, lexer.Options{Reporter: rep}),
		file: file,
		rep:  rep,
	}
	prog := &ast.Program{File: file}
	for !p.failed && !p.at(token.EOF) {
		st, ok := p.parseTopLevel()
		if !ok {
			break
		}
		prog.Stmts = append(prog.Stmts, st)
	}
	return Result{Program: prog, Bag: bag}
}

// Parse is ParseFile for callers that only care about the first error.
func Parse(file string, src []byte) (*ast.Program, error) {
	res := ParseFile(file, src, Options{})
	if err := res.Bag.FirstError(); err != nil {
		return nil, err
	}
	return res.Program, nil
}

type teeReporter []diag.Reporter

func (t teeReporter) Report(code diag.Code, sev diag.Severity, line int, msg string) {
	for _, r := range t {
		r.Report(code, sev, line, msg)
	}
}

func (p *Parser) parseTopLevel() (ast.Stmt, bool) {
	if p.at(token.KwFn) {
		return p.parseFn()
	}
	return p.parseStmt()
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// advance: съедает следующий токен и запоминает его
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.last = tok
	}
	if tok.Kind == token.Invalid {
		// лексер уже отрепортил
		p.failed = true
	}
	return tok
}

// line: строка для диагностики: текущий токен, а на EOF: последний съеденный.
func (p *Parser) line() int {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.last.Line > 0 {
		return p.last.Line
	}
	return peek.Line
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем false.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		tok := p.advance()
		return tok, !p.failed
	}
	p.err(code, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Line: p.line()}, false
}

// err репортит первую синтаксическую ошибку; после неё разбор останавливается.
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.errAt(code, p.line(), msg)
}

func (p *Parser) errAt(code diag.Code, line int, msg string) bool {
	if p.failed {
		return false
	}
	p.failed = true
	if p.lx.Peek().Kind == token.Invalid {
		// лексер уже отрепортил
		return false
	}
	p.rep.Report(code, diag.SevError, line, msg)
	return false
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit:
		return "\"" + t.Text + "\""
	case token.StringLit:
		return "string literal"
	case token.CharLit:
		return "char literal"
	}
	return "'" + t.Kind.String() + "'"
}

func pos(t token.Token) ast.Pos { return ast.Pos{L: t.Line} }
