package ir

import (
	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/types"
)

// cond lowers a condition chain into Compare/Jump pairs. Atoms are tested
// left to right; the operator after an atom decides where it short-circuits:
//
//	a || b   a jumps to trueL when it holds
//	a && b   a jumps to falseL when it fails
//
// The last atom jumps to trueL when it holds. Unless falseFollows, an
// unconditional jump to falseL closes the chain.
func (l *lowerer) cond(c *ast.Cond, trueL, falseL string, falseFollows bool) error {
	if c == nil || len(c.Terms) == 0 {
		return diag.Errorf(diag.SynExpectExpression, 0, "empty condition")
	}
	for i, term := range c.Terms {
		lhs, rhs, op, err := l.comparison(term)
		if err != nil {
			return err
		}
		l.emit(&Compare{LHS: lhs, RHS: rhs, Line: term.Line()})
		l.destroy(lhs)
		l.destroy(rhs)

		if i == len(c.Terms)-1 || c.Joins[i] == ast.LogicOr {
			l.emit(&Jump{Label: trueL, Cond: op})
		} else {
			l.emit(&Jump{Label: falseL, Cond: op.Negate()})
		}
	}
	if !falseFollows {
		l.emit(&Jump{Label: falseL})
	}
	return nil
}

// comparison lowers both sides of one atom. A bare operand is tested
// against 1.
func (l *lowerer) comparison(term ast.Comparison) (lhs, rhs Variable, op ast.CmpOp, err error) {
	lhs, err = l.value(term.Left)
	if err != nil {
		return nil, nil, ast.CmpNone, err
	}
	op = term.Op
	if term.Right == nil {
		rhs = l.c.NewLiteral(types.Int, "1")
		op = ast.CmpEqual
	} else if rhs, err = l.value(term.Right); err != nil {
		return nil, nil, ast.CmpNone, err
	}
	if op == ast.CmpNone {
		return nil, nil, ast.CmpNone, diag.Errorf(diag.SynUnexpectedToken, term.Line(), "missing comparison operator")
	}
	for _, v := range []Variable{lhs, rhs} {
		if t := v.Base().Type; t.Is(types.KindStr) || t.Is(types.KindArray) {
			return nil, nil, ast.CmpNone, diag.Errorf(diag.InvalidOperandType, term.Line(), "cannot compare %s values", t)
		}
	}
	return l.materialize(lhs, term.Line()), l.materialize(rhs, term.Line()), op, nil
}
