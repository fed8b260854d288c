package amd64

import (
	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/ir"
)

func (e *Emitter) varDecl(n *ir.VarDecl) error {
	switch v := n.Var.(type) {
	case *ir.Temp:
		_, err := e.temp(v)
		return err
	case *ir.Named:
		if v.Global {
			return diag.Errorf(diag.MisplacedStatement, 0, "global %s declared inside %s", v.Name, e.fn.f.Name)
		}
		if v.Arg {
			return nil
		}
		return e.storeValue(v, nil, v.Value)
	}
	// literals, constructors and call results have no storage of their own
	return nil
}

func (e *Emitter) assign(n *ir.Assign) error {
	target, ok := n.Target.(*ir.Named)
	if !ok {
		return diag.Errorf(diag.InvalidOperandType, 0, "cannot assign to %s", ir.Describe(n.Target))
	}
	return e.storeValue(target, n.Indexed, n.Value)
}

// storeValue writes val into target, or into the element indexed selects.
// The value is resolved first: it may emit a call, which would clobber an
// index already sitting in a scratch register.
func (e *Emitter) storeValue(target *ir.Named, indexed *ir.ArrayIndexed, val ir.Value) error {
	src, err := e.value(val)
	if err != nil {
		return err
	}
	if src.isMem() || src.wideImm() {
		e.moveInto(retReg, src)
		src = regOp(retReg)
	}
	var dst operand
	if indexed != nil {
		dst, err = e.element(indexed, dstIndexReg)
	} else {
		dst, err = e.named(target)
	}
	if err != nil {
		return err
	}
	e.store(dst, src)
	return nil
}

func (e *Emitter) arith(n *ir.Arith) error {
	r, err := e.temp(n.Result)
	if err != nil {
		return err
	}
	b := e.body()
	switch n.Op {
	case ast.OpDiv, ast.OpMod:
		// idiv divides rdx:rax; neither register is ever handed to a
		// temporary, so nothing live is clobbered here
		if err := e.load(RAX, n.LHS); err != nil {
			return err
		}
		if err := e.load(divisorReg, n.RHS); err != nil {
			return err
		}
		b.ins("cqo")
		b.ins("idiv %s", divisorReg)
		if n.Op == ast.OpDiv {
			b.ins("mov %s, %s", r, RAX)
		} else {
			b.ins("mov %s, %s", r, remReg)
		}
		return nil
	}

	if err := e.load(r, n.LHS); err != nil {
		return err
	}
	rhs, err := e.operable(n.RHS, srcIndexReg)
	if err != nil {
		return err
	}
	switch n.Op {
	case ast.OpAdd:
		b.ins("add %s, %s", r, rhs)
	case ast.OpSub:
		b.ins("sub %s, %s", r, rhs)
	case ast.OpMul:
		b.ins("imul %s, %s", r, rhs)
	default:
		return diag.Errorf(diag.InvalidOperandType, 0, "unknown arithmetic operator %s", n.Op)
	}
	return nil
}

// compare emits cmp. Memory operands carry their size keyword; an
// immediate or narrow memory left side is loaded into rax first since cmp
// cannot take it as is.
func (e *Emitter) compare(n *ir.Compare) error {
	rhs, err := e.operable(n.RHS, srcIndexReg)
	if err != nil {
		return err
	}
	lhs, err := e.resolve(n.LHS, dstIndexReg)
	if err != nil {
		return err
	}
	switch {
	case lhs.isImm(),
		lhs.isMem() && rhs.isMem(),
		lhs.narrow() && !rhs.isImm():
		e.moveInto(RAX, lhs)
		lhs = regOp(RAX)
	}
	e.body().ins("cmp %s, %s", lhs, rhs)
	return nil
}

var jumpMnemonic = map[ast.CmpOp]string{
	ast.CmpNone:         "jmp",
	ast.CmpEqual:        "je",
	ast.CmpNotEqual:     "jne",
	ast.CmpLess:         "jl",
	ast.CmpLessEqual:    "jle",
	ast.CmpGreater:      "jg",
	ast.CmpGreaterEqual: "jge",
}

func (e *Emitter) jump(n *ir.Jump) {
	e.body().ins("%s .%s", jumpMnemonic[n.Cond], n.Label)
}
