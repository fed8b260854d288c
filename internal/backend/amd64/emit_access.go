package amd64

import (
	"fmt"
	"strconv"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/types"
)

// resolve computes the operand for v. index is the scratch register an
// element access may load its index into. Temporaries get a register on
// first touch; a pending call result emits the call and lives in rax.
func (e *Emitter) resolve(v ir.Variable, index Reg) (operand, error) {
	switch v := v.(type) {
	case *ir.Literal:
		return immOp(v.Value.Lit), nil
	case *ir.Named:
		return e.named(v)
	case *ir.Temp:
		r, err := e.temp(v)
		if err != nil {
			return operand{}, err
		}
		return regOp(r), nil
	case *ir.ArrayIndexed:
		return e.element(v, index)
	case *ir.FuncReturn:
		if err := e.userCall(v.Call); err != nil {
			return operand{}, err
		}
		return regOp(retReg), nil
	case *ir.Array:
		return operand{}, diag.Errorf(diag.InvalidOperandType, 0, "array constructor %s used as a value", ir.Describe(v))
	case nil:
		return operand{}, diag.Errorf(diag.UnresolvedOperand, 0, "missing operand")
	}
	return operand{}, diag.Errorf(diag.UnresolvedOperand, 0, "unknown variable %T", v)
}

// value resolves what a declaration or assignment stores: a literal of
// type lit, or the variable it refers to.
func (e *Emitter) value(val ir.Value) (operand, error) {
	if !val.IsRef() {
		return immOp(val.Lit), nil
	}
	v := e.c.Var(val.Ref)
	if v == nil {
		return operand{}, diag.Errorf(diag.UnresolvedOperand, 0, "reference to unknown variable #%d", val.Ref)
	}
	return e.resolve(v, srcIndexReg)
}

func (e *Emitter) named(v *ir.Named) (operand, error) {
	switch {
	case v.Type.Is(types.KindArray):
		return operand{}, diag.Errorf(diag.InvalidOperandType, 0, "array %s used as a value", v.Name)
	case v.Global && v.Type.Is(types.KindStr):
		return operand{}, diag.Errorf(diag.UnsupportedFeature, 0, "global string %s has no storage", v.Name)
	case v.Global:
		return memOp(v.Name, v.Type.Width()), nil
	}
	addr, err := e.fn.frame.slot(v)
	if err != nil {
		return operand{}, err
	}
	return memOp(addr, slotSize), nil
}

// temp returns the register of t, loading its value the first time.
func (e *Emitter) temp(t *ir.Temp) (Reg, error) {
	if r, ok := e.pool.Held(t.ID); ok {
		return r, nil
	}
	src, err := e.value(t.Value)
	if err != nil {
		return NoReg, err
	}
	r, err := e.pool.Assign(t)
	if err != nil {
		return NoReg, err
	}
	e.moveInto(r, src)
	return r, nil
}

// element addresses arr[index]. Only module-level arrays have storage.
func (e *Emitter) element(v *ir.ArrayIndexed, index Reg) (operand, error) {
	arr := v.Array
	if !arr.Global {
		return operand{}, diag.Errorf(diag.UnsupportedFeature, 0, "local array %s has no storage", arr.Name)
	}
	w := arr.Type.Elem.Width()
	idx, err := e.resolve(v.Index, index)
	if err != nil {
		return operand{}, err
	}
	switch {
	case idx.isImm():
		n, err := strconv.Atoi(idx.imm)
		if err != nil {
			return operand{}, diag.Errorf(diag.InvalidOperandType, 0, "array index %q is not a number", idx.imm)
		}
		if n == 0 {
			return memOp(arr.Name, w), nil
		}
		return memOp(fmt.Sprintf("%s + %d", arr.Name, n*w), w), nil
	case idx.isMem():
		e.moveInto(index, idx)
		idx = regOp(index)
	}
	return memOp(fmt.Sprintf("%s + %s*%d", arr.Name, idx.reg, w), w), nil
}

// moveInto loads src into r, widening narrow memory: ints sign-extend,
// chars and bools zero-extend.
func (e *Emitter) moveInto(r Reg, src operand) {
	b := e.body()
	switch {
	case src.isReg() && src.reg == r:
	case src.isMem() && src.width == 4:
		b.ins("movsxd %s, %s", r, src)
	case src.isMem() && src.width < 4:
		b.ins("movzx %s, %s", r, src)
	default:
		b.ins("mov %s, %s", r, src)
	}
}

// load resolves v straight into r.
func (e *Emitter) load(r Reg, v ir.Variable) error {
	src, err := e.resolve(v, srcIndexReg)
	if err != nil {
		return err
	}
	e.moveInto(r, src)
	return nil
}

// operable resolves v into something an ALU instruction can take next to a
// register: narrow memory and wide immediates go through scratch.
func (e *Emitter) operable(v ir.Variable, scratch Reg) (operand, error) {
	op, err := e.resolve(v, scratch)
	if err != nil {
		return operand{}, err
	}
	if op.narrow() || op.wideImm() {
		e.moveInto(scratch, op)
		return regOp(scratch), nil
	}
	return op, nil
}

// store writes src into dst. Memory destinations take the low bytes of a
// register source; memory-to-memory goes through rax.
func (e *Emitter) store(dst, src operand) {
	if dst.isReg() {
		e.moveInto(dst.reg, src)
		return
	}
	if src.isMem() || src.wideImm() {
		e.moveInto(retReg, src)
		src = regOp(retReg)
	}
	if src.isReg() {
		e.body().ins("mov %s, %s", dst, src.reg.Sized(dst.width))
		return
	}
	e.body().ins("mov %s, %s", dst, src)
}
