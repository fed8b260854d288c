package amd64

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"ilsc/internal/types"
)

type operandKind uint8

const (
	opImm operandKind = iota
	opReg
	opMem
)

// operand is a resolved instruction operand.
type operand struct {
	kind  operandKind
	reg   Reg
	imm   string
	addr  string // without brackets
	width int    // bytes, memory operands only
}

func immOp(v string) operand           { return operand{kind: opImm, imm: v} }
func regOp(r Reg) operand              { return operand{kind: opReg, reg: r} }
func memOp(addr string, w int) operand { return operand{kind: opMem, addr: addr, width: w} }

func (o operand) isMem() bool { return o.kind == opMem }
func (o operand) isReg() bool { return o.kind == opReg }
func (o operand) isImm() bool { return o.kind == opImm }

// String renders a source operand. Memory is always qualified.
func (o operand) String() string {
	switch o.kind {
	case opReg:
		return o.reg.String()
	case opMem:
		return fmt.Sprintf("%s [%s]", types.QualifierFor(o.width), o.addr)
	}
	return o.imm
}

// narrow reports whether o is memory smaller than a register.
func (o operand) narrow() bool {
	return o.kind == opMem && o.width < 8
}

// wideImm reports whether o is an immediate an ALU instruction cannot
// encode: anything outside the sign-extended 32-bit range. Symbols are
// addresses below 2 GiB in a non-PIE image and always fit.
func (o operand) wideImm() bool {
	if o.kind != opImm {
		return false
	}
	n, err := strconv.ParseInt(o.imm, 10, 64)
	if err != nil {
		return false
	}
	_, err = safecast.Conv[int32](n)
	return err != nil
}
