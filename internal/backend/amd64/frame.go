package amd64

import (
	"fmt"

	"fortio.org/safecast"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
)

const slotSize = 8

// frame is the stack layout of the function being emitted.
//
//	rbp+16+8n  argument n (pushed right to left by the caller)
//	rbp+8      return address
//	rbp        saved rbp
//	rbp-8n     named local n, in first-touch order
//	below      saved callee-saved registers
type frame struct {
	fn     *ir.Function
	locals int // slots reserved by the prologue
	slots  map[ir.VarID]int
	order  []ir.VarID

	prologueAt int // index of the patch line in the function body
	pushed     int // extra 8-byte words on the stack right now (call setup)
}

func newFrame(fn *ir.Function) *frame {
	return &frame{fn: fn, slots: make(map[ir.VarID]int)}
}

// slot returns the address of v, giving a local its slot on first touch.
func (f *frame) slot(v *ir.Named) (string, error) {
	if v.Arg {
		return fmt.Sprintf("rbp+%d", 16+slotSize*v.Index), nil
	}
	n, ok := f.slots[v.ID]
	if !ok {
		n = len(f.order)
		if n >= f.locals {
			return "", diag.Errorf(diag.UnresolvedOperand, 0, "no stack slot left for %s in %s (%d reserved)", v.Name, f.fn.Name, f.locals)
		}
		f.slots[v.ID] = n
		f.order = append(f.order, v.ID)
	}
	return fmt.Sprintf("rbp-%d", slotSize*(n+1)), nil
}

// size returns the bytes reserved below rbp for locals plus the saved
// registers, padded so rsp stays 16-byte aligned.
func (f *frame) size(saved int) int {
	n := slotSize * f.locals
	if (n+slotSize*saved)%16 != 0 {
		n += slotSize
	}
	return n
}

func frameWords(n int) uint32 {
	w, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("frame size overflow: %w", err))
	}
	return w
}
