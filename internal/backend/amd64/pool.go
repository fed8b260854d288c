package amd64

import (
	"slices"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
)

// Pool hands out registers to temporaries. Volatile and preserved
// registers are kept in two FIFO queues; released registers go to the back
// of their queue so they are reused last.
type Pool struct {
	volatile  []Reg
	preserved []Reg
	held      map[ir.VarID]Reg
	owner     map[Reg]ir.VarID
	touched   map[Reg]struct{} // preserved registers used since Reset
}

func NewPool() *Pool {
	p := &Pool{}
	p.Reset()
	return p
}

// Reset returns every register to the pool. The emitter calls it at each
// function entry.
func (p *Pool) Reset() {
	p.volatile = slices.Clone(volatileRegs)
	p.preserved = slices.Clone(preservedRegs)
	p.held = make(map[ir.VarID]Reg)
	p.owner = make(map[Reg]ir.VarID)
	p.touched = make(map[Reg]struct{})
}

// Assign gives v a register. A variable that must survive a call only
// takes preserved registers; anything else takes a volatile register and
// falls back to a preserved one.
func (p *Pool) Assign(v ir.Variable) (Reg, error) {
	id := v.Base().ID
	if r, ok := p.held[id]; ok {
		return r, nil
	}
	var r Reg
	switch {
	case v.Base().NeedsPreserved:
		if len(p.preserved) == 0 {
			return NoReg, diag.Errorf(diag.RegisterExhaustion, 0, "no callee-saved register left for %s", ir.Describe(v))
		}
		r, p.preserved = p.preserved[0], p.preserved[1:]
	case len(p.volatile) > 0:
		r, p.volatile = p.volatile[0], p.volatile[1:]
	case len(p.preserved) > 0:
		r, p.preserved = p.preserved[0], p.preserved[1:]
	default:
		return NoReg, diag.Errorf(diag.RegisterExhaustion, 0, "no register left for %s", ir.Describe(v))
	}
	if r.Preserved() {
		p.touched[r] = struct{}{}
	}
	p.held[id] = r
	p.owner[r] = id
	return r, nil
}

// Release puts the register held by id back. Unknown ids are ignored.
func (p *Pool) Release(id ir.VarID) {
	r, ok := p.held[id]
	if !ok {
		return
	}
	delete(p.held, id)
	delete(p.owner, r)
	if r.Preserved() {
		p.preserved = append(p.preserved, r)
	} else {
		p.volatile = append(p.volatile, r)
	}
}

// Held returns the register currently bound to id.
func (p *Pool) Held(id ir.VarID) (Reg, bool) {
	r, ok := p.held[id]
	return r, ok
}

// Live lists the volatile registers in use, in pool order. These are the
// ones a call would clobber.
func (p *Pool) Live() []Reg {
	var out []Reg
	for _, r := range volatileRegs {
		if _, ok := p.owner[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Touched lists preserved registers handed out since the last Reset, in
// pool order. The prologue has to save them.
func (p *Pool) Touched() []Reg {
	var out []Reg
	for _, r := range preservedRegs {
		if _, ok := p.touched[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Available reports how many registers are free.
func (p *Pool) Available() int {
	return len(p.volatile) + len(p.preserved)
}
