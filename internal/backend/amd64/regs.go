package amd64

// Reg is a general-purpose x86-64 register.
type Reg uint8

const (
	NoReg Reg = iota
	RAX
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

var regNames = [...][4]string{
	// 64, 32, 16, 8
	NoReg: {"", "", "", ""},
	RAX:   {"rax", "eax", "ax", "al"},
	RBX:   {"rbx", "ebx", "bx", "bl"},
	RCX:   {"rcx", "ecx", "cx", "cl"},
	RDX:   {"rdx", "edx", "dx", "dl"},
	RSI:   {"rsi", "esi", "si", "sil"},
	RDI:   {"rdi", "edi", "di", "dil"},
	RBP:   {"rbp", "ebp", "bp", "bpl"},
	RSP:   {"rsp", "esp", "sp", "spl"},
	R8:    {"r8", "r8d", "r8w", "r8b"},
	R9:    {"r9", "r9d", "r9w", "r9b"},
	R10:   {"r10", "r10d", "r10w", "r10b"},
	R11:   {"r11", "r11d", "r11w", "r11b"},
	R12:   {"r12", "r12d", "r12w", "r12b"},
	R13:   {"r13", "r13d", "r13w", "r13b"},
	R14:   {"r14", "r14d", "r14w", "r14b"},
	R15:   {"r15", "r15d", "r15w", "r15b"},
}

func (r Reg) String() string {
	if int(r) >= len(regNames) {
		return "?"
	}
	return regNames[r][0]
}

// Sized returns the name of the low width bytes of r.
func (r Reg) Sized(width int) string {
	if int(r) >= len(regNames) {
		return "?"
	}
	switch width {
	case 1:
		return regNames[r][3]
	case 2:
		return regNames[r][2]
	case 4:
		return regNames[r][1]
	default:
		return regNames[r][0]
	}
}

// Preserved reports whether r survives a call (callee-saved).
func (r Reg) Preserved() bool {
	switch r {
	case RBX, RBP, RSP, R12, R13, R14, R15:
		return true
	}
	return false
}

// Allocatable registers in pool order. rax, rdx, rsi and rdi never hold
// temporaries: rax carries return values and scratch loads, rdx:rax is the
// idiv pair, rsi/rdi are index scratch and builtin argument registers.
var (
	volatileRegs  = []Reg{RCX, R8, R9, R10, R11}
	preservedRegs = []Reg{RBX, R12, R13, R14, R15}
)

// Fixed roles.
const (
	retReg      = RAX // return value, mem→mem transfers
	divisorReg  = RSI
	remReg      = RDX
	srcIndexReg = RSI // index of an element read
	dstIndexReg = RDI // index of an element write
)

// aliases maps every register spelling onto its 64-bit register.
var aliases = func() map[string]Reg {
	m := make(map[string]Reg, len(regNames)*4)
	for r := RAX; int(r) < len(regNames); r++ {
		for _, name := range regNames[r] {
			m[name] = r
		}
	}
	return m
}()

// IsRegName reports whether name spells a register of any width.
func IsRegName(name string) bool {
	_, ok := aliases[name]
	return ok
}
