package ir

import (
	"fmt"

	"fortio.org/safecast"

	"ilsc/internal/diag"
	"ilsc/internal/scope"
	"ilsc/internal/types"
)

// Context owns everything one compilation unit produces while lowering:
// the scope tree, every variable, the string table, labels, functions and
// the IR sequence itself. Contexts share nothing, so separate units can be
// compiled concurrently.
type Context struct {
	File    string
	Scopes  *scope.Tree
	Strings *StringTable
	Nodes   []Node

	vars      []Variable
	funcs     map[string]*Function
	funcOrder []*Function
	globals   []*Named
	labels    map[string]struct{}
	labelSeq  int
}

func NewContext(file string) *Context {
	return &Context{
		File:    file,
		Scopes:  scope.NewTree(),
		Strings: NewStringTable(),
		funcs:   make(map[string]*Function),
		labels:  make(map[string]struct{}),
	}
}

// Var returns the variable with the given id, or nil.
func (c *Context) Var(id VarID) Variable {
	if id == NoVar || int(id) > len(c.vars) {
		return nil
	}
	return c.vars[id-1]
}

// VarCount reports how many variables have been created.
func (c *Context) VarCount() int {
	return len(c.vars)
}

// Function looks up a declared function.
func (c *Context) Function(name string) (*Function, bool) {
	f, ok := c.funcs[name]
	return f, ok
}

// Functions lists declared functions in declaration order.
func (c *Context) Functions() []*Function {
	return c.funcOrder
}

// Globals lists global variables in declaration order.
func (c *Context) Globals() []*Named {
	return c.globals
}

// HasLabel reports whether name has been declared.
func (c *Context) HasLabel(name string) bool {
	_, ok := c.labels[name]
	return ok
}

// Describe renders a value for dumps: the literal, or the name of the
// variable it refers to.
func (c *Context) Describe(v Value) string {
	if v.IsRef() {
		return Describe(c.Var(v.Ref))
	}
	return v.Lit
}

func (c *Context) addFunction(f *Function) error {
	if _, dup := c.funcs[f.Name]; dup {
		return diag.Errorf(diag.DuplicateFunction, f.Line, "function %q is already declared", f.Name)
	}
	c.funcs[f.Name] = f
	c.funcOrder = append(c.funcOrder, f)
	return nil
}

func (c *Context) declareLabel(name string) error {
	if _, dup := c.labels[name]; dup {
		return diag.Errorf(diag.DuplicateLabel, 0, "label %q is already defined", name)
	}
	c.labels[name] = struct{}{}
	return nil
}

func (c *Context) nextLabelSeq() int {
	n := c.labelSeq
	c.labelSeq++
	return n
}

func (c *Context) register(v Variable) {
	n, err := safecast.Conv[uint32](len(c.vars) + 1)
	if err != nil {
		panic(fmt.Errorf("variable id overflow: %w", err))
	}
	v.Base().ID = VarID(n)
	c.vars = append(c.vars, v)
}

// NewNamed creates a source-level variable.
func (c *Context) NewNamed(name string, typ *types.Type, global, arg bool, sc scope.ID) *Named {
	v := &Named{Name: name, Global: global, Arg: arg, Scope: sc}
	v.Type = typ
	c.register(v)
	if global {
		c.globals = append(c.globals, v)
	}
	return v
}

// NewTemp creates a temporary. Arithmetic results are named TEMP_OP_RES_n,
// copies TEMP_n.
func (c *Context) NewTemp(typ *types.Type, val Value, result bool, sc scope.ID) *Temp {
	v := &Temp{Scope: sc}
	v.Type = typ
	v.Value = val
	c.register(v)
	if result {
		v.Name = fmt.Sprintf("TEMP_OP_RES_%d", v.ID)
	} else {
		v.Name = fmt.Sprintf("TEMP_%d", v.ID)
	}
	return v
}

// NewLiteral creates an immediate. String contents are interned and the
// literal holds the symbol.
func (c *Context) NewLiteral(typ *types.Type, text string) *Literal {
	v := &Literal{}
	v.Type = typ
	if typ.Is(types.KindStr) {
		text = c.Strings.Intern(text)
	}
	v.Value = Lit(text)
	c.register(v)
	return v
}

func (c *Context) NewArrayIndexed(arr *Named, index Variable) *ArrayIndexed {
	v := &ArrayIndexed{Array: arr, Index: index}
	v.Type = arr.Type.Elem
	c.register(v)
	return v
}

func (c *Context) NewArray(elem *types.Type, length int, init string) *Array {
	v := &Array{Elem: elem, Length: length, Init: init}
	v.Type = types.ArrayOf(elem, length)
	v.Value = Lit(init)
	c.register(v)
	return v
}

func (c *Context) NewFuncReturn(f *Function, call *Call) *FuncReturn {
	v := &FuncReturn{Func: f, Call: call}
	v.Type = f.Return
	v.Value = Lit("rax")
	c.register(v)
	return v
}
