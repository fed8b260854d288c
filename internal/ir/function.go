package ir

import (
	"ilsc/internal/scope"
	"ilsc/internal/types"
)

// EntryName is the program entry point. It is exempt from pruning and gets
// the reserved FUNC_MAIN_START/FUNC_MAIN_END labels.
const EntryName = "main"

type Function struct {
	Name      string
	Return    *types.Type
	Params    []*Named
	Nodes     []Node
	CallCount int
	Scope     *scope.Scope // set once the body has been lowered
	Line      int
}

func (f *Function) IsVoid() bool {
	return f.Return == nil || f.Return.Is(types.KindVoid)
}

func (f *Function) IsEntry() bool {
	return f.Name == EntryName
}
