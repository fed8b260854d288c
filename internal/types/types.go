// Package types describes the small closed set of value types the compiler
// understands and how wide each of them is in the generated program.
package types

import (
	"fmt"
	"strings"
)

// Kind enumerates data types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindStr
	KindChar
	KindBool
	// KindIdent tags a value that is a reference to another variable rather
	// than a literal encoding.
	KindIdent
	KindVoid
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindStr:
		return "str"
	case KindChar:
		return "char"
	case KindBool:
		return "bool"
	case KindIdent:
		return "ident"
	case KindVoid:
		return "void"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Type is a resolved type. Primitive types are shared singletons; arrays are
// built with ArrayOf.
type Type struct {
	Kind   Kind
	Elem   *Type
	Length int
}

var (
	Int   = &Type{Kind: KindInt}
	Str   = &Type{Kind: KindStr}
	Char  = &Type{Kind: KindChar}
	Bool  = &Type{Kind: KindBool}
	Ident = &Type{Kind: KindIdent}
	Void  = &Type{Kind: KindVoid}
)

// ArrayOf returns a fixed-length array type.
func ArrayOf(elem *Type, length int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Length: length}
}

// Primitive maps a type keyword to its singleton.
func Primitive(name string) (*Type, bool) {
	switch name {
	case "int":
		return Int, true
	case "str":
		return Str, true
	case "char":
		return Char, true
	case "bool":
		return Bool, true
	case "void":
		return Void, true
	}
	return nil, false
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind == KindArray {
		return fmt.Sprintf("%s[%d]", t.Elem, t.Length)
	}
	return t.Kind.String()
}

// Is reports whether t has kind k.
func (t *Type) Is(k Kind) bool {
	return t != nil && t.Kind == k
}

// Equal compares types structurally.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == KindArray {
		return t.Length == o.Length && t.Elem.Equal(o.Elem)
	}
	return true
}

// Width returns the storage size in bytes of a value of this type inside the
// data section. Strings are stored as a pointer.
func (t *Type) Width() int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case KindChar, KindBool:
		return 1
	case KindInt:
		return 4
	case KindStr:
		return 8
	case KindArray:
		return t.Elem.Width() * t.Length
	}
	return 0
}

// Directive is the NASM data directive used to declare one element.
func (t *Type) Directive() string {
	if t.Is(KindArray) {
		return t.Elem.Directive()
	}
	return DirectiveFor(t.Width())
}

// Qualifier is the NASM size keyword for one element.
func (t *Type) Qualifier() string {
	if t.Is(KindArray) {
		return t.Elem.Qualifier()
	}
	return QualifierFor(t.Width())
}

// DirectiveFor maps a byte width onto db/dw/dd/dq.
func DirectiveFor(width int) string {
	switch width {
	case 1:
		return "db"
	case 2:
		return "dw"
	case 4:
		return "dd"
	default:
		return "dq"
	}
}

// QualifierFor maps a byte width onto byte/word/dword/qword.
func QualifierFor(width int) string {
	switch width {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	default:
		return "qword"
	}
}

// DefaultValue is the literal encoding used when a declaration has no
// initializer.
func (t *Type) DefaultValue() string {
	switch {
	case t.Is(KindArray):
		zeros := make([]string, t.Length)
		for i := range zeros {
			zeros[i] = "0"
		}
		return strings.Join(zeros, ", ")
	case t.Is(KindStr):
		return ""
	default:
		return "0"
	}
}

// Arithmetic reports whether values of t may appear in + - * / %.
func (t *Type) Arithmetic() bool {
	return t.Is(KindInt) || t.Is(KindChar)
}
