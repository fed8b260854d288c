package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedChar   Code = 1003
	LexBadNumber          Code = 1004
	LexBadEscape          Code = 1005

	// синтаксические
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynExpectSemicolon  Code = 2002
	SynExpectIdentifier Code = 2003
	SynExpectType       Code = 2004
	SynExpectExpression Code = 2005
	SynUnclosedParen    Code = 2006
	SynUnclosedBrace    Code = 2007
	SynUnclosedBracket  Code = 2008
	SynLiteralMismatch  Code = 2009
	SynBadArrayLength   Code = 2010

	// понижение в IR
	SemaInfo            Code = 3000
	UndeclaredVariable  Code = 3001
	DuplicateVariable   Code = 3002
	UndeclaredFunction  Code = 3003
	ArityMismatch       Code = 3004
	UnknownBuiltin      Code = 3005
	InvalidOperandType  Code = 3006
	DuplicateLabel      Code = 3007
	UnresolvedType      Code = 3008
	UnsupportedFeature  Code = 3009
	DuplicateFunction   Code = 3010
	MissingEntry        Code = 3011
	DivisionByZero      Code = 3012
	MisplacedStatement  Code = 3013
	ReturnTypeMismatch  Code = 3014
	ConstantOverflow    Code = 3015

	// генерация кода
	GenInfo            Code = 4000
	RegisterExhaustion Code = 4001
	UnresolvedOperand  Code = 4002
	DuplicateGlobal    Code = 4003
	UndefinedLabel     Code = 4004

	// ввод-вывод
	IOLoadFileError  Code = 5001
	IOWriteFileError Code = 5002

	// проект
	ProjInfo            Code = 6000
	ProjMissingManifest Code = 6001
	ProjBadManifest     Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexInfo:               "Lexical information",
	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string literal",
	LexUnterminatedChar:   "Unterminated char literal",
	LexBadNumber:          "Malformed number literal",
	LexBadEscape:          "Unknown escape sequence",
	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectSemicolon:    "Missing semicolon",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectType:         "Expected type",
	SynExpectExpression:   "Expected expression",
	SynUnclosedParen:      "Unclosed parenthesis",
	SynUnclosedBrace:      "Unclosed brace",
	SynUnclosedBracket:    "Unclosed bracket",
	SynLiteralMismatch:    "Literal does not match declared type",
	SynBadArrayLength:     "Invalid array length",
	SemaInfo:              "Lowering information",
	UndeclaredVariable:    "Undeclared variable",
	DuplicateVariable:     "Duplicate variable",
	UndeclaredFunction:    "Undeclared function",
	ArityMismatch:         "Wrong number of arguments",
	UnknownBuiltin:        "Unknown builtin",
	InvalidOperandType:    "Invalid operand type",
	DuplicateLabel:        "Duplicate label",
	UnresolvedType:        "Unresolved type",
	UnsupportedFeature:    "Unsupported feature",
	DuplicateFunction:     "Duplicate function",
	MissingEntry:          "Missing entry function",
	DivisionByZero:        "Division by zero in constant expression",
	MisplacedStatement:    "Statement not allowed here",
	ReturnTypeMismatch:    "Return does not match function type",
	ConstantOverflow:      "Constant expression overflows int",
	GenInfo:               "Code generation information",
	RegisterExhaustion:    "Out of registers",
	UnresolvedOperand:     "Unresolvable variable reference",
	DuplicateGlobal:       "Duplicate global declaration",
	UndefinedLabel:        "Jump to undefined label",
	IOLoadFileError:       "Failed to load file",
	IOWriteFileError:      "Failed to write file",
	ProjInfo:              "Project information",
	ProjMissingManifest:   "Missing ils.toml",
	ProjBadManifest:       "Invalid ils.toml",
}

// ID returns the stable string form of the code, e.g. SEM3001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
