package diag

import (
	"errors"
	"fmt"
)

// Error is the fatal channel of the compiler: lowering and emission stop at
// the first problem and hand it back wrapped in an Error.
type Error struct {
	Diag Diagnostic
}

// Errorf builds an error-severity diagnostic. line may be 0.
func Errorf(code Code, line int, format string, args ...any) *Error {
	return &Error{Diag: Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
	}}
}

func (e *Error) Error() string {
	return e.Diag.String()
}

// CodeOf returns the diagnostic code carried by err, if any.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Diag.Code
	}
	return UnknownCode
}

// AtLine fills in the line of a diagnostic error that does not know it yet.
// Errors of any other type pass through untouched.
func AtLine(err error, line int) error {
	var de *Error
	if errors.As(err, &de) && de.Diag.Line == 0 {
		de.Diag.Line = line
	}
	return err
}

// InFile stamps the file name onto a diagnostic error.
func InFile(err error, file string) error {
	var de *Error
	if errors.As(err, &de) && de.Diag.File == "" {
		de.Diag.File = file
	}
	return err
}
