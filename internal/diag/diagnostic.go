package diag

import "fmt"

type Note struct {
	Line int
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Line     int // 0 when unknown
	Notes    []Note
}

// Location formats file:line, omitting whatever is unknown.
func (d Diagnostic) Location() string {
	switch {
	case d.File != "" && d.Line > 0:
		return fmt.Sprintf("%s:%d", d.File, d.Line)
	case d.File != "":
		return d.File
	case d.Line > 0:
		return fmt.Sprintf("line %d", d.Line)
	}
	return ""
}

func (d Diagnostic) String() string {
	loc := d.Location()
	if loc == "" {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code.ID(), d.Message)
	}
	return fmt.Sprintf("%s: %s %s: %s", loc, d.Severity, d.Code.ID(), d.Message)
}
