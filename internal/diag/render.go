package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// RenderOptions controls Render.
type RenderOptions struct {
	Color bool
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	locColor     = color.New(color.Bold)
	codeColor    = color.New(color.Faint)
)

// Render writes one diagnostic per line plus its notes.
func Render(w io.Writer, diags []Diagnostic, opts RenderOptions) error {
	for _, d := range diags {
		if err := renderOne(w, d, opts); err != nil {
			return err
		}
	}
	return nil
}

func renderOne(w io.Writer, d Diagnostic, opts RenderOptions) error {
	sev := d.Severity.String()
	loc := d.Location()
	code := d.Code.ID()
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
		if loc != "" {
			loc = locColor.Sprint(loc)
		}
		code = codeColor.Sprint(code)
	}
	var err error
	if loc != "" {
		_, err = fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev, code, d.Message)
	} else {
		_, err = fmt.Fprintf(w, "%s %s: %s\n", sev, code, d.Message)
	}
	if err != nil {
		return err
	}
	for _, n := range d.Notes {
		if n.Line > 0 {
			_, err = fmt.Fprintf(w, "  note (line %d): %s\n", n.Line, n.Msg)
		} else {
			_, err = fmt.Fprintf(w, "  note: %s\n", n.Msg)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func severityColor(s Severity) *color.Color {
	switch s {
	case SevError:
		return errorColor
	case SevWarning:
		return warningColor
	default:
		return infoColor
	}
}
