package diag_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ilsc/internal/diag"
)

func TestCodeID(t *testing.T) {
	tests := []struct {
		code diag.Code
		want string
	}{
		{diag.LexUnknownChar, "LEX1001"},
		{diag.SynExpectSemicolon, "SYN2002"},
		{diag.UndeclaredVariable, "SEM3001"},
		{diag.RegisterExhaustion, "GEN4001"},
		{diag.IOLoadFileError, "IO5001"},
		{diag.UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestErrorRecoverableThroughWrapping(t *testing.T) {
	base := diag.Errorf(diag.ArityMismatch, 0, "add expects 2 arguments, got %d", 1)
	wrapped := fmt.Errorf("lower main: %w", base)

	if got := diag.CodeOf(wrapped); got != diag.ArityMismatch {
		t.Fatalf("CodeOf = %v, want ArityMismatch", got)
	}
	diag.AtLine(wrapped, 12)
	diag.AtLine(wrapped, 40) // first line wins

	var de *diag.Error
	if !errors.As(wrapped, &de) {
		t.Fatal("errors.As failed")
	}
	if de.Diag.Line != 12 {
		t.Errorf("line = %d, want 12", de.Diag.Line)
	}
	if !strings.Contains(wrapped.Error(), "SEM3004") {
		t.Errorf("message lacks code: %s", wrapped)
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := diag.NewBag(3)
	r := diag.BagReporter{Bag: bag, File: "a.ils"}
	r.Report(diag.SynUnexpectedToken, diag.SevError, 5, "x")
	r.Report(diag.SynUnexpectedToken, diag.SevError, 5, "x again")
	r.Report(diag.LexUnknownChar, diag.SevWarning, 1, "y")
	r.Report(diag.LexUnknownChar, diag.SevError, 9, "dropped")

	if bag.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (limit)", bag.Len())
	}
	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("after dedup: %d items", len(items))
	}
	if items[0].Line != 1 || items[1].Line != 5 {
		t.Errorf("unexpected order: %+v", items)
	}
	if !bag.HasErrors() {
		t.Error("HasErrors = false")
	}
	if diag.CodeOf(bag.FirstError()) != diag.SynUnexpectedToken {
		t.Error("FirstError should be the syntax error")
	}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	d := diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.UndeclaredVariable,
		Message:  `variable "x" is not declared`,
		File:     "main.ils",
		Line:     3,
		Notes:    []diag.Note{{Msg: "declare it before use"}},
	}
	if err := diag.Render(&buf, []diag.Diagnostic{d}, diag.RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	want := "main.ils:3: error SEM3001: variable \"x\" is not declared\n  note: declare it before use\n"
	if buf.String() != want {
		t.Errorf("got %q\nwant %q", buf.String(), want)
	}
}
