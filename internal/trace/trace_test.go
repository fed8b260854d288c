package trace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"ilsc/internal/trace"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]trace.Level{
		"off": trace.LevelOff, "ERROR": trace.LevelError, "phase": trace.LevelPhase,
		"detail": trace.LevelDetail, "debug": trace.LevelDebug, "": trace.LevelOff,
	} {
		got, err := trace.ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := trace.ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelPhase, trace.FormatText)

	span := trace.Begin(tr, trace.ScopePass, "lower", 0)
	trace.Point(tr, trace.ScopeFunc, "func", "main", span.ID())
	span.End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ lower") || !strings.Contains(out, "← lower (ok)") {
		t.Errorf("missing span events:\n%s", out)
	}
	if strings.Contains(out, "main") {
		t.Errorf("func-scope point leaked through phase level:\n%s", out)
	}
}

func TestNDJSONIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatNDJSON)
	trace.Begin(tr, trace.ScopeDriver, "build", 0).WithExtra("files", "2").End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev["kind"] != "end" || ev["name"] != "build" {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestRingTracerWrapsAround(t *testing.T) {
	ring := trace.NewRingTracer(2, trace.LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		trace.Point(ring, trace.ScopePass, name, "", 0)
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestContextPropagation(t *testing.T) {
	if trace.FromContext(context.Background()) != trace.Nop {
		t.Error("empty context should yield Nop")
	}
	ring := trace.NewRingTracer(4, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if trace.FromContext(ctx) != trace.Tracer(ring) {
		t.Error("tracer not recovered from context")
	}
	span := trace.Begin(ring, trace.ScopePass, "emit", 0)
	ctx = trace.WithSpan(ctx, span)
	if trace.CurrentSpan(ctx) != span.ID() {
		t.Error("span id not recovered from context")
	}
}

func TestNewLevelErrorIsRingOnly(t *testing.T) {
	tr, err := trace.New(trace.Config{Level: trace.LevelError, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if trace.RingOf(tr) == nil {
		t.Error("LevelError tracer should expose a ring")
	}
}
