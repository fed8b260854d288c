// Package observ measures how long each compilation phase of a file takes.
package observ

import (
	"fmt"
	"io"
	"time"
)

// Phase is one measured step of a compilation.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	open  bool
}

// Timer collects phases in the order they were started. A Timer belongs to
// one compilation and is not safe for concurrent use.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 6), now: time.Now}
}

// Begin starts a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now(), open: true})
	return len(t.phases) - 1
}

// End closes the phase. Unknown or already closed handles are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || !t.phases[idx].open {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
	p.open = false
}

// Track measures fn as a phase; the note is the error text when fn fails.
func (t *Timer) Track(name string, fn func() error) error {
	idx := t.Begin(name)
	err := fn()
	note := ""
	if err != nil {
		note = err.Error()
	}
	t.End(idx, note)
	return err
}

// Duration sums every closed phase called name.
func (t *Timer) Duration(name string) time.Duration {
	var d time.Duration
	for _, p := range t.phases {
		if p.Name == name && !p.open {
			d += p.Dur
		}
	}
	return d
}

// Phases returns a copy of the recorded phases.
func (t *Timer) Phases() []Phase {
	return append([]Phase(nil), t.phases...)
}

// PhaseReport: фаза в сериализуемом виде.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report: итог таймера для --timings и кэша.
type Report struct {
	File    string        `json:"file,omitempty" msgpack:"file"`
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Phases  []PhaseReport `json:"phases" msgpack:"phases"`
}

// Report converts the closed phases to milliseconds. Phases still running
// are left out.
func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		if p.open {
			continue
		}
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{
			Name:       p.Name,
			DurationMS: Millis(p.Dur),
			Note:       p.Note,
		})
	}
	r.TotalMS = Millis(total)
	return r
}

// WriteSummary prints one aligned line per phase and a total.
func (r Report) WriteSummary(w io.Writer) error {
	header := "timings:"
	if r.File != "" {
		header = "timings for " + r.File + ":"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			line += "  // " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-12s %8.2f ms\n", "total", r.TotalMS)
	return err
}

func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
