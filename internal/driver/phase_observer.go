package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary of one file.
type PhaseEvent struct {
	File    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Compile. It may be
// called from several goroutines when files are compiled in parallel.
type PhaseObserver func(PhaseEvent)

// Phase names, in pipeline order.
const (
	PhaseParse = "parse"
	PhaseLower = "lower"
	PhasePrune = "prune"
	PhaseEmit  = "emit"
)
