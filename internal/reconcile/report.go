package reconcile

import (
	"time"

	"tunesort/internal/decision"
	"tunesort/internal/inventory"
	"tunesort/internal/organizer"
	"tunesort/internal/tags"
)

// State names a phase of the cycle state machine.
type State string

const (
	StateIdle           State = "idle"
	StateScanning       State = "scanning"
	StateNoFilesFound   State = "no_files_found"
	StateAwaitingOracle State = "awaiting_oracle"
	StateParsing        State = "parsing"
	StateValidating     State = "validating"
	StateApplying       State = "applying"
)

// Report summarizes one cycle.
type Report struct {
	CycleID  string
	DryRun   bool
	Started  time.Time
	Duration time.Duration
	// States lists the states visited in order, starting and ending at idle.
	States []State

	Folders    []string
	Candidates []inventory.CandidateFile
	Deferred   int

	Request   string
	Response  string
	OracleErr error

	// Planned holds the validated decisions in inventory order.
	Planned    []decision.Validated
	Rejections []decision.Rejection
	Moves      []organizer.MoveResult
	Tags       []tags.Result
}

// Moved counts successful moves.
func (r Report) Moved() int {
	n := 0
	for _, m := range r.Moves {
		if m.OK() {
			n++
		}
	}
	return n
}

// Failed counts moves that left their file in the inbox.
func (r Report) Failed() int {
	return len(r.Moves) - r.Moved()
}

// OracleCalled reports whether the cycle reached the oracle.
func (r Report) OracleCalled() bool {
	for _, s := range r.States {
		if s == StateAwaitingOracle {
			return true
		}
	}
	return false
}
