package buildpipeline

import "time"

// Role names one of the two passes.
type Role uint8

const (
	// RoleProduction compiles main sources. It always runs first.
	RoleProduction Role = iota
	// RoleTest compiles test sources against production output.
	RoleTest
)

func (r Role) String() string {
	switch r {
	case RoleProduction:
		return "production"
	case RoleTest:
		return "test"
	}
	return "unknown"
}

// RoleFor maps the isTest flag used at registration to a Role.
func RoleFor(isTest bool) Role {
	if isTest {
		return RoleTest
	}
	return RoleProduction
}

// Stage describes a phase inside one pass.
type Stage string

const (
	// StageCompile is the front-end compile call.
	StageCompile Stage = "compile"
	// StageAttribute maps compiled classes back to sources.
	StageAttribute Stage = "attribute"
	// StageWarnings drains the pass's warnings.
	StageWarnings Stage = "warnings"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the pass is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the pass finished without errors.
	StatusDone Status = "done"
	// StatusError indicates the pass reported at least one error.
	StatusError Status = "error"
)

// Event reports progress for one pass.
type Event struct {
	Pass     Role
	Stage    Stage
	Status   Status
	Sources  int
	Items    int
	Errors   int
	Warnings int
	Elapsed  time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds per-pass durations of the last CompileAll call.
type Timings struct {
	passes map[Role]time.Duration
}

// Set stores a duration for the given pass.
func (t *Timings) Set(role Role, dur time.Duration) {
	if t == nil {
		return
	}
	if t.passes == nil {
		t.passes = make(map[Role]time.Duration)
	}
	t.passes[role] = dur
}

// Has reports whether a duration for role is recorded.
func (t Timings) Has(role Role) bool {
	_, ok := t.passes[role]
	return ok
}

// Duration returns the recorded duration for role.
func (t Timings) Duration(role Role) time.Duration {
	return t.passes[role]
}

// Total returns the sum over both passes.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, d := range t.passes {
		total += d
	}
	return total
}
