package buildpipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"unitc/internal/attrib"
	"unitc/internal/diag"
	"unitc/internal/normalize"
	"unitc/internal/trace"
)

var (
	// ErrNilPass is returned by NewUnits when a pass is missing.
	ErrNilPass = errors.New("buildpipeline: nil pass")
	// ErrNilSink is returned by CompileAll when called without a sink.
	ErrNilSink = errors.New("buildpipeline: nil sink")
)

type stage struct {
	role    Role
	pass    Pass
	sources []Registration
}

// Units drives the production and test passes of one build.
//
// It is a two-stage pipeline: stages[RoleProduction] always runs before
// stages[RoleTest], because test sources compile against production output.
// A failed production pass does not stop the test pass.
//
// Units is not safe for concurrent use. The passes belong to the caller and
// are never closed by Units.
type Units struct {
	stages   [2]stage
	byPath   map[string]Registration
	tracer   trace.Tracer
	progress ProgressSink
	timings  Timings
}

// Option configures Units.
type Option func(*Units)

// WithTracer routes pass and source-unit spans to t.
func WithTracer(t trace.Tracer) Option {
	return func(u *Units) {
		if t != nil {
			u.tracer = t
		}
	}
}

// WithProgress reports pass progress to sink.
func WithProgress(sink ProgressSink) Option {
	return func(u *Units) { u.progress = sink }
}

// NewUnits builds the pipeline over the production and test passes.
func NewUnits(production, test Pass, opts ...Option) (*Units, error) {
	if production == nil {
		return nil, fmt.Errorf("production: %w", ErrNilPass)
	}
	if test == nil {
		return nil, fmt.Errorf("test: %w", ErrNilPass)
	}
	u := &Units{
		stages: [2]stage{
			RoleProduction: {role: RoleProduction, pass: production},
			RoleTest:       {role: RoleTest, pass: test},
		},
		byPath: make(map[string]Registration),
		tracer: trace.Nop,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Register stages path on the test pass when isTest is set, otherwise on the
// production pass.
//
// A file belongs to one pass only. Registering a path that is already
// registered, on either pass, stages nothing and returns the first
// registration; the caller can compare its IsTest with the one requested.
func (u *Units) Register(path string, isTest bool) Registration {
	key := filepath.Clean(path)
	if prev, ok := u.byPath[key]; ok {
		trace.Point(u.tracer, trace.ScopeDriver, "duplicate_source", path, 0,
			map[string]string{"pass": RoleFor(prev.IsTest).String()})
		return prev
	}
	st := &u.stages[RoleFor(isTest)]
	reg := Registration{
		Path:   path,
		IsTest: isTest,
		Source: st.pass.AddSource(path),
	}
	st.sources = append(st.sources, reg)
	u.byPath[key] = reg
	return reg
}

// Sources returns the files registered on one pass, in registration order.
func (u *Units) Sources(isTest bool) []Registration {
	return slices.Clone(u.stages[RoleFor(isTest)].sources)
}

// Timings returns pass durations of the last CompileAll call.
func (u *Units) Timings() Timings {
	return u.timings
}

// CompileAll compiles both passes and returns their output items, production
// items first.
//
// Every failure, warning and unattributed class becomes a diagnostic pushed to
// sink: production diagnostics precede test diagnostics, and within a pass
// errors precede warnings. Nothing is cached between calls. The only error
// returned is ErrNilSink.
func (u *Units) CompileAll(sink diag.Sink) ([]attrib.OutputItem, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	u.timings = Timings{}

	span := trace.Begin(u.tracer, trace.ScopeDriver, "compile_all", 0)
	for i := range u.stages {
		u.emit(Event{Pass: u.stages[i].role, Status: StatusQueued, Sources: len(u.stages[i].sources)})
	}

	var items []attrib.OutputItem
	for i := range u.stages {
		items = append(items, u.compilePass(&u.stages[i], sink, span.ID())...)
	}

	span.WithExtra("items", strconv.Itoa(len(items))).End("")
	return items, nil
}

func (u *Units) compilePass(st *stage, sink diag.Sink, parent uint64) []attrib.OutputItem {
	start := time.Now()
	span := trace.Begin(u.tracer, trace.ScopePass, "pass:"+st.role.String(), parent)
	counted := &countingSink{next: sink}
	ev := Event{Pass: st.role, Sources: len(st.sources)}

	u.emitStage(ev, StageCompile)
	failed, diags := guard(st.pass.Compile)

	var items []attrib.OutputItem
	if failed {
		diag.EmitAll(counted, diags)
	} else {
		u.emitStage(ev, StageAttribute)
		items = u.attribute(st, counted, span.ID())
	}

	// Warnings are drained whatever the outcome of the pass.
	u.emitStage(ev, StageWarnings)
	var warnings []string
	if failed, diags := guard(func() error { warnings = st.pass.Warnings(); return nil }); failed {
		diag.EmitAll(counted, diags)
	}
	diag.EmitAll(counted, normalize.Warnings(warnings))

	elapsed := time.Since(start)
	u.timings.Set(st.role, elapsed)

	ev.Items = len(items)
	ev.Errors = counted.errors
	ev.Warnings = counted.warnings
	ev.Elapsed = elapsed
	ev.Status = StatusDone
	if counted.errors > 0 {
		ev.Status = StatusError
	}
	u.emit(ev)

	span.WithExtra("items", strconv.Itoa(len(items))).
		WithExtra("errors", strconv.Itoa(counted.errors)).
		WithExtra("warnings", strconv.Itoa(counted.warnings)).
		End(string(ev.Status))
	return items
}

func (u *Units) attribute(st *stage, sink diag.Sink, parent uint64) []attrib.OutputItem {
	var res attrib.Result
	failed, diags := guard(func() error {
		res = attrib.Resolve(st.pass.OutputDirectory(), st.pass.CompiledClasses(), st.pass.SourceUnits())
		return nil
	})
	if failed {
		diag.EmitAll(sink, diags)
		return nil
	}

	u.traceUnits(res.Items, parent)
	if d, ok := normalize.Unattributed(st.role.String(), res.Unattributed); ok {
		diag.Emit(sink, d)
	}
	return res.Items
}

// traceUnits emits one detail event per source file with the classes
// attributed to it.
func (u *Units) traceUnits(items []attrib.OutputItem, parent uint64) {
	if !u.tracer.Enabled() || !u.tracer.Level().ShouldEmit(trace.ScopeUnit) {
		return
	}
	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].SourceFile == items[i].SourceFile {
			trace.Point(u.tracer, trace.ScopeClass, "class", items[j].OutputPath, parent, nil)
			j++
		}
		trace.Point(u.tracer, trace.ScopeUnit, "unit:"+items[i].SourceFile, "", parent,
			map[string]string{"classes": strconv.Itoa(j - i)})
		i = j
	}
}

func (u *Units) emitStage(ev Event, stage Stage) {
	ev.Stage = stage
	ev.Status = StatusWorking
	u.emit(ev)
}

func (u *Units) emit(ev Event) {
	if u.progress != nil {
		u.progress.OnEvent(ev)
	}
}

// guard runs fn and turns a returned error or a panic into diagnostics.
func guard(fn func() error) (failed bool, diags []diag.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			failed, diags = true, normalize.Panic(r)
		}
	}()
	if err := fn(); err != nil {
		return true, normalize.Error(err)
	}
	return false, nil
}

type countingSink struct {
	next     diag.Sink
	errors   int
	warnings int
}

func (s *countingSink) Push(sev diag.Severity, msg, location string, line, column int) {
	switch sev {
	case diag.SevError:
		s.errors++
	case diag.SevWarning:
		s.warnings++
	}
	s.next.Push(sev, msg, location, line, column)
}
