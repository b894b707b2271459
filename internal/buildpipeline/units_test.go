package buildpipeline

import (
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"unitc/internal/attrib"
	"unitc/internal/diag"
	"unitc/internal/failure"
)

type fakePass struct {
	name     string
	out      string
	added    []string
	classes  []string
	units    []attrib.SourceUnit
	warnings []string
	err      error
	panicVal any
	compiles int
	log      *[]string
}

func (p *fakePass) AddSource(path string) Source {
	p.added = append(p.added, path)
	return Source{Path: path, ID: len(p.added) - 1}
}

func (p *fakePass) Compile() error {
	p.compiles++
	if p.log != nil {
		*p.log = append(*p.log, "compile:"+p.name)
	}
	if p.panicVal != nil {
		panic(p.panicVal)
	}
	return p.err
}

func (p *fakePass) CompiledClasses() []string { return p.classes }

func (p *fakePass) SourceUnits() iter.Seq[attrib.SourceUnit] { return slices.Values(p.units) }

func (p *fakePass) Warnings() []string { return p.warnings }

func (p *fakePass) OutputDirectory() string { return p.out }

func newFakes(log *[]string) (*fakePass, *fakePass) {
	return &fakePass{name: "production", out: "/build/main", log: log},
		&fakePass{name: "test", out: "/build/test", log: log}
}

func mustUnits(t *testing.T, prod, test Pass, opts ...Option) *Units {
	t.Helper()
	u, err := NewUnits(prod, test, opts...)
	if err != nil {
		t.Fatalf("NewUnits: %v", err)
	}
	return u
}

func TestRegisterRoutesToPass(t *testing.T) {
	prod, test := newFakes(nil)
	u := mustUnits(t, prod, test)

	u.Register("src/main/A.groovy", false)
	reg := u.Register("src/test/ATest.groovy", true)
	u.Register("src/main/B.groovy", false)

	if diff := cmp.Diff([]string{"src/main/A.groovy", "src/main/B.groovy"}, prod.added); diff != "" {
		t.Fatalf("production sources (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"src/test/ATest.groovy"}, test.added); diff != "" {
		t.Fatalf("test sources (-want +got):\n%s", diff)
	}
	if !reg.IsTest || reg.Source.Path != "src/test/ATest.groovy" {
		t.Fatalf("unexpected registration: %+v", reg)
	}
	if got := len(u.Sources(false)); got != 2 {
		t.Fatalf("Sources(false) = %d entries", got)
	}
}

func TestRegisterKeepsFileOnFirstPass(t *testing.T) {
	prod, test := newFakes(nil)
	u := mustUnits(t, prod, test)

	first := u.Register("src/A.groovy", false)
	again := u.Register("src/A.groovy", true)
	u.Register("src/./A.groovy", false)

	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("second registration (-first +second):\n%s", diff)
	}
	if len(prod.added) != 1 || len(test.added) != 0 {
		t.Fatalf("staged production=%v test=%v", prod.added, test.added)
	}
	if got := len(u.Sources(true)); got != 0 {
		t.Fatalf("Sources(true) = %d entries", got)
	}
}

func TestNewUnitsRejectsNilPass(t *testing.T) {
	prod, _ := newFakes(nil)
	if _, err := NewUnits(prod, nil); !errors.Is(err, ErrNilPass) {
		t.Fatalf("expected ErrNilPass, got %v", err)
	}
	if _, err := NewUnits(nil, prod); !errors.Is(err, ErrNilPass) {
		t.Fatalf("expected ErrNilPass, got %v", err)
	}
}

func TestCompileAllNilSink(t *testing.T) {
	prod, test := newFakes(nil)
	u := mustUnits(t, prod, test)
	if _, err := u.CompileAll(nil); !errors.Is(err, ErrNilSink) {
		t.Fatalf("expected ErrNilSink, got %v", err)
	}
	if prod.compiles != 0 {
		t.Fatal("no pass may run without a sink")
	}
}

func TestProductionFailsTestSucceeds(t *testing.T) {
	prod, test := newFakes(nil)
	prod.err = failure.Aggregate(
		failure.SyntaxAt("unexpected token: }", "/src/main/A.groovy", 4, 1),
		failure.Plain("General error during class generation"),
	)
	test.classes = []string{"ATest", "ATest$_closure1"}
	test.units = []attrib.SourceUnit{{Path: "/src/test/ATest.groovy", TopLevel: []string{"ATest"}}}
	test.warnings = []string{"unused variable x"}

	u := mustUnits(t, prod, test)
	bag := diag.NewBag(0)
	items, err := u.CompileAll(diag.BagSink{Bag: bag})
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}

	wantDiags := []diag.Diagnostic{
		diag.New(diag.SevError, "unexpected token: }", "file:///src/main/A.groovy", 4, 1),
		diag.NewError("General error during class generation"),
		diag.NewWarning("unused variable x"),
	}
	if diff := cmp.Diff(wantDiags, bag.Items()); diff != "" {
		t.Fatalf("diagnostics (-want +got):\n%s", diff)
	}

	wantItems := []attrib.OutputItem{
		{OutputRoot: "/build/test", OutputPath: "/build/test/ATest.class", SourceFile: "/src/test/ATest.groovy"},
		{OutputRoot: "/build/test", OutputPath: "/build/test/ATest$_closure1.class", SourceFile: "/src/test/ATest.groovy"},
	}
	if diff := cmp.Diff(wantItems, items); diff != "" {
		t.Fatalf("items (-want +got):\n%s", diff)
	}
}

func TestPassOrderAndDiagnosticOrder(t *testing.T) {
	cases := []struct {
		name     string
		prodErr  error
		testErr  error
		wantMsgs []string
	}{
		{"both succeed", nil, nil, []string{"prod-warn", "test-warn"}},
		{"production fails", failure.Plain("prod-err"), nil, []string{"prod-err", "prod-warn", "test-warn"}},
		{"test fails", nil, failure.Plain("test-err"), []string{"prod-warn", "test-err", "test-warn"}},
		{"both fail", failure.Plain("prod-err"), failure.Plain("test-err"), []string{"prod-err", "prod-warn", "test-err", "test-warn"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var log []string
			prod, test := newFakes(&log)
			prod.err, test.err = tc.prodErr, tc.testErr
			prod.warnings = []string{"prod-warn"}
			test.warnings = []string{"test-warn"}

			var got []string
			sink := diag.SinkFunc(func(_ diag.Severity, msg, _ string, _, _ int) { got = append(got, msg) })
			if _, err := mustUnits(t, prod, test).CompileAll(sink); err != nil {
				t.Fatalf("CompileAll: %v", err)
			}
			if diff := cmp.Diff(tc.wantMsgs, got); diff != "" {
				t.Fatalf("diagnostic order (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"compile:production", "compile:test"}, log); diff != "" {
				t.Fatalf("pass order (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileAllIsNotCached(t *testing.T) {
	prod, test := newFakes(nil)
	prod.classes = []string{"A"}
	prod.units = []attrib.SourceUnit{{Path: "A.groovy", TopLevel: []string{"A"}}}
	u := mustUnits(t, prod, test)
	u.Register("A.groovy", false)

	first, _ := u.CompileAll(diag.BagSink{Bag: diag.NewBag(0)})
	second, _ := u.CompileAll(diag.BagSink{Bag: diag.NewBag(0)})

	if prod.compiles != 2 || test.compiles != 2 {
		t.Fatalf("expected both passes to run twice, got %d/%d", prod.compiles, test.compiles)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ (-first +second):\n%s", diff)
	}
	first[0].OutputPath = "mutated"
	if second[0].OutputPath == "mutated" {
		t.Fatal("calls share backing storage")
	}
}

func TestUnattributedClassesReported(t *testing.T) {
	prod, test := newFakes(nil)
	prod.classes = []string{"A", "Orphan", "Orphan$1"}
	prod.units = []attrib.SourceUnit{{Path: "A.groovy", TopLevel: []string{"A", "Missing"}}}
	prod.warnings = []string{"w"}

	bag := diag.NewBag(0)
	items, _ := mustUnits(t, prod, test).CompileAll(diag.BagSink{Bag: bag})

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %+v", items)
	}
	got := bag.Items()
	if len(got) != 2 || got[0].Severity != diag.SevInfo || got[1].Severity != diag.SevWarning {
		t.Fatalf("expected info then warning, got %+v", got)
	}
	if bag.HasErrors() {
		t.Fatal("unattributed classes must not be errors")
	}
}

func TestPanickingPassIsContained(t *testing.T) {
	prod, test := newFakes(nil)
	prod.panicVal = "front-end exploded"
	test.panicVal = failure.Plain("typed panic")
	prod.warnings = []string{"still drained"}

	bag := diag.NewBag(0)
	items, err := mustUnits(t, prod, test).CompileAll(diag.BagSink{Bag: bag})
	if err != nil || items != nil {
		t.Fatalf("CompileAll = %v, %v", items, err)
	}
	var msgs []string
	for _, d := range bag.Items() {
		msgs = append(msgs, d.Message)
	}
	want := []string{"An unknown error occurred.", "still drained", "typed panic"}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("diagnostics (-want +got):\n%s", diff)
	}
}

func TestForeignErrorIsReportedByText(t *testing.T) {
	prod, test := newFakes(nil)
	prod.err = errors.New("exec: \"groovyc\": executable file not found in $PATH")

	bag := diag.NewBag(0)
	mustUnits(t, prod, test).CompileAll(diag.BagSink{Bag: bag})
	if bag.Len() != 1 || bag.Items()[0].Message != prod.err.Error() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestProgressEvents(t *testing.T) {
	prod, test := newFakes(nil)
	prod.err = failure.Plain("boom")
	test.classes = []string{"T"}
	test.units = []attrib.SourceUnit{{Path: "T.groovy", TopLevel: []string{"T"}}}
	test.warnings = []string{"w"}

	var events []Event
	u := mustUnits(t, prod, test, WithProgress(ProgressFunc(func(e Event) { events = append(events, e) })))
	u.Register("A.groovy", false)
	u.Register("T.groovy", true)
	u.CompileAll(diag.BagSink{Bag: diag.NewBag(0)})

	type step struct {
		Pass   Role
		Stage  Stage
		Status Status
	}
	var got []step
	for _, e := range events {
		got = append(got, step{e.Pass, e.Stage, e.Status})
	}
	want := []step{
		{RoleProduction, "", StatusQueued},
		{RoleTest, "", StatusQueued},
		{RoleProduction, StageCompile, StatusWorking},
		{RoleProduction, StageWarnings, StatusWorking},
		{RoleProduction, "", StatusError},
		{RoleTest, StageCompile, StatusWorking},
		{RoleTest, StageAttribute, StatusWorking},
		{RoleTest, StageWarnings, StatusWorking},
		{RoleTest, "", StatusDone},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}

	last := events[len(events)-1]
	if last.Items != 1 || last.Warnings != 1 || last.Sources != 1 {
		t.Fatalf("unexpected final event: %+v", last)
	}
	tm := u.Timings()
	if !tm.Has(RoleProduction) || !tm.Has(RoleTest) {
		t.Fatal("timings not recorded")
	}
	if tm.Total() != tm.Duration(RoleProduction)+tm.Duration(RoleTest) {
		t.Fatalf("Total = %s", tm.Total())
	}
}
