package ui

import (
	"strings"
	"testing"
	"time"

	"unitc/internal/buildpipeline"
)

func TestApplyEventTracksPasses(t *testing.T) {
	m := NewProgressModel("demo", nil).(*progressModel)

	m.applyEvent(buildpipeline.Event{Pass: buildpipeline.RoleProduction, Status: buildpipeline.StatusQueued, Sources: 3})
	m.applyEvent(buildpipeline.Event{Pass: buildpipeline.RoleProduction, Stage: buildpipeline.StageAttribute, Status: buildpipeline.StatusWorking, Sources: 3})
	if got := m.items[buildpipeline.RoleProduction].status; got != "attributing" {
		t.Fatalf("status = %q", got)
	}
	if got := m.ratio(); got != 0.35 {
		t.Fatalf("ratio = %v", got)
	}

	m.applyEvent(buildpipeline.Event{
		Pass: buildpipeline.RoleProduction, Status: buildpipeline.StatusError,
		Sources: 3, Items: 4, Errors: 1, Elapsed: 1500 * time.Millisecond,
	})
	prod := m.items[buildpipeline.RoleProduction]
	if !prod.finished || prod.status != "error" || prod.items != 4 {
		t.Fatalf("unexpected item: %+v", prod)
	}
	if got := percent(m.ratio()); got != 50 {
		t.Fatalf("percent = %d", got)
	}
	if got := describe(prod); got != "production pass, 3 sources: 4 classes, 1 errors, 0 warnings in 1.5s" {
		t.Fatalf("describe = %q", got)
	}
}

func TestApplyEventIgnoresUnknownPass(t *testing.T) {
	m := NewProgressModel("demo", nil).(*progressModel)
	if cmd := m.applyEvent(buildpipeline.Event{Pass: buildpipeline.Role(7)}); cmd != nil {
		t.Fatal("expected no command")
	}
}

func TestViewListsBothPasses(t *testing.T) {
	m := NewProgressModel("demo", nil).(*progressModel)
	m.done = true
	view := m.View()
	for _, want := range []string{"done: demo", "production pass, 0 sources", "test pass, 0 sources"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestListenForEventReportsClose(t *testing.T) {
	ch := make(chan buildpipeline.Event)
	close(ch)
	m := NewProgressModel("demo", ch).(*progressModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatal("expected doneMsg on closed channel")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("production pass", 10); got != "product..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
}
