package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	clock := time.Unix(0, 0)
	tm := NewTimer()
	tm.now = func() time.Time { return clock }

	idx := tm.Begin("manifest")
	clock = clock.Add(2 * time.Millisecond)
	tm.End(idx, "unitc.toml")
	tm.Record("production pass", 10*time.Millisecond, "3 sources")
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 || report.TotalMS != 12 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Phases[0].DurationMS != 2 || report.Phases[0].Note != "unitc.toml" {
		t.Fatalf("unexpected first phase: %+v", report.Phases[0])
	}

	summary := tm.Summary()
	for _, want := range []string{"manifest", "   2.00 ms  // unitc.toml", "production pass", "total", "12.00 ms"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("unexpected report: %+v", r)
	}
}
