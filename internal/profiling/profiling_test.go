package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	stop := Track("test.sleep")
	time.Sleep(2 * time.Millisecond)
	stop()
	stop = Track("test.sleep")
	stop()

	if d := Frame("test.sleep"); d < 2*time.Millisecond {
		t.Fatalf("expected at least 2ms tracked, got %v", d)
	}
	ResetFrame()
	if d := Frame("test.sleep"); d != 0 {
		t.Fatalf("expected reset frame to clear totals, got %v", d)
	}
}

func TestCounters(t *testing.T) {
	ResetCounters()
	Count("a", 2)
	Count("a", 3)
	Count("b", 0)
	if got := Counter("a"); got != 5 {
		t.Errorf("Counter(a) = %d, want 5", got)
	}
	if _, ok := Counters()["b"]; ok {
		t.Errorf("zero increments should not create a counter")
	}
	ResetFrame()
	if got := Counter("a"); got != 5 {
		t.Errorf("ResetFrame must not touch counters, got %d", got)
	}
}

func TestTopNFormatting(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["slow"] = 4200 * time.Microsecond
	frameTotals["fast"] = 1000 * time.Microsecond
	frameTotals["mid"] = 2150 * time.Microsecond
	mu.Unlock()

	got := TopN(2)
	if got != "slow:4.2ms, mid:2.1ms" {
		t.Fatalf("TopN(2) = %q", got)
	}
	if !strings.Contains(TopN(10), "fast:1ms") {
		t.Fatalf("TopN(10) = %q, expected whole-millisecond entry without decimals", TopN(10))
	}
	ResetFrame()
}
