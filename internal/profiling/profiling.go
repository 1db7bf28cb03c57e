package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler plus cumulative diagnostic counters.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	counters    = make(map[string]int64)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
// Counters are not reset.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// Frame returns the accumulated time for name in the current frame.
func Frame(name string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return frameTotals[name]
}

// Count adds n to the named counter.
func Count(name string, n int64) {
	if n == 0 {
		return
	}
	mu.Lock()
	counters[name] += n
	mu.Unlock()
}

// Counter returns the current value of the named counter.
func Counter(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return counters[name]
}

// Counters returns a copy of every counter.
func Counters() map[string]int64 {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]int64, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out
}

// ResetCounters zeroes all counters. Mostly useful in tests.
func ResetCounters() {
	mu.Lock()
	clear(counters)
	mu.Unlock()
}

// TopN formats top N durations from the current frame totals.
// Example: "meshing.Extract:4.2ms, octree.Evaluate:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+formatMs(ms))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops ".0".
func formatMs(ms float64) string {
	return strconv.FormatFloat(float64(int64(ms*10+0.0001))/10, 'f', -1, 64) + "ms"
}
