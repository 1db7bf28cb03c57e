package telemetry

import (
	"fmt"
	"log"
	"sort"

	"gonum.org/v1/gonum/stat"

	"dcterrain/internal/profiling"
)

// Summary describes a distribution of frame times in milliseconds.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P95    float64
	P99    float64
	Max    float64
}

func (s Summary) String() string {
	return fmt.Sprintf("frames=%d mean=%.2fms sd=%.2fms p50=%.2fms p95=%.2fms p99=%.2fms max=%.2fms",
		s.Count, s.Mean, s.StdDev, s.P50, s.P95, s.P99, s.Max)
}

// Summarize computes a Summary of samples. samples is not modified.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Max:   sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// Recorder accumulates frame records, optionally streaming them to a Writer.
type Recorder struct {
	out        *Writer
	slowMs     float64
	durations  []float64
	slowFrames int
}

// NewRecorder creates a recorder. out may be nil. Frames slower than slowMs
// are logged; zero disables the check.
func NewRecorder(out *Writer, slowMs float64) *Recorder {
	return &Recorder{out: out, slowMs: slowMs}
}

// Record stores rec and forwards it to the writer.
func (r *Recorder) Record(rec FrameRecord) error {
	r.durations = append(r.durations, rec.DurationMs)
	if r.slowMs > 0 && rec.DurationMs > r.slowMs {
		r.slowFrames++
		log.Printf("telemetry: frame %d took %.2fms (queued=%d meshed=%d) %s", rec.Frame, rec.DurationMs, rec.Queued, rec.Meshed, profiling.TopN(3))
	}
	return r.out.Write(rec)
}

// SlowFrames returns how many recorded frames exceeded the threshold.
func (r *Recorder) SlowFrames() int { return r.slowFrames }

// Summary summarizes every recorded frame.
func (r *Recorder) Summary() Summary { return Summarize(r.durations) }
