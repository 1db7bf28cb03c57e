package telemetry

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
	"dcterrain/internal/meshing"
	"dcterrain/internal/octree"
	"dcterrain/internal/world"
)

func TestWriterHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for i := 0; i < 3; i++ {
		if err := w.Write(FrameRecord{Frame: i, DurationMs: 1.5}); err != nil {
			t.Fatal(err)
		}
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "frame,duration_ms,") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(buf.String(), "frame,") != 1 {
		t.Error("header repeated")
	}
}

func TestNilWriter(t *testing.T) {
	w, err := Create("")
	if err != nil || w != nil {
		t.Fatalf("Create(\"\") = %v, %v", w, err)
	}
	if err := w.Write(FrameRecord{}); err != nil {
		t.Error(err)
	}
	if err := w.Close(); err != nil {
		t.Error(err)
	}
}

func TestCreateMakesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "stats.csv")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(FrameRecord{Frame: 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSummarize(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(100 - i) // descending to check sorting
	}
	s := Summarize(samples)
	if s.Count != 100 || s.Max != 100 {
		t.Errorf("count %d max %v", s.Count, s.Max)
	}
	if math.Abs(s.Mean-50.5) > 1e-9 {
		t.Errorf("mean = %v", s.Mean)
	}
	if s.P50 != 50 || s.P95 != 95 || s.P99 != 99 {
		t.Errorf("quantiles = %v %v %v", s.P50, s.P95, s.P99)
	}
	if samples[0] != 100 {
		t.Error("input was reordered")
	}
	if (Summarize(nil) != Summary{}) {
		t.Error("empty summary not zero")
	}
}

func TestRecorderSlowFrames(t *testing.T) {
	r := NewRecorder(nil, 10)
	for _, ms := range []float64{5, 12, 8, 30} {
		if err := r.Record(FrameRecord{DurationMs: ms}); err != nil {
			t.Fatal(err)
		}
	}
	if r.SlowFrames() != 2 {
		t.Errorf("slow frames = %d", r.SlowFrames())
	}
	if r.Summary().Count != 4 {
		t.Errorf("summary count = %d", r.Summary().Count)
	}
}

func captureAfterSettle(t *testing.T, backend meshing.Backend) FrameRecord {
	t.Helper()
	terrain := world.NewTerrain(world.Options{
		GridSize:        10,
		WorldSize:       64,
		MinNodeSize:     32,
		UpdateFrequency: 1,
		ChunksPerFrame:  func() int { return 64 },
		PerLevelRadius:  16,
	}, backend, world.NopConsumer{})

	vps := []octree.Viewpoint{{Position: mgl32.Vec3{0, 0, 0}, Importance: 1}}
	if _, err := terrain.Settle(context.Background(), vps, 20); err != nil {
		t.Fatal(err)
	}
	return Capture(terrain, 2*time.Millisecond)
}

func TestCaptureTerrain(t *testing.T) {
	base := density.Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 20}
	rec := captureAfterSettle(t, meshing.NewCPUBackend(base, meshing.DefaultParams(), 10))
	if rec.Chunks == 0 || rec.Chunks != rec.Leaves {
		t.Errorf("chunks %d leaves %d", rec.Chunks, rec.Leaves)
	}
	if rec.Triangles == 0 || rec.Queued != 0 {
		t.Errorf("triangles %d queued %d", rec.Triangles, rec.Queued)
	}
	if rec.DurationMs != 2 {
		t.Errorf("duration = %v", rec.DurationMs)
	}
	if rec.StoreMods < uint64(rec.Chunks) {
		t.Errorf("store mods %d below %d loaded chunks", rec.StoreMods, rec.Chunks)
	}
}

func TestCaptureParallelBackend(t *testing.T) {
	base := density.Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 20}
	backend := meshing.NewParallelBackend(base, meshing.DefaultParams(), 10, 2)
	defer backend.Shutdown()
	rec := captureAfterSettle(t, backend)
	if rec.Triangles == 0 || rec.SlabQueue != 0 {
		t.Errorf("triangles %d slab queue %d", rec.Triangles, rec.SlabQueue)
	}
}
