// Package telemetry records per-frame streaming statistics.
package telemetry

import (
	"time"

	"dcterrain/internal/profiling"
	"dcterrain/internal/world"
)

// FrameRecord is one row of the stats CSV.
type FrameRecord struct {
	Frame      int     `csv:"frame"`
	DurationMs float64 `csv:"duration_ms"`
	Chunks     int     `csv:"chunks"`
	Leaves     int     `csv:"leaves"`
	Queued     int     `csv:"queued"`
	Dropped    int     `csv:"dropped"`
	Fading     int     `csv:"fading"`
	Meshed     int     `csv:"meshed"`
	Vertices   int     `csv:"vertices"`
	Triangles  int     `csv:"triangles"`
	Allocated  int     `csv:"allocated"`
	Operations int     `csv:"operations"`
	Missing    int64   `csv:"inconsistent_quads"`
	StoreMods  uint64  `csv:"store_mods"`
	SlabQueue  int     `csv:"slab_queue"`
}

// queueLengther is implemented by backends that sample on a worker pool.
type queueLengther interface {
	QueueLength() int
}

// Capture reads the current state of t into a record.
func Capture(t *world.Terrain, d time.Duration) FrameRecord {
	s := t.Streamer()
	rec := FrameRecord{
		Frame:      t.Frame(),
		DurationMs: float64(d.Microseconds()) / 1000,
		Chunks:     s.Store().Len(),
		Leaves:     len(t.Leaves()),
		Queued:     s.Queue().Len(),
		Dropped:    s.Queue().Dropped(),
		Fading:     s.Fading(),
		Meshed:     s.Meshed(),
		Allocated:  s.Pool().Allocated(),
		Operations: t.Index().Len(),
		Missing:    profiling.Counter("meshing.inconsistent_quads"),
		StoreMods:  s.Store().GetModCount(),
	}
	if q, ok := s.Backend().(queueLengther); ok {
		rec.SlabQueue = q.QueueLength()
	}
	for _, c := range t.Chunks() {
		if m := c.Mesh(); m != nil {
			rec.Vertices += m.VertexCount()
			rec.Triangles += m.TriangleCount()
		}
	}
	return rec
}
