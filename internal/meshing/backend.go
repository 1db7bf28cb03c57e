package meshing

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/csg"
	"dcterrain/internal/density"
	"dcterrain/internal/profiling"
)

// FieldRequest describes one batched field evaluation.
type FieldRequest struct {
	Size    int        // samples per axis
	Origin  mgl32.Vec3 // world position of sample (0,0,0)
	Scale   float32    // world distance between samples
	Records []byte     // packed csg operations, see csg.EncodeRecords
}

// Backend evaluates density grids and extracts meshes from them.
// Implementations must produce the same topology for the same input.
type Backend interface {
	ComputeField(ctx context.Context, req FieldRequest, grid *VoxelGrid) error
	ExtractMesh(ctx context.Context, grid *VoxelGrid, scale float32) (*ContourMesh, Stats, error)
}

// CPUBackend is the single threaded reference backend.
type CPUBackend struct {
	base   density.Field
	mu     sync.Mutex
	mesher *Mesher
}

// NewCPUBackend creates a backend sampling base.
func NewCPUBackend(base density.Field, params Params, capacity int) *CPUBackend {
	return &CPUBackend{base: base, mesher: NewMesher(params, capacity)}
}

// ComputeField implements Backend.
func (b *CPUBackend) ComputeField(ctx context.Context, req FieldRequest, grid *VoxelGrid) error {
	defer profiling.Track("meshing.field")()
	field, err := prepareField(b.base, req, b.mesher.Capacity, grid)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	grid.Fill(field, req.Origin, req.Scale)
	return nil
}

// ExtractMesh implements Backend.
func (b *CPUBackend) ExtractMesh(ctx context.Context, grid *VoxelGrid, scale float32) (*ContourMesh, Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mesher.Extract(grid, scale)
}

// ParallelBackend samples the field in z slabs on a worker pool. Extraction
// runs on the calling goroutine with the reference mesher.
type ParallelBackend struct {
	base   density.Field
	pool   *WorkerPool
	slabs  int
	mu     sync.Mutex
	mesher *Mesher
}

// NewParallelBackend starts workers goroutines. Call Shutdown when done.
func NewParallelBackend(base density.Field, params Params, capacity, workers int) *ParallelBackend {
	if workers < 1 {
		workers = 1
	}
	return &ParallelBackend{
		base:   base,
		pool:   NewWorkerPool(workers, workers*4),
		slabs:  workers * 2,
		mesher: NewMesher(params, capacity),
	}
}

// ComputeField implements Backend.
func (b *ParallelBackend) ComputeField(ctx context.Context, req FieldRequest, grid *VoxelGrid) error {
	defer profiling.Track("meshing.field")()
	field, err := prepareField(b.base, req, b.mesher.Capacity, grid)
	if err != nil {
		return err
	}

	step := max(1, (req.Size+b.slabs-1)/b.slabs)
	var wg sync.WaitGroup
	for z0 := 0; z0 < req.Size; z0 += step {
		wg.Add(1)
		job := SlabJob{
			Grid:   grid,
			Field:  field,
			Origin: req.Origin,
			Scale:  req.Scale,
			Z0:     z0,
			Z1:     min(z0+step, req.Size),
			Done:   wg.Done,
		}
		if !b.pool.SubmitJobBlocking(ctx, job) {
			wg.Done()
		}
	}
	wg.Wait()
	return ctx.Err()
}

// ExtractMesh implements Backend.
func (b *ParallelBackend) ExtractMesh(ctx context.Context, grid *VoxelGrid, scale float32) (*ContourMesh, Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mesher.Extract(grid, scale)
}

// QueueLength returns the number of slabs waiting for a worker.
func (b *ParallelBackend) QueueLength() int {
	return b.pool.GetQueueLength()
}

// Shutdown stops the worker pool.
func (b *ParallelBackend) Shutdown() {
	b.pool.Shutdown()
}

func prepareField(base density.Field, req FieldRequest, capacity int, grid *VoxelGrid) (density.Field, error) {
	if capacity > 0 && req.Size > capacity {
		return nil, fmt.Errorf("%w: size %d, capacity %d", ErrCapacityExceeded, req.Size, capacity)
	}
	ops, err := csg.DecodeRecords(req.Records)
	if err != nil {
		return nil, err
	}
	grid.Reset(req.Size)
	if len(ops) == 0 {
		return base, nil
	}
	return csg.Field{Base: base, Ops: ops}, nil
}
