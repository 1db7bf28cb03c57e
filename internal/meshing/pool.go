package meshing

import (
	"context"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
)

// SlabJob samples z rows [Z0, Z1) of Grid. Slabs never overlap, so workers
// write disjoint parts of the sample slice.
type SlabJob struct {
	Grid   *VoxelGrid
	Field  density.Field
	Origin mgl32.Vec3
	Scale  float32
	Z0, Z1 int
	Done   func()
}

// WorkerPool manages goroutines for field sampling
type WorkerPool struct {
	jobQueue chan SlabJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool creates a new sampling worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		jobQueue: make(chan SlabJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJobBlocking blocks until the job is queued. It returns false if ctx
// or the pool is done first.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job SlabJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-ctx.Done():
		return false
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			job.Grid.FillSlab(job.Field, job.Origin, job.Scale, job.Z0, job.Z1)
			if job.Done != nil {
				job.Done()
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers. Jobs still queued are not run, but their Done
// callbacks are.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
		for {
			select {
			case job := <-p.jobQueue:
				if job.Done != nil {
					job.Done()
				}
			default:
				return
			}
		}
	})
}

// GetQueueLength returns the number of slabs waiting for a worker.
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}
