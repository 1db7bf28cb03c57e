package world

import (
	"container/heap"
	"fmt"

	"dcterrain/internal/csg"
)

// Priority orders remesh work. Immediate always runs before any deferred
// request; deferred requests run lowest value first.
type Priority struct {
	immediate bool
	value     int
}

// Immediate is the priority of user edits.
var Immediate = Priority{immediate: true}

// Deferred returns a normal priority.
func Deferred(n int) Priority {
	return Priority{value: n}
}

func (p Priority) IsImmediate() bool { return p.immediate }

// Value returns the deferred priority; it is 0 for Immediate.
func (p Priority) Value() int { return p.value }

func (p Priority) String() string {
	if p.immediate {
		return "immediate"
	}
	return fmt.Sprintf("deferred(%d)", p.value)
}

// Before reports whether p runs before q.
func (p Priority) Before(q Priority) bool {
	if p.immediate != q.immediate {
		return p.immediate
	}
	return p.value < q.value
}

// RemeshRequest is a queued rebuild of one chunk with the operations that
// applied to its cell when it was queued.
type RemeshRequest struct {
	Chunk    *Chunk
	Priority Priority
	Ops      []csg.Operation

	ticket uint64
	seq    uint64
}

type requestHeap []*RemeshRequest

func (h requestHeap) Len() int { return len(h) }
func (h requestHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority.Before(h[j].Priority)
	}
	return h[i].seq < h[j].seq
}
func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *requestHeap) Push(x any)   { *h = append(*h, x.(*RemeshRequest)) }
func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return r
}

// RemeshQueue is a priority queue of remesh requests, FIFO among equal
// priorities. A request is stale once its chunk is requeued, refreshed or
// released, and stale requests are dropped when they reach the front.
type RemeshQueue struct {
	h       requestHeap
	seq     uint64
	dropped int
}

// NewRemeshQueue creates an empty queue.
func NewRemeshQueue() *RemeshQueue {
	return &RemeshQueue{}
}

// Push queues c and supersedes any request already queued for it.
func (q *RemeshQueue) Push(c *Chunk, p Priority, ops []csg.Operation) {
	c.invalidate()
	q.seq++
	heap.Push(&q.h, &RemeshRequest{Chunk: c, Priority: p, Ops: ops, ticket: c.ticket, seq: q.seq})
}

// Pop returns the most urgent live request.
func (q *RemeshQueue) Pop() (*RemeshRequest, bool) {
	for q.h.Len() > 0 {
		r := heap.Pop(&q.h).(*RemeshRequest)
		if r.ticket != r.Chunk.ticket {
			q.dropped++
			continue
		}
		return r, true
	}
	return nil, false
}

// Len returns the number of queued requests, stale ones included.
func (q *RemeshQueue) Len() int { return q.h.Len() }

// Dropped returns how many stale requests were discarded.
func (q *RemeshQueue) Dropped() int { return q.dropped }
