package graphics

import (
	"sort"

	"dcterrain/internal/meshing"
	"dcterrain/internal/world"
)

type pendingMesh struct {
	chunk *world.Chunk
	mesh  *meshing.ContourMesh
}

// uploadQueue collects consumer callbacks between frames so GPU work
// happens in one place.
type uploadQueue struct {
	pending map[int]pendingMesh
	hidden  []int
}

func newUploadQueue() *uploadQueue {
	return &uploadQueue{pending: make(map[int]pendingMesh)}
}

func (q *uploadQueue) ready(c *world.Chunk, m *meshing.ContourMesh) {
	q.pending[c.ID()] = pendingMesh{chunk: c, mesh: m}
}

func (q *uploadQueue) hide(c *world.Chunk) {
	delete(q.pending, c.ID())
	q.hidden = append(q.hidden, c.ID())
}

// drain returns the ids to free, then the meshes to upload ordered by id.
func (q *uploadQueue) drain() ([]int, []pendingMesh) {
	hidden := q.hidden
	q.hidden = nil
	uploads := make([]pendingMesh, 0, len(q.pending))
	for id, p := range q.pending {
		uploads = append(uploads, p)
		delete(q.pending, id)
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].chunk.ID() < uploads[j].chunk.ID() })
	return hidden, uploads
}
