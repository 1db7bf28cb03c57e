package graphics

import (
	"testing"

	"dcterrain/internal/meshing"
	"dcterrain/internal/world"
)

func TestUploadQueueOrdering(t *testing.T) {
	pool := world.NewChunkPool()
	a, b := pool.Get(), pool.Get()
	mesh := &meshing.ContourMesh{}

	q := newUploadQueue()
	q.ready(b, mesh)
	q.ready(a, mesh)
	q.hide(b) // hidden after its mesh arrived: nothing to upload
	hidden, uploads := q.drain()
	if len(hidden) != 1 || hidden[0] != b.ID() {
		t.Errorf("hidden = %v", hidden)
	}
	if len(uploads) != 1 || uploads[0].chunk != a {
		t.Errorf("uploads = %v", uploads)
	}

	// Reused handle: hide then ready in one frame frees and re-uploads.
	q.hide(a)
	q.ready(a, mesh)
	hidden, uploads = q.drain()
	if len(hidden) != 1 || len(uploads) != 1 {
		t.Errorf("hidden %v uploads %v", hidden, uploads)
	}

	hidden, uploads = q.drain()
	if len(hidden) != 0 || len(uploads) != 0 {
		t.Error("drain did not clear the queue")
	}
}
