package objfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/meshing"
)

func triangle() *meshing.ContourMesh {
	return &meshing.ContourMesh{
		Vertices:  []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Triangles: []uint32{0, 1, 2},
	}
}

func TestWriteMeshOffsetsIndices(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteMesh("a", triangle(), mgl32.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteMesh("empty", &meshing.ContourMesh{}, mgl32.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteMesh("b", triangle(), mgl32.Vec3{10, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if w.Objects() != 2 {
		t.Errorf("objects = %d", w.Objects())
	}
	if strings.Contains(out, "o empty") {
		t.Error("empty mesh written")
	}
	if !strings.Contains(out, "f 1//1 2//2 3//3\n") {
		t.Error("first object faces wrong")
	}
	if !strings.Contains(out, "f 4//4 5//5 6//6\n") {
		t.Error("second object faces not offset")
	}
	if !strings.Contains(out, "v 11 0 0\n") {
		t.Error("offset not applied")
	}
	if n := strings.Count(out, "\nv "); n != 6 {
		t.Errorf("vertex lines = %d", n)
	}
}

func TestWriteMeshRejectsMismatch(t *testing.T) {
	m := triangle()
	m.Normals = m.Normals[:1]
	if err := NewWriter(&bytes.Buffer{}).WriteMesh("bad", m, mgl32.Vec3{}); err == nil {
		t.Error("expected error")
	}
}
