// Package objfile writes contour meshes as Wavefront OBJ.
package objfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/meshing"
)

// Writer streams objects into a single OBJ file. Vertex indices are
// global, so each object's faces are offset by everything written before.
type Writer struct {
	w        *bufio.Writer
	vertices int
	objects  int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteMesh appends m as a named object translated by offset.
// Empty meshes are skipped.
func (w *Writer) WriteMesh(name string, m *meshing.ContourMesh, offset mgl32.Vec3) error {
	if m == nil || m.Empty() {
		return nil
	}
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("objfile: %s has %d normals for %d vertices", name, len(m.Normals), len(m.Vertices))
	}
	fmt.Fprintf(w.w, "o %s\n", name)
	for _, v := range m.Vertices {
		p := v.Add(offset)
		fmt.Fprintf(w.w, "v %g %g %g\n", p[0], p[1], p[2])
	}
	for _, n := range m.Normals {
		fmt.Fprintf(w.w, "vn %g %g %g\n", n[0], n[1], n[2])
	}
	base := uint32(w.vertices) + 1
	for i := 0; i+2 < len(m.Triangles); i += 3 {
		a, b, c := m.Triangles[i]+base, m.Triangles[i+1]+base, m.Triangles[i+2]+base
		fmt.Fprintf(w.w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	w.vertices += len(m.Vertices)
	w.objects++
	return nil
}

// Objects returns the number of objects written.
func (w *Writer) Objects() int { return w.objects }

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
