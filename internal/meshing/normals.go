package meshing

import "github.com/go-gl/mathgl/mgl32"

// computeNormals accumulates unnormalized face normals, which weights each
// face by its area. Vertices with no faces use fallback.
func computeNormals(mesh *ContourMesh, fallback []mgl32.Vec3) {
	normals := make([]mgl32.Vec3, len(mesh.Vertices))
	t := mesh.Triangles
	for i := 0; i+2 < len(t); i += 3 {
		a, b, c := mesh.Vertices[t[i]], mesh.Vertices[t[i+1]], mesh.Vertices[t[i+2]]
		fn := b.Sub(a).Cross(c.Sub(a))
		normals[t[i]] = normals[t[i]].Add(fn)
		normals[t[i+1]] = normals[t[i+1]].Add(fn)
		normals[t[i+2]] = normals[t[i+2]].Add(fn)
	}
	for i, n := range normals {
		if n.Len() < 1e-12 && i < len(fallback) {
			n = fallback[i]
		}
		if l := n.Len(); l > 1e-12 {
			normals[i] = n.Mul(1 / l)
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	mesh.Normals = normals
}
