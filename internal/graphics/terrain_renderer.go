package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/meshing"
	"dcterrain/internal/profiling"
	"dcterrain/internal/world"
)

const terrainVert = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
uniform mat4 proj;
uniform mat4 view;
uniform vec3 offset;
out vec3 vNormal;
out float vHeight;
void main() {
	vec3 world = aPos + offset;
	vNormal = aNormal;
	vHeight = world.y;
	gl_Position = proj * view * vec4(world, 1.0);
}`

const terrainFrag = `#version 410 core
in vec3 vNormal;
in float vHeight;
uniform vec3 lightDir;
uniform float alpha;
out vec4 fragColor;
void main() {
	vec3 grass = vec3(0.32, 0.52, 0.22);
	vec3 rock = vec3(0.48, 0.45, 0.42);
	vec3 n = normalize(vNormal);
	vec3 base = mix(rock, grass, smoothstep(0.6, 0.85, n.y));
	float diffuse = max(dot(n, -lightDir), 0.0);
	fragColor = vec4(base * (0.3 + 0.7 * diffuse), alpha);
}`

type gpuMesh struct {
	chunk         *world.Chunk
	vao, vbo, ebo uint32
	indexCount    int32
}

// TerrainRenderer draws streamed chunk meshes. It implements world.Consumer;
// callbacks only queue work, Sync performs the uploads.
type TerrainRenderer struct {
	shader     *Shader
	meshes     map[int]*gpuMesh
	queue      *uploadQueue
	fadeFrames int
	LightDir   mgl32.Vec3
}

// NewTerrainRenderer compiles the terrain program. A GL context must be current.
func NewTerrainRenderer(fadeFrames int) (*TerrainRenderer, error) {
	shader, err := NewShader(terrainVert, terrainFrag)
	if err != nil {
		return nil, err
	}
	return &TerrainRenderer{
		shader:     shader,
		meshes:     make(map[int]*gpuMesh),
		queue:      newUploadQueue(),
		fadeFrames: fadeFrames,
		LightDir:   mgl32.Vec3{-0.4, -1, -0.3}.Normalize(),
	}, nil
}

func (r *TerrainRenderer) MeshReady(c *world.Chunk, m *meshing.ContourMesh) { r.queue.ready(c, m) }
func (r *TerrainRenderer) ChunkHidden(c *world.Chunk)                       { r.queue.hide(c) }

// Sync applies queued uploads and deletions.
func (r *TerrainRenderer) Sync() {
	defer profiling.Track("render.Sync")()
	hidden, uploads := r.queue.drain()
	for _, id := range hidden {
		r.free(id)
	}
	for _, p := range uploads {
		r.free(p.chunk.ID())
		if p.mesh.Empty() {
			continue
		}
		r.meshes[p.chunk.ID()] = upload(p.chunk, p.mesh)
	}
}

func upload(c *world.Chunk, m *meshing.ContourMesh) *gpuMesh {
	// Interleave position and normal
	data := make([]float32, 0, len(m.Vertices)*6)
	for i, v := range m.Vertices {
		n := m.Normals[i]
		data = append(data, v[0], v[1], v[2], n[0], n[1], n[2])
	}

	g := &gpuMesh{chunk: c, indexCount: int32(len(m.Triangles))}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Triangles)*4, gl.Ptr(m.Triangles), gl.STATIC_DRAW)

	stride := int32(6 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))

	// unbind to reduce accidental state changes
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return g
}

func (r *TerrainRenderer) free(id int) {
	g, ok := r.meshes[id]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	gl.DeleteVertexArrays(1, &g.vao)
	delete(r.meshes, id)
}

// Draw renders every uploaded mesh inside the camera frustum and returns
// the number of chunks drawn.
func (r *TerrainRenderer) Draw(cam *Camera, wireframe bool) int {
	defer profiling.Track("render.Draw")()
	proj := cam.ProjectionMatrix()
	view := cam.ViewMatrix()
	frustum := NewFrustum(proj.Mul4(view))

	r.shader.Use()
	r.shader.SetMatrix4("proj", proj)
	r.shader.SetMatrix4("view", view)
	r.shader.SetVector3("lightDir", r.LightDir)

	if wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	drawn := 0
	for _, g := range r.meshes {
		origin := g.chunk.WorldPosition()
		extent := float32(g.chunk.Size()) + g.chunk.Scale()
		if !frustum.IntersectsAABB(origin, origin.Add(mgl32.Vec3{extent, extent, extent})) {
			continue
		}
		r.shader.SetVector3("offset", origin)
		r.shader.SetFloat("alpha", g.chunk.FadeAlpha(r.fadeFrames))
		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
		drawn++
	}
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	return drawn
}

// Delete frees all GPU resources.
func (r *TerrainRenderer) Delete() {
	for id := range r.meshes {
		r.free(id)
	}
	r.shader.Delete()
}
