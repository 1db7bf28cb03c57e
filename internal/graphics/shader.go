package graphics

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrShaderBuild wraps compile and link failures; the driver's info log is
// part of the message.
var ErrShaderBuild = errors.New("graphics: shader build failed")

// Shader is a linked program with its uniform locations cached by name.
type Shader struct {
	ID       uint32
	uniforms map[string]int32
}

type stage struct {
	kind uint32
	name string
	src  string
}

// NewShader builds a program from vertex and fragment source. Stage objects
// are always deleted, the program only on failure.
func NewShader(vertexSrc, fragmentSrc string) (*Shader, error) {
	stages := []stage{
		{gl.VERTEX_SHADER, "vertex", vertexSrc},
		{gl.FRAGMENT_SHADER, "fragment", fragmentSrc},
	}

	program := gl.CreateProgram()
	var built []uint32
	defer func() {
		for _, id := range built {
			gl.DetachShader(program, id)
			gl.DeleteShader(id)
		}
	}()

	for _, st := range stages {
		id, err := st.compile()
		if err != nil {
			gl.DeleteProgram(program)
			return nil, err
		}
		built = append(built, id)
		gl.AttachShader(program, id)
	}

	gl.LinkProgram(program)
	var ok int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &ok)
	if ok != gl.TRUE {
		var n int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
		buf := make([]byte, n+1)
		gl.GetProgramInfoLog(program, n, nil, &buf[0])
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("%w: link: %s", ErrShaderBuild, infoLog(buf))
	}
	return &Shader{ID: program, uniforms: make(map[string]int32)}, nil
}

func (st stage) compile() (uint32, error) {
	id := gl.CreateShader(st.kind)
	src, free := gl.Strs(st.src + "\x00")
	defer free()
	gl.ShaderSource(id, 1, src, nil)
	gl.CompileShader(id)

	var ok int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &ok)
	if ok == gl.TRUE {
		return id, nil
	}
	var n int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &n)
	buf := make([]byte, n+1)
	gl.GetShaderInfoLog(id, n, nil, &buf[0])
	gl.DeleteShader(id)
	return 0, fmt.Errorf("%w: %s stage: %s", ErrShaderBuild, st.name, infoLog(buf))
}

// infoLog trims the NUL padding and trailing newlines drivers leave behind.
func infoLog(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(bytes.TrimRight(buf, "\r\n "))
}

func (s *Shader) Delete() { gl.DeleteProgram(s.ID) }
func (s *Shader) Use()    { gl.UseProgram(s.ID) }

// location looks name up once. Unknown names cache as -1, which GL ignores.
func (s *Shader) location(name string) int32 {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
	s.uniforms[name] = loc
	return loc
}

func (s *Shader) SetFloat(name string, v float32) {
	gl.Uniform1f(s.location(name), v)
}

func (s *Shader) SetVector3(name string, v mgl32.Vec3) {
	gl.Uniform3fv(s.location(name), 1, &v[0])
}

func (s *Shader) SetMatrix4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(s.location(name), 1, false, &m[0])
}
