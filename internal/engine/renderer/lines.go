package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/greed/internal/engine/shader"
	"github.com/Faultbox/greed/pkg/math"
)

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec4 uColor;

out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`

// lineDrawer streams debug line lists.
type lineDrawer struct {
	program  *shader.Program
	vao, vbo uint32
	capacity int // bytes allocated in vbo
}

func newLineDrawer() (*lineDrawer, error) {
	p, err := shader.Compile(lineVertexShader, lineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create line program: %w", err)
	}
	d := &lineDrawer{program: p}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	return d, nil
}

func (d *lineDrawer) draw(vertices []float32, color [4]float32, viewProj math.Mat4) {
	if len(vertices) < 6 {
		return
	}
	size := len(vertices) * 4

	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	if size > d.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(vertices), gl.STREAM_DRAW)
		d.capacity = size
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(vertices))
	}

	d.program.Use()
	gl.UniformMatrix4fv(d.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform4fv(d.program.Uniform("uColor"), 1, &color[0])
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindVertexArray(0)
}

func (d *lineDrawer) close() {
	gl.DeleteVertexArrays(1, &d.vao)
	gl.DeleteBuffers(1, &d.vbo)
	d.program.Delete()
}
