// Package renderer submits render batches to OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/greed/internal/engine/batch"
	"github.com/Faultbox/greed/internal/engine/lighting"
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/internal/engine/shader"
	"github.com/Faultbox/greed/internal/logger"
	"github.com/Faultbox/greed/pkg/math"
)

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 vNormal;

void main() {
	vNormal = mat3(uModel) * aNormal;
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec4 uColor;

out vec4 FragColor;

uniform vec3 uLightDir;
uniform float uAmbient;

void main() {
	float diffuse = max(dot(normalize(vNormal), uLightDir), 0.0);
	FragColor = vec4(uColor.rgb * (uAmbient + (1.0 - uAmbient) * diffuse), uColor.a);
}
`

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer owns the GL state for scene geometry.
type Renderer struct {
	config Config
	log    *zap.Logger

	program  *shader.Program
	locView  int32
	locModel int32
	locColor int32
	locLight int32
	locAmb   int32

	sun lighting.Sun

	vao, vbo, ebo uint32
	vertexCount   int
	indexCount    int

	lines *lineDrawer
}

// New creates a renderer. A GL context must be current.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{config: cfg, log: logger.Named("renderer"), sun: lighting.DefaultSun()}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.Compile(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh program: %w", err)
	}
	r.locView = r.program.Uniform("uViewProj")
	r.locModel = r.program.Uniform("uModel")
	r.locColor = r.program.Uniform("uColor")
	r.locLight = r.program.Uniform("uLightDir")
	r.locAmb = r.program.Uniform("uAmbient")

	r.lines, err = newLineDrawer()
	if err != nil {
		r.program.Delete()
		return nil, err
	}
	return r, nil
}

// Upload replaces the geometry buffers with the level's flat buffers.
func (r *Renderer) Upload(vertices []scene.Vertex, indices []uint32) {
	r.deleteBuffers()
	r.vertexCount, r.indexCount = len(vertices), len(indices)
	if len(vertices) == 0 || len(indices) == 0 {
		return
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	stride := int32(unsafe.Sizeof(scene.Vertex{}))
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(scene.Vertex{}.Position))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(scene.Vertex{}.Normal))
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	r.log.Debug("geometry uploaded",
		zap.Int("vertices", r.vertexCount),
		zap.Int("indices", r.indexCount),
	)
}

// SetSun sets the directional light used by Submit.
func (r *Renderer) SetSun(sun lighting.Sun) {
	r.sun = sun
}

// Submit draws b. Commands are walked group by group so the material color
// is set once per group.
func (r *Renderer) Submit(b *batch.RenderBatch, materials []scene.Material, viewProj math.Mat4) {
	if r.vao == 0 || b.Len() == 0 {
		return
	}
	r.program.Use()
	gl.UniformMatrix4fv(r.locView, 1, false, viewProj.Ptr())
	dir := r.sun.Direction()
	gl.Uniform3f(r.locLight, dir.X, dir.Y, dir.Z)
	gl.Uniform1f(r.locAmb, r.sun.Ambient)
	gl.BindVertexArray(r.vao)

	for _, g := range b.Groups {
		color := materials[g.Material].BaseColor
		gl.Uniform4fv(r.locColor, 1, &color[0])
		for _, cmd := range b.GroupCommands(g) {
			gl.UniformMatrix4fv(r.locModel, 1, false, b.Transforms[cmd.BaseInstance].Ptr())
			gl.DrawElementsBaseVertex(gl.TRIANGLES, int32(cmd.IndexCount), gl.UNSIGNED_INT,
				gl.PtrOffset(int(cmd.FirstIndex)*4), int32(cmd.BaseVertex))
		}
	}
	gl.BindVertexArray(0)
}

// Lines draws a GL_LINES vertex list ([x, y, z] per vertex) in one color.
func (r *Renderer) Lines(vertices []float32, color [4]float32, viewProj math.Mat4) {
	r.lines.draw(vertices, color, viewProj)
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// ReadPixels returns the RGBA back buffer, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return pixels, w, h
}

func (r *Renderer) deleteBuffers() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
}

// Close releases GL resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.deleteBuffers()
	r.lines.close()
	r.program.Delete()
}
