//go:build !tinygo && cgo

package gltext

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/v4.6-core/glgl"

	"github.com/ElArtista/sdftext/atlas"
)

const vertexStride = 4 * 4 // two vec2s of float32

// Renderer owns the GPU side of the pipeline: the distance atlas texture,
// the SDF text shader program and a dynamic quad batch. It must be created
// and used on the thread owning the GL context.
type Renderer struct {
	prog           glgl.Program
	tex            uint32
	vao, vbo, ebo  uint32
	atlasW, atlasH int

	uniMVP, uniCol, uniScl, uniTex int32
	uniSSP, uniDFD                 int32
}

// NewRenderer compiles the SDF text program and allocates a single-channel
// atlas texture of the given dimensions. Requires a current GL context.
func NewRenderer(atlasW, atlasH int) (*Renderer, error) {
	if atlasW <= 0 || atlasH <= 0 {
		return nil, fmt.Errorf("non-positive atlas texture dimensions %dx%d", atlasW, atlasH)
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexShader,
		Fragment: fragmentShader,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling SDF text program: %w", err)
	}
	r := &Renderer{prog: prog, atlasW: atlasW, atlasH: atlasH}
	prog.Bind()

	gl.GenTextures(1, &r.tex)
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(atlasW), int32(atlasH), 0, gl.RED, gl.UNSIGNED_BYTE, nil)

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	posAttrib, err := r.prog.AttribLocation("vpos\x00")
	if err != nil {
		return nil, err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	tcoAttrib, err := r.prog.AttribLocation("vtco\x00")
	if err != nil {
		return nil, err
	}
	gl.EnableVertexAttribArray(tcoAttrib)
	gl.VertexAttribPointer(tcoAttrib, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(8))

	for _, u := range []struct {
		name string
		dst  *int32
	}{
		{"mvp\x00", &r.uniMVP},
		{"col\x00", &r.uniCol},
		{"scl\x00", &r.uniScl},
		{"tex\x00", &r.uniTex},
		{"ssp\x00", &r.uniSSP},
		{"dfd\x00", &r.uniDFD},
	} {
		*u.dst, err = r.prog.UniformLocation(u.name)
		if err != nil {
			return nil, err
		}
	}
	gl.BindVertexArray(0)
	return r, glgl.Err()
}

// UploadRegion is the consumer contract for changed atlas regions: data is
// tightly packed row-major bytes of exactly the region's dimensions,
// uploaded at the region's coordinates. Matches atlas.Atlas.Flush.
func (r *Renderer) UploadRegion(reg image.Rectangle, data []byte) error {
	if reg.Empty() || !reg.In(image.Rect(0, 0, r.atlasW, r.atlasH)) {
		return fmt.Errorf("region %v does not fit %dx%d atlas texture", reg, r.atlasW, r.atlasH)
	}
	if len(data) != reg.Dx()*reg.Dy() {
		return fmt.Errorf("region %v wants %d bytes, got %d", reg, reg.Dx()*reg.Dy(), len(data))
	}
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0,
		int32(reg.Min.X), int32(reg.Min.Y), int32(reg.Dx()), int32(reg.Dy()),
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return glgl.Err()
}

// Upload flushes every dirty region of the atlas to the GPU texture.
func (r *Renderer) Upload(a *atlas.Atlas) error {
	return a.Flush(r.UploadRegion)
}

// Draw renders one laid-out quad batch under the given column-major model
// view projection matrix.
func (r *Renderer) Draw(verts []Vertex, indices []uint32, mvp [16]float32, opts Options) error {
	if len(verts) == 0 || len(indices) == 0 {
		return errors.New("empty quad batch")
	}
	col := opts.Color
	if col == ([4]float32{}) {
		col = [4]float32{1, 1, 1, 1}
	}
	// Scale factor of the transform's y row drives the fallback edge
	// width, as fragment derivatives may be disabled.
	scl := math32.Sqrt(mvp[5]*mvp[5] + mvp[6]*mvp[6] + mvp[7]*mvp[7])
	scl = ms1.Clamp(scl, 1e-6, 1e6)

	r.prog.Bind()
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*vertexStride, gl.Ptr(verts), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)

	gl.UniformMatrix4fv(r.uniMVP, 1, false, &mvp[0])
	gl.Uniform4f(r.uniCol, col[0], col[1], col[2], col[3])
	gl.Uniform1f(r.uniScl, scl)
	gl.Uniform1i(r.uniTex, 0)
	gl.Uniform1i(r.uniSSP, boolToInt32(opts.SuperSample))
	gl.Uniform1i(r.uniDFD, boolToInt32(!opts.NoDerivatives))

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
	return glgl.Err()
}

// Release frees the GPU objects. The Renderer is unusable afterwards.
func (r *Renderer) Release() {
	gl.DeleteTextures(1, &r.tex)
	gl.DeleteBuffers(1, &r.ebo)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	r.prog.Delete()
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// CreateWindow initializes GLFW, opens a window with a 4.6 core context,
// makes the context current and loads the GL function pointers. Call the
// returned terminate function when done. Must run on a locked OS thread.
func CreateWindow(width, height int, title string) (Window, func(), error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("loading GL: %w", err)
	}
	return window, glfw.Terminate, nil
}

// PollEvents processes pending window events.
func PollEvents() { glfw.PollEvents() }

// Clear fills the framebuffer with a solid color.
func Clear(rgba [4]float32) {
	gl.ClearColor(rgba[0], rgba[1], rgba[2], rgba[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}
