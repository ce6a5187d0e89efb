package hud

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/shader"
)

const solidVertexShader = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uProjection;

out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vColor = aColor;
}
`

const solidFragmentShader = `
#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
	FragColor = vColor;
}
`

const texturedVertexShader = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec4 aColor;

uniform mat4 uProjection;

out vec2 vTexCoord;
out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vTexCoord = aTexCoord;
	vColor = aColor;
}
`

// Glyph coverage scales the premultiplied vertex color. The scene quad
// uses a white vertex color so the premultiplied frame passes through.
const texturedFragmentShader = `
#version 410 core

uniform sampler2D uTexture;
uniform bool uAlphaOnly;

in vec2 vTexCoord;
in vec4 vColor;
out vec4 FragColor;

void main() {
	vec4 t = texture(uTexture, vTexCoord);
	FragColor = uAlphaOnly ? vColor * t.a : vColor * t;
}
`

// Floats per vertex in each batch.
const (
	solidStride    = 6 // pos2 + color4
	texturedStride = 8 // pos2 + uv2 + color4
)

// Renderer batches 2D quads and draws them over the scene.
type Renderer struct {
	screenWidth  int
	screenHeight int

	solid    *shader.Program
	textured *shader.Program

	solidVAO, solidVBO       uint32
	texturedVAO, texturedVBO uint32

	solidVertices []float32
	textVertices  []float32

	font    *Font
	fontTex uint32
}

// NewRenderer creates the GL resources for HUD drawing.
func NewRenderer(width, height int, font *Font) (*Renderer, error) {
	r := &Renderer{
		screenWidth:   width,
		screenHeight:  height,
		solidVertices: make([]float32, 0, 4096),
		textVertices:  make([]float32, 0, 4096),
		font:          font,
	}

	var err error
	if r.solid, err = shader.NewProgram(solidVertexShader, solidFragmentShader); err != nil {
		return nil, fmt.Errorf("create solid shader: %w", err)
	}
	if r.textured, err = shader.NewProgram(texturedVertexShader, texturedFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("create textured shader: %w", err)
	}

	r.solidVAO, r.solidVBO = newBatchBuffers([]int32{2, 4})
	r.texturedVAO, r.texturedVBO = newBatchBuffers([]int32{2, 2, 4})
	r.fontTex = uploadFont(font)
	return r, nil
}

// newBatchBuffers creates a VAO/VBO pair with tightly packed float
// attributes of the given sizes at locations 0..n-1.
func newBatchBuffers(sizes []int32) (vao, vbo uint32) {
	var stride int32
	for _, s := range sizes {
		stride += s * 4
	}

	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	var offset uintptr
	for i, s := range sizes {
		gl.VertexAttribPointerWithOffset(uint32(i), s, gl.FLOAT, false, stride, offset)
		gl.EnableVertexAttribArray(uint32(i))
		offset += uintptr(s * 4)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vao, vbo
}

func uploadFont(f *Font) uint32 {
	img := f.rgbaAtlas()
	b := img.Bounds()

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.screenWidth = width
	r.screenHeight = height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.solidVertices = r.solidVertices[:0]
	r.textVertices = r.textVertices[:0]
}

// End draws all queued quads: solids first, then text on top.
func (r *Renderer) End() {
	r.setup2D()
	proj := r.projection()

	if len(r.solidVertices) > 0 {
		r.solid.Use()
		r.solid.SetMat4("uProjection", &proj)
		drawBatch(r.solidVAO, r.solidVBO, r.solidVertices, solidStride)
	}

	if len(r.textVertices) > 0 {
		r.textured.Use()
		r.textured.SetMat4("uProjection", &proj)
		r.textured.SetInt("uTexture", 0)
		r.textured.SetBool("uAlphaOnly", true)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.fontTex)
		drawBatch(r.texturedVAO, r.texturedVBO, r.textVertices, texturedStride)
	}

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

// DrawSceneTexture clears the window and draws the rendered frame as a quad
// covering (x,y,w,h). Call it before Begin so the HUD lands on top.
func (r *Renderer) DrawSceneTexture(x, y, w, h float32, textureID uint32) {
	r.setup2D()
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if textureID == 0 {
		return
	}
	proj := r.projection()

	r.textured.Use()
	r.textured.SetMat4("uProjection", &proj)
	r.textured.SetInt("uTexture", 0)
	r.textured.SetBool("uAlphaOnly", false)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, textureID)

	// The frame's rows start at the bottom; flip V for a y-down screen.
	vertices := []float32{
		x, y, 0, 1, 1, 1, 1, 1,
		x + w, y, 1, 1, 1, 1, 1, 1,
		x + w, y + h, 1, 0, 1, 1, 1, 1,
		x, y, 0, 1, 1, 1, 1, 1,
		x + w, y + h, 1, 0, 1, 1, 1, 1,
		x, y + h, 0, 0, 1, 1, 1, 1,
	}
	drawBatch(r.texturedVAO, r.texturedVBO, vertices, texturedStride)

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

func (r *Renderer) setup2D() {
	gl.Viewport(0, 0, int32(r.screenWidth), int32(r.screenHeight))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
}

func drawBatch(vao, vbo uint32, vertices []float32, stride int) {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/stride))
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.fontTex != 0 {
		gl.DeleteTextures(1, &r.fontTex)
	}
	for _, pair := range [][2]*uint32{{&r.solidVAO, &r.solidVBO}, {&r.texturedVAO, &r.texturedVBO}} {
		if *pair[0] != 0 {
			gl.DeleteVertexArrays(1, pair[0])
		}
		if *pair[1] != 0 {
			gl.DeleteBuffers(1, pair[1])
		}
	}
	if r.solid != nil {
		r.solid.Delete()
	}
	if r.textured != nil {
		r.textured.Delete()
	}
}

// DrawRect draws a filled rectangle.
func (r *Renderer) DrawRect(rc Rect, c Color) {
	c = c.premultiplied()
	x, y, w, h := rc.X, rc.Y, rc.W, rc.H
	r.solidVertices = append(r.solidVertices,
		x, y, c.R, c.G, c.B, c.A,
		x+w, y, c.R, c.G, c.B, c.A,
		x+w, y+h, c.R, c.G, c.B, c.A,
		x, y, c.R, c.G, c.B, c.A,
		x+w, y+h, c.R, c.G, c.B, c.A,
		x, y+h, c.R, c.G, c.B, c.A,
	)
}

// DrawRectOutline draws a rectangle outline.
func (r *Renderer) DrawRectOutline(rc Rect, thickness float32, c Color) {
	r.DrawRect(Rect{rc.X, rc.Y, rc.W, thickness}, c)
	r.DrawRect(Rect{rc.X, rc.Y + rc.H - thickness, rc.W, thickness}, c)
	r.DrawRect(Rect{rc.X, rc.Y + thickness, thickness, rc.H - thickness*2}, c)
	r.DrawRect(Rect{rc.X + rc.W - thickness, rc.Y + thickness, thickness, rc.H - thickness*2}, c)
}

// DrawText draws text with its top-left corner at (x, y).
func (r *Renderer) DrawText(x, y float32, text string, scale float32, c Color) {
	c = c.premultiplied()
	charW := float32(r.font.GlyphW) * scale
	charH := float32(r.font.GlyphH) * scale

	curX := x
	for _, char := range text {
		if char == '\n' {
			curX = x
			y += charH
			continue
		}
		u0, v0, u1, v1 := r.font.GlyphUV(char)
		x1, y1 := curX+charW, y+charH
		r.textVertices = append(r.textVertices,
			curX, y, u0, v0, c.R, c.G, c.B, c.A,
			x1, y, u1, v0, c.R, c.G, c.B, c.A,
			x1, y1, u1, v1, c.R, c.G, c.B, c.A,
			curX, y, u0, v0, c.R, c.G, c.B, c.A,
			x1, y1, u1, v1, c.R, c.G, c.B, c.A,
			curX, y1, u0, v1, c.R, c.G, c.B, c.A,
		)
		curX += charW
	}
}

// projection maps pixels to clip space with y pointing down.
func (r *Renderer) projection() [16]float32 {
	left, right := float32(0), float32(r.screenWidth)
	bottom, top := float32(r.screenHeight), float32(0)
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -1, 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), 0, 1,
	}
}
