// Package renderer draws a scene graph with OpenGL into an offscreen
// framebuffer that can be presented or captured.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/camera"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/framebuffer"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/lighting"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/renderer/shaders"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/scene"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/shader"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/shadow"
	"github.com/Mingwen111/3d-car-viewer/internal/logger"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width            int
	Height           int
	Exposure         float32
	ShadowResolution int32
}

// gpuMesh is a mesh uploaded to vertex buffers.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Renderer draws scenes into an offscreen framebuffer.
type Renderer struct {
	config Config
	log    *zap.Logger

	fb        *framebuffer.Framebuffer
	shadowMap *shadow.Map
	lit       *shader.Program
	depth     *shader.Program

	meshes  map[*scene.Mesh]*gpuMesh
	version uint64
	points  *lighting.PointLightBuffer

	// Frames counts completed Render calls.
	Frames uint64
}

// New creates a renderer. It must be called on the thread that owns the
// current GL context.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
		meshes: make(map[*scene.Mesh]*gpuMesh),
		points: lighting.NewPointLightBuffer(),
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	if r.fb, err = framebuffer.New(int32(cfg.Width), int32(cfg.Height)); err != nil {
		return nil, err
	}
	if r.lit, err = shader.NewProgram(shaders.SceneVertexShader, shaders.SceneFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("scene shader: %w", err)
	}
	if r.depth, err = shader.NewProgram(shaders.DepthVertexShader, shaders.DepthFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("depth shader: %w", err)
	}
	if r.shadowMap, err = shadow.NewMap(cfg.ShadowResolution); err != nil {
		// Shadows are optional; keep rendering without them.
		r.log.Warn("shadows disabled", zap.Error(err))
	}
	return r, nil
}

// Resize reallocates the offscreen target for a new drawable size.
func (r *Renderer) Resize(width, height int) {
	r.config.Width, r.config.Height = width, height
	r.fb.Resize(int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the offscreen target size in pixels.
func (r *Renderer) Size() (int, int) {
	w, h := r.fb.Size()
	return int(w), int(h)
}

// Render draws s from cam into the offscreen framebuffer.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) error {
	if s == nil || cam == nil {
		return errors.New("render: nil scene or camera")
	}
	if s.Version != r.version {
		r.releaseMeshes()
		r.version = s.Version
	}

	opaque, translucent := s.DrawList(cam.Position)
	for _, items := range [][]scene.DrawItem{opaque, translucent} {
		for _, it := range items {
			if _, err := r.upload(it.Mesh); err != nil {
				return err
			}
		}
	}

	bounds := s.Bounds()
	var lightViewProj math.Mat4
	shadows := r.shadowMap.IsValid() && s.Lights.Sun.CastShadow && !bounds.IsEmpty()
	if shadows {
		lightViewProj = shadow.DirectionalLightMatrix(s.Lights.Sun.Direction, bounds, 0.5)
		r.depthPass(lightViewProj, opaque)
	}

	restore := r.fb.BindWithViewport()
	defer restore()

	bg := s.ClearColor()
	r.fb.Clear(bg.R, bg.G, bg.B, bg.A)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)

	viewProj := cam.ProjectionMatrix().Mul(cam.ViewMatrix())
	r.lit.Use()
	r.setFrameUniforms(s.Lights, cam, viewProj, lightViewProj, shadows)

	gl.DepthMask(true)
	r.drawItems(opaque)
	gl.DepthMask(false)
	r.drawItems(translucent)
	gl.DepthMask(true)

	gl.BindVertexArray(0)
	r.Frames++
	return nil
}

func (r *Renderer) setFrameUniforms(rig lighting.Rig, cam *camera.Perspective, viewProj, lightViewProj math.Mat4, shadows bool) {
	p := r.lit
	p.SetMat4("uViewProj", (*[16]float32)(&viewProj))
	p.SetMat4("uLightViewProj", (*[16]float32)(&lightViewProj))
	p.SetVec3("uCameraPos", cam.Position.X, cam.Position.Y, cam.Position.Z)
	p.SetFloat("uExposure", r.config.Exposure)

	p.SetVec3("uAmbient", rig.Ambient[0], rig.Ambient[1], rig.Ambient[2])
	h := rig.Hemisphere
	p.SetVec3("uSkyColor", h.Sky[0]*h.Intensity, h.Sky[1]*h.Intensity, h.Sky[2]*h.Intensity)
	p.SetVec3("uGroundColor", h.Ground[0]*h.Intensity, h.Ground[1]*h.Intensity, h.Ground[2]*h.Intensity)
	setDirectional(p, "uSunDir", "uSunColor", rig.Sun)
	setDirectional(p, "uFillDir", "uFillColor", rig.Fill)

	r.points.SetLights(rig.Points)
	p.SetInt("uPointCount", int32(r.points.Count()))
	p.SetVec3Array("uPointPositions", r.points.Positions())
	p.SetVec3Array("uPointColors", r.points.Colors())
	p.SetFloatArray("uPointRanges", r.points.Ranges())

	p.SetBool("uShadowsEnabled", shadows)
	if shadows {
		r.shadowMap.BindTexture(gl.TEXTURE1)
		p.SetInt("uShadowMap", 1)
		p.SetFloat("uShadowTexel", 1/float32(r.shadowMap.Resolution))
	}
}

func setDirectional(p *shader.Program, dirName, colorName string, d lighting.Directional) {
	dir := d.Direction.Normalize()
	p.SetVec3(dirName, dir.X, dir.Y, dir.Z)
	p.SetVec3(colorName, d.Color[0]*d.Intensity, d.Color[1]*d.Intensity, d.Color[2]*d.Intensity)
}

func (r *Renderer) drawItems(items []scene.DrawItem) {
	p := r.lit
	for _, it := range items {
		gm := r.meshes[it.Mesh]
		mat := it.Mesh.Material
		world := it.World
		normal := world.NormalMatrix()

		p.SetMat4("uModel", (*[16]float32)(&world))
		p.SetMat3("uNormalMatrix", &normal)
		p.SetVec4("uBaseColor", mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2], mat.BaseColor[3])
		p.SetVec3("uEmissive", mat.Emissive[0], mat.Emissive[1], mat.Emissive[2])
		p.SetFloat("uMetallic", mat.Metallic)
		p.SetFloat("uRoughness", mat.Roughness)
		p.SetBool("uAlphaMask", mat.AlphaMode == scene.AlphaMask)
		p.SetFloat("uAlphaCutoff", mat.AlphaCutoff)
		p.SetBool("uReceiveShadow", it.Mesh.ReceiveShadow)

		if mat.DoubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		}

		gl.BindVertexArray(gm.vao)
		gl.DrawElements(gl.TRIANGLES, gm.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.Disable(gl.CULL_FACE)
}

func (r *Renderer) depthPass(lightViewProj math.Mat4, items []scene.DrawItem) {
	r.shadowMap.Bind()
	r.depth.Use()
	r.depth.SetMat4("uLightViewProj", (*[16]float32)(&lightViewProj))
	for _, it := range items {
		if !it.Mesh.CastShadow {
			continue
		}
		world := it.World
		r.depth.SetMat4("uModel", (*[16]float32)(&world))
		gm := r.meshes[it.Mesh]
		gl.BindVertexArray(gm.vao)
		gl.DrawElements(gl.TRIANGLES, gm.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
	r.shadowMap.Unbind()
}

func (r *Renderer) upload(m *scene.Mesh) (*gpuMesh, error) {
	if gm, ok := r.meshes[m]; ok {
		return gm, nil
	}
	if len(m.Indices) == 0 || len(m.Positions) == 0 {
		gm := &gpuMesh{}
		r.meshes[m] = gm
		return gm, nil
	}

	vertices := m.Interleaved()
	const stride = 6 * 4

	gm := &gpuMesh{indexCount: int32(len(m.Indices))}
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("uploading mesh %q: GL error 0x%x", m.Name, e)
	}
	r.meshes[m] = gm
	return gm, nil
}

func (r *Renderer) releaseMeshes() {
	for m, gm := range r.meshes {
		if gm.vao != 0 {
			gl.DeleteVertexArrays(1, &gm.vao)
		}
		if gm.vbo != 0 {
			gl.DeleteBuffers(1, &gm.vbo)
		}
		if gm.ebo != 0 {
			gl.DeleteBuffers(1, &gm.ebo)
		}
		delete(r.meshes, m)
	}
}

// ReadImage returns the last rendered frame, top row first.
func (r *Renderer) ReadImage() (*image.RGBA, error) {
	img := r.fb.ReadImage()
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("reading framebuffer: GL error 0x%x", e)
	}
	return img, nil
}

// ColorTexture returns the texture holding the last rendered frame.
func (r *Renderer) ColorTexture() uint32 {
	return r.fb.ColorTexture()
}

// Close releases GPU resources.
func (r *Renderer) Close() {
	r.releaseMeshes()
	if r.lit != nil {
		r.lit.Delete()
	}
	if r.depth != nil {
		r.depth.Delete()
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.fb != nil {
		r.fb.Destroy()
	}
	r.log.Info("renderer closed")
}
