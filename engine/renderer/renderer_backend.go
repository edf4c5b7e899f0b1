package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/engine/material"
	"github.com/emberforge/ember-go/engine/mesh"
	"github.com/emberforge/ember-go/engine/postprocess"
	"github.com/emberforge/ember-go/engine/shadow"
)

// BackendType identifies the GPU backend implementation used by the Renderer.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU BackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// UniformSet carries the per-draw uniform values the renderer resolved for a
// draw call. Only uniforms the material's shader actually declares are
// present; the backend writes them verbatim.
type UniformSet struct {
	Mat4s map[string]mgl32.Mat4
	Mat3s map[string]mgl32.Mat3
	Vec4s map[string]mgl32.Vec4
	Vec3s map[string]mgl32.Vec3
}

// DrawCall is one forward-pass draw: geometry, surface state, and resolved
// uniforms.
type DrawCall struct {
	Mesh     mesh.Mesh
	Material material.Material
	Uniforms UniformSet
}

// Backend is the GPU abstraction the Renderer drives. It also serves the
// shadow map manager (shadow.GPU) and the post-processing pipeline
// (postprocess.GPU), so one device owns every render target.
type Backend interface {
	// Resize reconfigures the surface and the offscreen scene target.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are presented to the surface.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next surface texture and opens the forward
	// pass into the offscreen scene target.
	//
	// Returns:
	//   - error: a fatal surface acquisition error
	BeginFrame() error

	// Draw issues one forward-pass draw call with the material's render
	// state applied.
	//
	// Parameters:
	//   - call: the draw call
	//
	// Returns:
	//   - error: an error if pipeline lookup or buffer upload fails
	Draw(call DrawCall) error

	// EndFrame closes the forward pass.
	EndFrame()

	// Present submits the frame and presents the surface texture.
	Present()

	// SceneTarget returns the offscreen color target the forward pass
	// rendered into, the input for post-processing.
	//
	// Returns:
	//   - postprocess.Target: the scene target
	SceneTarget() postprocess.Target

	// DrawDepth issues one depth-only draw during an open shadow pass.
	//
	// Parameters:
	//   - msh: the geometry to rasterize
	//   - depthMVP: the light's view-projection times the model matrix
	//
	// Returns:
	//   - error: an error if buffer upload fails
	DrawDepth(msh mesh.Mesh, depthMVP mgl32.Mat4) error

	shadow.GPU
	postprocess.GPU

	// Dispose releases the device, surface, and every owned target.
	Dispose()
}
