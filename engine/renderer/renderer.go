package renderer

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/camera"
	"github.com/emberforge/ember-go/engine/object"
	"github.com/emberforge/ember-go/engine/postprocess"
	"github.com/emberforge/ember-go/engine/scene"
	"github.com/emberforge/ember-go/engine/shadow"
)

// Stats holds per-frame render statistics, reset at the start of every Render.
type Stats struct {
	// DrawCalls is the number of forward-pass draw calls issued.
	DrawCalls int

	// TriangleCount is the total triangles submitted in the forward pass.
	TriangleCount int

	// ShadowPasses is the number of shadow map passes rendered.
	ShadowPasses int
}

// queueEntry is one renderable object resolved for the forward pass.
type queueEntry struct {
	obj      object.SceneObject
	model    mgl32.Mat4
	distance float32
}

// rendererImpl is the implementation of the Renderer interface.
type rendererImpl struct {
	mu *sync.Mutex

	backend Backend
	shadows shadow.Manager
	post    postprocess.Pipeline

	depthSort bool
	stats     Stats
	sink      common.LogSink

	// queue is reused across frames to avoid per-frame allocations.
	queue []queueEntry
}

// Renderer defines the interface for the forward rendering system: shadow
// map passes, a distance-resolved render queue, the forward pass itself, and
// the post-processing hand-off. The Renderer owns the shadow manager and
// drives the backend; it holds no scene state of its own.
type Renderer interface {
	// Render draws one frame of the scene from the camera's point of view:
	// shadow passes first, then the forward pass over the render queue, then
	// post-processing into the backbuffer, then present.
	//
	// Parameters:
	//   - scn: the scene to draw
	//   - cam: the camera to draw from
	//
	// Returns:
	//   - error: a fatal backend or shadow allocation error
	Render(scn scene.Scene, cam camera.Camera) error

	// Stats returns the statistics of the most recently rendered frame.
	//
	// Returns:
	//   - Stats: the frame statistics
	Stats() Stats

	// Resize reconfigures the backend surface and the post-processing
	// scratch targets.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are presented.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// DepthSort reports whether the render queue is sorted far-to-near
	// before drawing.
	//
	// Returns:
	//   - bool: true when sorting is enabled
	DepthSort() bool

	// SetDepthSort enables or disables far-to-near queue sorting. Sorting
	// makes transparent materials composite correctly at the cost of worse
	// depth rejection for opaque ones.
	//
	// Parameters:
	//   - enabled: the new sorting state
	SetDepthSort(enabled bool)

	// Shadows returns the shadow map manager backing this renderer.
	//
	// Returns:
	//   - shadow.Manager: the shadow manager
	Shadows() shadow.Manager

	// PostProcess returns the post-processing pipeline, or nil when none is
	// attached.
	//
	// Returns:
	//   - postprocess.Pipeline: the pipeline or nil
	PostProcess() postprocess.Pipeline

	// SetPostProcess attaches or detaches the post-processing pipeline.
	//
	// Parameters:
	//   - p: the pipeline, or nil to render straight to the backbuffer
	SetPostProcess(p postprocess.Pipeline)

	// Backend returns the GPU backend, for callers that allocate their own
	// targets.
	//
	// Returns:
	//   - Backend: the backend
	Backend() Backend

	// Dispose releases the shadow manager, the post pipeline, and the
	// backend, in that order.
	Dispose()
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a Renderer over the given backend. A shadow map
// manager is created on the same backend unless one is supplied via options.
//
// Parameters:
//   - backend: the GPU backend to drive
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the newly created renderer
func NewRenderer(backend Backend, options ...RendererBuilderOption) Renderer {
	r := &rendererImpl{
		mu:      &sync.Mutex{},
		backend: backend,
		sink:    common.NopSink(),
	}
	for _, option := range options {
		option(r)
	}
	if r.shadows == nil {
		r.shadows = shadow.NewManager(backend)
	}
	return r
}

func (r *rendererImpl) Render(scn scene.Scene, cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = Stats{}
	objects := scn.Objects()

	if err := r.renderShadowPasses(scn, objects); err != nil {
		return err
	}

	r.buildRenderQueue(objects, cam)

	if err := r.backend.BeginFrame(); err != nil {
		return errors.Wrap(err, "renderer: failed to begin frame")
	}

	frame := frameContext{
		view:           cam.ViewMatrix(),
		projection:     cam.ProjectionMatrix(),
		viewProjection: cam.ViewProjectionMatrix(),
		cameraPosition: cam.Position(),
		ambientColor:   scn.AmbientColor(),
	}

	for _, entry := range r.queue {
		call := DrawCall{
			Mesh:     entry.obj.Mesh(),
			Material: entry.obj.Material(),
			Uniforms: r.resolveUniforms(entry, frame),
		}
		if err := r.backend.Draw(call); err != nil {
			r.sink.Errorf("renderer: draw failed for object %d: %v", entry.obj.ID(), err)
			continue
		}
		r.stats.DrawCalls++
		r.stats.TriangleCount += entry.obj.Mesh().TriangleCount()
	}

	r.backend.EndFrame()

	// The acquired surface texture must be presented (and released) even when
	// the backbuffer write fails, or the next BeginFrame would refuse to
	// acquire another one.
	var postErr error
	if r.post != nil {
		postErr = errors.Wrap(r.post.Render(r.backend.SceneTarget(), nil), "renderer: post-processing failed")
	} else {
		postErr = errors.Wrap(r.backend.Blit(r.backend.SceneTarget(), nil), "renderer: backbuffer copy failed")
	}
	r.backend.Present()
	return postErr
}

// renderShadowPasses renders one depth-only pass per enabled shadow-casting
// light, before the forward pass reads the maps.
func (r *rendererImpl) renderShadowPasses(scn scene.Scene, objects []object.SceneObject) error {
	slot := 0
	for _, l := range scn.Lights() {
		if !l.Enabled() || !l.CastsShadows() {
			continue
		}

		sm, err := r.shadows.CreateShadowMap(l, slot)
		if err != nil {
			return err
		}
		slot++

		if _, ok := r.shadows.BeginShadowPass(l); !ok {
			continue
		}
		for _, obj := range objects {
			if !obj.Renderable() {
				continue
			}
			model := mgl32.Ident4()
			if node := obj.Transform(); node != nil {
				model = node.WorldMatrix()
			}
			if err := r.backend.DrawDepth(obj.Mesh(), sm.ViewProjectionMatrix.Mul4(model)); err != nil {
				r.sink.Errorf("renderer: shadow draw failed for object %d: %v", obj.ID(), err)
			}
		}
		r.shadows.EndShadowPass()
		r.stats.ShadowPasses++
	}
	return nil
}

// buildRenderQueue fills r.queue with the frame's renderable objects and
// their camera distances. Objects lacking a mesh or a material never enter
// the queue.
func (r *rendererImpl) buildRenderQueue(objects []object.SceneObject, cam camera.Camera) {
	r.queue = r.queue[:0]
	camPos := cam.Position()

	for _, obj := range objects {
		if !obj.Renderable() {
			continue
		}
		model := mgl32.Ident4()
		worldPos := mgl32.Vec3{}
		if node := obj.Transform(); node != nil {
			model = node.WorldMatrix()
			worldPos = node.WorldPosition()
		}
		r.queue = append(r.queue, queueEntry{
			obj:      obj,
			model:    model,
			distance: camPos.Sub(worldPos).Len(),
		})
	}

	if r.depthSort {
		sort.SliceStable(r.queue, func(i, j int) bool {
			return r.queue[i].distance > r.queue[j].distance
		})
	}
}

// frameContext carries the per-frame values every draw's uniforms resolve
// against.
type frameContext struct {
	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4
	cameraPosition mgl32.Vec3
	ambientColor   mgl32.Vec3
}

// resolveUniforms builds the draw's uniform set, writing only the standard
// uniforms the material's shader declares.
func (r *rendererImpl) resolveUniforms(entry queueEntry, frame frameContext) UniformSet {
	set := UniformSet{}
	mat := entry.obj.Material()
	sh := mat.Shader()
	if sh == nil {
		return set
	}

	putMat4 := func(name string, m mgl32.Mat4) {
		if !sh.HasUniform(name) {
			return
		}
		if set.Mat4s == nil {
			set.Mat4s = make(map[string]mgl32.Mat4, 4)
		}
		set.Mat4s[name] = m
	}
	putVec3 := func(name string, v mgl32.Vec3) {
		if !sh.HasUniform(name) {
			return
		}
		if set.Vec3s == nil {
			set.Vec3s = make(map[string]mgl32.Vec3, 3)
		}
		set.Vec3s[name] = v
	}

	putMat4("model", entry.model)
	putMat4("view", frame.view)
	putMat4("projection", frame.projection)
	putMat4("viewProjection", frame.viewProjection)
	putMat4("modelViewProjection", frame.viewProjection.Mul4(entry.model))

	if sh.HasUniform("normalMatrix") {
		normal, ok := common.NormalMatrix(entry.model)
		if !ok {
			r.sink.Warnf("renderer: singular model matrix for object %d, normal matrix set to identity", entry.obj.ID())
		}
		set.Mat3s = map[string]mgl32.Mat3{"normalMatrix": normal}
	}

	if sh.HasUniform("baseColor") {
		c := mat.BaseColor()
		set.Vec4s = map[string]mgl32.Vec4{"baseColor": {c[0], c[1], c[2], c[3]}}
	}
	if sh.HasUniform("emissiveColor") {
		e := mat.Emissive()
		putVec3("emissiveColor", mgl32.Vec3{e[0], e[1], e[2]})
	}
	putVec3("cameraPosition", frame.cameraPosition)
	putVec3("ambientColor", frame.ambientColor)

	return set
}

func (r *rendererImpl) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *rendererImpl) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.Resize(width, height)
	if r.post != nil {
		if err := r.post.Resize(width, height); err != nil {
			r.sink.Errorf("renderer: post-processing resize failed: %v", err)
		}
	}
}

func (r *rendererImpl) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *rendererImpl) DepthSort() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depthSort
}

func (r *rendererImpl) SetDepthSort(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depthSort = enabled
}

func (r *rendererImpl) Shadows() shadow.Manager {
	return r.shadows
}

func (r *rendererImpl) PostProcess() postprocess.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.post
}

func (r *rendererImpl) SetPostProcess(p postprocess.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.post = p
}

func (r *rendererImpl) Backend() Backend {
	return r.backend
}

func (r *rendererImpl) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shadows != nil {
		r.shadows.Dispose()
	}
	if r.post != nil {
		r.post.Dispose()
	}
	r.backend.Dispose()
}
