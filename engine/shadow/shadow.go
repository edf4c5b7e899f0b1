package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/light"
)

// DepthTarget is a depth-only render target backing one shadow map. The
// concrete type is owned by the renderer backend that allocated it; this
// package only needs its dimensions and deterministic release.
type DepthTarget interface {
	// Width returns the target width in texels.
	Width() int

	// Height returns the target height in texels.
	Height() int

	// Release frees the target's GPU resources. Safe to call once.
	Release()
}

// GPU is the slice of the renderer backend the shadow map manager consumes:
// depth target allocation and depth-only pass bracketing. BeginShadowPass
// disables color writes and culls front faces instead of back faces — the
// front-face asymmetry pushes self-shadow acne onto surfaces facing away from
// the light, where it is invisible, without a separate depth-bias pass.
// EndShadowPass restores normal culling.
type GPU interface {
	// CreateShadowDepthTexture allocates a depth texture and framebuffer of
	// the given size. Allocation failure is fatal for the resource: the error
	// carries the driver's reason and the target must not be used.
	//
	// Parameters:
	//   - width: shadow map width in texels
	//   - height: shadow map height in texels
	//
	// Returns:
	//   - DepthTarget: the allocated target
	//   - error: a wrapped allocation or framebuffer-incompleteness error
	CreateShadowDepthTexture(width, height int) (DepthTarget, error)

	// BeginShadowPass starts a depth-only pass into the target: color writes
	// off, front-face culling on.
	//
	// Parameters:
	//   - target: the depth target to render into
	BeginShadowPass(target DepthTarget)

	// EndShadowPass ends the depth-only pass and restores back-face culling.
	EndShadowPass()
}

// Map holds the per-light shadow rendering state: the depth render target and
// the light's depth-pass matrices, refreshed every frame from the light.
type Map struct {
	// Light is the shadow-casting light this map belongs to.
	Light light.Light

	// Index is the slot the map was registered under (cascade or light slot).
	Index int

	// Target is the depth render target, owned by this map.
	Target DepthTarget

	// ViewMatrix, ProjectionMatrix, and ViewProjectionMatrix are recomputed
	// each frame from the light.
	ViewMatrix           mgl32.Mat4
	ProjectionMatrix     mgl32.Mat4
	ViewProjectionMatrix mgl32.Mat4
}

// refresh recomputes the map's matrices from its light.
func (m *Map) refresh() {
	m.ViewMatrix = m.Light.ViewMatrix()
	m.ProjectionMatrix = m.Light.ProjectionMatrix()
	m.ViewProjectionMatrix = m.ProjectionMatrix.Mul4(m.ViewMatrix)
}

type managerImpl struct {
	gpu        GPU
	maps       map[light.Light]*Map
	resolution int
	bias       float32
	sink       common.LogSink

	// active is the map whose depth pass is currently open, nil otherwise.
	active *Map
}

// Manager allocates and refreshes one depth render target per shadow-casting
// light and brackets the depth-only passes that fill them. Creation is
// idempotent per light instance so per-frame registration never churns GPU
// resources.
type Manager interface {
	// CreateShadowMap returns the shadow map for the light, allocating the
	// depth target on first use. If a map already exists for this light
	// instance only its matrices are refreshed — no reallocation happens, so
	// calling this every frame is the intended usage.
	//
	// Parameters:
	//   - l: the shadow-casting light
	//   - index: the slot to register the map under
	//
	// Returns:
	//   - *Map: the light's shadow map with current matrices
	//   - error: a fatal allocation error on first use
	CreateShadowMap(l light.Light, index int) (*Map, error)

	// Get returns the shadow map for the light, if one has been created.
	//
	// Parameters:
	//   - l: the light to look up
	//
	// Returns:
	//   - *Map: the light's shadow map, or nil
	//   - bool: false when no map exists for the light
	Get(l light.Light) (*Map, bool)

	// BeginShadowPass starts the depth-only pass for the light's shadow map.
	// A light with no map yet created yields (nil, false) rather than an
	// error; callers must check before drawing.
	//
	// Parameters:
	//   - l: the light whose map should be rendered
	//
	// Returns:
	//   - *Map: the map whose pass is now open, or nil
	//   - bool: false when the light has no shadow map
	BeginShadowPass(l light.Light) (*Map, bool)

	// EndShadowPass ends the currently open depth pass and restores normal
	// culling. A no-op when no pass is open.
	EndShadowPass()

	// Resolution returns the edge size in texels used for new shadow maps.
	//
	// Returns:
	//   - int: the shadow map resolution
	Resolution() int

	// SetResolution changes the shadow map resolution and recreates every
	// existing target at the new size.
	//
	// Parameters:
	//   - resolution: the new edge size in texels
	//
	// Returns:
	//   - error: a fatal allocation error while recreating targets
	SetResolution(resolution int) error

	// Bias returns the constant depth bias applied to shadow comparisons.
	//
	// Returns:
	//   - float32: the depth bias
	Bias() float32

	// SetBias sets the constant depth bias applied to shadow comparisons.
	//
	// Parameters:
	//   - bias: the new depth bias
	SetBias(bias float32)

	// NewCascadedShadowMap builds a cascaded shadow map for a directional
	// light: split distances partitioning [near, far] and one depth map per
	// cascade.
	//
	// Parameters:
	//   - l: the directional light
	//   - cascadeCount: number of cascades (must be >= 1)
	//   - lambda: blend factor in [0, 1] between logarithmic and uniform splits
	//   - near: near clip distance of the partitioned range
	//   - far: far clip distance of the partitioned range
	//
	// Returns:
	//   - CascadedShadowMap: the cascade set
	//   - error: a fatal allocation error, or an invalid-parameter error
	NewCascadedShadowMap(l light.Light, cascadeCount int, lambda, near, far float32) (CascadedShadowMap, error)

	// Dispose releases every shadow map's GPU resources.
	Dispose()
}

var _ Manager = &managerImpl{}

// NewManager creates a shadow map manager over the given GPU interface.
//
// Parameters:
//   - gpu: the backend slice used for depth target allocation and passes
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the newly created manager
func NewManager(gpu GPU, options ...ManagerBuilderOption) Manager {
	m := &managerImpl{
		gpu:        gpu,
		maps:       make(map[light.Light]*Map),
		resolution: light.ShadowMapResolution,
		bias:       light.DefaultShadowBias,
		sink:       common.NopSink(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *managerImpl) CreateShadowMap(l light.Light, index int) (*Map, error) {
	if sm, ok := m.maps[l]; ok {
		sm.Index = index
		sm.refresh()
		return sm, nil
	}

	target, err := m.gpu.CreateShadowDepthTexture(m.resolution, m.resolution)
	if err != nil {
		return nil, errors.Wrapf(err, "shadow: failed to allocate %dx%d depth target", m.resolution, m.resolution)
	}

	sm := &Map{Light: l, Index: index, Target: target}
	sm.refresh()
	m.maps[l] = sm
	m.sink.Debugf("shadow: allocated %dx%d depth target for light slot %d", m.resolution, m.resolution, index)
	return sm, nil
}

func (m *managerImpl) Get(l light.Light) (*Map, bool) {
	sm, ok := m.maps[l]
	return sm, ok
}

func (m *managerImpl) BeginShadowPass(l light.Light) (*Map, bool) {
	sm, ok := m.maps[l]
	if !ok {
		return nil, false
	}
	m.gpu.BeginShadowPass(sm.Target)
	m.active = sm
	return sm, true
}

func (m *managerImpl) EndShadowPass() {
	if m.active == nil {
		return
	}
	m.gpu.EndShadowPass()
	m.active = nil
}

func (m *managerImpl) Resolution() int {
	return m.resolution
}

func (m *managerImpl) SetResolution(resolution int) error {
	if resolution == m.resolution {
		return nil
	}
	m.resolution = resolution

	// Existing targets are fixed-size GPU resources; changing resolution
	// means recreating each one, not just storing the new number.
	for _, sm := range m.maps {
		target, err := m.gpu.CreateShadowDepthTexture(resolution, resolution)
		if err != nil {
			return errors.Wrapf(err, "shadow: failed to recreate %dx%d depth target", resolution, resolution)
		}
		sm.Target.Release()
		sm.Target = target
	}
	return nil
}

func (m *managerImpl) Bias() float32 {
	return m.bias
}

func (m *managerImpl) SetBias(bias float32) {
	m.bias = bias
}

func (m *managerImpl) Dispose() {
	for l, sm := range m.maps {
		sm.Target.Release()
		delete(m.maps, l)
	}
}
