package material

import (
	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/shader"
)

// BlendMode selects how a material's fragments combine with the framebuffer.
type BlendMode int

const (
	// BlendOpaque writes fragments directly, no blending.
	BlendOpaque BlendMode = iota
	// BlendAlpha blends by source alpha (standard transparency).
	BlendAlpha
	// BlendAdditive adds source color onto the framebuffer.
	BlendAdditive
)

// CullMode selects which triangle faces are discarded during rasterization.
type CullMode int

const (
	// CullBack discards back faces (the default for closed meshes).
	CullBack CullMode = iota
	// CullFront discards front faces.
	CullFront
	// CullNone keeps both faces.
	CullNone
)

// materialImpl is the implementation of the Material interface.
type materialImpl struct {
	name        string
	baseColor   [4]float32
	metallic    float32
	roughness   float32
	emissive    [3]float32
	shader      shader.Shader
	depthTest   bool
	depthWrite  bool
	blendMode   BlendMode
	cullMode    CullMode
	pipelineKey string
	diffuse     *common.TextureStagingData
	normal      *common.TextureStagingData
}

// Material defines the interface for a render material: surface properties,
// the shader program used to draw it, and the fixed-function render state the
// backend applies before the draw call.
//
// Surface properties are set at construction and read-only afterwards. The
// pipeline key is mutable so the backend can assign it once the material's
// pipeline has been compiled.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// BaseColor retrieves the albedo RGBA color.
	//
	// Returns:
	//   - [4]float32: the base color
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor, 0 dielectric through 1 metal.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor, 0 smooth through 1 rough.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Emissive retrieves the RGB emissive color.
	//
	// Returns:
	//   - [3]float32: the emissive color
	Emissive() [3]float32

	// Shader retrieves the shader program this material draws with.
	//
	// Returns:
	//   - shader.Shader: the shader, or nil when unset
	Shader() shader.Shader

	// DepthTest reports whether fragments are tested against the depth buffer.
	//
	// Returns:
	//   - bool: true when depth testing is enabled
	DepthTest() bool

	// DepthWrite reports whether fragments write the depth buffer.
	//
	// Returns:
	//   - bool: true when depth writes are enabled
	DepthWrite() bool

	// BlendMode retrieves the framebuffer blend mode.
	//
	// Returns:
	//   - BlendMode: the blend mode
	BlendMode() BlendMode

	// CullMode retrieves the triangle face culling mode.
	//
	// Returns:
	//   - CullMode: the cull mode
	CullMode() CullMode

	// Transparent reports whether the material blends with the framebuffer
	// and therefore needs back-to-front ordering.
	//
	// Returns:
	//   - bool: true for alpha or additive blending
	Transparent() bool

	// DiffuseTexture retrieves the staged diffuse texture, or nil.
	//
	// Returns:
	//   - *common.TextureStagingData: the diffuse texture, or nil
	DiffuseTexture() *common.TextureStagingData

	// NormalTexture retrieves the staged normal map, or nil.
	//
	// Returns:
	//   - *common.TextureStagingData: the normal texture, or nil
	NormalTexture() *common.TextureStagingData

	// PipelineKey retrieves the key identifying the compiled render pipeline
	// for this material, empty until the backend assigns one.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the compiled render pipeline key.
	//
	// Parameters:
	//   - key: the pipeline key
	SetPipelineKey(key string)
}

var _ Material = &materialImpl{}

// NewMaterial creates a new Material instance configured with the provided
// options. Defaults: white base color, roughness 1, depth test and write on,
// opaque blending, back-face culling.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &materialImpl{
		baseColor:  [4]float32{1, 1, 1, 1},
		roughness:  1.0,
		depthTest:  true,
		depthWrite: true,
		blendMode:  BlendOpaque,
		cullMode:   CullBack,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *materialImpl) Name() string {
	return m.name
}

func (m *materialImpl) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *materialImpl) Metallic() float32 {
	return m.metallic
}

func (m *materialImpl) Roughness() float32 {
	return m.roughness
}

func (m *materialImpl) Emissive() [3]float32 {
	return m.emissive
}

func (m *materialImpl) Shader() shader.Shader {
	return m.shader
}

func (m *materialImpl) DepthTest() bool {
	return m.depthTest
}

func (m *materialImpl) DepthWrite() bool {
	return m.depthWrite
}

func (m *materialImpl) BlendMode() BlendMode {
	return m.blendMode
}

func (m *materialImpl) CullMode() CullMode {
	return m.cullMode
}

func (m *materialImpl) Transparent() bool {
	return m.blendMode != BlendOpaque
}

func (m *materialImpl) DiffuseTexture() *common.TextureStagingData {
	return m.diffuse
}

func (m *materialImpl) NormalTexture() *common.TextureStagingData {
	return m.normal
}

func (m *materialImpl) PipelineKey() string {
	return m.pipelineKey
}

func (m *materialImpl) SetPipelineKey(key string) {
	m.pipelineKey = key
}
