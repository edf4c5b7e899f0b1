package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no meaningful position for
	// shading, only direction. Used for large distant sources like the sun or
	// moon. For shadow rendering the light still carries a position from which
	// its orthographic depth frustum is anchored.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a
	// position. Shadow rendering uses six cube-face depth passes, one per
	// axis-aligned face.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position
	// along a direction, controlled by inner and outer cone angles.
	LightTypeSpot

	// LightTypeArea represents a rectangular emitter. Its shadow matrices
	// exist only for API symmetry with the other variants; a rectangular
	// emitter has no single physically meaningful depth projection.
	LightTypeArea
)

// cubeFaceTargets and cubeFaceUps are the fixed axis-aligned look targets and
// up vectors for the six point-light shadow faces, in the order
// +X, -X, +Y, -Y, +Z, -Z.
var cubeFaceTargets = [6]mgl32.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

var cubeFaceUps = [6]mgl32.Vec3{
	{0, -1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
	{0, -1, 0}, {0, -1, 0},
}

// pointShadowNear is the fixed near plane of the point-light cube-face
// perspective projection.
const pointShadowNear = 0.1

type lightImpl struct {
	lightType LightType
	position  mgl32.Vec3
	direction mgl32.Vec3
	color     mgl32.Vec3
	intensity float32

	lightRange float32

	// Spot cone half-angles, stored in radians. The InnerCone/OuterCone
	// accessors expose the cosines shaders consume; the outer angle itself
	// drives the spot shadow projection's field of view.
	innerConeAngle float32
	outerConeAngle float32

	// Area emitter extents.
	areaWidth  float32
	areaHeight float32

	// Directional shadow frustum parameters.
	shadowHalfExtent float32
	shadowNear       float32
	shadowFar        float32

	enabled      bool
	ephemeral    bool
	castsShadows bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities that contribute to the final pixel color
// during the lit forward rendering pass. All light types (directional, point,
// spot, area) share this interface; type-specific properties return zero
// values when not applicable. Each variant also derives the view and
// projection matrices used when rendering its shadow map depth pass.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction of the light. For
	// directional lights this is the light direction, for spot and area
	// lights the emission axis. Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// EffectiveColor returns the intensity-scaled color consumed by shading.
	//
	// Returns:
	//   - mgl32.Vec3: Color() scaled by Intensity()
	EffectiveColor() mgl32.Vec3

	// Range returns the maximum attenuation distance for point and spot
	// lights. Beyond this distance the light contributes zero energy.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot
	// lights. Fragments within this angle receive full intensity.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot
	// lights. Fragments outside this angle receive zero spot intensity.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// OuterConeAngle returns the outer cone half-angle in radians. The spot
	// shadow projection uses a field of view of twice this angle.
	//
	// Returns:
	//   - float32: outer half-angle in radians
	OuterConeAngle() float32

	// AreaSize returns the rectangular emitter extents for area lights.
	//
	// Returns:
	//   - width, height: emitter size in world units
	AreaSize() (width, height float32)

	// ShadowExtent returns the directional light's orthographic shadow
	// frustum parameters.
	//
	// Returns:
	//   - halfExtent: half-size of the orthographic box
	//   - near, far: depth range of the box
	ShadowExtent() (halfExtent, near, far float32)

	// ViewMatrix returns the view matrix used when rendering this light's
	// shadow map. For point lights this is the first (+X) cube face; use
	// CubeFaceViewMatrix for a specific face.
	//
	// Returns:
	//   - mgl32.Mat4: the shadow-pass view matrix
	ViewMatrix() mgl32.Mat4

	// CubeFaceViewMatrix returns one of the six axis-aligned cube-face view
	// matrices used for point-light shadow rendering. The face order is
	// +X, -X, +Y, -Y, +Z, -Z; indices outside [0, 5] are clamped.
	//
	// Parameters:
	//   - face: the cube face index
	//
	// Returns:
	//   - mgl32.Mat4: the face's view matrix
	CubeFaceViewMatrix(face int) mgl32.Mat4

	// ProjectionMatrix returns the projection matrix used when rendering this
	// light's shadow map: an orthographic box for directional (and area)
	// lights, a 90-degree perspective for point lights, and a perspective
	// with fov = 2 * outer cone angle for spot lights.
	//
	// Returns:
	//   - mgl32.Mat4: the shadow-pass projection matrix
	ProjectionMatrix() mgl32.Mat4

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// Ephemeral returns whether this light is a short-lived particle-emitted
	// light that should not be persisted in the scene's light registry.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// CastsShadows returns whether this light is eligible for shadow map
	// generation. Shadow-casting lights have a depth pass rendered each
	// frame, which is expensive.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - d: the new direction (will be normalized)
	SetDirection(d mgl32.Vec3)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance.
	//
	// Parameters:
	//   - lightRange: the range value
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights.
	// Angles are specified in degrees.
	//
	// Parameters:
	//   - innerDeg: inner cone half-angle in degrees
	//   - outerDeg: outer cone half-angle in degrees
	SetSpotCone(innerDeg, outerDeg float32)

	// SetAreaSize sets the rectangular emitter extents for area lights.
	//
	// Parameters:
	//   - width, height: emitter size in world units
	SetAreaSize(width, height float32)

	// SetShadowExtent sets the directional light's orthographic shadow
	// frustum parameters.
	//
	// Parameters:
	//   - halfExtent: half-size of the orthographic box
	//   - near, far: depth range of the box
	SetShadowExtent(halfExtent, near, far float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetEphemeral marks the light as ephemeral (particle-emitted).
	//
	// Parameters:
	//   - ephemeral: true if ephemeral
	SetEphemeral(ephemeral bool)

	// SetCastsShadows sets whether the light is eligible for shadow mapping.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults
// and any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:        lightType,
		direction:        mgl32.Vec3{0, -1, 0},
		color:            mgl32.Vec3{1, 1, 1},
		intensity:        1.0,
		lightRange:       10.0,
		innerConeAngle:   mgl32.DegToRad(25),
		outerConeAngle:   mgl32.DegToRad(35),
		areaWidth:        1.0,
		areaHeight:       1.0,
		shadowHalfExtent: DefaultShadowHalfExtent,
		shadowNear:       DefaultShadowNear,
		shadowFar:        DefaultShadowFar,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) EffectiveColor() mgl32.Vec3 {
	return l.color.Mul(l.intensity)
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	return float32(math.Cos(float64(l.innerConeAngle)))
}

func (l *lightImpl) OuterCone() float32 {
	return float32(math.Cos(float64(l.outerConeAngle)))
}

func (l *lightImpl) OuterConeAngle() float32 {
	return l.outerConeAngle
}

func (l *lightImpl) AreaSize() (width, height float32) {
	return l.areaWidth, l.areaHeight
}

func (l *lightImpl) ShadowExtent() (halfExtent, near, far float32) {
	return l.shadowHalfExtent, l.shadowNear, l.shadowFar
}

func (l *lightImpl) ViewMatrix() mgl32.Mat4 {
	switch l.lightType {
	case LightTypePoint:
		return l.CubeFaceViewMatrix(0)
	default:
		return mgl32.LookAtV(l.position, l.position.Add(l.direction), shadowUp(l.direction))
	}
}

func (l *lightImpl) CubeFaceViewMatrix(face int) mgl32.Mat4 {
	if face < 0 {
		face = 0
	}
	if face > 5 {
		face = 5
	}
	return mgl32.LookAtV(l.position, l.position.Add(cubeFaceTargets[face]), cubeFaceUps[face])
}

func (l *lightImpl) ProjectionMatrix() mgl32.Mat4 {
	switch l.lightType {
	case LightTypePoint:
		return mgl32.Perspective(float32(math.Pi/2), 1.0, pointShadowNear, l.lightRange)
	case LightTypeSpot:
		return mgl32.Perspective(2*l.outerConeAngle, 1.0, pointShadowNear, l.lightRange)
	case LightTypeArea:
		// Placeholder projection: a rectangular emitter has no physically
		// meaningful depth frustum, so the emitter extents size an ortho box.
		halfW := l.areaWidth / 2
		halfH := l.areaHeight / 2
		return mgl32.Ortho(-halfW, halfW, -halfH, halfH, pointShadowNear, l.lightRange)
	case LightTypeDirectional:
		fallthrough
	default:
		e := l.shadowHalfExtent
		return mgl32.Ortho(-e, e, -e, e, l.shadowNear, l.shadowFar)
	}
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Ephemeral() bool {
	return l.ephemeral
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	if d.Len() == 0 {
		return
	}
	l.direction = d.Normalize()
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = mgl32.Vec3{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerConeAngle = mgl32.DegToRad(innerDeg)
	l.outerConeAngle = mgl32.DegToRad(outerDeg)
}

func (l *lightImpl) SetAreaSize(width, height float32) {
	l.areaWidth = width
	l.areaHeight = height
}

func (l *lightImpl) SetShadowExtent(halfExtent, near, far float32) {
	l.shadowHalfExtent = halfExtent
	l.shadowNear = near
	l.shadowFar = far
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetEphemeral(ephemeral bool) {
	l.ephemeral = ephemeral
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}

// shadowUp picks the world up vector for a light's lookAt view, switching to
// +Z when the light direction is close to vertical so the basis never
// degenerates.
func shadowUp(direction mgl32.Vec3) mgl32.Vec3 {
	if math.Abs(float64(direction.Y())) > 0.999 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}
