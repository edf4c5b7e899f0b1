package light

import "github.com/go-gl/mathgl/mgl32"

type LightBuilderOption func(*lightImpl)

// WithPosition sets the light's world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - LightBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection sets the light's direction, normalized.
//
// Parameters:
//   - x, y, z: direction components (will be normalized)
//
// Returns:
//   - LightBuilderOption: a function that sets the direction
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetDirection(mgl32.Vec3{x, y, z})
	}
}

// WithColor sets the light's RGB color.
//
// Parameters:
//   - r, g, b: color components
//
// Returns:
//   - LightBuilderOption: a function that sets the color
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithIntensity sets the light's scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that sets the intensity
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange sets the maximum attenuation distance for point and spot lights.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that sets the range
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotCone sets the inner and outer cone half-angles for spot lights,
// in degrees.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that sets the cone angles
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetSpotCone(innerDeg, outerDeg)
	}
}

// WithAreaSize sets the rectangular emitter extents for area lights.
//
// Parameters:
//   - width, height: emitter size in world units
//
// Returns:
//   - LightBuilderOption: a function that sets the emitter size
func WithAreaSize(width, height float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.areaWidth = width
		l.areaHeight = height
	}
}

// WithShadowExtent sets the directional light's orthographic shadow frustum.
//
// Parameters:
//   - halfExtent: half-size of the orthographic box
//   - near, far: depth range of the box
//
// Returns:
//   - LightBuilderOption: a function that sets the shadow frustum
func WithShadowExtent(halfExtent, near, far float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowHalfExtent = halfExtent
		l.shadowNear = near
		l.shadowFar = far
	}
}

// WithCastsShadows marks the light as eligible for shadow map generation.
//
// Parameters:
//   - castsShadows: true to enable shadow casting
//
// Returns:
//   - LightBuilderOption: a function that sets shadow casting
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

// WithEphemeral marks the light as ephemeral (particle-emitted).
//
// Parameters:
//   - ephemeral: true if ephemeral
//
// Returns:
//   - LightBuilderOption: a function that sets the ephemeral flag
func WithEphemeral(ephemeral bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.ephemeral = ephemeral
	}
}
