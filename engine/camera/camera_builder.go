package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/transform"
)

type CameraBuilderOption func(*cameraImpl)

// WithTransform attaches an existing transform node to the camera instead of
// letting it create its own root node.
//
// Parameters:
//   - node: the transform node to own
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's transform
func WithTransform(node transform.Node) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.node = node
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}
	}
}

// WithPerspective activates the perspective variant with the given parameters.
//
// Parameters:
//   - fov: vertical field of view in radians
//   - aspect: viewport aspect ratio (width / height)
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - CameraBuilderOption: a function that configures the perspective variant
func WithPerspective(fov, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.kind = ProjectionPerspective
		c.persp = PerspectiveParams{Fov: fov, Aspect: aspect, Near: near, Far: far}
	}
}

// WithOrthographic activates the orthographic variant with the given box.
//
// Parameters:
//   - left, right, bottom, top: projection box bounds
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - CameraBuilderOption: a function that configures the orthographic variant
func WithOrthographic(left, right, bottom, top, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.kind = ProjectionOrthographic
		c.ortho = OrthographicParams{Left: left, Right: right, Bottom: bottom, Top: top, Near: near, Far: far}
	}
}

// WithLogSink injects the sink receiving the camera's diagnostics.
//
// Parameters:
//   - sink: the log sink to use
//
// Returns:
//   - CameraBuilderOption: a function that sets the log sink
func WithLogSink(sink common.LogSink) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.sink = sink
	}
}
