package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/transform"
)

// ProjectionKind identifies which projection variant a camera is using.
type ProjectionKind int

const (
	// ProjectionPerspective selects a perspective projection built from
	// field of view, aspect ratio, and near/far planes.
	ProjectionPerspective ProjectionKind = iota

	// ProjectionOrthographic selects an orthographic projection built from an
	// axis-aligned box.
	ProjectionOrthographic
)

// PerspectiveParams holds the parameters of a perspective projection.
type PerspectiveParams struct {
	// Fov is the vertical field of view in radians.
	Fov float32
	// Aspect is the viewport aspect ratio (width / height).
	Aspect float32
	// Near and Far are the clipping plane distances.
	Near, Far float32
}

// OrthographicParams holds the parameters of an orthographic projection.
type OrthographicParams struct {
	// Left, Right, Bottom, Top bound the projection box on the near plane.
	Left, Right, Bottom, Top float32
	// Near and Far are the clipping plane distances.
	Near, Far float32
}

// Ray is a world-space ray produced by screen-space unprojection.
type Ray struct {
	// Origin is the unprojected near-plane point. Note this is the ray's
	// intersection with the near plane, not the camera's eye position; the
	// two differ by a near-plane-distance-scaled offset along the ray.
	Origin mgl32.Vec3
	// Direction is the normalized direction from the near-plane point toward
	// the far-plane point.
	Direction mgl32.Vec3
}

type cameraImpl struct {
	node transform.Node
	up   mgl32.Vec3

	kind  ProjectionKind
	persp PerspectiveParams
	ortho OrthographicParams

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4

	viewDirty           bool
	projectionDirty     bool
	viewProjectionDirty bool

	// Instrumentation counters, read by tests to pin the caching behavior.
	viewRecomputes       int
	projectionRecomputes int

	sink common.LogSink
}

// Camera wraps a transform node and produces view, projection, and combined
// view-projection matrices. One projection variant (perspective or
// orthographic) is active at a time; switching variants or changing variant
// parameters marks the projection dirty, while any change to the owned
// transform (observed through the node's dirty callback) marks the view
// dirty. Each matrix is cached and recomputed only when its dependency is
// stale.
//
// The camera installs itself as the node's world-dirty callback; the node is
// considered owned by the camera for notification purposes.
type Camera interface {
	// Transform returns the camera's transform node.
	//
	// Returns:
	//   - transform.Node: the owned transform
	Transform() transform.Node

	// Up returns the camera's up vector used by LookAt.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: the new up vector
	SetUp(up mgl32.Vec3)

	// ProjectionKind returns the active projection variant.
	//
	// Returns:
	//   - ProjectionKind: perspective or orthographic
	ProjectionKind() ProjectionKind

	// Perspective returns the perspective variant's parameters.
	//
	// Returns:
	//   - PerspectiveParams: the perspective parameters
	Perspective() PerspectiveParams

	// SetPerspective activates the perspective variant with the given
	// parameters and marks the projection dirty.
	//
	// Parameters:
	//   - fov: vertical field of view in radians
	//   - aspect: viewport aspect ratio (width / height)
	//   - near: near clipping plane distance
	//   - far: far clipping plane distance
	SetPerspective(fov, aspect, near, far float32)

	// Orthographic returns the orthographic variant's parameters.
	//
	// Returns:
	//   - OrthographicParams: the orthographic parameters
	Orthographic() OrthographicParams

	// SetOrthographic activates the orthographic variant with the given box
	// and marks the projection dirty.
	//
	// Parameters:
	//   - left, right, bottom, top: projection box bounds
	//   - near: near clipping plane distance
	//   - far: far clipping plane distance
	SetOrthographic(left, right, bottom, top, near, far float32)

	// SetAspect updates the perspective aspect ratio, typically from a window
	// resize, and marks the projection dirty.
	//
	// Parameters:
	//   - aspect: the new aspect ratio (width / height)
	SetAspect(aspect float32)

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the transform's world position
	Position() mgl32.Vec3

	// LookAt orients the camera so it faces the target point.
	//
	// Parameters:
	//   - target: the world-space point to look at
	LookAt(target mgl32.Vec3)

	// ViewMatrix returns the view matrix (the inverse of the transform's
	// world matrix), recomputing it only when the transform has changed.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the projection matrix built from the active
	// variant, recomputing it only when the variant or its parameters changed.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined projection * view matrix,
	// recomputed only when either dependency was dirty.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// ScreenToWorldRay unprojects a normalized screen position into a
	// world-space ray. The near (z = -1) and far (z = +1) NDC points are
	// pushed through the inverse view-projection matrix; the ray's origin is
	// the near-plane point and its direction points from near toward far.
	//
	// Parameters:
	//   - screenX: horizontal screen position in [0, 1], left to right
	//   - screenY: vertical screen position in [0, 1], top to bottom
	//
	// Returns:
	//   - Ray: the unprojected ray
	ScreenToWorldRay(screenX, screenY float32) Ray
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with a default perspective projection
// (45 degrees, aspect 1, near 0.1, far 100) and applies the given options.
// If no transform is supplied via WithTransform, the camera creates its own
// root node.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:   mgl32.Vec3{0, 1, 0},
		kind: ProjectionPerspective,
		persp: PerspectiveParams{
			Fov:    45.0 * (math.Pi / 180.0),
			Aspect: 1.0,
			Near:   0.1,
			Far:    100.0,
		},
		viewDirty:           true,
		projectionDirty:     true,
		viewProjectionDirty: true,
		sink:                common.NopSink(),
	}
	for _, option := range options {
		option(c)
	}
	if c.node == nil {
		c.node = transform.NewNode()
	}
	c.node.SetWorldDirtyCallback(c.markViewDirty)
	return c
}

func (c *cameraImpl) Transform() transform.Node {
	return c.node
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	return c.up
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.up = up
}

func (c *cameraImpl) ProjectionKind() ProjectionKind {
	return c.kind
}

func (c *cameraImpl) Perspective() PerspectiveParams {
	return c.persp
}

func (c *cameraImpl) SetPerspective(fov, aspect, near, far float32) {
	c.kind = ProjectionPerspective
	c.persp = PerspectiveParams{Fov: fov, Aspect: aspect, Near: near, Far: far}
	c.markProjectionDirty()
}

func (c *cameraImpl) Orthographic() OrthographicParams {
	return c.ortho
}

func (c *cameraImpl) SetOrthographic(left, right, bottom, top, near, far float32) {
	c.kind = ProjectionOrthographic
	c.ortho = OrthographicParams{Left: left, Right: right, Bottom: bottom, Top: top, Near: near, Far: far}
	c.markProjectionDirty()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.persp.Aspect = aspect
	if c.kind == ProjectionPerspective {
		c.markProjectionDirty()
	}
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return c.node.WorldPosition()
}

func (c *cameraImpl) LookAt(target mgl32.Vec3) {
	eye := c.node.WorldPosition()
	view := mgl32.LookAtV(eye, target, c.up)

	// The node's world rotation is the inverse of the view rotation; for an
	// orthonormal basis that inverse is the transpose.
	world := mgl32.Mat4ToQuat(view.Mat3().Transpose().Mat4())
	if parent := c.node.Parent(); parent != nil {
		c.node.SetRotation(parent.WorldRotation().Inverse().Mul(world).Normalize())
		return
	}
	c.node.SetRotation(world)
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	if c.viewDirty {
		inv, ok := common.SafeInvert(c.node.WorldMatrix())
		if !ok {
			c.sink.Warnf("camera: transform world matrix is singular, view matrix falling back to identity")
		}
		c.viewMatrix = inv
		c.viewDirty = false
		c.viewRecomputes++
	}
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	if c.projectionDirty {
		switch c.kind {
		case ProjectionOrthographic:
			o := c.ortho
			c.projectionMatrix = mgl32.Ortho(o.Left, o.Right, o.Bottom, o.Top, o.Near, o.Far)
		case ProjectionPerspective:
			fallthrough
		default:
			p := c.persp
			c.projectionMatrix = mgl32.Perspective(p.Fov, p.Aspect, p.Near, p.Far)
		}
		c.projectionDirty = false
		c.projectionRecomputes++
	}
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	if c.viewProjectionDirty {
		c.viewProjectionMatrix = c.ProjectionMatrix().Mul4(c.ViewMatrix())
		c.viewProjectionDirty = false
	}
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ScreenToWorldRay(screenX, screenY float32) Ray {
	// [0,1] screen space (top-left origin) to [-1,1] NDC (bottom-left origin).
	ndcX := 2*screenX - 1
	ndcY := 1 - 2*screenY

	invVP, ok := common.SafeInvert(c.ViewProjectionMatrix())
	if !ok {
		c.sink.Warnf("camera: view-projection matrix is singular, ray unprojection using identity")
	}

	near := unproject(invVP, mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invVP, mgl32.Vec4{ndcX, ndcY, 1, 1})

	return Ray{
		Origin:    near,
		Direction: far.Sub(near).Normalize(),
	}
}

func (c *cameraImpl) markViewDirty() {
	c.viewDirty = true
	c.viewProjectionDirty = true
}

func (c *cameraImpl) markProjectionDirty() {
	c.projectionDirty = true
	c.viewProjectionDirty = true
}

// unproject applies the inverse view-projection to an NDC point and performs
// the perspective divide.
func unproject(invVP mgl32.Mat4, ndc mgl32.Vec4) mgl32.Vec3 {
	v := invVP.Mul4x1(ndc)
	if v.W() != 0 {
		return v.Vec3().Mul(1 / v.W())
	}
	return v.Vec3()
}
