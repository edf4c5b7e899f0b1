package transform

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/common"
)

type NodeBuilderOption func(*node)

// WithPosition sets the node's initial local position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - NodeBuilderOption: a function that sets the initial position
func WithPosition(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the node's initial local rotation.
//
// Parameters:
//   - q: the initial rotation quaternion
//
// Returns:
//   - NodeBuilderOption: a function that sets the initial rotation
func WithRotation(q mgl32.Quat) NodeBuilderOption {
	return func(n *node) {
		n.rotation = q
	}
}

// WithScale sets the node's initial local scale.
//
// Parameters:
//   - x, y, z: per-axis scale factors
//
// Returns:
//   - NodeBuilderOption: a function that sets the initial scale
func WithScale(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.scale = mgl32.Vec3{x, y, z}
	}
}

// WithParent attaches the node to a parent at construction time. A parent
// that would form a cycle is impossible here since the node is brand new, so
// the error from SetParent is ignored.
//
// Parameters:
//   - p: the parent node
//
// Returns:
//   - NodeBuilderOption: a function that attaches the node to p
func WithParent(p Node) NodeBuilderOption {
	return func(n *node) {
		_ = n.SetParent(p)
	}
}

// WithLogSink injects the sink receiving the node's diagnostics.
//
// Parameters:
//   - sink: the log sink to use
//
// Returns:
//   - NodeBuilderOption: a function that sets the log sink
func WithLogSink(sink common.LogSink) NodeBuilderOption {
	return func(n *node) {
		n.sink = sink
	}
}
