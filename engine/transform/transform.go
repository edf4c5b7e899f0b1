package transform

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/common"
)

// ErrCyclicParent is returned by SetParent when the requested parent is the
// node itself or one of its descendants. Accepting such a parent would turn
// the transform hierarchy into a graph with a cycle, and every world matrix
// read below the cycle would recurse forever.
var ErrCyclicParent = errors.New("transform: new parent is the node itself or one of its descendants")

type node struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	// parent is a non-owning back-reference; children own their entries.
	parent   *node
	children []*node

	localMatrix mgl32.Mat4
	worldMatrix mgl32.Mat4
	localDirty  bool
	worldDirty  bool

	onWorldDirty func()

	// Instrumentation counters, read by tests to pin the caching and
	// dirty-propagation behavior.
	localRecomputes int
	worldRecomputes int
	dirtyMarks      int

	sink common.LogSink
}

// Node is a hierarchical spatial transform: position, rotation, and scale
// relative to an optional parent, with lazily cached local and world matrices.
//
// The local matrix is Translation * Rotation * Scale (scale applied first to
// a point, then rotation, then translation). The world matrix is the parent's
// world matrix times the local matrix. Both are recomputed only when read
// after a mutation; two independent dirty flags track staleness, with the
// invariant that a dirty local matrix always implies a dirty world matrix.
//
// Nodes are not safe for concurrent use. All hierarchy mutation must happen
// in the update phase, strictly before the render phase reads world matrices.
type Node interface {
	// Position returns the node's local position.
	//
	// Returns:
	//   - mgl32.Vec3: position relative to the parent
	Position() mgl32.Vec3

	// Rotation returns the node's local rotation.
	//
	// Returns:
	//   - mgl32.Quat: rotation relative to the parent
	Rotation() mgl32.Quat

	// Scale returns the node's local per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: scale relative to the parent
	Scale() mgl32.Vec3

	// SetPosition sets the local position and invalidates cached matrices.
	//
	// Parameters:
	//   - p: the new local position
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the local rotation and invalidates cached matrices.
	//
	// Parameters:
	//   - q: the new local rotation (normalized by the caller)
	SetRotation(q mgl32.Quat)

	// SetScale sets the local scale and invalidates cached matrices.
	//
	// Parameters:
	//   - s: the new per-axis scale
	SetScale(s mgl32.Vec3)

	// Translate adds a local-space offset to the position.
	//
	// Parameters:
	//   - delta: offset in the parent's space
	Translate(delta mgl32.Vec3)

	// TranslateWorld adds a world-space offset to the position. The offset is
	// rotated into local space through the inverse of the parent's world
	// rotation; with no parent it is added directly.
	//
	// Parameters:
	//   - offset: offset in world space
	TranslateWorld(offset mgl32.Vec3)

	// Rotate applies an additional rotation about the given axis, composed
	// after the current local rotation.
	//
	// Parameters:
	//   - axis: rotation axis (normalized by the caller)
	//   - angle: rotation angle in radians
	Rotate(axis mgl32.Vec3, angle float32)

	// Parent returns the node's parent, or nil for a root node.
	//
	// Returns:
	//   - Node: the parent node or nil
	Parent() Node

	// Children returns a copy of the node's child list.
	//
	// Returns:
	//   - []Node: the children in attachment order
	Children() []Node

	// SetParent reparents the node: it detaches from the current parent's
	// child set if present, then attaches to p (or becomes a root when p is
	// nil). Reparenting under the node itself or one of its descendants is
	// rejected with ErrCyclicParent, keeping the hierarchy a tree.
	//
	// Parameters:
	//   - p: the new parent, or nil to become a root
	//
	// Returns:
	//   - error: ErrCyclicParent when p lies in the node's own subtree
	SetParent(p Node) error

	// DetachChildren detaches every child from this node. The children become
	// parentless roots; they are not destroyed.
	DetachChildren()

	// LocalMatrix returns the local transform matrix, recomputing it from
	// position/rotation/scale only when stale.
	//
	// Returns:
	//   - mgl32.Mat4: Translation * Rotation * Scale
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns the world transform matrix, recomputing it from the
	// local matrix and the parent chain only when stale.
	//
	// Returns:
	//   - mgl32.Mat4: parent.WorldMatrix * LocalMatrix, or LocalMatrix for roots
	WorldMatrix() mgl32.Mat4

	// WorldPosition returns the world-space position, decomposed from the
	// translation column of the world matrix.
	//
	// Returns:
	//   - mgl32.Vec3: position in world space
	WorldPosition() mgl32.Vec3

	// WorldScale returns the world-space per-axis scale, decomposed from the
	// lengths of the world matrix basis vectors.
	//
	// Returns:
	//   - mgl32.Vec3: scale in world space
	WorldScale() mgl32.Vec3

	// WorldRotation returns the world-space rotation, composed by quaternion
	// multiplication up the parent chain rather than matrix decomposition.
	// Matrix-based extraction shears under non-uniform parent scale;
	// quaternion composition does not.
	//
	// Returns:
	//   - mgl32.Quat: rotation in world space
	WorldRotation() mgl32.Quat

	// SetWorldPosition sets the node's position in world space. With a parent,
	// the local position becomes inverse(parent.WorldMatrix) applied to p; a
	// singular parent world matrix is recoverable — the inverse falls back to
	// the identity and a warning goes to the log sink.
	//
	// Parameters:
	//   - p: the desired world-space position
	SetWorldPosition(p mgl32.Vec3)

	// SetWorldDirtyCallback sets the function invoked when the node's world
	// matrix transitions from clean to dirty. Used by the camera to observe
	// transform changes. Pass nil to disable.
	//
	// Parameters:
	//   - callback: function to call on the clean-to-dirty transition, or nil
	SetWorldDirtyCallback(callback func())
}

var _ Node = &node{}

// NewNode creates a standalone (parentless) transform node at the origin with
// identity rotation and unit scale, then applies the provided options.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the newly created node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		rotation:   mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		localDirty: true,
		worldDirty: true,
		sink:       common.NopSink(),
	}
	for _, option := range options {
		option(n)
	}
	return n
}

func (n *node) Position() mgl32.Vec3 {
	return n.position
}

func (n *node) Rotation() mgl32.Quat {
	return n.rotation
}

func (n *node) Scale() mgl32.Vec3 {
	return n.scale
}

func (n *node) SetPosition(p mgl32.Vec3) {
	n.position = p
	n.markLocalDirty()
}

func (n *node) SetRotation(q mgl32.Quat) {
	n.rotation = q
	n.markLocalDirty()
}

func (n *node) SetScale(s mgl32.Vec3) {
	n.scale = s
	n.markLocalDirty()
}

func (n *node) Translate(delta mgl32.Vec3) {
	n.SetPosition(n.position.Add(delta))
}

func (n *node) TranslateWorld(offset mgl32.Vec3) {
	if n.parent == nil {
		n.SetPosition(n.position.Add(offset))
		return
	}
	local := n.parent.WorldRotation().Inverse().Rotate(offset)
	n.SetPosition(n.position.Add(local))
}

func (n *node) Rotate(axis mgl32.Vec3, angle float32) {
	q := mgl32.QuatRotate(angle, axis)
	n.SetRotation(n.rotation.Mul(q).Normalize())
}

func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) SetParent(p Node) error {
	var newParent *node
	if p != nil {
		var ok bool
		newParent, ok = p.(*node)
		if !ok {
			return errors.Errorf("transform: unsupported Node implementation %T", p)
		}
	}

	// Walk the ancestors of the prospective parent; finding this node means
	// the parent lies inside this node's own subtree.
	for walk := newParent; walk != nil; walk = walk.parent {
		if walk == n {
			return ErrCyclicParent
		}
	}

	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = newParent
	if newParent != nil {
		newParent.children = append(newParent.children, n)
	}
	n.markWorldDirty()
	return nil
}

func (n *node) DetachChildren() {
	for _, c := range n.children {
		c.parent = nil
		c.markWorldDirty()
	}
	n.children = n.children[:0]
}

func (n *node) LocalMatrix() mgl32.Mat4 {
	if n.localDirty {
		n.localMatrix = common.ComposeTRS(n.position, n.rotation, n.scale)
		n.localDirty = false
		n.localRecomputes++
	}
	return n.localMatrix
}

func (n *node) WorldMatrix() mgl32.Mat4 {
	if n.worldDirty {
		local := n.LocalMatrix()
		if n.parent != nil {
			n.worldMatrix = n.parent.WorldMatrix().Mul4(local)
		} else {
			n.worldMatrix = local
		}
		n.worldDirty = false
		n.worldRecomputes++
	}
	return n.worldMatrix
}

func (n *node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

func (n *node) WorldScale() mgl32.Vec3 {
	w := n.WorldMatrix()
	return mgl32.Vec3{
		w.Col(0).Vec3().Len(),
		w.Col(1).Vec3().Len(),
		w.Col(2).Vec3().Len(),
	}
}

func (n *node) WorldRotation() mgl32.Quat {
	if n.parent == nil {
		return n.rotation
	}
	return n.parent.WorldRotation().Mul(n.rotation).Normalize()
}

func (n *node) SetWorldPosition(p mgl32.Vec3) {
	if n.parent == nil {
		n.SetPosition(p)
		return
	}
	inv, ok := common.SafeInvert(n.parent.WorldMatrix())
	if !ok {
		n.sink.Warnf("transform: parent world matrix is singular, SetWorldPosition using identity inverse")
	}
	n.SetPosition(inv.Mul4x1(p.Vec4(1)).Vec3())
}

func (n *node) SetWorldDirtyCallback(callback func()) {
	n.onWorldDirty = callback
}

// markLocalDirty invalidates the local matrix. A dirty local matrix always
// implies a dirty world matrix.
func (n *node) markLocalDirty() {
	n.localDirty = true
	n.markWorldDirty()
}

// markWorldDirty invalidates the world matrix of this node and, recursively,
// of every descendant. The early return on an already-dirty node bounds the
// cost of invalidation in deep or wide hierarchies: a subtree is traversed at
// most once between two world matrix reads.
func (n *node) markWorldDirty() {
	n.dirtyMarks++
	if n.worldDirty {
		return
	}
	n.worldDirty = true
	if n.onWorldDirty != nil {
		n.onWorldDirty()
	}
	for _, c := range n.children {
		c.markWorldDirty()
	}
}

func (n *node) removeChild(child *node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
