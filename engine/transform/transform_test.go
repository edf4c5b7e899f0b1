package transform

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const epsilon = 1e-4

func approxVec3(a, b mgl32.Vec3, eps float64) bool {
	return math.Abs(float64(a.X()-b.X())) < eps &&
		math.Abs(float64(a.Y()-b.Y())) < eps &&
		math.Abs(float64(a.Z()-b.Z())) < eps
}

type recordingSink struct {
	warnings []string
}

func (r *recordingSink) Debugf(string, ...any) {}
func (r *recordingSink) Warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}
func (r *recordingSink) Errorf(string, ...any) {}

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode()
	if n.Parent() != nil {
		t.Error("Parent() != nil for a standalone node")
	}
	if got := n.Scale(); !approxVec3(got, mgl32.Vec3{1, 1, 1}, epsilon) {
		t.Errorf("Scale() = %v, want unit scale", got)
	}
	if got := n.WorldMatrix(); got != mgl32.Ident4() {
		t.Errorf("WorldMatrix() = %v, want identity", got)
	}
}

func TestChainTranslationPropagates(t *testing.T) {
	const depth = 6
	offset := mgl32.Vec3{3, -2, 7}

	root := NewNode()
	nodes := []Node{root}
	locals := []mgl32.Vec3{{0, 0, 0}}
	prev := root
	for i := 1; i < depth; i++ {
		local := mgl32.Vec3{float32(i), float32(2 * i), float32(-i)}
		child := NewNode(WithPosition(local.X(), local.Y(), local.Z()), WithParent(prev))
		nodes = append(nodes, child)
		locals = append(locals, local)
		prev = child
	}

	root.SetPosition(offset)

	// With all rotations and scales at identity, every descendant's world
	// position is the sum of local positions up the chain plus the root offset.
	sum := mgl32.Vec3{}
	for i, n := range nodes {
		sum = sum.Add(locals[i])
		want := sum
		if i > 0 {
			want = want.Add(offset)
		} else {
			want = offset
		}
		if got := n.WorldPosition(); !approxVec3(got, want, epsilon) {
			t.Errorf("node %d WorldPosition() = %v, want %v", i, got, want)
		}
	}
}

func TestWorldMatrixRecomputedOnce(t *testing.T) {
	parent := NewNode(WithPosition(1, 2, 3))
	child := NewNode(WithParent(parent), WithPosition(4, 5, 6)).(*node)

	_ = child.WorldMatrix()
	_ = child.WorldMatrix()

	if child.worldRecomputes != 1 {
		t.Errorf("world recompute count = %d after two reads, want 1", child.worldRecomputes)
	}
	if child.localRecomputes != 1 {
		t.Errorf("local recompute count = %d after two reads, want 1", child.localRecomputes)
	}

	child.SetPosition(mgl32.Vec3{7, 8, 9})
	_ = child.WorldMatrix()
	if child.worldRecomputes != 2 {
		t.Errorf("world recompute count = %d after mutation and read, want 2", child.worldRecomputes)
	}
}

func TestMarkWorldDirtySkipsChildrenWhenAlreadyDirty(t *testing.T) {
	parent := NewNode().(*node)
	child := NewNode(WithParent(parent)).(*node)

	// Both nodes start dirty from construction; settle them with a read.
	_ = child.WorldMatrix()

	parent.SetPosition(mgl32.Vec3{1, 0, 0})
	marksAfterFirst := child.dirtyMarks

	// Parent is already world-dirty: a second invalidation must early-return
	// without recursing into the child.
	parent.SetPosition(mgl32.Vec3{2, 0, 0})
	if child.dirtyMarks != marksAfterFirst {
		t.Errorf("child received %d dirty marks, want %d (no recursion into already-dirty subtree)",
			child.dirtyMarks, marksAfterFirst)
	}
}

func TestSetParentDetachesFromPriorParent(t *testing.T) {
	a := NewNode()
	b := NewNode()
	n := NewNode(WithParent(a))

	if err := n.SetParent(b); err != nil {
		t.Fatalf("SetParent(b) error: %v", err)
	}
	if len(a.Children()) != 0 {
		t.Errorf("old parent still has %d children, want 0", len(a.Children()))
	}
	if len(b.Children()) != 1 || b.Children()[0] != n {
		t.Errorf("new parent children = %v, want [n]", b.Children())
	}
	if n.Parent() != b {
		t.Error("Parent() != b after reparenting")
	}
}

func TestSetParentRejectsOwnSubtree(t *testing.T) {
	root := NewNode()
	child := NewNode(WithParent(root))
	grandchild := NewNode(WithParent(child))

	if err := root.SetParent(grandchild); !errors.Is(err, ErrCyclicParent) {
		t.Errorf("SetParent(descendant) error = %v, want ErrCyclicParent", err)
	}
	if err := root.SetParent(root); !errors.Is(err, ErrCyclicParent) {
		t.Errorf("SetParent(self) error = %v, want ErrCyclicParent", err)
	}
	// The rejected reparent must leave the hierarchy untouched.
	if child.Parent() != root || grandchild.Parent() != child || root.Parent() != nil {
		t.Error("hierarchy mutated by a rejected SetParent")
	}
}

func TestDetachChildrenLeavesRoots(t *testing.T) {
	parent := NewNode(WithPosition(5, 0, 0))
	c1 := NewNode(WithParent(parent), WithPosition(1, 0, 0))
	c2 := NewNode(WithParent(parent), WithPosition(2, 0, 0))

	parent.DetachChildren()

	if len(parent.Children()) != 0 {
		t.Errorf("parent has %d children after DetachChildren, want 0", len(parent.Children()))
	}
	if c1.Parent() != nil || c2.Parent() != nil {
		t.Error("detached children still have a parent")
	}
	// Detached children keep their local state and become world roots.
	if got := c1.WorldPosition(); !approxVec3(got, mgl32.Vec3{1, 0, 0}, epsilon) {
		t.Errorf("detached child WorldPosition() = %v, want local position", got)
	}
}

func TestWorldRotationComposesQuaternions(t *testing.T) {
	quarter := mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})
	parent := NewNode(WithRotation(quarter))
	// Non-uniform parent scale would shear a matrix-decomposed rotation;
	// quaternion composition must be unaffected by it.
	parent.SetScale(mgl32.Vec3{1, 3, 0.5})
	child := NewNode(WithParent(parent), WithRotation(quarter))

	got := child.WorldRotation().Rotate(mgl32.Vec3{1, 0, 0})
	want := mgl32.Vec3{-1, 0, 0} // two quarter turns about Y
	if !approxVec3(got, want, epsilon) {
		t.Errorf("WorldRotation rotates +X to %v, want %v", got, want)
	}
}

func TestSetWorldPositionWithParent(t *testing.T) {
	parent := NewNode(WithPosition(10, 0, 0))
	child := NewNode(WithParent(parent))

	child.SetWorldPosition(mgl32.Vec3{10, 5, -2})

	if got := child.Position(); !approxVec3(got, mgl32.Vec3{0, 5, -2}, epsilon) {
		t.Errorf("local Position() = %v, want (0, 5, -2)", got)
	}
	if got := child.WorldPosition(); !approxVec3(got, mgl32.Vec3{10, 5, -2}, epsilon) {
		t.Errorf("WorldPosition() = %v, want requested world position", got)
	}
}

func TestSetWorldPositionSingularParentWarns(t *testing.T) {
	sink := &recordingSink{}
	parent := NewNode(WithScale(0, 0, 0))
	child := NewNode(WithParent(parent), WithLogSink(sink))

	child.SetWorldPosition(mgl32.Vec3{1, 2, 3})

	if len(sink.warnings) == 0 {
		t.Error("no warning emitted for a singular parent world matrix")
	}
	// The identity fallback means the world position is taken as local.
	if got := child.Position(); !approxVec3(got, mgl32.Vec3{1, 2, 3}, epsilon) {
		t.Errorf("Position() = %v, want identity-fallback (1, 2, 3)", got)
	}
}

func TestTranslateWorldUnderRotatedParent(t *testing.T) {
	quarter := mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})
	parent := NewNode(WithRotation(quarter))
	child := NewNode(WithParent(parent), WithPosition(0, 1, 0))

	before := child.WorldPosition()
	offset := mgl32.Vec3{1, 0, 0}
	child.TranslateWorld(offset)

	if got := child.WorldPosition(); !approxVec3(got, before.Add(offset), epsilon) {
		t.Errorf("WorldPosition() = %v, want %v (moved by the world offset)", got, before.Add(offset))
	}
}

func TestWorldScaleDecomposition(t *testing.T) {
	parent := NewNode(WithScale(2, 2, 2))
	child := NewNode(WithParent(parent), WithScale(1, 3, 0.5))

	if got := child.WorldScale(); !approxVec3(got, mgl32.Vec3{2, 6, 1}, epsilon) {
		t.Errorf("WorldScale() = %v, want (2, 6, 1)", got)
	}
}

func TestWorldDirtyCallbackFiresOnTransition(t *testing.T) {
	n := NewNode()
	_ = n.WorldMatrix() // settle

	fired := 0
	n.SetWorldDirtyCallback(func() { fired++ })

	n.SetPosition(mgl32.Vec3{1, 0, 0})
	n.SetPosition(mgl32.Vec3{2, 0, 0}) // still dirty, no second transition
	if fired != 1 {
		t.Errorf("callback fired %d times, want 1 (clean-to-dirty transition only)", fired)
	}

	_ = n.WorldMatrix()
	n.SetPosition(mgl32.Vec3{3, 0, 0})
	if fired != 2 {
		t.Errorf("callback fired %d times after settle and mutate, want 2", fired)
	}
}
