package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIndexedTriangleCount(t *testing.T) {
	m := NewMesh(
		WithName("quad"),
		WithVertexData(make([]byte, 4*32), 4),
		WithIndexData(make([]byte, 6*4), 6),
	)

	if !m.Indexed() {
		t.Error("mesh with index data not reported as indexed")
	}
	if got := m.TriangleCount(); got != 2 {
		t.Errorf("TriangleCount() = %d, want 2", got)
	}
}

func TestNonIndexedTriangleCount(t *testing.T) {
	m := NewMesh(WithVertexData(make([]byte, 9*32), 9))

	if m.Indexed() {
		t.Error("mesh without index data reported as indexed")
	}
	if got := m.TriangleCount(); got != 3 {
		t.Errorf("TriangleCount() = %d, want 3", got)
	}
}

func TestEmptyMesh(t *testing.T) {
	m := NewMesh()
	if m.TriangleCount() != 0 || m.Indexed() {
		t.Errorf("empty mesh: TriangleCount() = %d, Indexed() = %v", m.TriangleCount(), m.Indexed())
	}
}

func TestBounds(t *testing.T) {
	m := NewMesh(WithBounds(mgl32.Vec3{1, 2, 3}, 4.5))
	if m.BoundsCenter() != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("BoundsCenter() = %v, want (1, 2, 3)", m.BoundsCenter())
	}
	if m.BoundingRadius() != 4.5 {
		t.Errorf("BoundingRadius() = %f, want 4.5", m.BoundingRadius())
	}
}
