package light

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-3

func approx(a, b float32, eps float64) bool {
	return math.Abs(float64(a-b)) < eps
}

func TestDirectionalViewLooksAlongDirection(t *testing.T) {
	l := NewLight(LightTypeDirectional,
		WithPosition(0, 10, 0),
		WithDirection(0, -1, 0),
	)

	// The world origin lies 10 units along the light direction, so the view
	// matrix must place it 10 units down the view -Z axis.
	p := l.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !approx(p.Z(), -10, epsilon) {
		t.Errorf("view-space z of origin = %f, want -10", p.Z())
	}
}

func TestDirectionalProjectionBox(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithShadowExtent(40, 0.1, 200))

	// The box corner on the near plane maps to the NDC corner.
	corner := l.ProjectionMatrix().Mul4x1(mgl32.Vec4{40, 40, -0.1, 1})
	if !approx(corner.X(), 1, epsilon) || !approx(corner.Y(), 1, epsilon) {
		t.Errorf("ortho corner = (%f, %f), want (1, 1)", corner.X(), corner.Y())
	}
}

func TestSpotProjectionFovIsTwiceOuterCone(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithPosition(0, 0, 0),
		WithDirection(0, 0, -1),
		WithRange(50),
		WithSpotCone(20, 30),
	)

	// A point on the outer cone boundary at distance d from the apex sits at
	// y = d*tan(outer) and must project onto the top NDC edge.
	d := float32(10.0)
	y := d * float32(math.Tan(float64(l.OuterConeAngle())))
	clip := l.ProjectionMatrix().Mul4x1(mgl32.Vec4{0, y, -d, 1})
	if got := clip.Y() / clip.W(); !approx(got, 1, epsilon) {
		t.Errorf("cone-boundary ndc y = %f, want 1", got)
	}
}

func TestPointCubeFaceViews(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(3, 4, 5), WithRange(25))

	for face := 0; face < 6; face++ {
		view := l.CubeFaceViewMatrix(face)
		// Each face's target direction must map to the view-space forward
		// axis: one unit along the target lands at (0, 0, -1).
		target := l.Position().Add(cubeFaceTargets[face])
		p := view.Mul4x1(target.Vec4(1))
		if !approx(p.X(), 0, epsilon) || !approx(p.Y(), 0, epsilon) || !approx(p.Z(), -1, epsilon) {
			t.Errorf("face %d: view maps target to (%f, %f, %f), want (0, 0, -1)",
				face, p.X(), p.Y(), p.Z())
		}
	}

	if l.CubeFaceViewMatrix(-1) != l.CubeFaceViewMatrix(0) {
		t.Error("face index below range not clamped to 0")
	}
	if l.CubeFaceViewMatrix(9) != l.CubeFaceViewMatrix(5) {
		t.Error("face index above range not clamped to 5")
	}
}

func TestPointProjectionNinetyDegrees(t *testing.T) {
	l := NewLight(LightTypePoint, WithRange(25))

	// With a 90-degree fov and aspect 1, a point at 45 degrees off-axis
	// projects exactly onto the NDC edge.
	clip := l.ProjectionMatrix().Mul4x1(mgl32.Vec4{0, 5, -5, 1})
	if got := clip.Y() / clip.W(); !approx(got, 1, epsilon) {
		t.Errorf("45-degree ndc y = %f, want 1", got)
	}
}

func TestAreaMatricesAreFinitePlaceholders(t *testing.T) {
	l := NewLight(LightTypeArea, WithPosition(0, 2, 0), WithAreaSize(4, 2))

	for _, m := range []mgl32.Mat4{l.ViewMatrix(), l.ProjectionMatrix()} {
		for i := 0; i < 16; i++ {
			if math.IsNaN(float64(m[i])) || math.IsInf(float64(m[i]), 0) {
				t.Fatalf("area light matrix element %d is not finite: %f", i, m[i])
			}
		}
	}
}

func TestEffectiveColorScalesByIntensity(t *testing.T) {
	l := NewLight(LightTypePoint, WithColor(1, 0.5, 0.25), WithIntensity(2))

	got := l.EffectiveColor()
	want := mgl32.Vec3{2, 1, 0.5}
	if !approx(got.X(), want.X(), epsilon) || !approx(got.Y(), want.Y(), epsilon) || !approx(got.Z(), want.Z(), epsilon) {
		t.Errorf("EffectiveColor() = %v, want %v", got, want)
	}
}

func TestSpotConeCosines(t *testing.T) {
	l := NewLight(LightTypeSpot, WithSpotCone(25, 35))

	if got := l.InnerCone(); !approx(got, float32(math.Cos(float64(mgl32.DegToRad(25)))), epsilon) {
		t.Errorf("InnerCone() = %f, want cos(25 deg)", got)
	}
	if got := l.OuterCone(); !approx(got, float32(math.Cos(float64(mgl32.DegToRad(35)))), epsilon) {
		t.Errorf("OuterCone() = %f, want cos(35 deg)", got)
	}
}

func TestVerticalDirectionUpFallback(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithPosition(0, 10, 0), WithDirection(0, -1, 0))

	m := l.ViewMatrix()
	for i := 0; i < 16; i++ {
		if math.IsNaN(float64(m[i])) {
			t.Fatalf("view matrix degenerate for a straight-down light: element %d is NaN", i)
		}
	}
}
