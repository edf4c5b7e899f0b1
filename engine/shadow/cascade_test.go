package shadow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/engine/light"
)

func TestCascadeSplitDistancesBlend(t *testing.T) {
	splits := CascadeSplitDistances(4, 0.1, 100, 0.5)
	if len(splits) != 4 {
		t.Fatalf("len(splits) = %d, want 4", len(splits))
	}

	prev := float32(0.1)
	for i, s := range splits {
		if s <= prev {
			t.Errorf("split %d = %f is not greater than previous %f", i, s, prev)
		}
		if s > 100 {
			t.Errorf("split %d = %f exceeds far plane", i, s)
		}
		prev = s
	}
	if splits[3] != 100 {
		t.Errorf("last split = %f, want 100", splits[3])
	}
}

func TestCascadeSplitDistancesUniform(t *testing.T) {
	splits := CascadeSplitDistances(4, 0.1, 100, 0)
	want := []float32{25.075, 50.05, 75.025, 100}
	for i := range want {
		if math.Abs(float64(splits[i]-want[i])) > 1e-2 {
			t.Errorf("uniform split %d = %f, want %f", i, splits[i], want[i])
		}
	}
}

func TestCascadeSplitDistancesLogarithmic(t *testing.T) {
	splits := CascadeSplitDistances(3, 1, 1000, 1)
	// Fully logarithmic splits of [1, 1000] over 3 cascades are powers of 10.
	want := []float32{10, 100, 1000}
	for i := range want {
		if math.Abs(float64(splits[i]-want[i]))/float64(want[i]) > 1e-3 {
			t.Errorf("log split %d = %f, want %f", i, splits[i], want[i])
		}
	}
}

func TestCascadeSplitDistancesInvalid(t *testing.T) {
	cases := []struct {
		name              string
		count             int
		near, far, lambda float32
	}{
		{"zero count", 0, 0.1, 100, 0.5},
		{"zero near", 4, 0, 100, 0.5},
		{"far before near", 4, 10, 5, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CascadeSplitDistances(tc.count, tc.near, tc.far, tc.lambda); got != nil {
				t.Errorf("CascadeSplitDistances() = %v, want nil", got)
			}
		})
	}
}

func TestCascadeSplitDistancesLambdaClamped(t *testing.T) {
	low := CascadeSplitDistances(4, 0.1, 100, -1)
	zero := CascadeSplitDistances(4, 0.1, 100, 0)
	for i := range zero {
		if low[i] != zero[i] {
			t.Fatalf("lambda below 0 not clamped: split %d = %f, want %f", i, low[i], zero[i])
		}
	}
}

func TestNewCascadedShadowMap(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu)
	l := light.NewLight(light.LightTypeDirectional,
		light.WithPosition(0, 50, 0),
		light.WithDirection(0, -1, 0),
		light.WithCastsShadows(true),
	)

	csm, err := m.NewCascadedShadowMap(l, 4, 0.5, 0.1, 100)
	if err != nil {
		t.Fatalf("NewCascadedShadowMap() error: %v", err)
	}
	if got := len(csm.Cascades()); got != 4 {
		t.Fatalf("len(Cascades()) = %d, want 4", got)
	}
	if gpu.allocations != 4 {
		t.Errorf("allocations = %d, want 4 (one per cascade)", gpu.allocations)
	}

	splits := csm.SplitDistances()
	prevSplit := float32(0)
	prevExtent := float64(-1)
	for i, sm := range csm.Cascades() {
		if splits[i] <= prevSplit {
			t.Errorf("split %d = %f not strictly increasing", i, splits[i])
		}
		prevSplit = splits[i]

		// Nearer cascades use a tighter orthographic box: the x scale of the
		// ortho projection (1/extent) must shrink cascade over cascade.
		extent := 1 / float64(sm.ProjectionMatrix.At(0, 0))
		if extent <= prevExtent {
			t.Errorf("cascade %d extent %f not wider than previous %f", i, extent, prevExtent)
		}
		prevExtent = extent
	}
}

func TestCascadedShadowMapInvalidParams(t *testing.T) {
	m := NewManager(&fakeGPU{})
	l := light.NewLight(light.LightTypeDirectional, light.WithDirection(0, -1, 0))

	if _, err := m.NewCascadedShadowMap(l, 0, 0.5, 0.1, 100); err == nil {
		t.Error("expected error for zero cascade count")
	}
}

func TestCascadedShadowMapRefreshTracksLight(t *testing.T) {
	m := NewManager(&fakeGPU{})
	l := light.NewLight(light.LightTypeDirectional,
		light.WithPosition(0, 50, 0),
		light.WithDirection(0, -1, 0),
	)

	csm, err := m.NewCascadedShadowMap(l, 2, 0.5, 0.1, 100)
	if err != nil {
		t.Fatalf("NewCascadedShadowMap() error: %v", err)
	}
	before := csm.Cascades()[0].ViewMatrix

	l.SetPosition(mgl32.Vec3{30, 50, 0})
	csm.Refresh()
	if csm.Cascades()[0].ViewMatrix == before {
		t.Error("cascade view matrix not refreshed after the light moved")
	}
}

func TestCascadedShadowMapDispose(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu)
	l := light.NewLight(light.LightTypeDirectional, light.WithDirection(0, -1, 0))

	csm, err := m.NewCascadedShadowMap(l, 3, 0.5, 0.1, 100)
	if err != nil {
		t.Fatalf("NewCascadedShadowMap() error: %v", err)
	}
	csm.Dispose()
	for i, target := range gpu.targets {
		if !target.released {
			t.Errorf("cascade target %d not released", i)
		}
	}
}
