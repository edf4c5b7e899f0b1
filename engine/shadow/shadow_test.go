package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/engine/light"
)

type fakeTarget struct {
	width, height int
	released      bool
}

func (t *fakeTarget) Width() int  { return t.width }
func (t *fakeTarget) Height() int { return t.height }
func (t *fakeTarget) Release()    { t.released = true }

type fakeGPU struct {
	allocations int
	beginCalls  int
	endCalls    int
	targets     []*fakeTarget
}

func (g *fakeGPU) CreateShadowDepthTexture(width, height int) (DepthTarget, error) {
	g.allocations++
	t := &fakeTarget{width: width, height: height}
	g.targets = append(g.targets, t)
	return t, nil
}

func (g *fakeGPU) BeginShadowPass(target DepthTarget) { g.beginCalls++ }
func (g *fakeGPU) EndShadowPass()                     { g.endCalls++ }

func TestCreateShadowMapIsIdempotent(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu)
	l := light.NewLight(light.LightTypeDirectional,
		light.WithPosition(0, 10, 0),
		light.WithDirection(0, -1, 0),
		light.WithCastsShadows(true),
	)

	first, err := m.CreateShadowMap(l, 0)
	if err != nil {
		t.Fatalf("CreateShadowMap() error: %v", err)
	}
	for frame := 0; frame < 5; frame++ {
		sm, err := m.CreateShadowMap(l, 0)
		if err != nil {
			t.Fatalf("frame %d: CreateShadowMap() error: %v", frame, err)
		}
		if sm != first {
			t.Fatal("repeated CreateShadowMap returned a different map")
		}
	}
	if gpu.allocations != 1 {
		t.Errorf("allocations = %d after repeated registration, want 1", gpu.allocations)
	}
}

func TestCreateShadowMapRefreshesMatrices(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu)
	l := light.NewLight(light.LightTypeDirectional,
		light.WithPosition(0, 10, 0),
		light.WithDirection(0, -1, 0),
	)

	sm, _ := m.CreateShadowMap(l, 0)
	before := sm.ViewMatrix

	l.SetPosition(mgl32.Vec3{20, 10, 0})
	sm, _ = m.CreateShadowMap(l, 0)
	if sm.ViewMatrix == before {
		t.Error("view matrix not refreshed after the light moved")
	}
}

func TestGetAbsentLight(t *testing.T) {
	m := NewManager(&fakeGPU{})
	l := light.NewLight(light.LightTypePoint)

	if sm, ok := m.Get(l); ok || sm != nil {
		t.Errorf("Get() for unregistered light = (%v, %v), want (nil, false)", sm, ok)
	}
}

func TestBeginShadowPassAbsentLight(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu)
	l := light.NewLight(light.LightTypeSpot)

	if sm, ok := m.BeginShadowPass(l); ok || sm != nil {
		t.Errorf("BeginShadowPass() for unregistered light = (%v, %v), want (nil, false)", sm, ok)
	}
	if gpu.beginCalls != 0 {
		t.Error("backend pass started for a light with no shadow map")
	}
}

func TestShadowPassBracketing(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu)
	l := light.NewLight(light.LightTypeDirectional, light.WithDirection(0, -1, 0))

	if _, err := m.CreateShadowMap(l, 0); err != nil {
		t.Fatalf("CreateShadowMap() error: %v", err)
	}
	if _, ok := m.BeginShadowPass(l); !ok {
		t.Fatal("BeginShadowPass() failed for a registered light")
	}
	m.EndShadowPass()
	m.EndShadowPass() // second end must be a no-op

	if gpu.beginCalls != 1 || gpu.endCalls != 1 {
		t.Errorf("pass calls = (%d begin, %d end), want (1, 1)", gpu.beginCalls, gpu.endCalls)
	}
}

func TestSetResolutionRecreatesTargets(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu, WithResolution(1024))
	l := light.NewLight(light.LightTypeDirectional, light.WithDirection(0, -1, 0))

	sm, _ := m.CreateShadowMap(l, 0)
	old := sm.Target.(*fakeTarget)

	if err := m.SetResolution(4096); err != nil {
		t.Fatalf("SetResolution() error: %v", err)
	}
	if !old.released {
		t.Error("old target not released after resolution change")
	}
	if sm.Target.Width() != 4096 || sm.Target.Height() != 4096 {
		t.Errorf("recreated target is %dx%d, want 4096x4096", sm.Target.Width(), sm.Target.Height())
	}

	allocsBefore := gpu.allocations
	if err := m.SetResolution(4096); err != nil {
		t.Fatalf("SetResolution() error: %v", err)
	}
	if gpu.allocations != allocsBefore {
		t.Error("setting the same resolution reallocated targets")
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	gpu := &fakeGPU{}
	m := NewManager(gpu)
	for i := 0; i < 3; i++ {
		l := light.NewLight(light.LightTypePoint, light.WithPosition(float32(i), 0, 0))
		if _, err := m.CreateShadowMap(l, i); err != nil {
			t.Fatalf("CreateShadowMap() error: %v", err)
		}
	}

	m.Dispose()
	for i, target := range gpu.targets {
		if !target.released {
			t.Errorf("target %d not released by Dispose", i)
		}
	}
}

func TestManagerDefaults(t *testing.T) {
	m := NewManager(&fakeGPU{})
	if m.Resolution() != light.ShadowMapResolution {
		t.Errorf("Resolution() = %d, want %d", m.Resolution(), light.ShadowMapResolution)
	}
	if m.Bias() != light.DefaultShadowBias {
		t.Errorf("Bias() = %f, want %f", m.Bias(), light.DefaultShadowBias)
	}
}
