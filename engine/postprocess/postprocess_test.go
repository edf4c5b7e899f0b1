package postprocess

import (
	"testing"

	"github.com/emberforge/ember-go/engine/shader"
)

type fakeTarget struct {
	label         string
	width, height int
	released      bool
}

func (t *fakeTarget) Width() int  { return t.width }
func (t *fakeTarget) Height() int { return t.height }
func (t *fakeTarget) Release()    { t.released = true }

type passRecord struct {
	shaderName string // empty for blits
	input      Target
	output     Target
}

type fakeGPU struct {
	allocations int
	passes      []passRecord
	targets     []*fakeTarget
}

func (g *fakeGPU) CreateRenderTarget(width, height int) (Target, error) {
	g.allocations++
	t := &fakeTarget{label: "scratch", width: width, height: height}
	g.targets = append(g.targets, t)
	return t, nil
}

func (g *fakeGPU) Blit(input, output Target) error {
	g.passes = append(g.passes, passRecord{input: input, output: output})
	return nil
}

func (g *fakeGPU) DrawFullscreen(effectShader shader.Shader, inputs []Target, output Target, params []byte) error {
	g.passes = append(g.passes, passRecord{shaderName: effectShader.Name(), input: inputs[0], output: output})
	return nil
}

type countingEffect struct {
	name    string
	enabled bool
	renders int
	gpu     *fakeGPU
}

func (e *countingEffect) Name() string            { return e.name }
func (e *countingEffect) Enabled() bool           { return e.enabled }
func (e *countingEffect) SetEnabled(enabled bool) { e.enabled = enabled }
func (e *countingEffect) Dispose()                {}

func (e *countingEffect) Render(gpu GPU, input, output Target) error {
	e.renders++
	return gpu.DrawFullscreen(shader.NewShader(shader.WithName(e.name)), []Target{input}, output, nil)
}

func newTestPipeline(t *testing.T, gpu *fakeGPU, effects ...Effect) Pipeline {
	t.Helper()
	p, err := NewPipeline(gpu, 1920, 1080, WithEffects(effects...))
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}
	return p
}

func TestZeroEnabledEffectsCopiesWithoutInvoking(t *testing.T) {
	gpu := &fakeGPU{}
	e := &countingEffect{name: "off", enabled: false}
	p := newTestPipeline(t, gpu, e)

	input := &fakeTarget{label: "scene", width: 1920, height: 1080}
	if err := p.Render(input, nil); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if e.renders != 0 {
		t.Error("disabled effect was invoked")
	}
	if len(gpu.passes) != 1 || gpu.passes[0].shaderName != "" {
		t.Fatalf("expected a single blit, got %v", gpu.passes)
	}
	if gpu.passes[0].input != input || gpu.passes[0].output != nil {
		t.Error("blit did not copy input to the backbuffer")
	}
}

func TestDisabledPipelineSkipsEnabledEffects(t *testing.T) {
	gpu := &fakeGPU{}
	e := &countingEffect{name: "on", enabled: true}
	p := newTestPipeline(t, gpu, e)
	p.SetEnabled(false)

	input := &fakeTarget{label: "scene", width: 1920, height: 1080}
	if err := p.Render(input, nil); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if e.renders != 0 {
		t.Error("effect invoked while the pipeline was disabled")
	}
}

func TestPingPongChain(t *testing.T) {
	gpu := &fakeGPU{}
	e1 := &countingEffect{name: "first", enabled: true}
	e2 := &countingEffect{name: "second", enabled: true}
	e3 := &countingEffect{name: "third", enabled: true}
	p := newTestPipeline(t, gpu, e1, e2, e3)

	input := &fakeTarget{label: "scene", width: 1920, height: 1080}
	final := &fakeTarget{label: "final", width: 1920, height: 1080}
	if err := p.Render(input, final); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if len(gpu.passes) != 3 {
		t.Fatalf("len(passes) = %d, want 3", len(gpu.passes))
	}
	// Pass 1 reads the scene, pass 2 reads pass 1's output, pass 3 reads
	// pass 2's output and writes the caller's target.
	if gpu.passes[0].input != input {
		t.Error("first effect did not read the scene target")
	}
	for i := 1; i < 3; i++ {
		if gpu.passes[i].input != gpu.passes[i-1].output {
			t.Errorf("pass %d input is not pass %d output", i, i-1)
		}
		if gpu.passes[i].input == gpu.passes[i].output {
			t.Errorf("pass %d renders in place", i)
		}
	}
	if gpu.passes[2].output != final {
		t.Error("last effect did not write the caller's output")
	}
	// Intermediate passes alternate between the two scratch targets.
	if gpu.passes[0].output == gpu.passes[1].output {
		t.Error("consecutive intermediate passes reused the same scratch target")
	}
}

func TestDisabledEffectSkippedInChain(t *testing.T) {
	gpu := &fakeGPU{}
	e1 := &countingEffect{name: "first", enabled: true}
	e2 := &countingEffect{name: "middle", enabled: false}
	e3 := &countingEffect{name: "last", enabled: true}
	p := newTestPipeline(t, gpu, e1, e2, e3)

	input := &fakeTarget{label: "scene", width: 1920, height: 1080}
	if err := p.Render(input, nil); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if e2.renders != 0 {
		t.Error("disabled middle effect was invoked")
	}
	if e1.renders != 1 || e3.renders != 1 {
		t.Errorf("enabled effects rendered %d and %d times, want 1 and 1", e1.renders, e3.renders)
	}
	// With one intermediate pass, the chain still routes through a scratch.
	if gpu.passes[0].output == nil {
		t.Error("non-final effect wrote directly to the backbuffer")
	}
	if gpu.passes[1].output != nil {
		t.Error("final effect did not write to the backbuffer")
	}
}

func TestSingleEffectWritesOutputDirectly(t *testing.T) {
	gpu := &fakeGPU{}
	e := &countingEffect{name: "only", enabled: true}
	p := newTestPipeline(t, gpu, e)

	input := &fakeTarget{label: "scene", width: 1920, height: 1080}
	if err := p.Render(input, nil); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(gpu.passes) != 1 || gpu.passes[0].input != input || gpu.passes[0].output != nil {
		t.Errorf("single effect should read input and write the backbuffer, got %+v", gpu.passes)
	}
}

func TestResizeRecreatesScratchTargets(t *testing.T) {
	gpu := &fakeGPU{}
	p := newTestPipeline(t, gpu)

	oldTargets := append([]*fakeTarget(nil), gpu.targets...)
	if err := p.Resize(2560, 1440); err != nil {
		t.Fatalf("Resize() error: %v", err)
	}

	for i, old := range oldTargets {
		if !old.released {
			t.Errorf("old scratch target %d not released", i)
		}
	}
	if gpu.allocations != 4 {
		t.Errorf("allocations = %d, want 4 (two initial, two after resize)", gpu.allocations)
	}
	for _, target := range gpu.targets[2:] {
		if target.width != 2560 || target.height != 1440 {
			t.Errorf("resized scratch is %dx%d, want 2560x1440", target.width, target.height)
		}
	}

	allocsBefore := gpu.allocations
	if err := p.Resize(2560, 1440); err != nil {
		t.Fatalf("Resize() error: %v", err)
	}
	if gpu.allocations != allocsBefore {
		t.Error("same-size resize reallocated scratch targets")
	}
}

func TestAddRemoveAndQuery(t *testing.T) {
	gpu := &fakeGPU{}
	p := newTestPipeline(t, gpu)
	e := NewToneMapEffect(1.2)
	p.Add(e)

	if got, ok := p.Effect("tonemap"); !ok || got != Effect(e) {
		t.Error("Effect() did not find the added effect")
	}
	if !p.Remove("tonemap") {
		t.Error("Remove() returned false for a present effect")
	}
	if p.Remove("tonemap") {
		t.Error("Remove() returned true for an absent effect")
	}
	if len(p.Effects()) != 0 {
		t.Errorf("len(Effects()) = %d after removal, want 0", len(p.Effects()))
	}
}

func TestDisposeReleasesScratchAndEffects(t *testing.T) {
	gpu := &fakeGPU{}
	blur := NewMotionBlurEffect(0.5)
	p := newTestPipeline(t, gpu, blur)

	// Force the motion blur history allocation.
	input := &fakeTarget{label: "scene", width: 1920, height: 1080}
	if err := p.Render(input, nil); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	p.Dispose()
	for i, target := range gpu.targets {
		if !target.released {
			t.Errorf("target %d (%s) not released by Dispose", i, target.label)
		}
	}
}

func TestMotionBlurSeedsAndUpdatesHistory(t *testing.T) {
	gpu := &fakeGPU{}
	blur := NewMotionBlurEffect(0.5)

	input := &fakeTarget{label: "scene", width: 800, height: 600}
	out := &fakeTarget{label: "out", width: 800, height: 600}

	if err := blur.Render(gpu, input, out); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gpu.allocations != 1 {
		t.Fatalf("allocations = %d after first render, want 1 history target", gpu.allocations)
	}

	if err := blur.Render(gpu, input, out); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gpu.allocations != 1 {
		t.Error("history target reallocated at stable size")
	}

	// Last pass must copy the blurred output into the history.
	last := gpu.passes[len(gpu.passes)-1]
	if last.shaderName != "" || last.input != out {
		t.Errorf("final pass should blit the output into history, got %+v", last)
	}
	blur.Dispose()
}
