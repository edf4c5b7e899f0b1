package postprocess

import (
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/shader"
)

const tonemapWGSL = `
@group(0) @binding(0) var sceneColor: texture_2d<f32>;
@group(0) @binding(1) var sceneSampler: sampler;
@group(0) @binding(2) var<uniform> exposure: f32;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
	let hdr = textureSample(sceneColor, sceneSampler, uv).rgb * exposure;
	// Reinhard operator keeps highlights bounded without crushing midtones.
	let mapped = hdr / (hdr + vec3<f32>(1.0));
	return vec4<f32>(mapped, 1.0);
}
`

const bloomWGSL = `
@group(0) @binding(0) var sceneColor: texture_2d<f32>;
@group(0) @binding(1) var sceneSampler: sampler;
@group(0) @binding(2) var<uniform> bloomParams: vec2<f32>;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
	let base = textureSample(sceneColor, sceneSampler, uv).rgb;
	let texel = vec2<f32>(1.0) / vec2<f32>(textureDimensions(sceneColor));
	var glow = vec3<f32>(0.0);
	for (var x = -2; x <= 2; x++) {
		for (var y = -2; y <= 2; y++) {
			let offset = vec2<f32>(f32(x), f32(y)) * texel * 2.0;
			let s = textureSample(sceneColor, sceneSampler, uv + offset).rgb;
			glow += max(s - vec3<f32>(bloomParams.x), vec3<f32>(0.0));
		}
	}
	glow /= 25.0;
	return vec4<f32>(base + glow * bloomParams.y, 1.0);
}
`

const motionBlurWGSL = `
@group(0) @binding(0) var sceneColor: texture_2d<f32>;
@group(0) @binding(1) var sceneSampler: sampler;
@group(0) @binding(2) var historyColor: texture_2d<f32>;
@group(0) @binding(3) var<uniform> blendFactor: f32;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
	let current = textureSample(sceneColor, sceneSampler, uv).rgb;
	let history = textureSample(historyColor, sceneSampler, uv).rgb;
	return vec4<f32>(mix(current, history, blendFactor), 1.0);
}
`

// ToneMapEffect applies exposure scaling and Reinhard tone mapping, the last
// stop before display for an HDR scene target.
type ToneMapEffect struct {
	enabled  bool
	exposure float32
	program  shader.Shader
}

// NewToneMapEffect creates a tone mapping effect with the given exposure.
//
// Parameters:
//   - exposure: linear exposure multiplier applied before tone mapping
//
// Returns:
//   - *ToneMapEffect: the effect, enabled
func NewToneMapEffect(exposure float32) *ToneMapEffect {
	return &ToneMapEffect{
		enabled:  true,
		exposure: exposure,
		program:  shader.NewShader(shader.WithName("tonemap"), shader.WithSource(tonemapWGSL)),
	}
}

func (e *ToneMapEffect) Name() string            { return "tonemap" }
func (e *ToneMapEffect) Enabled() bool           { return e.enabled }
func (e *ToneMapEffect) SetEnabled(enabled bool) { e.enabled = enabled }
func (e *ToneMapEffect) Exposure() float32       { return e.exposure }
func (e *ToneMapEffect) SetExposure(exp float32) { e.exposure = exp }

func (e *ToneMapEffect) Render(gpu GPU, input, output Target) error {
	params := struct{ Exposure float32 }{e.exposure}
	return gpu.DrawFullscreen(e.program, []Target{input}, output, common.StructToBytes(&params))
}

func (e *ToneMapEffect) Dispose() {}

// BloomEffect thresholds bright pixels, blurs them with a single wide-kernel
// pass, and adds the glow back onto the scene.
type BloomEffect struct {
	enabled   bool
	threshold float32
	intensity float32
	program   shader.Shader
}

// NewBloomEffect creates a bloom effect.
//
// Parameters:
//   - threshold: luminance above which pixels contribute glow
//   - intensity: glow multiplier added back to the scene
//
// Returns:
//   - *BloomEffect: the effect, enabled
func NewBloomEffect(threshold, intensity float32) *BloomEffect {
	return &BloomEffect{
		enabled:   true,
		threshold: threshold,
		intensity: intensity,
		program:   shader.NewShader(shader.WithName("bloom"), shader.WithSource(bloomWGSL)),
	}
}

func (e *BloomEffect) Name() string            { return "bloom" }
func (e *BloomEffect) Enabled() bool           { return e.enabled }
func (e *BloomEffect) SetEnabled(enabled bool) { e.enabled = enabled }

func (e *BloomEffect) Render(gpu GPU, input, output Target) error {
	params := struct{ Threshold, Intensity float32 }{e.threshold, e.intensity}
	return gpu.DrawFullscreen(e.program, []Target{input}, output, common.StructToBytes(&params))
}

func (e *BloomEffect) Dispose() {}

// MotionBlurEffect blends each frame with an accumulation of previous frames.
// The history target is allocated lazily on first render and refreshed with
// the effect's own output every frame.
type MotionBlurEffect struct {
	enabled bool
	blend   float32
	program shader.Shader
	history Target
}

// NewMotionBlurEffect creates a frame-blending motion blur effect.
//
// Parameters:
//   - blend: history weight in [0, 1); higher values smear longer
//
// Returns:
//   - *MotionBlurEffect: the effect, enabled
func NewMotionBlurEffect(blend float32) *MotionBlurEffect {
	return &MotionBlurEffect{
		enabled: true,
		blend:   blend,
		program: shader.NewShader(shader.WithName("motionblur"), shader.WithSource(motionBlurWGSL)),
	}
}

func (e *MotionBlurEffect) Name() string            { return "motionblur" }
func (e *MotionBlurEffect) Enabled() bool           { return e.enabled }
func (e *MotionBlurEffect) SetEnabled(enabled bool) { e.enabled = enabled }

func (e *MotionBlurEffect) Render(gpu GPU, input, output Target) error {
	if e.history == nil || e.history.Width() != input.Width() || e.history.Height() != input.Height() {
		if e.history != nil {
			e.history.Release()
		}
		history, err := gpu.CreateRenderTarget(input.Width(), input.Height())
		if err != nil {
			return errors.Wrap(err, "motionblur: failed to allocate history target")
		}
		// Seed the history with the current frame so the first blended frame
		// is not half black.
		if err := gpu.Blit(input, history); err != nil {
			return err
		}
		e.history = history
	}

	params := struct{ Blend float32 }{e.blend}
	if err := gpu.DrawFullscreen(e.program, []Target{input, e.history}, output, common.StructToBytes(&params)); err != nil {
		return err
	}

	// The history must hold this effect's output, not the raw input,
	// otherwise the blur never compounds across frames.
	if output != nil {
		return gpu.Blit(output, e.history)
	}
	return gpu.Blit(input, e.history)
}

func (e *MotionBlurEffect) Dispose() {
	if e.history != nil {
		e.history.Release()
		e.history = nil
	}
}
