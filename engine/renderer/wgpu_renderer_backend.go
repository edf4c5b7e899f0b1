package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/mesh"
	"github.com/emberforge/ember-go/engine/postprocess"
	"github.com/emberforge/ember-go/engine/shader"
	"github.com/emberforge/ember-go/engine/shadow"
)

// vertexStride is the size in bytes of one interleaved vertex: position
// vec3, normal vec3, uv vec2. Every mesh uploaded through this backend uses
// this layout.
const vertexStride = 32

// depthPassWGSL is the built-in depth-only program used for shadow passes.
const depthPassWGSL = `
@group(0) @binding(0) var<uniform> depthMVP: mat4x4<f32>;

@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
	return depthMVP * vec4<f32>(position, 1.0);
}
`

// blitWGSL copies a texture to the bound target via a fullscreen triangle.
const blitWGSL = `
@group(0) @binding(0) var src: texture_2d<f32>;
@group(0) @binding(1) var srcSampler: sampler;

struct VertexOut {
	@builtin(position) position: vec4<f32>,
	@location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
	var out: VertexOut;
	let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
	out.position = vec4<f32>(uv * 2.0 - 1.0, 0.0, 1.0);
	out.uv = vec2<f32>(uv.x, 1.0 - uv.y);
	return out;
}

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
	return textureSample(src, srcSampler, uv);
}
`

// wgpuColorTarget is an offscreen color target allocated by the backend.
type wgpuColorTarget struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   int
	height  int
}

var _ postprocess.Target = &wgpuColorTarget{}

func (t *wgpuColorTarget) Width() int  { return t.width }
func (t *wgpuColorTarget) Height() int { return t.height }

func (t *wgpuColorTarget) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// wgpuDepthTarget is a shadow map depth target allocated by the backend.
type wgpuDepthTarget struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   int
	height  int
}

var _ shadow.DepthTarget = &wgpuDepthTarget{}

func (t *wgpuDepthTarget) Width() int  { return t.width }
func (t *wgpuDepthTarget) Height() int { return t.height }

func (t *wgpuDepthTarget) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// meshBuffers is the uploaded GPU state for one mesh, cached per mesh
// instance.
type meshBuffers struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
	vertexCount  int
}

type wgpuBackend struct {
	mu *sync.Mutex

	instance      *wgpu.Instance
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surface       *wgpu.Surface
	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	width  int
	height int

	// sceneTarget is the offscreen HDR color target the forward pass draws
	// into; the post-processing chain reads it and writes the backbuffer.
	sceneTarget *wgpuColorTarget
	depthView   *wgpu.TextureView

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	shadowPass      *wgpu.RenderPassEncoder
	shadowEncoder   *wgpu.CommandEncoder
	depthPipeline   *wgpu.RenderPipeline
	depthBindLayout *wgpu.BindGroupLayout

	pipelineCache     map[string]*wgpu.RenderPipeline
	pipelineLayouts   map[string]*wgpu.BindGroupLayout
	fullscreenCache   map[string]*wgpu.RenderPipeline
	fullscreenLayouts map[string]*wgpu.BindGroupLayout
	meshCache         map[mesh.Mesh]*meshBuffers

	// samplerStaging configures the shared sampler created at startup; zero
	// fields fall back to linear filtering clamped to edge.
	samplerStaging common.SamplerStagingData
	linearSampler  *wgpu.Sampler

	sink common.LogSink
}

var _ Backend = &wgpuBackend{}

// NewWGPUBackend creates the WebGPU backend over a platform surface
// descriptor, typically obtained from Window.GetSurfaceDescriptor().
// Adapter or device acquisition failure is fatal and panics: there is no
// rendering without a device.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to present to
//   - width, height: initial surface size in pixels
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the newly created backend
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUBackendBuilderOption) Backend {
	runtime.LockOSThread()
	b := &wgpuBackend{
		mu:                &sync.Mutex{},
		instance:          wgpu.CreateInstance(nil),
		presentMode:       wgpu.PresentModeFifo,
		pipelineCache:     make(map[string]*wgpu.RenderPipeline),
		pipelineLayouts:   make(map[string]*wgpu.BindGroupLayout),
		fullscreenCache:   make(map[string]*wgpu.RenderPipeline),
		fullscreenLayouts: make(map[string]*wgpu.BindGroupLayout),
		meshCache:         make(map[mesh.Mesh]*meshBuffers),
		sink:              common.NopSink(),
	}
	for _, option := range options {
		option(b)
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
	})
	if err != nil {
		panic(errors.Wrap(err, "wgpu: failed to acquire adapter"))
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(errors.Wrap(err, "wgpu: failed to acquire device"))
	}
	b.device = device
	b.queue = device.GetQueue()

	sampler, err := b.createSampler(b.samplerStaging)
	if err != nil {
		panic(err)
	}
	b.linearSampler = sampler

	b.Resize(width, height)
	return b
}

// createSampler realizes a sampler from staging data. Zero-valued fields take
// the linear clamp-to-edge defaults, so an empty staging struct yields the
// sampler fullscreen passes expect.
func (b *wgpuBackend) createSampler(staging common.SamplerStagingData) (*wgpu.Sampler, error) {
	sampler, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shared Sampler",
		AddressModeU:  common.Coalesce(staging.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(staging.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(staging.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  staging.MipmapFilter,
		LodMinClamp:   staging.LodMinClamp,
		LodMaxClamp:   common.Coalesce(staging.LodMaxClamp, 32),
		Compare:       staging.Compare,
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, errors.Wrap(err, "wgpu: failed to create sampler")
	}
	return sampler, nil
}

func (b *wgpuBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.sceneTarget != nil {
		b.sceneTarget.Release()
	}
	target, err := b.createColorTarget(width, height, "Scene Color Target")
	if err != nil {
		panic(err)
	}
	b.sceneTarget = target

	if b.depthView != nil {
		b.depthView.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(errors.Wrap(err, "wgpu: failed to create depth texture"))
	}
	b.depthView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(errors.Wrap(err, "wgpu: failed to create depth texture view"))
	}
}

func (b *wgpuBackend) createColorTarget(width, height int, label string) (*wgpuColorTarget, error) {
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA16Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wgpu: failed to create %dx%d color target", width, height)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, errors.Wrap(err, "wgpu: failed to create color target view")
	}
	return &wgpuColorTarget{texture: texture, view: view, width: width, height: height}, nil
}

func (b *wgpuBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return errors.Wrap(err, "wgpu: failed to acquire surface texture")
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return errors.Wrap(err, "wgpu: failed to create surface view")
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return errors.Wrap(err, "wgpu: failed to create command encoder")
	}

	// The forward pass draws into the offscreen scene target; the surface
	// view is only written by the post-processing chain.
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.sceneTarget.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuBackend) Draw(call DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return fmt.Errorf("wgpu: Draw outside BeginFrame/EndFrame")
	}

	buffers, err := b.meshBuffersFor(call.Mesh)
	if err != nil {
		return err
	}
	pipeline, layout, err := b.pipelineFor(call.Material)
	if err != nil {
		return err
	}

	uniformBytes := packUniforms(call.Material.Shader(), call.Uniforms)
	bindGroup, err := b.uniformBindGroup(layout, uniformBytes)
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	b.framePass.SetPipeline(pipeline)
	b.framePass.SetBindGroup(0, bindGroup, nil)
	b.framePass.SetVertexBuffer(0, buffers.vertexBuffer, 0, wgpu.WholeSize)
	if buffers.indexBuffer != nil {
		b.framePass.SetIndexBuffer(buffers.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(buffers.indexCount), 1, 0, 0, 0)
	} else {
		b.framePass.Draw(uint32(buffers.vertexCount), 1, 0, 0)
	}
	return nil
}

func (b *wgpuBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.sink.Errorf("wgpu: failed to finish frame encoder: %v", err)
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackend) SceneTarget() postprocess.Target {
	return b.sceneTarget
}

func (b *wgpuBackend) CreateShadowDepthTexture(width, height int) (shadow.DepthTarget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shadow Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, errors.Wrap(err, "wgpu: failed to create shadow depth texture")
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, errors.Wrap(err, "wgpu: failed to create shadow depth view")
	}
	return &wgpuDepthTarget{texture: texture, view: view, width: width, height: height}, nil
}

func (b *wgpuBackend) BeginShadowPass(target shadow.DepthTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()

	depthTarget, ok := target.(*wgpuDepthTarget)
	if !ok {
		b.sink.Errorf("wgpu: shadow pass target was not allocated by this backend")
		return
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		b.sink.Errorf("wgpu: failed to create shadow encoder: %v", err)
		return
	}
	b.shadowEncoder = encoder
	b.shadowPass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		// No color attachments. Depth-only pass.
		ColorAttachments: nil,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthTarget.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
}

func (b *wgpuBackend) DrawDepth(msh mesh.Mesh, depthMVP mgl32.Mat4) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowPass == nil {
		return fmt.Errorf("wgpu: DrawDepth outside a shadow pass")
	}
	if err := b.ensureDepthPipeline(); err != nil {
		return err
	}
	buffers, err := b.meshBuffersFor(msh)
	if err != nil {
		return err
	}

	bindGroup, err := b.uniformBindGroup(b.depthBindLayout, common.StructToBytes(&depthMVP))
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	b.shadowPass.SetPipeline(b.depthPipeline)
	b.shadowPass.SetBindGroup(0, bindGroup, nil)
	b.shadowPass.SetVertexBuffer(0, buffers.vertexBuffer, 0, wgpu.WholeSize)
	if buffers.indexBuffer != nil {
		b.shadowPass.SetIndexBuffer(buffers.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.shadowPass.DrawIndexed(uint32(buffers.indexCount), 1, 0, 0, 0)
	} else {
		b.shadowPass.Draw(uint32(buffers.vertexCount), 1, 0, 0)
	}
	return nil
}

func (b *wgpuBackend) EndShadowPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowPass == nil {
		return
	}
	b.shadowPass.End()
	b.shadowPass = nil

	commandBuffer, err := b.shadowEncoder.Finish(nil)
	b.shadowEncoder.Release()
	b.shadowEncoder = nil
	if err != nil {
		b.sink.Errorf("wgpu: failed to finish shadow encoder: %v", err)
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuBackend) CreateRenderTarget(width, height int) (postprocess.Target, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createColorTarget(width, height, "Post Target")
}

func (b *wgpuBackend) Blit(input, output postprocess.Target) error {
	blit := shader.NewShader(shader.WithName("blit"), shader.WithSource(blitWGSL))
	return b.DrawFullscreen(blit, []postprocess.Target{input}, output, nil)
}

func (b *wgpuBackend) DrawFullscreen(effectShader shader.Shader, inputs []postprocess.Target, output postprocess.Target, params []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(inputs) == 0 {
		return fmt.Errorf("wgpu: fullscreen pass needs at least one input")
	}
	inputTargets := make([]*wgpuColorTarget, len(inputs))
	for i, input := range inputs {
		target, ok := input.(*wgpuColorTarget)
		if !ok {
			return fmt.Errorf("wgpu: fullscreen input %d was not allocated by this backend", i)
		}
		inputTargets[i] = target
	}
	outputView := b.frameView
	outputFormat := *b.surfaceFormat
	if output != nil {
		outputTarget, ok := output.(*wgpuColorTarget)
		if !ok {
			return fmt.Errorf("wgpu: fullscreen output was not allocated by this backend")
		}
		outputView = outputTarget.view
		outputFormat = wgpu.TextureFormatRGBA16Float
	}
	if outputView == nil {
		return fmt.Errorf("wgpu: no backbuffer available outside a frame")
	}

	pipeline, err := b.fullscreenPipelineFor(effectShader, outputFormat, len(inputTargets), len(params) > 0)
	if err != nil {
		return err
	}
	bindGroup, err := b.fullscreenBindGroup(inputTargets, params)
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return errors.Wrap(err, "wgpu: failed to create fullscreen encoder")
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    outputView,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return errors.Wrap(err, "wgpu: failed to finish fullscreen encoder")
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuBackend) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, buffers := range b.meshCache {
		buffers.vertexBuffer.Release()
		if buffers.indexBuffer != nil {
			buffers.indexBuffer.Release()
		}
	}
	b.meshCache = make(map[mesh.Mesh]*meshBuffers)

	if b.sceneTarget != nil {
		b.sceneTarget.Release()
		b.sceneTarget = nil
	}
	if b.depthView != nil {
		b.depthView.Release()
		b.depthView = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
}
