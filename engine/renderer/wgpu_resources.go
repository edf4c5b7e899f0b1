package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/material"
	"github.com/emberforge/ember-go/engine/mesh"
	"github.com/emberforge/ember-go/engine/shader"
)

// standardVertexLayout is the single interleaved vertex buffer layout every
// material pipeline uses: position vec3, normal vec3, uv vec2.
var standardVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: vertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
	},
}

// meshBuffersFor uploads the mesh's vertex and index data on first use and
// returns the cached buffers afterwards. Meshes are immutable so the cache
// never invalidates.
func (b *wgpuBackend) meshBuffersFor(msh mesh.Mesh) (*meshBuffers, error) {
	if cached, ok := b.meshCache[msh]; ok {
		return cached, nil
	}

	vertexData := msh.VertexData()
	if len(vertexData) == 0 {
		return nil, fmt.Errorf("wgpu: mesh %q has no vertex data", msh.Name())
	}
	vertexBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            msh.Name() + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wgpu: failed to create vertex buffer for mesh %q", msh.Name())
	}
	b.queue.WriteBuffer(vertexBuffer, 0, vertexData)

	buffers := &meshBuffers{
		vertexBuffer: vertexBuffer,
		vertexCount:  msh.VertexCount(),
		indexCount:   msh.IndexCount(),
	}

	if indexData := msh.IndexData(); len(indexData) > 0 {
		indexBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            msh.Name() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			vertexBuffer.Release()
			return nil, errors.Wrapf(err, "wgpu: failed to create index buffer for mesh %q", msh.Name())
		}
		b.queue.WriteBuffer(indexBuffer, 0, indexData)
		buffers.indexBuffer = indexBuffer
	}

	b.meshCache[msh] = buffers
	return buffers, nil
}

// pipelineFor compiles (or returns the cached) render pipeline matching the
// material's shader and fixed-function state, plus its uniform bind group
// layout. The pipeline key is assigned back to the material.
func (b *wgpuBackend) pipelineFor(mat material.Material) (*wgpu.RenderPipeline, *wgpu.BindGroupLayout, error) {
	sh := mat.Shader()
	if sh == nil {
		return nil, nil, fmt.Errorf("wgpu: material %q has no shader", mat.Name())
	}

	key := fmt.Sprintf("%s/b%d/c%d/dt%v/dw%v", sh.Name(), mat.BlendMode(), mat.CullMode(), mat.DepthTest(), mat.DepthWrite())
	if cached, ok := b.pipelineCache[key]; ok {
		return cached, b.pipelineLayouts[key], nil
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Name(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.Source(),
		},
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "wgpu: failed to compile shader %q", sh.Name())
	}

	bindLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: key + " Uniforms",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "wgpu: failed to create uniform layout")
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key,
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "wgpu: failed to create pipeline layout")
	}

	colorTarget := wgpu.ColorTargetState{
		Format:    wgpu.TextureFormatRGBA16Float,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	switch mat.BlendMode() {
	case material.BlendAlpha:
		colorTarget.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case material.BlendAdditive:
		colorTarget.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}

	depthCompare := wgpu.CompareFunctionLess
	if !mat.DepthTest() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  key + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{standardVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullModeFor(mat.CullMode()),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: mat.DepthWrite(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "wgpu: failed to create pipeline %q", key)
	}

	b.pipelineCache[key] = created
	b.pipelineLayouts[key] = bindLayout
	mat.SetPipelineKey(key)
	return created, bindLayout, nil
}

func cullModeFor(mode material.CullMode) wgpu.CullMode {
	switch mode {
	case material.CullFront:
		return wgpu.CullModeFront
	case material.CullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

// ensureDepthPipeline lazily builds the depth-only pipeline used for shadow
// passes. It culls front faces: pushing self-shadow acne onto surfaces
// facing away from the light costs nothing visible.
func (b *wgpuBackend) ensureDepthPipeline() error {
	if b.depthPipeline != nil {
		return nil
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Shadow Depth Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: depthPassWGSL,
		},
	})
	if err != nil {
		return errors.Wrap(err, "wgpu: failed to compile depth shader")
	}

	bindLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Depth Uniforms",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "wgpu: failed to create depth uniform layout")
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Depth",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return errors.Wrap(err, "wgpu: failed to create depth pipeline layout")
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Depth Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeFront,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "wgpu: failed to create depth pipeline")
	}

	b.depthPipeline = created
	b.depthBindLayout = bindLayout
	return nil
}

// uniformBindGroup wraps the packed uniform bytes in a fresh buffer and bind
// group for one draw. The buffer reference is held by the bind group; both
// are released once the draw's command buffer finishes.
func (b *wgpuBackend) uniformBindGroup(layout *wgpu.BindGroupLayout, data []byte) (*wgpu.BindGroup, error) {
	size := uint64(len(data))
	if size == 0 {
		size = 16
	}
	buffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Draw Uniforms",
		Size:             size,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, errors.Wrap(err, "wgpu: failed to create uniform buffer")
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buffer, 0, data)
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Draw Uniforms",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buffer,
				Size:    size,
			},
		},
	})
	buffer.Release()
	if err != nil {
		return nil, errors.Wrap(err, "wgpu: failed to create uniform bind group")
	}
	return bindGroup, nil
}

// packUniforms serializes the resolved uniforms in the canonical order
// material shaders declare them: model, view, projection, viewProjection,
// modelViewProjection as mat4x4, normalMatrix as three padded columns, then
// baseColor as vec4 and emissiveColor, cameraPosition, ambientColor as
// vec4-padded vec3s. Only uniforms present in the set (i.e. declared by the
// shader) are packed, so the byte layout matches a uniform struct declaring
// the same subset in the same order.
func packUniforms(sh shader.Shader, set UniformSet) []byte {
	if sh == nil {
		return nil
	}
	out := make([]byte, 0, 64*len(set.Mat4s)+48*len(set.Mat3s)+16*(len(set.Vec4s)+len(set.Vec3s)))

	for _, name := range []string{"model", "view", "projection", "viewProjection", "modelViewProjection"} {
		if m, ok := set.Mat4s[name]; ok {
			out = append(out, common.SliceToBytes(m[:])...)
		}
	}
	if n, ok := set.Mat3s["normalMatrix"]; ok {
		// std140 packs mat3x3 columns as vec4-aligned.
		for col := 0; col < 3; col++ {
			column := n.Col(col)
			padded := [4]float32{column.X(), column.Y(), column.Z(), 0}
			out = append(out, common.SliceToBytes(padded[:])...)
		}
	}
	if v, ok := set.Vec4s["baseColor"]; ok {
		out = append(out, common.SliceToBytes(v[:])...)
	}
	for _, name := range []string{"emissiveColor", "cameraPosition", "ambientColor"} {
		if v, ok := set.Vec3s[name]; ok {
			// vec3 uniforms are vec4-aligned in std140.
			padded := [4]float32{v.X(), v.Y(), v.Z(), 0}
			out = append(out, common.SliceToBytes(padded[:])...)
		}
	}
	return out
}

// fullscreenPipelineFor compiles (or returns the cached) fullscreen triangle
// pipeline for a post-processing shader.
func (b *wgpuBackend) fullscreenPipelineFor(sh shader.Shader, format wgpu.TextureFormat, inputCount int, hasParams bool) (*wgpu.RenderPipeline, error) {
	key := fmt.Sprintf("%s/%d/%d/%v", sh.Name(), format, inputCount, hasParams)
	if cached, ok := b.fullscreenCache[key]; ok {
		return cached, nil
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Name(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.Source(),
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wgpu: failed to compile fullscreen shader %q", sh.Name())
	}

	bindLayout, err := b.fullscreenLayoutFor(inputCount, hasParams)
	if err != nil {
		return nil, err
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key,
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return nil, errors.Wrap(err, "wgpu: failed to create fullscreen pipeline layout")
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  key + " Fullscreen Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wgpu: failed to create fullscreen pipeline %q", key)
	}

	b.fullscreenCache[key] = created
	return created, nil
}

// fullscreenLayoutFor returns the bind group layout for a fullscreen pass
// with the given input texture count: binding 0 the primary texture,
// binding 1 the sampler, extra textures from binding 2, params last.
func (b *wgpuBackend) fullscreenLayoutFor(inputCount int, hasParams bool) (*wgpu.BindGroupLayout, error) {
	key := fmt.Sprintf("%d/%v", inputCount, hasParams)
	if cached, ok := b.fullscreenLayouts[key]; ok {
		return cached, nil
	}

	entries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		},
	}
	for i := 1; i < inputCount; i++ {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i + 1),
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	if hasParams {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(inputCount + 1),
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		})
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Fullscreen " + key,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrap(err, "wgpu: failed to create fullscreen layout")
	}
	b.fullscreenLayouts[key] = layout
	return layout, nil
}

// fullscreenBindGroup binds the input textures, the shared sampler, and the
// optional params buffer for one fullscreen pass.
func (b *wgpuBackend) fullscreenBindGroup(inputs []*wgpuColorTarget, params []byte) (*wgpu.BindGroup, error) {
	layout, err := b.fullscreenLayoutFor(len(inputs), len(params) > 0)
	if err != nil {
		return nil, err
	}

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: inputs[0].view},
		{Binding: 1, Sampler: b.linearSampler},
	}
	for i := 1; i < len(inputs); i++ {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(i + 1),
			TextureView: inputs[i].view,
		})
	}

	if len(params) > 0 {
		// Uniform buffer sizes round up to 16-byte alignment.
		size := uint64((len(params) + 15) &^ 15)
		buffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "Effect Params",
			Size:             size,
			Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return nil, errors.Wrap(err, "wgpu: failed to create effect params buffer")
		}
		b.queue.WriteBuffer(buffer, 0, params)
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(len(inputs) + 1),
			Buffer:  buffer,
			Size:    size,
		})
		defer buffer.Release()
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Fullscreen Pass",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrap(err, "wgpu: failed to create fullscreen bind group")
	}
	return bindGroup, nil
}
