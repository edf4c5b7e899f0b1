package material

import (
	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/shader"
)

type MaterialBuilderOption func(*materialImpl)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: a function that sets the name
func WithName(name string) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.name = name
	}
}

// WithBaseColor sets the albedo RGBA color.
//
// Parameters:
//   - r, g, b, a: color components
//
// Returns:
//   - MaterialBuilderOption: a function that sets the base color
func WithBaseColor(r, g, b, a float32) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.baseColor = [4]float32{r, g, b, a}
	}
}

// WithMetallicRoughness sets the PBR metallic and roughness factors.
//
// Parameters:
//   - metallic: metallic factor in [0, 1]
//   - roughness: roughness factor in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that sets the factors
func WithMetallicRoughness(metallic, roughness float32) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.metallic = metallic
		m.roughness = roughness
	}
}

// WithEmissive sets the RGB emissive color.
//
// Parameters:
//   - r, g, b: emissive components
//
// Returns:
//   - MaterialBuilderOption: a function that sets the emissive color
func WithEmissive(r, g, b float32) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.emissive = [3]float32{r, g, b}
	}
}

// WithShader sets the shader program the material draws with.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - MaterialBuilderOption: a function that sets the shader
func WithShader(s shader.Shader) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.shader = s
	}
}

// WithDepthState sets the depth test and depth write flags.
//
// Parameters:
//   - test: true to test fragments against the depth buffer
//   - write: true to write fragment depth
//
// Returns:
//   - MaterialBuilderOption: a function that sets the depth state
func WithDepthState(test, write bool) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.depthTest = test
		m.depthWrite = write
	}
}

// WithBlendMode sets the framebuffer blend mode.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - MaterialBuilderOption: a function that sets the blend mode
func WithBlendMode(mode BlendMode) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.blendMode = mode
	}
}

// WithCullMode sets the triangle face culling mode.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - MaterialBuilderOption: a function that sets the cull mode
func WithCullMode(mode CullMode) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.cullMode = mode
	}
}

// WithDiffuseTexture sets the staged diffuse texture.
//
// Parameters:
//   - tex: the staged texture data
//
// Returns:
//   - MaterialBuilderOption: a function that sets the diffuse texture
func WithDiffuseTexture(tex *common.TextureStagingData) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.diffuse = tex
	}
}

// WithNormalTexture sets the staged normal map.
//
// Parameters:
//   - tex: the staged texture data
//
// Returns:
//   - MaterialBuilderOption: a function that sets the normal texture
func WithNormalTexture(tex *common.TextureStagingData) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.normal = tex
	}
}
