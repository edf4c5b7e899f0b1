package shader

import "strings"

// shaderImpl is the implementation of the Shader interface.
type shaderImpl struct {
	name     string
	source   string
	uniforms map[string]struct{}
}

// Shader defines the interface for a compiled shader program description: a
// WGSL source blob plus the set of uniform names it declares. The renderer
// queries HasUniform before writing each standard matrix so shaders only
// receive the uniforms they actually use.
type Shader interface {
	// Name retrieves the shader identifier.
	//
	// Returns:
	//   - string: the shader name
	Name() string

	// Source returns the WGSL source text.
	//
	// Returns:
	//   - string: the shader source
	Source() string

	// HasUniform reports whether the shader declares a uniform with the
	// given name.
	//
	// Parameters:
	//   - name: the uniform name to look up
	//
	// Returns:
	//   - bool: true when the uniform is declared
	HasUniform(name string) bool

	// Uniforms returns the declared uniform names in unspecified order.
	//
	// Returns:
	//   - []string: the uniform names
	Uniforms() []string
}

var _ Shader = &shaderImpl{}

// NewShader creates a new Shader instance configured with the provided
// options. Uniform names declared in the WGSL source via var<uniform>
// bindings are discovered automatically; WithUniforms adds names the scan
// cannot see, such as fields of a packed uniform struct.
//
// Parameters:
//   - options: variadic list of ShaderBuilderOption functions to configure the shader
//
// Returns:
//   - Shader: a new Shader instance
func NewShader(options ...ShaderBuilderOption) Shader {
	s := &shaderImpl{
		uniforms: make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	for _, name := range scanUniformNames(s.source) {
		s.uniforms[name] = struct{}{}
	}
	return s
}

func (s *shaderImpl) Name() string {
	return s.name
}

func (s *shaderImpl) Source() string {
	return s.source
}

func (s *shaderImpl) HasUniform(name string) bool {
	_, ok := s.uniforms[name]
	return ok
}

func (s *shaderImpl) Uniforms() []string {
	out := make([]string, 0, len(s.uniforms))
	for name := range s.uniforms {
		out = append(out, name)
	}
	return out
}

// scanUniformNames extracts the variable names of var<uniform> declarations.
// It expects declarations shaped like:
//
//	@group(0) @binding(1) var<uniform> viewProjection: mat4x4<f32>;
//
// and tolerates arbitrary whitespace between the tokens.
func scanUniformNames(source string) []string {
	var names []string
	rest := source
	for {
		idx := strings.Index(rest, "var<uniform>")
		if idx < 0 {
			return names
		}
		rest = rest[idx+len("var<uniform>"):]

		end := strings.IndexAny(rest, ":;")
		if end < 0 {
			return names
		}
		name := strings.TrimSpace(rest[:end])
		if name != "" {
			names = append(names, name)
		}
		rest = rest[end:]
	}
}
