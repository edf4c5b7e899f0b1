package shader

type ShaderBuilderOption func(*shaderImpl)

// WithName sets the shader identifier.
//
// Parameters:
//   - name: the shader name
//
// Returns:
//   - ShaderBuilderOption: a function that sets the name
func WithName(name string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.name = name
	}
}

// WithSource sets the WGSL source text.
//
// Parameters:
//   - source: the shader source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the source
func WithSource(source string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.source = source
	}
}

// WithUniforms declares uniform names the source scan cannot discover, such
// as fields packed inside a single uniform struct.
//
// Parameters:
//   - names: the uniform names to declare
//
// Returns:
//   - ShaderBuilderOption: a function that declares the uniforms
func WithUniforms(names ...string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		for _, name := range names {
			s.uniforms[name] = struct{}{}
		}
	}
}
