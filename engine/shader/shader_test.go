package shader

import "testing"

const testSource = `
@group(0) @binding(0) var<uniform> model: mat4x4<f32>;
@group(0) @binding(1) var<uniform> viewProjection: mat4x4<f32>;
@group(0) @binding(2) var<uniform> normalMatrix: mat3x3<f32>;

@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
	return viewProjection * model * vec4<f32>(position, 1.0);
}
`

func TestScanDiscoversUniformDeclarations(t *testing.T) {
	s := NewShader(WithName("basic"), WithSource(testSource))

	for _, name := range []string{"model", "viewProjection", "normalMatrix"} {
		if !s.HasUniform(name) {
			t.Errorf("HasUniform(%q) = false, want true", name)
		}
	}
	if s.HasUniform("projection") {
		t.Error("HasUniform reported an undeclared uniform")
	}
}

func TestHasUniformIgnoresNonUniformIdentifiers(t *testing.T) {
	s := NewShader(WithSource(testSource))

	// "position" appears in the source but is a vertex attribute, not a
	// uniform, and must not be reported.
	if s.HasUniform("position") {
		t.Error("vertex attribute reported as a uniform")
	}
}

func TestWithUniformsSupplementsScan(t *testing.T) {
	s := NewShader(
		WithSource("@group(0) @binding(0) var<uniform> globals: Globals;"),
		WithUniforms("view", "projection"),
	)

	for _, name := range []string{"globals", "view", "projection"} {
		if !s.HasUniform(name) {
			t.Errorf("HasUniform(%q) = false, want true", name)
		}
	}
}

func TestEmptyShader(t *testing.T) {
	s := NewShader(WithName("empty"))
	if s.HasUniform("model") {
		t.Error("empty shader reported a uniform")
	}
	if len(s.Uniforms()) != 0 {
		t.Errorf("Uniforms() = %v, want empty", s.Uniforms())
	}
}
