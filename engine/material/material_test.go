package material

import (
	"testing"

	"github.com/emberforge/ember-go/engine/shader"
)

func TestDefaults(t *testing.T) {
	m := NewMaterial()

	if m.BaseColor() != [4]float32{1, 1, 1, 1} {
		t.Errorf("BaseColor() = %v, want white", m.BaseColor())
	}
	if !m.DepthTest() || !m.DepthWrite() {
		t.Error("depth test and write should default to enabled")
	}
	if m.BlendMode() != BlendOpaque {
		t.Errorf("BlendMode() = %v, want BlendOpaque", m.BlendMode())
	}
	if m.CullMode() != CullBack {
		t.Errorf("CullMode() = %v, want CullBack", m.CullMode())
	}
	if m.Transparent() {
		t.Error("opaque material reported transparent")
	}
}

func TestTransparentModes(t *testing.T) {
	if !NewMaterial(WithBlendMode(BlendAlpha)).Transparent() {
		t.Error("alpha-blended material not reported transparent")
	}
	if !NewMaterial(WithBlendMode(BlendAdditive)).Transparent() {
		t.Error("additive material not reported transparent")
	}
}

func TestShaderAndPipelineKey(t *testing.T) {
	s := shader.NewShader(shader.WithName("pbr"))
	m := NewMaterial(WithName("gold"), WithShader(s))

	if m.Shader() != s {
		t.Error("Shader() did not return the configured shader")
	}
	if m.PipelineKey() != "" {
		t.Errorf("PipelineKey() = %q before assignment, want empty", m.PipelineKey())
	}
	m.SetPipelineKey("pbr-opaque-back")
	if m.PipelineKey() != "pbr-opaque-back" {
		t.Errorf("PipelineKey() = %q, want pbr-opaque-back", m.PipelineKey())
	}
}

func TestSurfaceProperties(t *testing.T) {
	m := NewMaterial(
		WithBaseColor(0.9, 0.7, 0.3, 1),
		WithMetallicRoughness(1, 0.2),
		WithEmissive(0.1, 0, 0),
		WithDepthState(true, false),
		WithCullMode(CullNone),
	)

	if m.Metallic() != 1 || m.Roughness() != 0.2 {
		t.Errorf("metallic/roughness = %f/%f, want 1/0.2", m.Metallic(), m.Roughness())
	}
	if m.Emissive() != [3]float32{0.1, 0, 0} {
		t.Errorf("Emissive() = %v, want (0.1, 0, 0)", m.Emissive())
	}
	if !m.DepthTest() || m.DepthWrite() {
		t.Error("depth state not applied")
	}
	if m.CullMode() != CullNone {
		t.Errorf("CullMode() = %v, want CullNone", m.CullMode())
	}
}
