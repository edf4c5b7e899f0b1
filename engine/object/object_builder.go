package object

import (
	"github.com/emberforge/ember-go/engine/light"
	"github.com/emberforge/ember-go/engine/material"
	"github.com/emberforge/ember-go/engine/mesh"
	"github.com/emberforge/ember-go/engine/transform"
)

type SceneObjectBuilderOption func(*sceneObject)

// WithName sets the object's display name.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - SceneObjectBuilderOption: a function that sets the name
func WithName(name string) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.name = name
	}
}

// WithTransform assigns a transform node to the object.
//
// Parameters:
//   - node: the transform node
//
// Returns:
//   - SceneObjectBuilderOption: a function that sets the transform
func WithTransform(node transform.Node) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.node = node
	}
}

// WithMesh assigns geometry to the object.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - SceneObjectBuilderOption: a function that sets the mesh
func WithMesh(m mesh.Mesh) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.msh = m
	}
}

// WithMaterial assigns a material to the object.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - SceneObjectBuilderOption: a function that sets the material
func WithMaterial(m material.Material) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.mat = m
	}
}

// WithLight attaches a light to the object.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - SceneObjectBuilderOption: a function that attaches the light
func WithLight(l light.Light) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.attachedLight = l
	}
}

// WithEphemeral marks the object as ephemeral.
//
// Parameters:
//   - ephemeral: true if ephemeral
//
// Returns:
//   - SceneObjectBuilderOption: a function that sets the ephemeral flag
func WithEphemeral(ephemeral bool) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.ephemeral = ephemeral
	}
}

// WithEnabled sets the initial enabled state.
//
// Parameters:
//   - enabled: true to start enabled
//
// Returns:
//   - SceneObjectBuilderOption: a function that sets the enabled state
func WithEnabled(enabled bool) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.enabled.Store(enabled)
	}
}
