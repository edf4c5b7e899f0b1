package object

import (
	"sync/atomic"

	"github.com/emberforge/ember-go/engine/light"
	"github.com/emberforge/ember-go/engine/material"
	"github.com/emberforge/ember-go/engine/mesh"
	"github.com/emberforge/ember-go/engine/transform"
)

type sceneObject struct {
	id            uint64
	name          string
	enabled       atomic.Bool
	ephemeral     bool
	node          transform.Node
	msh           mesh.Mesh
	mat           material.Material
	attachedLight light.Light
}

// SceneObject defines the interface for a scene entity. Every capability is
// optional: an object may carry a transform, a mesh, a material, a light, any
// subset, or none. The renderer only draws objects holding both a mesh and a
// material; a light-only object contributes illumination without geometry.
type SceneObject interface {
	// ID returns the object's unique identifier, assigned by the scene.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object participates in rendering and
	// lighting.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether this object is ephemeral. Ephemeral objects
	// are pruned by the scene once disabled instead of lingering in the
	// registry.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Transform returns the object's transform node, or nil if it has none.
	//
	// Returns:
	//   - transform.Node: the transform or nil
	Transform() transform.Node

	// Mesh returns the object's geometry, or nil if it has none.
	//
	// Returns:
	//   - mesh.Mesh: the mesh or nil
	Mesh() mesh.Mesh

	// Material returns the object's material, or nil if it has none.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// Light returns the light attached to this object, or nil.
	//
	// Returns:
	//   - light.Light: the attached light or nil
	Light() light.Light

	// Renderable reports whether the renderer should draw this object:
	// enabled with both a mesh and a material present. A transform is not
	// required; an object without one draws at the world origin.
	//
	// Returns:
	//   - bool: true when the object produces a draw call
	Renderable() bool

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object participates in rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetTransform assigns a transform node to this object.
	//
	// Parameters:
	//   - node: the transform to associate, or nil to detach
	SetTransform(node transform.Node)

	// SetMesh assigns geometry to this object.
	//
	// Parameters:
	//   - m: the mesh to associate, or nil to detach
	SetMesh(m mesh.Mesh)

	// SetMaterial assigns a material to this object.
	//
	// Parameters:
	//   - m: the material to associate, or nil to detach
	SetMaterial(m material.Material)

	// SetLight attaches a light to this object.
	//
	// Parameters:
	//   - l: the light to attach, or nil to detach
	SetLight(l light.Light)
}

var _ SceneObject = &sceneObject{}

// NewSceneObject creates a new SceneObject configured with the provided
// options. Objects start enabled.
//
// Parameters:
//   - options: variadic list of SceneObjectBuilderOption functions
//
// Returns:
//   - SceneObject: a new SceneObject instance
func NewSceneObject(options ...SceneObjectBuilderOption) SceneObject {
	o := &sceneObject{}
	o.enabled.Store(true)
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *sceneObject) ID() uint64 {
	return o.id
}

func (o *sceneObject) Name() string {
	return o.name
}

func (o *sceneObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *sceneObject) Ephemeral() bool {
	return o.ephemeral
}

func (o *sceneObject) Transform() transform.Node {
	return o.node
}

func (o *sceneObject) Mesh() mesh.Mesh {
	return o.msh
}

func (o *sceneObject) Material() material.Material {
	return o.mat
}

func (o *sceneObject) Light() light.Light {
	return o.attachedLight
}

func (o *sceneObject) Renderable() bool {
	return o.enabled.Load() && o.msh != nil && o.mat != nil
}

func (o *sceneObject) SetID(id uint64) {
	o.id = id
}

func (o *sceneObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *sceneObject) SetTransform(node transform.Node) {
	o.node = node
}

func (o *sceneObject) SetMesh(m mesh.Mesh) {
	o.msh = m
}

func (o *sceneObject) SetMaterial(m material.Material) {
	o.mat = m
}

func (o *sceneObject) SetLight(l light.Light) {
	o.attachedLight = l
}
