package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/engine/camera"
	"github.com/emberforge/ember-go/engine/light"
	"github.com/emberforge/ember-go/engine/material"
	"github.com/emberforge/ember-go/engine/mesh"
	"github.com/emberforge/ember-go/engine/object"
	"github.com/emberforge/ember-go/engine/transform"
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	return NewScene("test", camera.NewCamera(), options...)
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := newTestScene(t)

	a := s.Add(object.NewSceneObject(object.WithName("a")))
	b := s.Add(object.NewSceneObject(object.WithName("b")))
	if a == b {
		t.Fatalf("two objects share ID %d", a)
	}

	got, ok := s.Get(a)
	if !ok || got.Name() != "a" {
		t.Errorf("Get(%d) = (%v, %v), want object a", a, got, ok)
	}
}

func TestRemoveUnregistersObjectAndLight(t *testing.T) {
	s := newTestScene(t)
	l := light.NewLight(light.LightTypePoint)
	id := s.Add(object.NewSceneObject(object.WithLight(l)))

	if len(s.Lights()) != 1 {
		t.Fatalf("len(Lights()) = %d after Add, want 1", len(s.Lights()))
	}
	if !s.Remove(id) {
		t.Fatal("Remove() returned false for a registered object")
	}
	if _, ok := s.Get(id); ok {
		t.Error("object still retrievable after Remove")
	}
	if len(s.Lights()) != 0 {
		t.Error("attached light not removed with its object")
	}
	if s.Remove(id) {
		t.Error("Remove() returned true for an absent object")
	}
}

func TestObjectsPreserveInsertionOrder(t *testing.T) {
	s := newTestScene(t)
	names := []string{"first", "second", "third"}
	for _, name := range names {
		s.Add(object.NewSceneObject(object.WithName(name)))
	}

	objs := s.Objects()
	if len(objs) != len(names) {
		t.Fatalf("len(Objects()) = %d, want %d", len(objs), len(names))
	}
	for i, obj := range objs {
		if obj.Name() != names[i] {
			t.Errorf("Objects()[%d].Name() = %q, want %q", i, obj.Name(), names[i])
		}
	}
}

func TestClearEmptiesRegistryAndLights(t *testing.T) {
	s := newTestScene(t)
	s.Add(object.NewSceneObject(object.WithLight(light.NewLight(light.LightTypePoint))))
	s.AddLight(light.NewLight(light.LightTypeDirectional))

	s.Clear()
	if len(s.Objects()) != 0 || len(s.Lights()) != 0 {
		t.Errorf("after Clear: %d objects, %d lights, want 0 and 0",
			len(s.Objects()), len(s.Lights()))
	}
}

func TestStandaloneLights(t *testing.T) {
	s := newTestScene(t)
	l := light.NewLight(light.LightTypeSpot)

	s.AddLight(l)
	if !s.RemoveLight(l) {
		t.Error("RemoveLight() returned false for a registered light")
	}
	if s.RemoveLight(l) {
		t.Error("RemoveLight() returned true for an absent light")
	}
}

func TestAmbientColor(t *testing.T) {
	s := newTestScene(t, WithAmbientColor(0.1, 0.2, 0.3))
	if s.AmbientColor() != (mgl32.Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("AmbientColor() = %v, want (0.1, 0.2, 0.3)", s.AmbientColor())
	}
	s.SetAmbientColor(mgl32.Vec3{1, 1, 1})
	if s.AmbientColor() != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("AmbientColor() = %v after set, want (1, 1, 1)", s.AmbientColor())
	}
}

func TestUpdatePrunesDisabledEphemerals(t *testing.T) {
	s := newTestScene(t, WithComputeWorkers(2))

	spark := light.NewLight(light.LightTypePoint, light.WithEphemeral(true))
	s.AddLight(spark)
	debris := object.NewSceneObject(object.WithEphemeral(true))
	id := s.Add(debris)
	keeper := s.Add(object.NewSceneObject(object.WithName("keeper")))

	s.Update(0.016)
	if _, ok := s.Get(id); !ok {
		t.Error("enabled ephemeral object pruned too early")
	}

	spark.SetEnabled(false)
	debris.SetEnabled(false)
	s.Update(0.016)

	if _, ok := s.Get(id); ok {
		t.Error("disabled ephemeral object not pruned")
	}
	if len(s.Lights()) != 0 {
		t.Error("disabled ephemeral light not pruned")
	}
	if _, ok := s.Get(keeper); !ok {
		t.Error("persistent object pruned")
	}
}

func TestUpdatePrewarmsTransformHierarchies(t *testing.T) {
	s := newTestScene(t, WithComputeWorkers(2))

	// Two disjoint hierarchies, each a root with one child. Only the child
	// objects are registered; the prewarm must still start from the roots.
	var children []transform.Node
	for i := 0; i < 2; i++ {
		root := transform.NewNode(transform.WithPosition(float32(i*10), 0, 0))
		child := transform.NewNode(transform.WithParent(root), transform.WithPosition(1, 0, 0))
		children = append(children, child)
		s.Add(object.NewSceneObject(object.WithTransform(child)))
	}

	s.Update(0.016)

	for i, child := range children {
		want := mgl32.Vec3{float32(i*10) + 1, 0, 0}
		got := child.WorldMatrix().Col(3).Vec3()
		if got != want {
			t.Errorf("child %d world position = %v, want %v", i, got, want)
		}
	}
}

func TestUpdateWithNoTransforms(t *testing.T) {
	s := newTestScene(t)
	s.Add(object.NewSceneObject(object.WithMesh(mesh.NewMesh()), object.WithMaterial(material.NewMaterial())))
	// Must not panic or deadlock with zero roots.
	s.Update(0.016)
}

func TestSharedRootPrewarmedOnce(t *testing.T) {
	s := newTestScene(t, WithComputeWorkers(2))

	root := transform.NewNode()
	a := transform.NewNode(transform.WithParent(root))
	b := transform.NewNode(transform.WithParent(root))
	s.Add(object.NewSceneObject(object.WithTransform(a)))
	s.Add(object.NewSceneObject(object.WithTransform(b)))

	// Both objects resolve to the same root; a duplicate submission would
	// race on the shared subtree. Update must complete cleanly.
	s.Update(0.016)

	if got := s.(*scene).collectRoots(); len(got) != 1 {
		t.Errorf("collectRoots() found %d roots, want 1", len(got))
	}
}
