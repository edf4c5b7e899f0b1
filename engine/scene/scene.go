package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/camera"
	"github.com/emberforge/ember-go/engine/light"
	"github.com/emberforge/ember-go/engine/object"
	"github.com/emberforge/ember-go/engine/transform"
)

type scene struct {
	mu       *sync.RWMutex
	name     string
	active   bool
	cam      camera.Camera
	registry map[uint64]object.SceneObject
	order    []uint64
	lights   []light.Light
	ambient  mgl32.Vec3
	nextID   uint64
	sink     common.LogSink

	// computePool manages a bounded set of reusable goroutines for the
	// parallel transform prewarm phase of Update. Workers persist across
	// frames, avoiding per-frame goroutine spawn/teardown overhead.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Scene defines the interface for an object registry with a camera, a light
// list, and a per-frame Update that refreshes the transform hierarchy. All
// methods are safe for concurrent use.
type Scene interface {
	// Name retrieves the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the scene's name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active reports whether the scene is the one currently being rendered.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive marks the scene active or inactive.
	//
	// Parameters:
	//   - active: the new active state
	SetActive(active bool)

	// Camera retrieves the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the camera, or nil
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Add registers an object, assigns it a unique ID, and returns the ID.
	// An object carrying a light also registers that light.
	//
	// Parameters:
	//   - obj: the object to register
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj object.SceneObject) uint64

	// Get retrieves an object by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - object.SceneObject: the object, or nil
	//   - bool: false when no object has the ID
	Get(id uint64) (object.SceneObject, bool)

	// Remove unregisters an object by ID, along with its attached light.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - bool: true when an object was removed
	Remove(id uint64) bool

	// Clear removes every object and light from the scene.
	Clear()

	// Objects returns the registered objects in insertion order.
	//
	// Returns:
	//   - []object.SceneObject: the objects
	Objects() []object.SceneObject

	// AddLight registers a standalone light not attached to any object.
	//
	// Parameters:
	//   - l: the light to register
	AddLight(l light.Light)

	// RemoveLight unregisters a light.
	//
	// Parameters:
	//   - l: the light to remove
	//
	// Returns:
	//   - bool: true when the light was registered
	RemoveLight(l light.Light) bool

	// Lights returns the registered lights, attached and standalone.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// AmbientColor retrieves the scene's ambient light color.
	//
	// Returns:
	//   - mgl32.Vec3: the ambient RGB color
	AmbientColor() mgl32.Vec3

	// SetAmbientColor sets the scene's ambient light color.
	//
	// Parameters:
	//   - color: the ambient RGB color
	SetAmbientColor(color mgl32.Vec3)

	// Update advances the scene by deltaTime: prunes disabled ephemeral
	// entries and prewarms the world matrices of every transform hierarchy
	// so the render pass reads cached values. Disjoint root subtrees are
	// prewarmed in parallel on the scene's worker pool.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous update
	Update(deltaTime float64)

	// Dispose empties the scene. Pool workers exit on their own once idle;
	// the scene must not be updated afterwards.
	Dispose()
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera. The camera is required
// and NewScene panics if it is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		cam:            cam,
		registry:       make(map[uint64]object.SceneObject),
		nextID:         1,
		computeWorkers: max(runtime.NumCPU()-1, 1),
		sink:           common.NopSink(),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the compute pool after options so WithComputeWorkers can
	// override the default. Queue size of 256 accommodates typical root
	// subtree counts with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Add(obj object.SceneObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	obj.SetID(id)
	s.registry[id] = obj
	s.order = append(s.order, id)

	if l := obj.Light(); l != nil {
		s.lights = append(s.lights, l)
	}
	return id
}

func (s *scene) Get(id uint64) (object.SceneObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.registry[id]
	return obj, ok
}

func (s *scene) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.registry[id]
	if !ok {
		return false
	}
	delete(s.registry, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if l := obj.Light(); l != nil {
		s.removeLightLocked(l)
	}
	return true
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]object.SceneObject)
	s.order = s.order[:0]
	s.lights = s.lights[:0]
}

func (s *scene) Objects() []object.SceneObject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]object.SceneObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.registry[id])
	}
	return out
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLightLocked(l)
}

func (s *scene) removeLightLocked(l light.Light) bool {
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return true
		}
	}
	return false
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) AmbientColor() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambient
}

func (s *scene) SetAmbientColor(color mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = color
}

func (s *scene) Update(deltaTime float64) {
	s.pruneEphemeral()

	roots := s.collectRoots()
	if len(roots) == 0 {
		return
	}

	// Each root subtree is disjoint from the others, so prewarming them in
	// parallel touches no shared transform state. A WaitGroup provides the
	// per-frame barrier since pool.Wait() blocks until workers idle-exit,
	// which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for i, root := range roots {
		wg.Add(1)
		rootCap := root
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				prewarmSubtree(rootCap)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// pruneEphemeral drops disabled ephemeral objects and lights so short-lived
// entries (particle lights, debris) do not accumulate in the registry.
func (s *scene) pruneEphemeral() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, obj := range s.registry {
		if obj.Ephemeral() && !obj.Enabled() {
			delete(s.registry, id)
			for i, oid := range s.order {
				if oid == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
			if l := obj.Light(); l != nil {
				s.removeLightLocked(l)
			}
		}
	}

	kept := s.lights[:0]
	for _, l := range s.lights {
		if l.Ephemeral() && !l.Enabled() {
			continue
		}
		kept = append(kept, l)
	}
	s.lights = kept
}

// collectRoots returns the unique root transforms of every registered object.
// Objects without a transform are skipped; objects sharing an ancestor
// contribute the root only once.
func (s *scene) collectRoots() []transform.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[transform.Node]struct{})
	var roots []transform.Node
	for _, id := range s.order {
		node := s.registry[id].Transform()
		if node == nil {
			continue
		}
		for node.Parent() != nil {
			node = node.Parent()
		}
		if _, ok := seen[node]; ok {
			continue
		}
		seen[node] = struct{}{}
		roots = append(roots, node)
	}
	return roots
}

// prewarmSubtree forces world matrix computation for a node and all of its
// descendants so the render pass reads cached values.
func prewarmSubtree(node transform.Node) {
	node.WorldMatrix()
	for _, child := range node.Children() {
		prewarmSubtree(child)
	}
}

func (s *scene) Dispose() {
	s.Clear()
}
