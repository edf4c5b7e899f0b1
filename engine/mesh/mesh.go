package mesh

import "github.com/go-gl/mathgl/mgl32"

// meshImpl is the implementation of the Mesh interface.
type meshImpl struct {
	name           string
	vertexData     []byte
	indexData      []byte
	vertexCount    int
	indexCount     int
	boundingRadius float32
	boundsCenter   mgl32.Vec3
}

// Mesh defines the interface for GPU-ready geometry: interleaved vertex bytes,
// optional index bytes, and the counts the renderer needs for draw calls and
// triangle statistics. Meshes are immutable after construction; asset import
// and GPU upload are the caller's concern.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// VertexData returns the raw interleaved vertex bytes.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the raw index bytes, empty for non-indexed meshes.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices, 0 for non-indexed meshes.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Indexed reports whether the mesh carries an index buffer.
	//
	// Returns:
	//   - bool: true when index data is present
	Indexed() bool

	// TriangleCount returns the number of triangles a draw of this mesh
	// produces: indexCount/3 for indexed meshes, vertexCount/3 otherwise.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int

	// BoundingRadius returns the radius of the mesh's bounding sphere around
	// BoundsCenter, in local units.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// BoundsCenter returns the local-space center of the bounding sphere.
	//
	// Returns:
	//   - mgl32.Vec3: the bounds center
	BoundsCenter() mgl32.Vec3
}

var _ Mesh = &meshImpl{}

// NewMesh creates a new Mesh instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - Mesh: a new Mesh instance
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &meshImpl{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *meshImpl) Name() string {
	return m.name
}

func (m *meshImpl) VertexData() []byte {
	return m.vertexData
}

func (m *meshImpl) IndexData() []byte {
	return m.indexData
}

func (m *meshImpl) VertexCount() int {
	return m.vertexCount
}

func (m *meshImpl) IndexCount() int {
	return m.indexCount
}

func (m *meshImpl) Indexed() bool {
	return m.indexCount > 0
}

func (m *meshImpl) TriangleCount() int {
	if m.indexCount > 0 {
		return m.indexCount / 3
	}
	return m.vertexCount / 3
}

func (m *meshImpl) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *meshImpl) BoundsCenter() mgl32.Vec3 {
	return m.boundsCenter
}
