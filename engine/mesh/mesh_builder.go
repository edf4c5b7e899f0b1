package mesh

import "github.com/go-gl/mathgl/mgl32"

type MeshBuilderOption func(*meshImpl)

// WithName sets the mesh identifier.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: a function that sets the name
func WithName(name string) MeshBuilderOption {
	return func(m *meshImpl) {
		m.name = name
	}
}

// WithVertexData sets the interleaved vertex bytes and the vertex count.
//
// Parameters:
//   - data: raw interleaved vertex bytes
//   - count: number of vertices described by the data
//
// Returns:
//   - MeshBuilderOption: a function that sets the vertex data
func WithVertexData(data []byte, count int) MeshBuilderOption {
	return func(m *meshImpl) {
		m.vertexData = data
		m.vertexCount = count
	}
}

// WithIndexData sets the index bytes and index count, making the mesh indexed.
//
// Parameters:
//   - data: raw index bytes
//   - count: number of indices described by the data
//
// Returns:
//   - MeshBuilderOption: a function that sets the index data
func WithIndexData(data []byte, count int) MeshBuilderOption {
	return func(m *meshImpl) {
		m.indexData = data
		m.indexCount = count
	}
}

// WithBounds sets the bounding sphere used for distance sorting and culling.
//
// Parameters:
//   - center: local-space center of the bounding sphere
//   - radius: radius of the bounding sphere
//
// Returns:
//   - MeshBuilderOption: a function that sets the bounds
func WithBounds(center mgl32.Vec3, radius float32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.boundsCenter = center
		m.boundingRadius = radius
	}
}
