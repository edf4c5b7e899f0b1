package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// SafeInvert inverts a 4x4 matrix, treating a singular (zero-determinant)
// input as a recoverable condition. Degenerate transforms (e.g. zero scale)
// legitimately produce singular world matrices, so the fallback is the
// identity matrix rather than a panic.
//
// Parameters:
//   - m: the matrix to invert
//
// Returns:
//   - mgl32.Mat4: the inverse, or the identity matrix when m is singular
//   - bool: false when m was singular and the identity was returned
func SafeInvert(m mgl32.Mat4) (mgl32.Mat4, bool) {
	if m.Det() == 0 {
		return mgl32.Ident4(), false
	}
	return m.Inv(), true
}

// ComposeTRS builds a model matrix from translation, rotation, and scale.
// Applied right-to-left to a point: scale first, then rotate, then translate.
//
// Parameters:
//   - position: the translation component
//   - rotation: the rotation component (should be normalized)
//   - scale: the per-axis scale component
//
// Returns:
//   - mgl32.Mat4: Translation * Rotation * Scale
func ComposeTRS(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	r := rotation.Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// NormalMatrix derives the 3x3 normal matrix from a model matrix:
// transpose(invert(model)) restricted to the upper 3x3 block. Required for
// correct lighting under non-uniform scale, where transforming normals by
// the model matrix directly would introduce skew. A singular model matrix
// falls back to the identity per SafeInvert.
//
// Parameters:
//   - model: the model (world) matrix
//
// Returns:
//   - mgl32.Mat3: the normal matrix
//   - bool: false when the model matrix was singular
func NormalMatrix(model mgl32.Mat4) (mgl32.Mat3, bool) {
	inv, ok := SafeInvert(model)
	return inv.Transpose().Mat3(), ok
}
