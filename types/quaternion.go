package types

import "github.com/go-gl/mathgl/mgl32"

// A rotation quaternion with vector part V and scalar part W.
type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from its scalar (w) and vector (x, y, z) parts.
func QuatWXYZ(w, x, y, z float32) Quat {
	return Quat{
		V: Vec3{x, y, z},
		W: w,
	}
}

// Convert to a unit mgl32 quaternion. A zero quaternion maps to the identity.
func (q Quat) Unit() mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3(q.V)}.Normalize()
}
