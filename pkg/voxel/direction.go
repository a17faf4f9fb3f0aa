package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Direction represents the side of a voxel a face points to.
// The world is Z-up: Front/Back step along X, Left/Right along Y, Top/Bottom along Z.
type Direction uint8

const (
	Front  Direction = iota // +X
	Back                    // -X
	Left                    // -Y
	Right                   // +Y
	Top                     // +Z
	Bottom                  // -Z
	// NonCull marks faces that are always drawn, with no neighbour check
	NonCull
)

// Directions lists the six cardinal directions in DirectionMap order
var Directions = [6]Direction{Front, Back, Left, Right, Top, Bottom}

// Cardinal reports whether the direction is one of the six axis directions
func (d Direction) Cardinal() bool {
	return d < NonCull
}

// Reverse returns the opposite direction. NonCull is its own reverse.
func (d Direction) Reverse() Direction {
	switch d {
	case Front:
		return Back
	case Back:
		return Front
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	case Bottom:
		return Top
	default:
		return NonCull
	}
}

// Step returns the unit offset of the direction in voxel space
func (d Direction) Step() (dx, dy, dz int) {
	switch d {
	case Front:
		return 1, 0, 0
	case Back:
		return -1, 0, 0
	case Left:
		return 0, -1, 0
	case Right:
		return 0, 1, 0
	case Top:
		return 0, 0, 1
	case Bottom:
		return 0, 0, -1
	default:
		return 0, 0, 0
	}
}

// DirectionVector returns the unit vector for a direction
func (d Direction) DirectionVector() mgl32.Vec3 {
	dx, dy, dz := d.Step()
	return mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
}

func (d Direction) String() string {
	switch d {
	case Front:
		return "front"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "noncull"
	}
}

// DirectionMap holds one value per cardinal direction
type DirectionMap[T any] [6]T

// UniformMap returns a map with the same value on every side
func UniformMap[T any](v T) DirectionMap[T] {
	return DirectionMap[T]{v, v, v, v, v, v}
}

// Get returns the value for a cardinal direction. NonCull yields the zero value and false.
func (m DirectionMap[T]) Get(d Direction) (T, bool) {
	if !d.Cardinal() {
		var zero T
		return zero, false
	}
	return m[d], true
}

// Set stores the value for a cardinal direction; NonCull is ignored
func (m *DirectionMap[T]) Set(d Direction, v T) {
	if d.Cardinal() {
		m[d] = v
	}
}
