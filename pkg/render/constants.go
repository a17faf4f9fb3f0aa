package render

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Key constants for keyboard input
const (
	KeyW         = glfw.KeyW
	KeyA         = glfw.KeyA
	KeyS         = glfw.KeyS
	KeyD         = glfw.KeyD
	KeySpace     = glfw.KeySpace
	KeyEscape    = glfw.KeyEscape
	KeyLeftCtrl  = glfw.KeyLeftControl
	KeyLeftShift = glfw.KeyLeftShift
	KeyC         = glfw.KeyC
	KeyR         = glfw.KeyR
	KeyH         = glfw.KeyH
	KeyV         = glfw.KeyV
)

// Action constants for key states
const (
	Press = glfw.Press
)

// Camera constants
const (
	// Movement speeds
	DefaultMoveSpeed   = 20.0
	DefaultRotateSpeed = 0.1
	SprintMultiplier   = 4.0

	// Default orientation
	DefaultYaw   = 0.0 // Facing +X
	DefaultPitch = -20.0

	// Field of view
	DefaultFOV = 70.0
	MinFOV     = 1.0
	MaxFOV     = 90.0

	// Constraints
	MaxPitch = 89.0
	MinPitch = -89.0

	// Clip planes
	NearPlane = 0.1
	FarPlane  = 2000.0
)

// Interaction constants
const (
	// ReachDistance is how far voxel edits reach from the camera
	ReachDistance = 8.0
	// reachStep is the ray march increment used to pick voxels
	reachStep = 0.05
)

// SkyColor is the clear color and the fog color of the chunk shader
var SkyColor = mgl32.Vec4{0.55, 0.75, 0.95, 1.0}
