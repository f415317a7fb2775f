// Package physics implements the fixed-Δt rigid-body stepper (spec.md
// §4.4): motor torque from PWM, body/wheel integration, 16-sensor line
// raycasting, and on-track/off-track/finish classification.
//
// Per spec.md §9's design note on cyclic chassis/wheel references, bodies
// live in an Arena indexed by stable Handles; joints reference pairs of
// handles rather than bodies owning each other.
package physics

import "botsim/internal/track"

// Handle identifies a rigid body in an Arena.
type Handle uint32

// BodyKind tags what a Body represents.
type BodyKind uint8

const (
	Chassis BodyKind = iota
	WheelLeft
	WheelRight
)

// Body is a single rigid body's planar state: pose in the ground plane
// plus a wheel spin angle (meaningful only for wheel bodies).
type Body struct {
	Kind BodyKind

	Pose       track.Frame // chassis pose; for wheels this tracks the chassis pose (wheels don't translate independently)
	LinearVel  track.Vec2  // chassis-frame linear velocity, mm/s
	AngularVel float64     // chassis yaw rate, rad/s

	SpinAngleRad  float64 // wheel-only: accumulated rotation about its axle
	SpinVelRadS   float64 // wheel-only: angular velocity about its axle
}

// AxleJoint couples a wheel body to the chassis body at a fixed lateral
// offset (mm) from the chassis centreline.
type AxleJoint struct {
	Chassis      Handle
	Wheel        Handle
	LateralOffsetMM float64
}

// Arena owns all rigid bodies for one robot; no body owns another.
type Arena struct {
	bodies map[Handle]*Body
	nextID Handle

	ChassisHandle   Handle
	LeftWheel       Handle
	RightWheel      Handle
	LeftAxle        AxleJoint
	RightAxle       AxleJoint
}

// NewArena creates the three-body arena (chassis + two wheels) for one
// robot, with the wheels joined to the chassis at ±axleHalfWidthMM.
func NewArena(axleHalfWidthMM float64, startPose track.Frame) *Arena {
	a := &Arena{bodies: make(map[Handle]*Body)}

	a.ChassisHandle = a.insert(&Body{Kind: Chassis, Pose: startPose})
	a.LeftWheel = a.insert(&Body{Kind: WheelLeft, Pose: startPose})
	a.RightWheel = a.insert(&Body{Kind: WheelRight, Pose: startPose})

	a.LeftAxle = AxleJoint{Chassis: a.ChassisHandle, Wheel: a.LeftWheel, LateralOffsetMM: axleHalfWidthMM}
	a.RightAxle = AxleJoint{Chassis: a.ChassisHandle, Wheel: a.RightWheel, LateralOffsetMM: -axleHalfWidthMM}
	return a
}

func (a *Arena) insert(b *Body) Handle {
	a.nextID++
	id := a.nextID
	a.bodies[id] = b
	return id
}

// Body returns the body at h. Panics on an unknown handle: handles in
// this package are only ever created by NewArena and never forged.
func (a *Arena) Body(h Handle) *Body {
	b, ok := a.bodies[h]
	if !ok {
		panic("physics: unknown body handle")
	}
	return b
}

// Chassis returns the chassis body.
func (a *Arena) Chassis() *Body { return a.Body(a.ChassisHandle) }

// Wheel returns the left or right wheel body.
func (a *Arena) Wheel(left bool) *Body {
	if left {
		return a.Body(a.LeftWheel)
	}
	return a.Body(a.RightWheel)
}
