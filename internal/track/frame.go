// Package track models the ordered, head-to-tail composition of track
// segments (spec.md §3 Track/TrackSegment): each segment knows how to
// produce a collider footprint, compute the origin frame of the segment
// that follows it, and report the signed distance from a query point to
// its line centre.
package track

import "math"

// Vec2 is a planar point/vector in millimetres, in the track's ground plane.
type Vec2 struct {
	X, Y float64
}

// Frame is a 2-D pose (origin + heading) in the track's ground plane. Track
// geometry is flat, so a full 3-D rigid transform is unnecessary; heading
// is the only rotational degree of freedom segments need to chain.
type Frame struct {
	Origin    Vec2
	HeadingRad float64
}

// Advance returns the frame reached by moving `dist` mm forward along the
// frame's heading, optionally turning by `dheading` radians (applied at
// the far end, i.e. the returned frame's heading is HeadingRad+dheading).
func (f Frame) Advance(dist float64, dheading float64) Frame {
	dir := Vec2{X: math.Cos(f.HeadingRad), Y: math.Sin(f.HeadingRad)}
	return Frame{
		Origin:     Vec2{X: f.Origin.X + dir.X*dist, Y: f.Origin.Y + dir.Y*dist},
		HeadingRad: f.HeadingRad + dheading,
	}
}

// ToLocal transforms a world-space point into this frame's local
// coordinates: X is the along-heading (longitudinal) axis, Y is the
// perpendicular (lateral) axis.
func (f Frame) ToLocal(p Vec2) Vec2 {
	dx := p.X - f.Origin.X
	dy := p.Y - f.Origin.Y
	c, s := math.Cos(-f.HeadingRad), math.Sin(-f.HeadingRad)
	return Vec2{
		X: dx*c - dy*s,
		Y: dx*s + dy*c,
	}
}

// ToWorld transforms a local-frame point back into world space.
func (f Frame) ToWorld(p Vec2) Vec2 {
	c, s := math.Cos(f.HeadingRad), math.Sin(f.HeadingRad)
	return Vec2{
		X: f.Origin.X + p.X*c - p.Y*s,
		Y: f.Origin.Y + p.X*s + p.Y*c,
	}
}

// Side indicates which way a turn segment curves.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) sign() float64 {
	if s == Left {
		return 1
	}
	return -1
}
