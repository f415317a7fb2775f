package track

import "math"

// Kind tags which TrackSegment variant a Segment is.
type Kind uint8

const (
	KindStart Kind = iota
	KindStraight
	KindNinetyDegTurn
	KindCircleTurn
	KindEnd
)

// Part is a convex footprint piece of a segment's collider, in world-space
// millimetres. Straight/Start/End/NinetyDegTurn segments produce exactly
// one Part; CircleTurn segments produce one Part per angular slice so
// that every convex-hull part has at least 4 non-coplanar vertices and
// the concatenation of parts covers the arc with no gap larger than the
// slice's Δθ (spec.md §8, "Arc collider convexity").
type Part struct {
	// FloorQuad is the 2-D footprint polygon (wound consistently), and
	// ZTop/ZBottom extrude it into a 3-D slab so every Part has >= 4
	// non-coplanar vertices (top/bottom faces are not coplanar with the
	// side walls).
	FloorQuad       []Vec2
	ZBottom, ZTop   float64
}

// Vertices3 returns the Part's full 3-D vertex set (top and bottom faces).
func (p Part) Vertices3() [][3]float64 {
	verts := make([][3]float64, 0, len(p.FloorQuad)*2)
	for _, v := range p.FloorQuad {
		verts = append(verts, [3]float64{v.X, v.Y, p.ZBottom})
		verts = append(verts, [3]float64{v.X, v.Y, p.ZTop})
	}
	return verts
}

// Contains reports whether world point p (projected to the ground plane)
// falls within this Part's footprint, via the standard ray-crossing
// point-in-polygon test.
func (p Part) Contains(pt Vec2) bool {
	quad := p.FloorQuad
	inside := false
	for i, j := 0, len(quad)-1; i < len(quad); j, i = i, i+1 {
		vi, vj := quad[i], quad[j]
		if ((vi.Y > pt.Y) != (vj.Y > pt.Y)) &&
			(pt.X < (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y)+vi.X) {
			inside = !inside
		}
	}
	return inside
}

// Segment is one element of a Track: it knows its own footprint collider,
// how to advance a Frame to the next segment's origin, and the signed
// perpendicular distance from a ground-plane point to its line centre.
type Segment interface {
	Kind() Kind
	// Parts returns the segment's convex collider footprint(s) in world
	// space, given the segment's own origin frame.
	Parts(origin Frame) []Part
	// NextOrigin returns the origin frame of the segment that follows
	// this one, given this segment's own origin frame.
	NextOrigin(origin Frame) Frame
	// DistanceToLine returns the unsigned perpendicular distance (mm)
	// from world point pt to this segment's guide-line centre, assuming
	// pt already lies within (or near) this segment's span.
	DistanceToLine(origin Frame, pt Vec2) float64
}

// trackHalfWidth is the half-width of the track floor slab either side of
// the centreline; sensors raycast within this footprint.
const trackHalfWidth = 100.0 // mm

const slabThickness = 2.0 // mm, collider extrusion depth below the floor plane

// StartSegment is the zero-length marker segment at the beginning of a track.
type StartSegment struct{}

func (StartSegment) Kind() Kind { return KindStart }

func (StartSegment) Parts(origin Frame) []Part {
	return []Part{rectPart(origin, 0, 1, trackHalfWidth)}
}

func (StartSegment) NextOrigin(origin Frame) Frame { return origin }

func (StartSegment) DistanceToLine(origin Frame, pt Vec2) float64 {
	local := origin.ToLocal(pt)
	return math.Abs(local.Y)
}

// Straight is a straight section of track of the given length (mm).
type Straight struct {
	Length float64
}

func (Straight) Kind() Kind { return KindStraight }

func (s Straight) Parts(origin Frame) []Part {
	return []Part{rectPart(origin, 0, s.Length, trackHalfWidth)}
}

func (s Straight) NextOrigin(origin Frame) Frame {
	return origin.Advance(s.Length, 0)
}

func (s Straight) DistanceToLine(origin Frame, pt Vec2) float64 {
	local := origin.ToLocal(pt)
	return math.Abs(local.Y)
}

// NinetyDegTurn is a square corner tile turning 90 degrees to the given
// Side; HalfLength is half the tile's side length (mm), matching the
// corner tile's footprint being a square centred on the turn.
type NinetyDegTurn struct {
	HalfLength float64
	Side       Side
}

func (NinetyDegTurn) Kind() Kind { return KindNinetyDegTurn }

func (t NinetyDegTurn) Parts(origin Frame) []Part {
	// The corner tile's footprint is the square spanning from the origin
	// to 2*HalfLength forward and HalfLength to either side.
	quad := []Vec2{
		origin.ToWorld(Vec2{X: 0, Y: -t.HalfLength}),
		origin.ToWorld(Vec2{X: 0, Y: t.HalfLength}),
		origin.ToWorld(Vec2{X: 2 * t.HalfLength, Y: t.HalfLength}),
		origin.ToWorld(Vec2{X: 2 * t.HalfLength, Y: -t.HalfLength}),
	}
	return []Part{{FloorQuad: quad, ZBottom: -slabThickness, ZTop: 0}}
}

func (t NinetyDegTurn) NextOrigin(origin Frame) Frame {
	return origin.Advance(2*t.HalfLength, t.Side.sign()*math.Pi/2)
}

// DistanceToLine models the corner's guide line as a quarter circle of
// radius HalfLength, centred at the inside corner of the tile (the corner
// toward which Side turns).
func (t NinetyDegTurn) DistanceToLine(origin Frame, pt Vec2) float64 {
	local := origin.ToLocal(pt)
	var center Vec2
	if t.Side == Left {
		center = Vec2{X: 0, Y: t.HalfLength}
	} else {
		center = Vec2{X: 0, Y: -t.HalfLength}
	}
	dx := local.X - center.X
	dy := local.Y - center.Y
	r := math.Hypot(dx, dy)
	return math.Abs(r - t.HalfLength)
}

// CircleTurn is an arc of the given Radius (mm) sweeping AngleRad radians
// to the given Side.
type CircleTurn struct {
	Radius   float64
	AngleRad float64
	Side     Side
}

func (CircleTurn) Kind() Kind { return KindCircleTurn }

// arcSliceCount picks the number of angular slices so each slice subtends
// at most maxSliceAngle, bounding the gap-coverage invariant in spec.md §8.
const maxSliceAngle = math.Pi / 18 // 10 degrees

func (c CircleTurn) sliceCount() int {
	n := int(math.Ceil(math.Abs(c.AngleRad) / maxSliceAngle))
	if n < 1 {
		n = 1
	}
	return n
}

// center returns the arc's centre of curvature, in the segment's own
// local frame (forward = +X), offset to the inside of the turn.
func (c CircleTurn) center() Vec2 {
	if c.Side == Left {
		return Vec2{X: 0, Y: c.Radius}
	}
	return Vec2{X: 0, Y: -c.Radius}
}

func (c CircleTurn) Parts(origin Frame) []Part {
	n := c.sliceCount()
	dTheta := c.AngleRad / float64(n)
	center := c.center()
	sign := c.Side.sign()

	innerR := c.Radius - trackHalfWidth
	outerR := c.Radius + trackHalfWidth

	parts := make([]Part, 0, n)
	for i := 0; i < n; i++ {
		a0 := float64(i) * dTheta
		a1 := float64(i+1) * dTheta
		quad := []Vec2{
			arcPoint(center, innerR, a0, sign),
			arcPoint(center, outerR, a0, sign),
			arcPoint(center, outerR, a1, sign),
			arcPoint(center, innerR, a1, sign),
		}
		world := make([]Vec2, len(quad))
		for j, v := range quad {
			world[j] = origin.ToWorld(v)
		}
		parts = append(parts, Part{FloorQuad: world, ZBottom: -slabThickness, ZTop: 0})
	}
	return parts
}

// arcPoint returns the point at radius r from centre reached after sweeping
// theta radians along the arc (turning toward the inside per `sign`), in
// the local frame where forward is +X.
func arcPoint(center Vec2, r float64, theta float64, sign float64) Vec2 {
	// At theta=0 the point lies on the radius through the frame origin
	// (for r == Radius it is the origin itself, the arc's start); as theta
	// grows the point sweeps around centre toward the turn direction.
	ang := -sign*(math.Pi/2) + sign*theta
	return Vec2{
		X: center.X + r*math.Cos(ang),
		Y: center.Y + r*math.Sin(ang),
	}
}

func (c CircleTurn) NextOrigin(origin Frame) Frame {
	sign := c.Side.sign()
	center := c.center()
	end := arcPoint(center, c.Radius, c.AngleRad, sign)
	worldEnd := origin.ToWorld(end)
	return Frame{Origin: worldEnd, HeadingRad: origin.HeadingRad + sign*c.AngleRad}
}

func (c CircleTurn) DistanceToLine(origin Frame, pt Vec2) float64 {
	local := origin.ToLocal(pt)
	center := c.center()
	dx := local.X - center.X
	dy := local.Y - center.Y
	r := math.Hypot(dx, dy)
	return math.Abs(r - c.Radius)
}

// End is the zero-length finish-line marker segment.
type End struct{}

func (End) Kind() Kind { return KindEnd }

func (End) Parts(origin Frame) []Part {
	return []Part{rectPart(origin, 0, trackHalfWidth, trackHalfWidth)}
}

func (End) NextOrigin(origin Frame) Frame { return origin }

func (End) DistanceToLine(origin Frame, pt Vec2) float64 {
	local := origin.ToLocal(pt)
	return math.Abs(local.Y)
}

// rectPart builds a rectangular floor Part spanning [x0,x1] longitudinally
// and [-halfWidth,halfWidth] laterally in the given origin frame.
func rectPart(origin Frame, x0, x1, halfWidth float64) Part {
	quad := []Vec2{
		origin.ToWorld(Vec2{X: x0, Y: -halfWidth}),
		origin.ToWorld(Vec2{X: x0, Y: halfWidth}),
		origin.ToWorld(Vec2{X: x1, Y: halfWidth}),
		origin.ToWorld(Vec2{X: x1, Y: -halfWidth}),
	}
	return Part{FloorQuad: quad, ZBottom: -slabThickness, ZTop: 0}
}
