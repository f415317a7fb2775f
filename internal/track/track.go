package track

// Track is an ordered, head-to-tail composition of Segments. Track and its
// Segments are read-only after Build.
type Track struct {
	segments []Segment
	origins  []Frame // origins[i] is the origin frame of segments[i]
	parts    [][]Part
}

// Build composes segments head-to-tail starting from originFrame (typically
// the world origin) and precomputes each segment's origin frame and
// collider footprint.
func Build(segments []Segment, originFrame Frame) *Track {
	t := &Track{segments: segments}
	t.origins = make([]Frame, len(segments))
	t.parts = make([][]Part, len(segments))

	cur := originFrame
	for i, seg := range segments {
		t.origins[i] = cur
		t.parts[i] = seg.Parts(cur)
		cur = seg.NextOrigin(cur)
	}
	return t
}

// Segments returns the ordered segment list.
func (t *Track) Segments() []Segment { return t.segments }

// Origin returns the origin frame of segment i.
func (t *Track) Origin(i int) Frame { return t.origins[i] }

// Hit is the result of locating which segment (if any) contains a
// ground-plane query point.
type Hit struct {
	SegmentIndex int
	Distance     float64 // mm, perpendicular distance to the segment's guide line
}

// Locate finds the segment whose footprint contains pt, returning the
// perpendicular distance to that segment's line centre. ok is false when
// no segment's footprint contains pt (the point is off the track floor
// entirely).
func (t *Track) Locate(pt Vec2) (hit Hit, ok bool) {
	for i, parts := range t.parts {
		for _, part := range parts {
			if part.Contains(pt) {
				dist := t.segments[i].DistanceToLine(t.origins[i], pt)
				return Hit{SegmentIndex: i, Distance: dist}, true
			}
		}
	}
	return Hit{}, false
}

// IsEnd reports whether segment i is the track's End tile.
func (t *Track) IsEnd(i int) bool {
	return t.segments[i].Kind() == KindEnd
}

// StartFrame returns the frame a robot should be placed at to begin the race.
func (t *Track) StartFrame() Frame {
	if len(t.origins) == 0 {
		return Frame{}
	}
	return t.origins[0]
}
