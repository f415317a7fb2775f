package physics

import "botsim/internal/track"

// outOfTrackReflectanceThreshold is the per-sensor reading above which a
// sensor counts as "off the line floor", per spec.md §8 scenario 5 ("all
// 16 line sensors exceed 80").
const outOfTrackReflectanceThreshold = 80.0

// Classification is the per-tick on-track/finish verdict, spec.md §3's
// SensorsData.is_out_of_track / is_over_track_end pair.
type Classification struct {
	IsOutOfTrack   bool
	IsOverTrackEnd bool
}

// Classify derives Classification from the tick's line-sensor readings and
// a centre raycast against the track, per spec.md §4.4 step 5: a majority
// of sensors reading above the threshold means the bot has wandered off
// the guide line's floor; a centre hit on the track's End tile means the
// bot has reached the finish.
func Classify(trk *track.Track, chassisPose track.Frame, readings [NumLineSensors]float64) Classification {
	offCount := 0
	for _, r := range readings {
		if r > outOfTrackReflectanceThreshold {
			offCount++
		}
	}

	c := Classification{IsOutOfTrack: offCount > NumLineSensors/2}

	centre := chassisPose.ToWorld(track.Vec2{})
	if hit, ok := trk.Locate(centre); ok {
		c.IsOverTrackEnd = trk.IsEnd(hit.SegmentIndex)
	}
	return c
}
