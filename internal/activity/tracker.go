// Package activity implements the Activity Tracker state machine (spec.md
// §4.5): the three monotonic timestamps that classify a run, advanced by a
// single Observe call per physics tick.
package activity

import "botsim/internal/recorder"

// Tracker advances recorder.ActivityData one tick at a time. Every field,
// once set by Observe, is never cleared — Observe enforces this by simply
// refusing to act once the terminal state (out or end set) is reached.
type Tracker struct {
	data        recorder.ActivityData
	raceStartUS uint64
}

// New creates a Tracker configured with the race's start time.
func New(raceStartUS uint64) *Tracker {
	return &Tracker{raceStartUS: raceStartUS}
}

// Observe advances the state machine for one tick at virtual time nowUS,
// given this tick's classification. Per spec.md §4.5:
//
//	all unset            + now >= race_start         -> start = race_start
//	start set, out/end unset + is_over_track_end      -> end = now (terminal)
//	start set, out/end unset + is_out_of_track         -> out = now (terminal)
//	otherwise                                          -> no change
func (t *Tracker) Observe(nowUS uint64, isOutOfTrack, isOverTrackEnd bool) {
	if t.data.StartTimeUS == nil {
		if nowUS >= t.raceStartUS {
			start := t.raceStartUS
			t.data.StartTimeUS = &start
		}
		return
	}
	if t.data.OutTimeUS != nil || t.data.EndTimeUS != nil {
		return // terminal: activity is fixed once out or end is set
	}
	if isOverTrackEnd {
		end := nowUS
		t.data.EndTimeUS = &end
		return
	}
	if isOutOfTrack {
		out := nowUS
		t.data.OutTimeUS = &out
	}
}

// Data returns the current ActivityData snapshot.
func (t *Tracker) Data() recorder.ActivityData { return t.data }

// FinalStatus is a convenience wrapper around Data().Derive().
func (t *Tracker) FinalStatus() recorder.FinalStatus { return t.data.Derive() }
