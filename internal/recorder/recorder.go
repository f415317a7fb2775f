// Package recorder implements the Execution Recorder (spec.md §4.7): a
// fixed-period, append-only sequence of per-tick samples — body pose, left/right wheel
// angle — consumed later by the visualiser, plus the ActivityData the
// activity tracker attaches once a run terminates.
package recorder

import "botsim/internal/track"

// Transform is a recorded body pose: the host never needs height or roll
// for the chassis (track geometry is flat), so a Frame (origin + heading)
// is a sufficient Transform for playback.
type Transform = track.Frame

// ActivityData is the three monotonic timestamps spec.md §3/§4.5 define.
// A nil pointer in any field means "unset"; once set a field is never
// cleared or overwritten (enforced by the activity tracker, not here).
type ActivityData struct {
	StartTimeUS *uint64
	OutTimeUS   *uint64
	EndTimeUS   *uint64
}

// FinalStatusKind tags the derived terminal classification of a run.
type FinalStatusKind uint8

const (
	NotStarted FinalStatusKind = iota
	NotEnded
	OutAt
	EndedAt
)

// FinalStatus is the derived outcome of a run: NotStarted/NotEnded carry no
// duration, OutAt/EndedAt carry the elapsed microseconds from start.
type FinalStatus struct {
	Kind         FinalStatusKind
	ElapsedUS    uint64
}

// Derive computes FinalStatus from ActivityData per spec.md §4.5: NotStarted
// if start is unset; EndedAt(end-start) if end is set; OutAt(out-start)
// else if out is set; NotEnded otherwise.
func (a ActivityData) Derive() FinalStatus {
	if a.StartTimeUS == nil {
		return FinalStatus{Kind: NotStarted}
	}
	if a.EndTimeUS != nil {
		return FinalStatus{Kind: EndedAt, ElapsedUS: *a.EndTimeUS - *a.StartTimeUS}
	}
	if a.OutTimeUS != nil {
		return FinalStatus{Kind: OutAt, ElapsedUS: *a.OutTimeUS - *a.StartTimeUS}
	}
	return FinalStatus{Kind: NotEnded}
}

// rank orders FinalStatusKind best-first: Ended < Out < NotEnded < NotStarted.
func (k FinalStatusKind) rank() int {
	switch k {
	case EndedAt:
		return 0
	case OutAt:
		return 1
	case NotEnded:
		return 2
	default: // NotStarted
		return 3
	}
}

// Less reports whether a ranks strictly better than b, per spec.md §4.5's
// ranking order: Ended by time ascending, then Out by time ascending, then
// NotEnded, then NotStarted.
func (a FinalStatus) Less(b FinalStatus) bool {
	if a.Kind.rank() != b.Kind.rank() {
		return a.Kind.rank() < b.Kind.rank()
	}
	if a.Kind == EndedAt || a.Kind == OutAt {
		return a.ElapsedUS < b.ElapsedUS
	}
	return false
}

// Sample is one tick's recorded state.
type Sample struct {
	Body       Transform
	LeftAngle  float64 // radians
	RightAngle float64 // radians
}

// Record is a finite, non-restartable sequence of Samples at a fixed
// period, plus the Activity timestamps attached once the run terminates.
// It is append-only during a run and read-only afterward.
type Record struct {
	PeriodUS uint64
	samples  []Sample
	Activity ActivityData
}

// NewRecord creates an empty Record for a run whose physics period is
// periodUS.
func NewRecord(periodUS uint64) *Record {
	return &Record{PeriodUS: periodUS}
}

// Append adds one tick's sample to the end of the record. Per spec.md
// §4.4 step 6, this happens once per physics tick in tick order.
func (r *Record) Append(s Sample) {
	r.samples = append(r.samples, s)
}

// Len returns the number of recorded samples.
func (r *Record) Len() int { return len(r.samples) }

// AtTimeSecs locates the sample for elapsed time t (seconds) by
// floor(t*1e6/period_us), clamped to [0, len-1], per spec.md §4.7.
func (r *Record) AtTimeSecs(t float64) Sample {
	if len(r.samples) == 0 {
		return Sample{}
	}
	idx := int64(t * 1e6 / float64(r.PeriodUS))
	if idx < 0 {
		idx = 0
	}
	if idx >= int64(len(r.samples)) {
		idx = int64(len(r.samples)) - 1
	}
	return r.samples[idx]
}

// Samples returns the full recorded sequence, for transfer to the
// visualiser by value (the caller must not mutate the returned slice).
func (r *Record) Samples() []Sample { return r.samples }
