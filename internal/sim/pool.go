package sim

import (
	"context"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"botsim/internal/config"
	"botsim/internal/track"
)

// Entry is one guest module queued for a pool run: its compiled bytes and
// a per-entry noise seed so runs stay reproducible regardless of
// scheduling order.
type Entry struct {
	RobotName string
	WasmBytes []byte
	NoiseSeed int64
}

// RunPool races every Entry concurrently, each in its own task with its
// own Host/Stepper/Arena (spec.md §5: "no two tasks share mutable
// state"), and returns one Result per entry once all have finished.
//
// Grounded on the teacher's alpha-MC vanilla trainer: nworkers goroutines
// pull from a shared work queue, each pushing its own output channel,
// fanned in via channerics.Merge; an errgroup ties the workers' lifetime
// to ctx, so cancelling ctx stops them. Per-robot run errors, including
// guest traps, are carried in Result.Err rather than aborting siblings
// (one competitor's trap does not cancel the others' races).
func RunPool(ctx context.Context, entries []Entry, trk *track.Track, runCfg config.RunConfig) []Result {
	nworkers := runCfg.NWorkers
	if nworkers < 1 {
		nworkers = 1
	}
	if nworkers > len(entries) {
		nworkers = len(entries)
	}
	if nworkers == 0 {
		return nil
	}

	jobs := make(chan Entry)
	go func() {
		defer close(jobs)
		for _, e := range entries {
			select {
			case jobs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	outputs := make([]<-chan Result, 0, nworkers)
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < nworkers; i++ {
		out := make(chan Result)
		outputs = append(outputs, out)

		group.Go(func() error {
			defer close(out)
			for {
				select {
				case e, ok := <-jobs:
					if !ok {
						return nil
					}
					result := RunOne(e.WasmBytes, trk, runCfg, e.NoiseSeed)
					result.RobotName = pickName(e.RobotName, result.RobotName)
					select {
					case out <- result:
					case <-groupCtx.Done():
						return groupCtx.Err()
					}
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			}
		})
	}

	merged := channerics.Merge(groupCtx.Done(), outputs...)

	results := make([]Result, 0, len(entries))
	for r := range merged {
		results = append(results, r)
	}
	_ = group.Wait() // per-robot faults live in Result.Err; Wait only surfaces pool-level cancellation

	return results
}

// pickName prefers the entry's declared name (known before setup() runs)
// and falls back to whatever the guest's own setup() reported.
func pickName(declared, fromGuest string) string {
	if declared != "" {
		return declared
	}
	return fromGuest
}
