// Package vclock implements the fuel-based virtual clock (spec.md §4.1):
// a bijection between guest fuel consumption and simulated microseconds.
// The guest never reads a real clock; every host import reports the
// guest's remaining fuel, and the clock derives current_time_us from it.
package vclock

import "fmt"

// ErrOutOfFuel is returned when the guest's remaining fuel has been
// exhausted relative to skipped fuel; this is a fatal trap per spec.md §7.
var ErrOutOfFuel = fmt.Errorf("vclock: out of fuel")

// ErrTimeOverflow is returned when an advance would move the clock past
// the total simulated duration; also a fatal trap.
var ErrTimeOverflow = fmt.Errorf("vclock: time overflow")

// Clock converts between guest fuel and simulated microseconds.
//
// total_fuel = μs_to_fuel(total_simulation_time_us). On every host import
// the runtime reports remaining fuel; current_time_us is computed from
// remaining fuel minus the skipped-fuel accumulator built up by
// SkipTime/SetCurrentTime.
type Clock struct {
	fuelUnitNS uint64 // nanoseconds modeled by one fuel unit
	totalFuel  uint64
	totalSimUS uint64

	skippedFuel uint64
}

// New returns a Clock for a run of totalSimTimeUS microseconds, where one
// fuel unit models fuelUnitNS nanoseconds of guest execution (e.g. 50ns,
// modeling a 20MHz MCU core where one guest instruction costs one unit).
func New(fuelUnitNS uint64, totalSimTimeUS uint64) *Clock {
	c := &Clock{fuelUnitNS: fuelUnitNS, totalSimUS: totalSimTimeUS}
	c.totalFuel = c.usToFuel(totalSimTimeUS)
	return c
}

// TotalFuel is the fuel budget the guest instance should be metered with.
func (c *Clock) TotalFuel() uint64 { return c.totalFuel }

// TotalSimUS is the total simulated duration in microseconds.
func (c *Clock) TotalSimUS() uint64 { return c.totalSimUS }

func (c *Clock) usToFuel(us uint64) uint64 {
	return (us * 1000) / c.fuelUnitNS
}

func (c *Clock) fuelToUS(fuel uint64) uint64 {
	return (fuel * c.fuelUnitNS) / 1000
}

// CurrentTimeUS computes current_time_us from the guest's reported
// remaining fuel: total_sim - fuel_to_us(remaining_fuel - skipped_fuel).
// Fails with ErrOutOfFuel if remaining_fuel <= skipped_fuel.
func (c *Clock) CurrentTimeUS(remainingFuel uint64) (uint64, error) {
	if remainingFuel <= c.skippedFuel {
		return 0, ErrOutOfFuel
	}
	elapsedFuel := c.totalFuel - (remainingFuel - c.skippedFuel)
	return c.fuelToUS(elapsedFuel), nil
}

// SkipTime adds durationUS microseconds to the skipped-fuel accumulator,
// modeling "free" host work: logging, file writes, blocking waits, sleeps.
// Fails with ErrTimeOverflow if the result would pass total_sim.
func (c *Clock) SkipTime(remainingFuel uint64, durationUS uint64) error {
	now, err := c.CurrentTimeUS(remainingFuel)
	if err != nil {
		return err
	}
	if now+durationUS > c.totalSimUS {
		return ErrTimeOverflow
	}
	c.skippedFuel += c.usToFuel(durationUS)
	return nil
}

// SetCurrentTime enforces targetUS < total_sim and computes the exact
// skipped_fuel such that the virtual clock lands exactly on targetUS:
// solving fuel_to_us(total_fuel - (remaining_fuel - skipped_fuel)) == targetUS
// for skipped_fuel.
func (c *Clock) SetCurrentTime(remainingFuel uint64, targetUS uint64) error {
	if targetUS >= c.totalSimUS {
		return ErrTimeOverflow
	}
	elapsedFuel := c.usToFuel(targetUS)
	skipped := int64(elapsedFuel) + int64(remainingFuel) - int64(c.totalFuel)
	if skipped < 0 {
		// Guest fuel burn alone already carries the clock past targetUS;
		// nothing left to skip.
		skipped = 0
	}
	c.skippedFuel = uint64(skipped)
	return nil
}

// SkippedFuel returns the current skipped-fuel accumulator, used by tests
// asserting the fuel-conservation invariant (spec.md §8):
// fuel_consumed + skipped_fuel == μs_to_fuel(current_time_us).
func (c *Clock) SkippedFuel() uint64 { return c.skippedFuel }

// FuelConsumed returns total_fuel - remaining_fuel, the fuel the guest
// itself has burned executing instructions (excluding skipped fuel).
func (c *Clock) FuelConsumed(remainingFuel uint64) uint64 {
	return c.totalFuel - remainingFuel
}
