package guest

import (
	"botsim/internal/deviceabi"
)

// readGuestString/readGuestBytes are placeholders for the (ptr,len) memory
// reads a real adapter performs against its wasmer.Memory; Module wires
// the live *wasmer.Memory into Host at Load time via SetMemoryReader so
// Host itself stays decoupled from the wasmer package (Host is unit-tested
// without any WebAssembly runtime at all).
type memoryReader func(ptr, length int32) []byte

func (h *Host) readGuestBytes(ptr, length int32) []byte {
	if h.memory == nil {
		return nil
	}
	return h.memory(ptr, length)
}

func (h *Host) readGuestString(ptr, length int32) string {
	return string(h.readGuestBytes(ptr, length))
}

// SetMemoryReader wires the guest's linear memory into the Host so
// diagnostics imports can resolve (ptr, len) pairs. Called once by Load.
func (h *Host) SetMemoryReader(r memoryReader) { h.memory = r }

// pollReady evaluates whether op (issued conceptually at t0) is ready yet
// without registering it in the future table, for device_operation_blocking's
// tight poll-and-step loop (spec.md §4.3): it re-derives readiness the same
// way Issue would, and if the deadline has already passed, returns the
// computed value immediately.
func (h *Host) pollReady(op deviceabi.Operation, t0 uint64) (deviceabi.Value, bool) {
	now, err := h.Clock.CurrentTimeUS(h.remainingFuel)
	if err != nil {
		return deviceabi.Value{}, false
	}

	switch {
	case op.Signal():
		matched := (op.Kind == deviceabi.WaitEnabled && h.enabled) ||
			(op.Kind == deviceabi.WaitDisabled && !h.enabled)
		if matched {
			return deviceabi.Value{}, true
		}
		return deviceabi.Value{}, false
	default:
		readyAt := blockingReadyAt(op, t0, h.PeriodUS)
		if now >= readyAt {
			return h.computeValue(op, readyAt), true
		}
		return deviceabi.Value{}, false
	}
}

// blockingReadyAt computes the same readiness deadline futures.classify
// would, for the subset of operations device_operation_blocking serves.
func blockingReadyAt(op deviceabi.Operation, t0 uint64, periodUS uint64) uint64 {
	switch op.Kind {
	case deviceabi.SleepFor:
		return t0 + uint64(op.DurationUS)
	case deviceabi.SleepUntil:
		target := uint64(op.DeadlineUS)
		if target < t0 {
			return t0
		}
		return target
	case deviceabi.ReadGyro:
		return t0 + 2*periodUS
	case deviceabi.ReadImuFusedData:
		return t0 + 10*periodUS
	case deviceabi.ReadLineLeft, deviceabi.ReadLineRight, deviceabi.ReadMotorAngles:
		return t0 + periodUS
	default:
		return t0
	}
}
