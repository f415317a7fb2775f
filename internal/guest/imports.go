package guest

import (
	wasmer "github.com/wasmerio/wasmer-go/wasmer"

	"botsim/internal/deviceabi"
	"botsim/internal/physics"
)

// decodeOperation reconstructs a deviceabi.Operation from the i32 args a
// guest import call carries: a tag for Kind, plus whatever payload word
// that Kind needs (0 when unused). This mirrors how the guest's generated
// bindings flatten the DeviceOperation tagged variant across the
// WebAssembly calling convention's scalar-only parameters.
func decodeOperation(kindTag int32, payload int32) deviceabi.Operation {
	op := deviceabi.Operation{Kind: deviceabi.Kind(kindTag)}
	switch op.Kind {
	case deviceabi.SleepFor:
		op.DurationUS = uint32(payload)
	case deviceabi.SleepUntil:
		op.DeadlineUS = uint32(payload)
	}
	return op
}

// deviceImports builds the devices.* host-import table.
func (h *Host) deviceImports(store *wasmer.Store) map[string]wasmer.IntoExtern {
	i32 := wasmer.NewValueTypes(wasmer.I32)
	i32i32 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32)
	i32Ret2 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32)

	immediate := wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, i32Ret2),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			op := decodeOperation(args[0].I32(), args[1].I32())
			if !op.Immediate() {
				return nil, ErrInvalidOperation
			}
			if err := h.chargeFuel(baselineImportFuel); err != nil {
				return nil, err
			}
			now, _ := h.Clock.CurrentTimeUS(h.remainingFuel)
			v := h.computeValue(op, now)
			lo := int32(v.U32(0))
			return []wasmer.Value{wasmer.NewI32(lo), wasmer.NewI32(0)}, nil
		},
	)

	blocking := wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, i32Ret2),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			op := decodeOperation(args[0].I32(), args[1].I32())
			t0, err := h.Clock.CurrentTimeUS(h.remainingFuel)
			if err != nil {
				return nil, err
			}

			for {
				v, ready := h.pollReady(op, t0)
				if ready {
					lo := int32(v.U32(0))
					return []wasmer.Value{wasmer.NewI32(lo), wasmer.NewI32(0)}, nil
				}
				if _, err := h.advanceTick(); err != nil {
					return nil, err
				}
				if err := h.chargeFuel(baselineImportFuel); err != nil {
					return nil, err
				}
			}
		},
	)

	async := wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, i32Ret2),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			op := decodeOperation(args[0].I32(), args[1].I32())
			if err := h.chargeFuel(baselineImportFuel); err != nil {
				return nil, err
			}
			now, _ := h.Clock.CurrentTimeUS(h.remainingFuel)
			id, readyAt := h.Futures.Issue(op, now, h.PeriodUS)
			return []wasmer.Value{wasmer.NewI32(int32(id)), wasmer.NewI32(int32(readyAt))}, nil
		},
	)

	pollFn := wasmer.NewFunction(store, wasmer.NewFunctionType(i32, i32i32),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			id := uint32(args[0].I32())

			res, err := h.Futures.Poll(id)
			if err != nil {
				return []wasmer.Value{wasmer.NewI32(-1), wasmer.NewI32(-1)}, nil
			}
			if res.Pending {
				// spec.md §4.2: device_poll eagerly sweeps the future
				// table rather than waiting for the next tick driven
				// elsewhere; per §9's poll_loop open question, a guest
				// busy-polling a handle that is still Pending still
				// advances physics one Δt per poll, so a poll loop that
				// makes no other progress moves time forward instead of
				// livelocking.
				if _, err := h.advanceTick(); err != nil {
					return nil, err
				}
				res, err = h.Futures.Poll(id)
				if err != nil {
					return []wasmer.Value{wasmer.NewI32(-1), wasmer.NewI32(-1)}, nil
				}
			}
			if res.Pending {
				return []wasmer.Value{wasmer.NewI32(0), wasmer.NewI32(0)}, nil
			}
			return []wasmer.Value{wasmer.NewI32(1), wasmer.NewI32(int32(res.Value.U32(0)))}, nil
		},
	)

	pollLoop := wasmer.NewFunction(store, wasmer.NewFunctionType(i32, wasmer.NewValueTypes()),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			// A conforming host advances physics at least once per guest
			// poll loop that makes no progress, per spec.md §9's open
			// question on poll_loop; the busy-poll case is handled in
			// pollFn itself via advanceTick, so this marker charges no
			// fuel and steps nothing further.
			return nil, nil
		},
	)

	forget := wasmer.NewFunction(store, wasmer.NewFunctionType(i32, wasmer.NewValueTypes()),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			h.Futures.Forget(uint32(args[0].I32()))
			return nil, nil
		},
	)

	setMotors := wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, wasmer.NewValueTypes()),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			h.duties = clampDuties(int16(args[0].I32()), int16(args[1].I32()))
			return nil, nil
		},
	)

	return map[string]wasmer.IntoExtern{
		"device_operation_immediate": immediate,
		"device_operation_blocking":  blocking,
		"device_operation_async":     async,
		"device_poll":                pollFn,
		"poll_loop":                  pollLoop,
		"forget_handle":              forget,
		"set_motors_power":           setMotors,
	}
}

// diagnosticsImports builds the diagnostics.* host-import table. The
// guest's string/byte payloads are passed as (ptr, len) pairs into linear
// memory, per the usual WebAssembly ABI convention for non-scalar args.
func (h *Host) diagnosticsImports(store *wasmer.Store) map[string]wasmer.IntoExtern {
	i32i32 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32)
	i32x4 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32)
	noReturn := wasmer.NewValueTypes()

	writeLine := wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, noReturn),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			text := h.readGuestString(args[0].I32(), args[1].I32())
			cost := h.Sink.WriteLine(text)
			if err := h.Clock.SkipTime(h.remainingFuel, cost); err != nil {
				return nil, err
			}
			return nil, nil
		},
	)

	writeFile := wasmer.NewFunction(store, wasmer.NewFunctionType(i32x4, noReturn),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			name := h.readGuestString(args[0].I32(), args[1].I32())
			data := h.readGuestBytes(args[2].I32(), args[3].I32())
			cost, _, _ := h.Sink.WriteFile(name, data, nil)
			if err := h.Clock.SkipTime(h.remainingFuel, cost); err != nil {
				return nil, err
			}
			return nil, nil
		},
	)

	return map[string]wasmer.IntoExtern{
		"write_line": writeLine,
		"write_file": writeFile,
	}
}

func clampDuties(left, right int16) physics.DutyCycles {
	clamp := func(v int16) int16 {
		switch {
		case v > 1000:
			return 1000
		case v < -1000:
			return -1000
		default:
			return v
		}
	}
	return physics.DutyCycles{Left: clamp(left), Right: clamp(right)}
}
