// Package guest implements the Guest Runtime Adapter (spec.md §4 item 1):
// it loads a competitor's compiled module into a sandboxed WebAssembly
// runtime, exposes the devices.*/diagnostics.* host-import table, and
// meters every host call against the simulation's fuel budget.
//
// The sandbox is github.com/wasmerio/wasmer-go. wasmer-go does not expose
// wasmtime-style per-instruction fuel metering through its Go bindings, so
// fuel is charged here at the host-import boundary instead of inside the
// guest's instruction stream: the device-operation imports (immediate,
// blocking, async) are assessed a fixed baseline cost, and every import's
// skip_time or tick-stepping work moves the clock as well, which still
// satisfies spec.md §4.1's contract that "every host-import entry reports
// the guest's remaining fuel" — the guest simply never observes time
// passing except through an import.
package guest

import (
	"fmt"

	wasmer "github.com/wasmerio/wasmer-go/wasmer"

	"botsim/internal/config"
	"botsim/internal/deviceabi"
	"botsim/internal/diagnostics"
	"botsim/internal/futures"
	"botsim/internal/physics"
	"botsim/internal/vclock"
)

// baselineImportFuel is the fuel cost charged per device_operation_immediate
// or device_operation_async call and per tick a device_operation_blocking
// call steps, modelling the guest instructions spent marshalling the call.
const baselineImportFuel = 4

// ErrInvalidOperation/ErrGuestTrap, together with vclock.ErrOutOfFuel and
// vclock.ErrTimeOverflow, are the fatal faults spec.md §7 names; any of
// them aborts the run and marks the activity NotEnded.
var (
	ErrInvalidOperation = fmt.Errorf("guest: invalid operation for this call site")
	ErrGuestTrap        = fmt.Errorf("guest: trap")
)

// Host owns everything a running guest module's imports touch: the
// virtual clock, the async future table, the physics stepper, and the
// diagnostics sink. It is not safe for concurrent use — each robot's
// guest instance owns exactly one Host (spec.md §5: "no two tasks share
// mutable state").
type Host struct {
	Clock    *vclock.Clock
	Futures  *futures.Table
	Stepper  *physics.Stepper
	Sink     *diagnostics.Sink
	PeriodUS uint64

	// OnTick, if set, is invoked once per physics tick after the future
	// table sweep, so the simulation driver can record the tick and
	// advance its activity tracker without this package depending on
	// either the recorder or activity package.
	OnTick func(physics.Tick)

	remainingFuel uint64
	tickIndex     uint64
	stepperNowUS  uint64 // physics-advanced virtual time: tickIndex * PeriodUS
	duties        physics.DutyCycles
	enabled       bool
	raceStartUS   uint64
	cfg           config.Configuration
	lastTick      physics.Tick
	memory        memoryReader
}

// NewHost constructs a Host with a full fuel tank; the guest is reported
// disabled (GetEnabled/WaitEnabled) until virtual time reaches raceStartUS.
func NewHost(clock *vclock.Clock, stepper *physics.Stepper, periodUS uint64, raceStartUS uint64, cfg config.Configuration) *Host {
	return &Host{
		Clock:       clock,
		Futures:     futures.New(),
		Stepper:     stepper,
		Sink:        diagnostics.NewSink(),
		PeriodUS:    periodUS,
		raceStartUS: raceStartUS,
		cfg:         cfg,

		remainingFuel: clock.TotalFuel(),
	}
}

// chargeFuel debits n fuel units, returning ErrOutOfFuel if doing so would
// drive the guest below the virtual clock's notion of exhaustion.
func (h *Host) chargeFuel(n uint64) error {
	if n > h.remainingFuel {
		h.remainingFuel = 0
	} else {
		h.remainingFuel -= n
	}
	if _, err := h.Clock.CurrentTimeUS(h.remainingFuel); err != nil {
		return err
	}
	return nil
}

// advanceTick runs one physics tick at the latest commanded duty cycles
// and sweeps the future table against the resulting state, per spec.md
// §4.4 steps 1-7.
//
// Physics advances in fixed Δt = PeriodUS steps regardless of how much
// guest-instruction fuel has actually been burned: per spec.md §4.3 step
// 3, the virtual clock is pinned forward to
// max(fuel_derived_now, stepper_now) via SetCurrentTime, so a guest
// blocked on a wait (burning no fuel) still observes time passing one
// tick at a time instead of only when it happens to spend fuel.
func (h *Host) advanceTick() (physics.Tick, error) {
	h.stepperNowUS += h.PeriodUS

	fuelNowUS, err := h.Clock.CurrentTimeUS(h.remainingFuel)
	if err != nil {
		return physics.Tick{}, err
	}
	nowUS := h.stepperNowUS
	if fuelNowUS > nowUS {
		nowUS = fuelNowUS
	}
	if err := h.Clock.SetCurrentTime(h.remainingFuel, nowUS); err != nil {
		return physics.Tick{}, err
	}

	h.enabled = nowUS >= h.raceStartUS
	tick := h.Stepper.Step(h.tickIndex, nowUS, h.duties)
	h.tickIndex++
	h.lastTick = tick

	h.Futures.Sweep(tick.NowUS, h.enabled, h.computeValue)
	if h.OnTick != nil {
		h.OnTick(tick)
	}
	return tick, nil
}

// computeValue derives the DeviceValue for a ready future, satisfying
// futures.ComputeValue. It re-derives sensor/clock state from the Host
// rather than snapshotting at issue time, since spec.md §3's encoding
// table defines each op's result purely as a function of the simulation
// state at its ready time.
func (h *Host) computeValue(op deviceabi.Operation, readyAtUS uint64) deviceabi.Value {
	var v deviceabi.Value
	switch op.Kind {
	case deviceabi.ReadLineLeft:
		left, _ := physics.LineLeftRight(h.lastTick.LineReadings)
		for i, b := range left {
			v = v.WithU8(i, b)
		}
	case deviceabi.ReadLineRight:
		_, right := physics.LineLeftRight(h.lastTick.LineReadings)
		for i, b := range right {
			v = v.WithU8(i, b)
		}
	case deviceabi.ReadMotorAngles:
		v = v.WithU16(0, physics.WheelAngleU16(h.lastTick.LeftAngleRad))
		v = v.WithU16(1, physics.WheelAngleU16(h.lastTick.RightAngleRad))
	case deviceabi.ReadGyro:
		v = v.WithI16(0, h.lastTick.Gyro.Roll)
		v = v.WithI16(1, h.lastTick.Gyro.Pitch)
		v = v.WithI16(2, h.lastTick.Gyro.Yaw)
	case deviceabi.ReadImuFusedData:
		v = v.WithI16(0, h.lastTick.IMU.Roll)
		v = v.WithI16(1, h.lastTick.IMU.Pitch)
		v = v.WithI16(2, h.lastTick.IMU.Yaw)
	case deviceabi.GetTime:
		v = v.WithU32(0, uint32(readyAtUS))
	case deviceabi.GetPeriod:
		v = v.WithU32(0, uint32(h.PeriodUS))
		v = v.WithU32(1, uint32(h.tickIndex))
	case deviceabi.GetEnabled:
		if readyAtUS >= h.raceStartUS {
			v = v.WithU8(0, 1)
		}
	}
	return v
}

// Module wraps one compiled, instantiated guest module alongside its Host.
type Module struct {
	engine   *wasmer.Engine
	store    *wasmer.Store
	module   *wasmer.Module
	instance *wasmer.Instance
	memory   *wasmer.Memory

	Host *Host
}

// Load compiles and instantiates a guest module from wasmBytes, wiring
// the devices.*/diagnostics.* import table to host. The guest's own
// `setup`/`run` exports are resolved but not called; callers invoke
// Setup()/Run() explicitly.
func Load(wasmBytes []byte, host *Host) (*Module, error) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)

	mod, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("guest: compile: %w", err)
	}

	importObject := wasmer.NewImportObject()
	importObject.Register("devices", host.deviceImports(store))
	importObject.Register("diagnostics", host.diagnosticsImports(store))

	instance, err := wasmer.NewInstance(mod, importObject)
	if err != nil {
		return nil, fmt.Errorf("guest: instantiate: %w", err)
	}

	memory, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, fmt.Errorf("guest: no exported memory: %w", err)
	}
	host.SetMemoryReader(func(ptr, length int32) []byte {
		data := memory.Data()
		return data[ptr : ptr+length]
	})

	return &Module{engine: engine, store: store, module: mod, instance: instance, memory: memory, Host: host}, nil
}

// Run invokes the guest's exported `run` function. A guest trap (illegal
// instruction, or fuel exhaustion surfacing as a trap from a host import)
// is reported as ErrGuestTrap; the caller is expected to treat this as
// terminal per spec.md §7.
func (m *Module) Run() error {
	run, err := m.instance.Exports.GetFunction("run")
	if err != nil {
		return fmt.Errorf("guest: missing export run: %w", err)
	}
	if _, err := run(); err != nil {
		return fmt.Errorf("%w: %v", ErrGuestTrap, err)
	}
	return nil
}

// Setup invokes the guest's exported `setup` function and decodes its
// returned Configuration from guest linear memory at the returned pointer,
// per spec.md §3/§6 (the exact struct layout is a guest-module convention
// beyond this spec's scope; callers supply a decode function that reads
// raw bytes out of guest memory via the supplied reader).
func (m *Module) Setup(decode func(read func(ptr, length int32) []byte, ptr int32) config.Configuration) (config.Configuration, error) {
	setup, err := m.instance.Exports.GetFunction("setup")
	if err != nil {
		return config.Configuration{}, fmt.Errorf("guest: missing export setup: %w", err)
	}
	result, err := setup()
	if err != nil {
		return config.Configuration{}, fmt.Errorf("%w: %v", ErrGuestTrap, err)
	}
	ptr, _ := result.(int32)
	read := func(p, length int32) []byte {
		data := m.memory.Data()
		return data[p : p+length]
	}
	return decode(read, ptr), nil
}
