package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/librescoot/librefsm"

	"traffic-service/internal/fsm"
	"traffic-service/internal/hardware"
	"traffic-service/internal/logger"
	"traffic-service/internal/messaging"
	"traffic-service/internal/surface"
	"traffic-service/internal/types"
)

// TrafficSystem owns the controller state and wires the debounced edge
// source, the phase clock and the operator surface into the mode state
// machine. All event processing is serialized through the machine; the
// state itself is additionally guarded by mu so that snapshot reads and
// rate writes never observe a half-applied transition.
type TrafficSystem struct {
	logger   *logger.Logger
	io       HardwareIO
	redis    MessagingClient
	machine  *librefsm.Machine
	debounce *Debouncer

	mu    sync.RWMutex
	state types.ControllerState

	// ioMu serializes shutdown against in-flight projections: Cleanup
	// waits for the last projection to finish and later ones are skipped.
	ioMu       sync.RWMutex
	ioReleased bool

	ctx         context.Context
	cancel      context.CancelFunc
	initialized bool
}

func NewTrafficSystem(io HardwareIO, redis MessagingClient, l *logger.Logger) *TrafficSystem {
	ctx, cancel := context.WithCancel(context.Background())
	return &TrafficSystem{
		logger:   l,
		io:       io,
		redis:    redis,
		debounce: NewDebouncer(DebounceWindow),
		state:    types.NewControllerState(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (v *TrafficSystem) Start() error {
	v.logger.Infof("Starting traffic system")

	v.redis.SetCallbacks(messaging.Callbacks{
		RateCallback: v.handleRateRequest,
	})

	if err := v.redis.Connect(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if err := v.io.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize hardware: %w", err)
	}

	if err := v.initFSM(v.ctx); err != nil {
		return fmt.Errorf("failed to initialize state machine: %w", err)
	}

	// Only now expose the live gpiocdev event handlers to the machine.
	v.io.RegisterEdgeCallback(hardware.ButtonMode, v.handleButtonEdge)
	v.io.RegisterEdgeCallback(hardware.ButtonPedestrian, v.handleButtonEdge)

	// Project the boot status (red lit) and arm the first phase; the
	// first expiry turns on green.
	v.mu.Lock()
	v.armPhaseLocked(fsm.RedPhaseUnits)
	snap := v.state
	v.mu.Unlock()
	v.projectAndPublish(snap)

	v.initialized = true

	if err := v.redis.StartListening(); err != nil {
		return fmt.Errorf("failed to start Redis listeners: %w", err)
	}

	v.logger.Infof("System started successfully")
	return nil
}

// Shutdown quiesces event sources in order: operator surface listeners,
// then the phase clock and the machine, and only then the GPIO lines, so
// a last in-flight action never projects onto released lines.
func (v *TrafficSystem) Shutdown() {
	if err := v.redis.Close(); err != nil {
		v.logger.Warnf("Error closing Redis client: %v", err)
	}

	if v.machine != nil {
		v.machine.StopTimer(fsm.TimerPhase)
	}
	v.cancel()

	// Wait out any projection still running in the machine's action
	// goroutine, then bar further output.
	v.ioMu.Lock()
	v.ioReleased = true
	v.ioMu.Unlock()

	v.io.Cleanup()
}

// handleButtonEdge runs in the gpiocdev event goroutine: debounce, resolve
// the chord, and submit the logical event into the serialized path.
func (v *TrafficSystem) handleButtonEdge(channel string, timestamp time.Duration) {
	if v.machine == nil {
		v.logger.Warnf("Ignoring edge on %s before initialization", channel)
		return
	}

	if !v.debounce.Accept(channel, timestamp) {
		v.logger.Debugf("Dropped bounce on %s", channel)
		return
	}

	event := fsm.EvModeButton
	other := hardware.ButtonPedestrian
	if channel == hardware.ButtonPedestrian {
		event = fsm.EvPedestrianButton
		other = hardware.ButtonMode
	}

	// Chord detection samples the live level of the other button. Two
	// near-simultaneous edges can each resolve to both-buttons; the
	// lightbulb-check entry is idempotent under the duplicate. A failed
	// sample drops the edge rather than guess at the chord.
	pressed, err := v.io.ReadButton(other)
	if err != nil {
		v.logger.Warnf("Dropping edge on %s, chord sample of %s failed: %v", channel, other, err)
		return
	}
	if pressed {
		event = fsm.EvBothButtons
	}

	v.logger.Debugf("Button edge %s => %s", channel, event)
	v.machine.Send(librefsm.Event{ID: event})
}

// handleRateRequest validates and applies a cycle-rate write from the
// operator surface. A pending phase countdown is not rescaled; the new
// rate takes effect on the next arm.
func (v *TrafficSystem) handleRateRequest(value string) error {
	rate, _, err := surface.ParseRate([]byte(value))
	if err != nil {
		return fmt.Errorf("rejected rate write %q: %w", value, err)
	}

	v.mu.Lock()
	v.state.CycleRate = rate
	snap := v.state
	v.mu.Unlock()

	v.logger.Infof("Cycle rate set to %d Hz", rate)
	v.publishSnapshot(snap)
	return nil
}

// Snapshot returns a consistent copy of the controller state.
func (v *TrafficSystem) Snapshot() types.ControllerState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Report renders the current snapshot as the operator status block.
func (v *TrafficSystem) Report() string {
	return surface.Render(v.Snapshot())
}

// projectLights mirrors a light status onto the physical outputs. The
// projector is unconditional and treated as infallible at this layer;
// write errors are logged, never propagated into the state machine.
func (v *TrafficSystem) projectLights(st types.LightStatus) {
	v.ioMu.RLock()
	defer v.ioMu.RUnlock()
	if v.ioReleased {
		return
	}

	outputs := []struct {
		channel string
		on      bool
	}{
		{hardware.LightRed, st.Red},
		{hardware.LightYellow, st.Yellow},
		{hardware.LightGreen, st.Green},
	}
	for _, out := range outputs {
		if err := v.io.SetLight(out.channel, out.on); err != nil {
			v.logger.Errorf("Failed to project %s: %v", out.channel, err)
		}
	}
}

func (v *TrafficSystem) publishSnapshot(snap types.ControllerState) {
	if err := v.redis.PublishControllerState(snap); err != nil {
		v.logger.Warnf("Failed to publish controller state: %v", err)
	}
	if err := v.redis.PublishReport(surface.Render(snap)); err != nil {
		v.logger.Warnf("Failed to publish report: %v", err)
	}
}

func (v *TrafficSystem) projectAndPublish(snap types.ControllerState) {
	v.projectLights(snap.Status)
	v.publishSnapshot(snap)
}
