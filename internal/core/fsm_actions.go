package core

import (
	"context"
	"time"

	"github.com/librescoot/librefsm"

	"traffic-service/internal/fsm"
	"traffic-service/internal/hardware"
	"traffic-service/internal/types"
)

func (v *TrafficSystem) initFSM(ctx context.Context) error {
	def := fsm.NewDefinition(v)
	machine, err := def.Build()
	if err != nil {
		return err
	}
	v.machine = machine

	v.machine.OnStateChange(func(from, to librefsm.StateID) {
		v.mu.Lock()
		v.state.Mode = types.OperationalMode(to)
		v.mu.Unlock()
		v.logger.Infof("Mode transition: %s -> %s", from, to)
	})

	return v.machine.Start(ctx)
}

// armPhaseLocked arms the phase clock for the given number of phase
// units at the current cycle rate. Arming replaces any pending
// countdown. The rate is read once, here: a later rate write does not
// rescale a countdown already in flight.
func (v *TrafficSystem) armPhaseLocked(units int) {
	if v.machine == nil {
		return
	}
	d := time.Duration(units) * (time.Second / time.Duration(v.state.CycleRate))
	v.machine.StartTimer(fsm.TimerPhase, d, librefsm.Event{ID: fsm.EvPhaseExpired})
}

// armPollLocked re-arms the short release poll used during the
// lightbulb check. The poll period is fixed, independent of cycle rate.
func (v *TrafficSystem) armPollLocked() {
	if v.machine == nil {
		return
	}
	v.machine.StartTimer(fsm.TimerPhase, fsm.LightbulbPollPeriod, librefsm.Event{ID: fsm.EvPhaseExpired})
}

// releaseExtendedHoldLocked finishes an extended pedestrian hold: while
// the hold flag is raised and both red and yellow are lit, the next
// handled event drops both lamps and the flag before its own effect
// applies.
func (v *TrafficSystem) releaseExtendedHoldLocked() {
	if v.state.PedestrianPresent && v.state.Status.Red && v.state.Status.Yellow {
		v.state.Status.Red = false
		v.state.Status.Yellow = false
		v.state.PedestrianPresent = false
	}
}

// EnterNormal advances the green/yellow/red cycle by one step based on
// the lamp currently lit.
func (v *TrafficSystem) EnterNormal(c *librefsm.Context) error {
	v.mu.Lock()
	v.releaseExtendedHoldLocked()
	v.state.Mode = types.ModeNormal

	st := &v.state.Status
	switch {
	case st.Green:
		st.Green = false
		st.Yellow = true
		v.armPhaseLocked(fsm.YellowPhaseUnits)
	case st.Yellow && !v.state.PedestrianPresent:
		st.Yellow = false
		st.Red = true
		v.armPhaseLocked(fsm.RedPhaseUnits)
	case st.Red:
		st.Red = false
		st.Green = true
		v.armPhaseLocked(fsm.GreenPhaseUnits)
	case !st.Red && !st.Yellow && !st.Green:
		st.Green = true
		v.armPhaseLocked(fsm.GreenPhaseUnits)
	}

	snap := v.state
	v.mu.Unlock()

	v.projectAndPublish(snap)
	return nil
}

// EnterFlashingRed toggles the red lamp on each phase expiry; the other
// lamps stay off.
func (v *TrafficSystem) EnterFlashingRed(c *librefsm.Context) error {
	v.mu.Lock()
	v.releaseExtendedHoldLocked()
	v.state.Mode = types.ModeFlashingRed

	v.state.Status.Red = !v.state.Status.Red
	v.state.Status.Yellow = false
	v.state.Status.Green = false
	v.armPhaseLocked(fsm.FlashPhaseUnits)

	snap := v.state
	v.mu.Unlock()

	v.projectAndPublish(snap)
	return nil
}

// EnterFlashingYellow toggles the yellow lamp on each phase expiry.
func (v *TrafficSystem) EnterFlashingYellow(c *librefsm.Context) error {
	v.mu.Lock()
	v.releaseExtendedHoldLocked()
	v.state.Mode = types.ModeFlashingYellow

	v.state.Status.Yellow = !v.state.Status.Yellow
	v.state.Status.Red = false
	v.state.Status.Green = false
	v.armPhaseLocked(fsm.FlashPhaseUnits)

	snap := v.state
	v.mu.Unlock()

	v.projectAndPublish(snap)
	return nil
}

// EnterPedestrianCrossing records the crossing request. When yellow is
// lit the hold starts immediately: red joins yellow for an extended
// phase. Otherwise the request stays pending and the running countdown
// is left alone, so the hold begins at the next yellow.
func (v *TrafficSystem) EnterPedestrianCrossing(c *librefsm.Context) error {
	v.mu.Lock()
	v.releaseExtendedHoldLocked()
	v.state.Mode = types.ModePedestrianCrossing
	v.state.PedestrianPresent = true

	if v.state.Status.Yellow && !v.state.Status.Red {
		v.state.Status.Red = true
		v.state.Status.Green = false
		v.armPhaseLocked(fsm.PedestrianHoldUnits)
	}

	snap := v.state
	v.mu.Unlock()

	v.projectAndPublish(snap)
	return nil
}

// EnterLightbulbCheck lights all three lamps for a visual inspection
// and starts polling for both buttons to be released.
func (v *TrafficSystem) EnterLightbulbCheck(c *librefsm.Context) error {
	v.mu.Lock()
	v.releaseExtendedHoldLocked()
	v.state.Mode = types.ModeLightbulbCheck
	v.state.PedestrianPresent = false

	v.state.Status.Red = true
	v.state.Status.Yellow = true
	v.state.Status.Green = true
	v.armPollLocked()

	snap := v.state
	v.mu.Unlock()

	v.projectAndPublish(snap)
	return nil
}

// ResetToDefaults leaves the lightbulb check: rate back to 1 Hz, green
// lit, normal cycling resumed.
func (v *TrafficSystem) ResetToDefaults(c *librefsm.Context) error {
	v.mu.Lock()
	v.state.Mode = types.ModeNormal
	v.state.CycleRate = 1
	v.state.PedestrianPresent = false

	v.state.Status.Red = false
	v.state.Status.Yellow = false
	v.state.Status.Green = true
	v.armPhaseLocked(fsm.GreenPhaseUnits)

	snap := v.state
	v.mu.Unlock()

	v.projectAndPublish(snap)
	return nil
}

// PedestrianHoldPending reports whether a pending crossing request must
// hijack the transition: the request is raised, yellow is lit and the
// extended hold has not started yet.
func (v *TrafficSystem) PedestrianHoldPending(c *librefsm.Context) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state.PedestrianPresent && v.state.Status.Yellow && !v.state.Status.Red
}

// BothButtonsReleased samples the live button levels; any read error
// keeps the check running.
func (v *TrafficSystem) BothButtonsReleased(c *librefsm.Context) bool {
	mode, err := v.io.ReadButton(hardware.ButtonMode)
	if err != nil {
		v.logger.Warnf("Failed to read %s: %v", hardware.ButtonMode, err)
		return false
	}
	ped, err := v.io.ReadButton(hardware.ButtonPedestrian)
	if err != nil {
		v.logger.Warnf("Failed to read %s: %v", hardware.ButtonPedestrian, err)
		return false
	}
	return !mode && !ped
}
