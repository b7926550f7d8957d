package fsm

import (
	"time"

	"github.com/librescoot/librefsm"
)

// Timing constants
const (
	// Phase lengths, in cycle units (one unit = 1/cycle-rate seconds)
	GreenPhaseUnits     = 3
	YellowPhaseUnits    = 1
	RedPhaseUnits       = 2
	FlashPhaseUnits     = 1
	PedestrianHoldUnits = 5
	LightbulbPollPeriod = 10 * time.Millisecond
)

// NewDefinition creates the signal FSM definition.
//
// Transitions encode the fixed event/mode table. For cells where a pending
// pedestrian call can hijack the upcoming stop phase, a guarded transition
// to pedestrian-crossing is declared ahead of the table transition; guards
// are evaluated in declaration order. The two pedestrian-button self-loops
// in the flashing modes deliberately carry no action, so a pedestrian press
// while flashing cannot re-toggle the lights mid-phase.
func NewDefinition(actions Actions) *librefsm.Definition {
	return librefsm.NewDefinition().
		State(StateNormal).
		State(StateFlashingRed).
		State(StateFlashingYellow).
		State(StatePedestrianCrossing).
		State(StateLightbulbCheck).

		// === From Normal ===
		Transition(StateNormal, EvModeButton, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateNormal, EvModeButton, StateFlashingRed,
			librefsm.WithAction(actions.EnterFlashingRed),
		).
		Transition(StateNormal, EvPedestrianButton, StatePedestrianCrossing,
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateNormal, EvBothButtons, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateNormal, EvBothButtons, StateLightbulbCheck,
			librefsm.WithAction(actions.EnterLightbulbCheck),
		).
		Transition(StateNormal, EvPhaseExpired, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateNormal, EvPhaseExpired, StateNormal,
			librefsm.WithAction(actions.EnterNormal),
		).

		// === From FlashingRed ===
		Transition(StateFlashingRed, EvModeButton, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateFlashingRed, EvModeButton, StateFlashingYellow,
			librefsm.WithAction(actions.EnterFlashingYellow),
		).
		Transition(StateFlashingRed, EvPedestrianButton, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		// Jitter suppression: commit the self-loop without running the handler
		Transition(StateFlashingRed, EvPedestrianButton, StateFlashingRed).
		Transition(StateFlashingRed, EvBothButtons, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateFlashingRed, EvBothButtons, StateLightbulbCheck,
			librefsm.WithAction(actions.EnterLightbulbCheck),
		).
		Transition(StateFlashingRed, EvPhaseExpired, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateFlashingRed, EvPhaseExpired, StateFlashingRed,
			librefsm.WithAction(actions.EnterFlashingRed),
		).

		// === From FlashingYellow ===
		Transition(StateFlashingYellow, EvModeButton, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateFlashingYellow, EvModeButton, StateNormal,
			librefsm.WithAction(actions.EnterNormal),
		).
		Transition(StateFlashingYellow, EvPedestrianButton, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		// Jitter suppression: commit the self-loop without running the handler
		Transition(StateFlashingYellow, EvPedestrianButton, StateFlashingYellow).
		Transition(StateFlashingYellow, EvBothButtons, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateFlashingYellow, EvBothButtons, StateLightbulbCheck,
			librefsm.WithAction(actions.EnterLightbulbCheck),
		).
		Transition(StateFlashingYellow, EvPhaseExpired, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StateFlashingYellow, EvPhaseExpired, StateFlashingYellow,
			librefsm.WithAction(actions.EnterFlashingYellow),
		).

		// === From PedestrianCrossing ===
		Transition(StatePedestrianCrossing, EvModeButton, StatePedestrianCrossing,
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StatePedestrianCrossing, EvPedestrianButton, StatePedestrianCrossing,
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StatePedestrianCrossing, EvBothButtons, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StatePedestrianCrossing, EvBothButtons, StateLightbulbCheck,
			librefsm.WithAction(actions.EnterLightbulbCheck),
		).
		Transition(StatePedestrianCrossing, EvPhaseExpired, StatePedestrianCrossing,
			librefsm.WithGuard(actions.PedestrianHoldPending),
			librefsm.WithAction(actions.EnterPedestrianCrossing),
		).
		Transition(StatePedestrianCrossing, EvPhaseExpired, StateNormal,
			librefsm.WithAction(actions.EnterNormal),
		).

		// === From LightbulbCheck ===
		// The pedestrian flag is always false here, so no hijack transitions.
		Transition(StateLightbulbCheck, EvModeButton, StateNormal,
			librefsm.WithAction(actions.EnterNormal),
		).
		Transition(StateLightbulbCheck, EvPedestrianButton, StateNormal,
			librefsm.WithAction(actions.EnterNormal),
		).
		Transition(StateLightbulbCheck, EvBothButtons, StateLightbulbCheck,
			librefsm.WithAction(actions.EnterLightbulbCheck),
		).
		// Release poll: once both buttons read released, reset to defaults;
		// otherwise stay lit and re-arm the poll.
		Transition(StateLightbulbCheck, EvPhaseExpired, StateNormal,
			librefsm.WithGuard(actions.BothButtonsReleased),
			librefsm.WithAction(actions.ResetToDefaults),
		).
		Transition(StateLightbulbCheck, EvPhaseExpired, StateLightbulbCheck,
			librefsm.WithAction(actions.EnterLightbulbCheck),
		).

		// Initial state
		Initial(StateNormal)
}
