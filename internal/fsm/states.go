package fsm

import "github.com/librescoot/librefsm"

// Signal modes
const (
	StateNormal             librefsm.StateID = "normal"
	StateFlashingRed        librefsm.StateID = "flashing-red"
	StateFlashingYellow     librefsm.StateID = "flashing-yellow"
	StatePedestrianCrossing librefsm.StateID = "pedestrian-crossing"
	StateLightbulbCheck     librefsm.StateID = "lightbulb-check"
)

// Signal events
const (
	// Physical inputs (debounced button edges)
	EvModeButton       librefsm.EventID = "mode-button"
	EvPedestrianButton librefsm.EventID = "pedestrian-button"
	EvBothButtons      librefsm.EventID = "both-buttons"

	// Timer events
	EvPhaseExpired librefsm.EventID = "phase-expired"
)

// Timer names for imperative timers
const (
	TimerPhase = "phase"
)
