package types

// OperationalMode is the controller's current mode. Exactly one is active
// at any instant.
type OperationalMode string

const (
	ModeNormal             OperationalMode = "normal"
	ModeFlashingRed        OperationalMode = "flashing-red"
	ModeFlashingYellow     OperationalMode = "flashing-yellow"
	ModePedestrianCrossing OperationalMode = "pedestrian-crossing"
	ModeLightbulbCheck     OperationalMode = "lightbulb-check"
)

// LightStatus holds the three light outputs. Legal combinations depend on
// the mode; the projector mirrors whatever the state machine sets.
type LightStatus struct {
	Red    bool
	Yellow bool
	Green  bool
}

// ControllerState is the single mutable aggregate owned by the mode state
// machine. Snapshots of it are what the control surface reports.
type ControllerState struct {
	Mode              OperationalMode
	Status            LightStatus
	CycleRate         int // Hz, 1..9
	PedestrianPresent bool
}

// NewControllerState returns the boot state. The fixture starts "in red"
// so the first phase transition turns on green.
func NewControllerState() ControllerState {
	return ControllerState{
		Mode:      ModeNormal,
		Status:    LightStatus{Red: true},
		CycleRate: 1,
	}
}
