package fsm

import "github.com/librescoot/librefsm"

// Actions defines the interface for signal state machine actions.
// TrafficSystem implements this interface: each action runs the phase
// handler of the mode being entered (including self-transitions, where
// the handler advances or toggles the lights), and guards decide the
// pedestrian hijack and the lightbulb-check release.
type Actions interface {
	// Mode handlers, invoked as transition actions
	EnterNormal(c *librefsm.Context) error
	EnterFlashingRed(c *librefsm.Context) error
	EnterFlashingYellow(c *librefsm.Context) error
	EnterPedestrianCrossing(c *librefsm.Context) error
	EnterLightbulbCheck(c *librefsm.Context) error

	// ResetToDefaults restores the boot configuration when the lightbulb
	// check observes both buttons released.
	ResetToDefaults(c *librefsm.Context) error

	// Guards for conditional transitions
	PedestrianHoldPending(c *librefsm.Context) bool // pedestrian call pending and the fixture is about to stop
	BothButtonsReleased(c *librefsm.Context) bool   // neither button pin reads pressed
}
