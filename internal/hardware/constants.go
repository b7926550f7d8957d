package hardware

const (
	DefaultChip = "gpiochip0"

	// Output channels
	LightRed    = "red"
	LightYellow = "yellow"
	LightGreen  = "green"

	// Input channels
	ButtonMode       = "mode_button"
	ButtonPedestrian = "pedestrian_button"
)

// Line offsets of the fixture wiring.
var LightLines = map[string]int{
	LightRed:    67,
	LightYellow: 68,
	LightGreen:  44,
}

var ButtonLines = map[string]int{
	ButtonMode:       26,
	ButtonPedestrian: 46,
}
