package hardware

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"traffic-service/internal/logger"
)

// EdgeCallback is invoked for every raw rising edge on a button line, with
// the kernel event timestamp. Raw means undebounced: the callback runs in
// the gpiocdev event goroutine and must not block.
type EdgeCallback func(channel string, timestamp time.Duration)

type LinuxHardwareIO struct {
	logger        *logger.Logger
	chipName      string
	chip          *gpiocdev.Chip
	lights        map[string]*gpiocdev.Line
	buttons       map[string]*gpiocdev.Line
	mu            sync.RWMutex
	edgeCallbacks map[string]EdgeCallback
}

func NewLinuxHardwareIO(chipName string, l *logger.Logger) *LinuxHardwareIO {
	return &LinuxHardwareIO{
		logger:        l,
		chipName:      chipName,
		lights:        make(map[string]*gpiocdev.Line),
		buttons:       make(map[string]*gpiocdev.Line),
		edgeCallbacks: make(map[string]EdgeCallback),
	}
}

func (io *LinuxHardwareIO) Initialize() error {
	io.logger.Infof("Initializing hardware IO on %s", io.chipName)

	chip, err := gpiocdev.NewChip(io.chipName)
	if err != nil {
		return fmt.Errorf("failed to open GPIO chip %s: %w", io.chipName, err)
	}
	io.chip = chip

	for name, offset := range LightLines {
		line, err := chip.RequestLine(offset,
			gpiocdev.AsOutput(0),
			gpiocdev.WithConsumer("traffic-service"))
		if err != nil {
			io.Cleanup()
			return fmt.Errorf("failed to request light line %d (%s): %w", offset, name, err)
		}
		io.lights[name] = line
		io.logger.Debugf("Configured light %s: line=%d", name, offset)
	}

	for name, offset := range ButtonLines {
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullDown,
			gpiocdev.WithRisingEdge,
			gpiocdev.WithEventHandler(io.handleLineEvent),
			gpiocdev.WithConsumer("traffic-service"))
		if err != nil {
			io.Cleanup()
			return fmt.Errorf("failed to request button line %d (%s): %w", offset, name, err)
		}
		io.buttons[name] = line
		io.logger.Debugf("Configured button %s: line=%d", name, offset)
	}

	return nil
}

func (io *LinuxHardwareIO) handleLineEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}

	channel := io.mapOffset(evt.Offset)
	if channel == "" {
		io.logger.Warnf("Edge on unknown line offset %d", evt.Offset)
		return
	}

	io.mu.RLock()
	callback := io.edgeCallbacks[channel]
	io.mu.RUnlock()

	if callback != nil {
		callback(channel, evt.Timestamp)
	}
}

func (io *LinuxHardwareIO) mapOffset(offset int) string {
	for name, o := range ButtonLines {
		if o == offset {
			return name
		}
	}
	return ""
}

func (io *LinuxHardwareIO) RegisterEdgeCallback(channel string, callback EdgeCallback) {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.edgeCallbacks[channel] = callback
	io.logger.Debugf("Registered edge callback for channel: %s", channel)
}

// ReadButton samples the current level of a button line. Used for chord
// detection and the lightbulb-check release poll.
func (io *LinuxHardwareIO) ReadButton(channel string) (bool, error) {
	line, ok := io.buttons[channel]
	if !ok {
		return false, fmt.Errorf("unknown button channel: %s", channel)
	}

	value, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("failed to read button %s: %w", channel, err)
	}
	return value != 0, nil
}

func (io *LinuxHardwareIO) SetLight(channel string, on bool) error {
	line, ok := io.lights[channel]
	if !ok {
		return fmt.Errorf("unknown light channel: %s", channel)
	}

	value := 0
	if on {
		value = 1
	}

	if err := line.SetValue(value); err != nil {
		return fmt.Errorf("failed to set light %s=%v: %w", channel, on, err)
	}
	return nil
}

func (io *LinuxHardwareIO) Cleanup() {
	io.mu.Lock()
	defer io.mu.Unlock()

	io.logger.Infof("Cleaning up hardware resources")

	for name, line := range io.buttons {
		line.Close()
		io.logger.Debugf("Closed button line for %s", name)
	}
	io.buttons = make(map[string]*gpiocdev.Line)

	for name, line := range io.lights {
		line.Close()
		io.logger.Debugf("Closed light line for %s", name)
	}
	io.lights = make(map[string]*gpiocdev.Line)

	if io.chip != nil {
		io.chip.Close()
		io.chip = nil
	}
}
