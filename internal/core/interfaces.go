package core

import (
	"traffic-service/internal/hardware"
	"traffic-service/internal/messaging"
	"traffic-service/internal/types"
)

// MessagingClient defines the interface for Redis operations needed by
// TrafficSystem
type MessagingClient interface {
	SetCallbacks(callbacks messaging.Callbacks)
	Connect() error
	StartListening() error
	Close() error

	PublishControllerState(s types.ControllerState) error
	PublishReport(report string) error
}

// HardwareIO defines the interface for hardware I/O operations needed by
// TrafficSystem
type HardwareIO interface {
	Initialize() error
	Cleanup()

	SetLight(channel string, on bool) error
	ReadButton(channel string) (bool, error)
	RegisterEdgeCallback(channel string, callback hardware.EdgeCallback)
}
