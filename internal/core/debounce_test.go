package core

import (
	"testing"
	"time"
)

func TestDebouncerFirstEdgeAccepted(t *testing.T) {
	d := NewDebouncer(DebounceWindow)

	if !d.Accept("mode_button", 5*time.Millisecond) {
		t.Error("Expected first edge to be accepted")
	}
}

func TestDebouncerDropsEdgesInsideWindow(t *testing.T) {
	d := NewDebouncer(DebounceWindow)

	if !d.Accept("mode_button", 0) {
		t.Fatal("Expected first edge to be accepted")
	}
	if d.Accept("mode_button", 20*time.Millisecond) {
		t.Error("Expected edge 20ms after accepted edge to be dropped")
	}
	if d.Accept("mode_button", 49*time.Millisecond) {
		t.Error("Expected edge 49ms after accepted edge to be dropped")
	}
	if !d.Accept("mode_button", 50*time.Millisecond) {
		t.Error("Expected edge at the window boundary to be accepted")
	}
}

// A dropped edge does not slide the window: the reference stays at the
// last accepted edge, so a bounce train cannot suppress input forever.
func TestDebouncerDroppedEdgeKeepsReference(t *testing.T) {
	d := NewDebouncer(DebounceWindow)

	d.Accept("mode_button", 0)
	if d.Accept("mode_button", 40*time.Millisecond) {
		t.Fatal("Expected edge at 40ms to be dropped")
	}
	if !d.Accept("mode_button", 60*time.Millisecond) {
		t.Error("Expected edge at 60ms to be accepted despite the bounce at 40ms")
	}
}

func TestDebouncerChannelsIndependent(t *testing.T) {
	d := NewDebouncer(DebounceWindow)

	if !d.Accept("mode_button", 10*time.Millisecond) {
		t.Fatal("Expected first mode edge to be accepted")
	}
	if !d.Accept("pedestrian_button", 15*time.Millisecond) {
		t.Error("Expected pedestrian edge to be accepted independently of mode edges")
	}
	if d.Accept("pedestrian_button", 30*time.Millisecond) {
		t.Error("Expected pedestrian bounce to be dropped")
	}
}
