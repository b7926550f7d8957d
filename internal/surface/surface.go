// Package surface implements the operator-facing read/write contract:
// a fixed-format status block for reads and validation of cycle-rate
// writes. Transport framing (Redis keys, device nodes) lives elsewhere.
package surface

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"traffic-service/internal/types"
)

// MaxWriteLen bounds a single rate write, mirroring the fixed buffer of
// the original control device.
const MaxWriteLen = 16

var ErrInvalidInput = errors.New("invalid input")

// Render formats a state snapshot as the fixed status block.
func Render(s types.ControllerState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s\n", s.Mode)
	fmt.Fprintf(&b, "cycle rate: %d Hz\n", s.CycleRate)
	fmt.Fprintf(&b, "red: %s\n", onOff(s.Status.Red))
	fmt.Fprintf(&b, "yellow: %s\n", onOff(s.Status.Yellow))
	fmt.Fprintf(&b, "green: %s\n", onOff(s.Status.Green))
	fmt.Fprintf(&b, "pedestrian present: %s\n", yesNo(s.PedestrianPresent))
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// ParseRate extracts the leading base-10 integer from a rate write and
// validates it against the legal [1,9] range. Anything after the integer
// is ignored. On success it reports the whole input as consumed.
func ParseRate(b []byte) (rate int, consumed int, err error) {
	if len(b) == 0 || len(b) > MaxWriteLen {
		return 0, 0, ErrInvalidInput
	}

	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}

	start := i
	value := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		value = value*10 + int(b[i]-'0')
		i++
	}
	if i == start {
		return 0, 0, ErrInvalidInput
	}

	if value < 1 || value > 9 {
		return 0, 0, ErrInvalidInput
	}
	return value, len(b), nil
}

// Reader yields one rendered snapshot and then EOF, modeling the
/// read-to-end semantics of the control device: a caller re-opens (creates
// a new Reader) for a fresh snapshot.
type Reader struct {
	r *strings.Reader
}

func NewReader(s types.ControllerState) *Reader {
	return &Reader{r: strings.NewReader(Render(s))}
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

var _ io.Reader = (*Reader)(nil)
