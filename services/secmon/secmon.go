// Package secmon exposes the SoC secure monitor's hardware identity.
//
// On Amlogic parts the chip serial comes from an SMC call
// (SM_GET_CHIP_ID); on Linux the meson-sm driver re-exports it in sysfs.
package secmon

import (
	"encoding/hex"
	"os"
	"strings"

	"vim3-go/errcode"
)

// SerialSize is the chip serial length consumed by board code.
const SerialSize = 16

// Serial is a fixed-size chip serial.
type Serial [SerialSize]byte

func (s Serial) Bytes() []byte { return s[:] }

// Monitor returns the chip serial.
type Monitor interface {
	ChipSerial() (Serial, error)
}

// Static always reports one serial.
type Static Serial

func (s Static) ChipSerial() (Serial, error) { return Serial(s), nil }

// Func adapts a function to Monitor.
type Func func() (Serial, error)

func (f Func) ChipSerial() (Serial, error) { return f() }

// ErrUnavailable is returned when the monitor cannot be reached.
var ErrUnavailable = &errcode.E{C: errcode.IO, Op: "sm get serial", Msg: "secure monitor unavailable"}

// DefaultSysfsPath is where meson-sm publishes the serial.
const DefaultSysfsPath = "/sys/devices/platform/firmware:secure-monitor/serial"

// Sysfs reads a hex-encoded serial from a file. Shorter values are zero
// padded to SerialSize; longer ones are rejected.
type Sysfs struct {
	Path string
}

func (s Sysfs) ChipSerial() (Serial, error) {
	var out Serial
	path := s.Path
	if path == "" {
		path = DefaultSysfsPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return out, errcode.Wrap(errcode.IO, "sm get serial", err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return out, errcode.Wrap(errcode.InvalidArgument, "sm get serial", err)
	}
	if len(raw) == 0 || len(raw) > SerialSize {
		return out, &errcode.E{C: errcode.InvalidArgument, Op: "sm get serial", Msg: "bad serial length"}
	}
	copy(out[:], raw)
	return out, nil
}
