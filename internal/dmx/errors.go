package dmx

import "fmt"

// Op names the device operation that failed.
type Op string

const (
	OpOpen      Op = "open"
	OpConfigure Op = "configure"
	OpBreakOn   Op = "break on"
	OpBreakOff  Op = "break off"
	OpWrite     Op = "write"
	OpClose     Op = "close"
)

// DeviceError wraps a failure of the serial line.
type DeviceError struct {
	Op   Op
	Pass int // Pass - номер повтора, 0 вне цикла отправки.
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Pass > 0 {
		return fmt.Sprintf("dmx %s (pass %d): %v", e.Op, e.Pass, e.Err)
	}
	return fmt.Sprintf("dmx %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
