package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dmxsend/internal/config"
	"dmxsend/internal/dmx"
	"dmxsend/internal/logger"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ErrDeviceNotFound is returned when no USB serial port matches the configured VID/PID.
var ErrDeviceNotFound = errors.New("usb serial device not found")

// Port is the part of serial.Port the DMX line needs.
type Port interface {
	SetMode(mode *serial.Mode) error
	Write(p []byte) (int, error)
	Break(d time.Duration) error
	Close() error
}

// FTDI opens the first serial port of a USB bridge by its vendor/product id.
type FTDI struct {
	log       logger.Logger
	vendorID  uint16
	productID uint16

	list func() ([]*enumerator.PortDetails, error)
	open func(name string, mode *serial.Mode) (Port, error)
}

// NewFTDI конструктор.
func NewFTDI(log logger.Logger, cfg config.DeviceConf) *FTDI {
	return &FTDI{
		log:       log,
		vendorID:  cfg.VendorID,
		productID: cfg.ProductID,
		list:      enumerator.GetDetailedPortsList,
		open: func(name string, mode *serial.Mode) (Port, error) {
			return serial.Open(name, mode)
		},
	}
}

// Open finds the bridge and opens it at DMX512 framing.
func (f *FTDI) Open() (dmx.Line, error) {
	name, err := f.find()
	if err != nil {
		return nil, err
	}
	mode, err := serialMode(dmx.DMX512)
	if err != nil {
		return nil, err
	}
	port, err := f.open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	f.log.With(logger.Fields{"module": "device"}).Debugf("opened %s (%04x:%04x)", name, f.vendorID, f.productID)
	return &Line{port: port, now: time.Now}, nil
}

func (f *FTDI) find() (string, error) {
	ports, err := f.list()
	if err != nil {
		return "", fmt.Errorf("enumerate serial ports: %w", err)
	}
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		if matchID(p.VID, f.vendorID) && matchID(p.PID, f.productID) {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, f.vendorID, f.productID)
}

// matchID compares an enumerator hex id ("0403", "0x0403") with want.
func matchID(s string, want uint16) bool {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	n, err := strconv.ParseUint(s, 16, 16)
	return err == nil && uint16(n) == want
}

func serialMode(f dmx.Framing) (*serial.Mode, error) {
	mode := &serial.Mode{BaudRate: f.BaudRate, DataBits: f.DataBits, Parity: serial.NoParity}
	switch f.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits: %d", f.StopBits)
	}
	if f.Parity {
		mode.Parity = serial.EvenParity
	}
	return mode, nil
}

// Line drives break and data on an open port.
// The port only offers a timed break, so the break is sent when it is
// released, held for as long as it was asserted.
type Line struct {
	port       Port
	now        func() time.Time
	breakSince time.Time
	inBreak    bool
}

func (l *Line) Configure(f dmx.Framing) error {
	mode, err := serialMode(f)
	if err != nil {
		return err
	}
	return l.port.SetMode(mode)
}

func (l *Line) SetBreak(on bool) error {
	if on {
		l.breakSince = l.now()
		l.inBreak = true
		return nil
	}
	if !l.inBreak {
		return nil
	}
	l.inBreak = false
	held := l.now().Sub(l.breakSince)
	if held < dmx.BreakTime {
		held = dmx.BreakTime
	}
	return l.port.Break(held)
}

func (l *Line) Write(p []byte) (int, error) {
	return l.port.Write(p)
}

func (l *Line) Close() error {
	return l.port.Close()
}
