package device

import (
	"errors"
	"testing"
	"time"

	"dmxsend/internal/config"
	"dmxsend/internal/dmx"
	"dmxsend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

type fakePort struct {
	modes  []serial.Mode
	breaks []time.Duration
	writes int
	closed bool
}

func (p *fakePort) SetMode(mode *serial.Mode) error {
	p.modes = append(p.modes, *mode)
	return nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.writes++
	return len(b), nil
}

func (p *fakePort) Break(d time.Duration) error {
	p.breaks = append(p.breaks, d)
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newTestFTDI(ports []*enumerator.PortDetails, port *fakePort) (*FTDI, *string) {
	var opened string
	f := NewFTDI(logger.Discard(), config.DeviceConf{VendorID: 0x0403, ProductID: 0x6001})
	f.list = func() ([]*enumerator.PortDetails, error) { return ports, nil }
	f.open = func(name string, mode *serial.Mode) (Port, error) {
		opened = name
		port.modes = append(port.modes, *mode)
		return port, nil
	}
	return f, &opened
}

func TestOpenByID(t *testing.T) {
	port := &fakePort{}
	f, opened := newTestFTDI([]*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
		{Name: "/dev/ttyUSB1", IsUSB: true, VID: "0403", PID: "6001"},
	}, port)

	line, err := f.Open()
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", *opened)
	require.Len(t, port.modes, 1)
	assert.Equal(t, serial.Mode{BaudRate: 250000, DataBits: 8, Parity: serial.NoParity, StopBits: serial.TwoStopBits}, port.modes[0])

	require.NoError(t, line.Close())
	assert.True(t, port.closed)
}

func TestOpenNotFound(t *testing.T) {
	f, _ := newTestFTDI([]*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6010"},
		{Name: "/dev/ttyS0", VID: "0403", PID: "6001"},
	}, &fakePort{})

	_, err := f.Open()
	assert.ErrorIs(t, err, ErrDeviceNotFound)
	assert.Contains(t, err.Error(), "0403:6001")
}

func TestOpenEnumerateError(t *testing.T) {
	f, _ := newTestFTDI(nil, &fakePort{})
	f.list = func() ([]*enumerator.PortDetails, error) { return nil, errors.New("no udev") }

	_, err := f.Open()
	assert.EqualError(t, err, "enumerate serial ports: no udev")
}

func TestMatchID(t *testing.T) {
	assert.True(t, matchID("0403", 0x0403))
	assert.True(t, matchID("0x0403", 0x0403))
	assert.True(t, matchID("6001", 0x6001))
	assert.True(t, matchID("ABCD", 0xabcd))
	assert.False(t, matchID("", 0))
	assert.False(t, matchID("zz", 0x0403))
	assert.False(t, matchID("0404", 0x0403))
}

func TestSerialMode(t *testing.T) {
	m, err := serialMode(dmx.Framing{BaudRate: 9600, DataBits: 7, StopBits: 1, Parity: true})
	require.NoError(t, err)
	assert.Equal(t, serial.OneStopBit, m.StopBits)
	assert.Equal(t, serial.EvenParity, m.Parity)

	_, err = serialMode(dmx.Framing{BaudRate: 9600, DataBits: 8, StopBits: 3})
	assert.Error(t, err)
}

func TestLineBreakHeldForAssertedTime(t *testing.T) {
	port := &fakePort{}
	clock := time.Unix(0, 0)
	line := &Line{port: port, now: func() time.Time { return clock }}

	require.NoError(t, line.Configure(dmx.DMX512))
	require.Len(t, port.modes, 1)

	require.NoError(t, line.SetBreak(true))
	clock = clock.Add(25 * time.Millisecond)
	require.NoError(t, line.SetBreak(false))

	require.NoError(t, line.SetBreak(true))
	clock = clock.Add(time.Millisecond)
	require.NoError(t, line.SetBreak(false))

	// Releasing without a pending break sends nothing.
	require.NoError(t, line.SetBreak(false))

	assert.Equal(t, []time.Duration{25 * time.Millisecond, dmx.BreakTime}, port.breaks)

	n, err := line.Write(make([]byte, 512))
	require.NoError(t, err)
	assert.Equal(t, 512, n)
}
