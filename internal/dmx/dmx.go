package dmx

import (
	"context"
	"fmt"
	"time"

	"dmxsend/internal/logger"
	"dmxsend/internal/universe"
)

const (
	// BaudRate is the DMX512 line speed.
	BaudRate = 250_000
	// Repeats is how many times the whole frame is sent. USB-serial bridges
	// drop frames now and then without reporting an error.
	Repeats = 10
	// BreakTime is far above the 88µs minimum: bridges can't time microseconds.
	BreakTime = 10_000 * time.Microsecond
	// MarkAfterBreak is the minimum idle-high time after the break.
	MarkAfterBreak = 8 * time.Microsecond
	// FrameGap is the wait after each frame.
	FrameGap = 15_000 * time.Microsecond
)

// Framing describes the character format of the line.
type Framing struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   bool
}

// DMX512 is the standard 250k 8N2 framing.
var DMX512 = Framing{BaudRate: BaudRate, DataBits: 8, StopBits: 2}

// Line is an exclusively owned serial line able to send DMX.
type Line interface {
	Configure(f Framing) error
	SetBreak(on bool) error
	Write(p []byte) (int, error)
	Close() error
}

// Opener acquires the line. Each Transmit opens once and always closes.
type Opener interface {
	Open() (Line, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func() (Line, error)

func (f OpenerFunc) Open() (Line, error) { return f() }

// Transmitter sends universes over a Line.
type Transmitter struct {
	log    logger.Logger
	opener Opener
	sleep  func(time.Duration)
}

// NewTransmitter конструктор.
func NewTransmitter(log logger.Logger, opener Opener) *Transmitter {
	return &Transmitter{
		log:    log,
		opener: opener,
		sleep:  time.Sleep,
	}
}

// Transmit sends u Repeats times. Every pass runs even when earlier ones
// succeeded; the first failing device operation aborts the send.
// Sleeps are protocol timing and are not interrupted by ctx.
func (t *Transmitter) Transmit(ctx context.Context, u universe.Universe) (err error) {
	line, err := t.opener.Open()
	if err != nil {
		return &DeviceError{Op: OpOpen, Err: err}
	}
	defer func() {
		if cerr := line.Close(); cerr != nil && err == nil {
			err = &DeviceError{Op: OpClose, Err: cerr}
		}
	}()

	if err := line.Configure(DMX512); err != nil {
		return &DeviceError{Op: OpConfigure, Err: err}
	}

	log := t.log.With(logger.Fields{"module": "dmx"})
	frame := u.Bytes()
	for pass := 1; pass <= Repeats; pass++ {
		if err := t.sendFrame(line, frame); err != nil {
			err.Pass = pass
			return err
		}
		log.Debugf("frame %d/%d sent", pass, Repeats)
	}
	if ctx.Err() != nil {
		log.Warnf("transmit finished after cancellation: %v", ctx.Err())
	}
	return nil
}

func (t *Transmitter) sendFrame(line Line, frame []byte) *DeviceError {
	if err := line.SetBreak(true); err != nil {
		return &DeviceError{Op: OpBreakOn, Err: err}
	}
	t.sleep(BreakTime)
	if err := line.SetBreak(false); err != nil {
		return &DeviceError{Op: OpBreakOff, Err: err}
	}
	t.sleep(MarkAfterBreak)

	n, err := line.Write(frame)
	if err != nil {
		return &DeviceError{Op: OpWrite, Err: err}
	}
	if n != len(frame) {
		return &DeviceError{Op: OpWrite, Err: fmt.Errorf("short write: %d of %d bytes", n, len(frame))}
	}
	t.sleep(FrameGap)
	return nil
}
