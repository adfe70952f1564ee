package directive

import (
	"errors"
	"fmt"
	"strconv"

	"dmxsend/internal/universe"
)

// DefaultOn is the level a channel is turned on with.
const DefaultOn byte = 200

// ErrInvalidChannel is the single error reported for any malformed or out of range token.
var ErrInvalidChannel = errors.New("invalid channel argument")

// errOutOfRange is the internal cause for channel numbers past the end of the universe.
var errOutOfRange = fmt.Errorf("channel must be below %d", universe.Size)

// Mode tells what to do with the channels that follow it.
type Mode struct {
	toggle bool
	value  byte
}

// SetTo replaces the channel value unconditionally.
func SetTo(v byte) Mode {
	return Mode{value: v}
}

// Toggle flips a channel between 0 and DefaultOn.
func Toggle() Mode {
	return Mode{toggle: true}
}

// IsToggle reports whether m flips channels instead of setting them.
func (m Mode) IsToggle() bool {
	return m.toggle
}

// Apply returns the new level of a channel currently at current.
func (m Mode) Apply(current byte) byte {
	if !m.toggle {
		return m.value
	}
	if current == 0 {
		return DefaultOn
	}
	return 0
}

func (m Mode) String() string {
	if m.toggle {
		return "toggle"
	}
	return fmt.Sprintf("set(%d)", m.value)
}

// Directive is one parsed command token.
type Directive struct {
	Mode    *Mode  // Mode - смена режима, nil если сигила нет.
	Channel uint16 // Channel - номер канала (0-511).
}

// InvalidChannelError carries the offending token and the internal cause.
// Its message is the same for every failure.
type InvalidChannelError struct {
	Token string
	Cause error
}

func (e *InvalidChannelError) Error() string {
	return ErrInvalidChannel.Error()
}

func (e *InvalidChannelError) Unwrap() []error {
	return []error{ErrInvalidChannel, e.Cause}
}

// Parse reads an optional sigil ('-' off, '+' on, '^' toggle) followed by a
// decimal channel number.
func Parse(token string) (Directive, error) {
	var d Directive
	digits := token
	if m, ok := sigil(token); ok {
		d.Mode = &m
		digits = token[1:]
	}

	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return Directive{}, &InvalidChannelError{Token: token, Cause: err}
	}
	if n >= universe.Size {
		return Directive{}, &InvalidChannelError{Token: token, Cause: errOutOfRange}
	}
	d.Channel = uint16(n)
	return d, nil
}

func sigil(token string) (Mode, bool) {
	if token == "" {
		return Mode{}, false
	}
	switch token[0] {
	case '-':
		return SetTo(0), true
	case '+':
		return SetTo(DefaultOn), true
	case '^':
		return Toggle(), true
	}
	return Mode{}, false
}

// ParseAll parses every token or none.
func ParseAll(tokens []string) ([]Directive, error) {
	out := make([]Directive, 0, len(tokens))
	for _, t := range tokens {
		d, err := Parse(t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Stateful reports whether any directive changes the mode. Such a request
// edits the persisted universe instead of replacing it.
func Stateful(ds []Directive) bool {
	for _, d := range ds {
		if d.Mode != nil {
			return true
		}
	}
	return false
}

// Fold applies directives in order to u. The running mode starts at
// SetTo(DefaultOn) and collapses to SetTo(new value) after every directive,
// so mode-less channels following a toggle copy its result.
func Fold(u universe.Universe, ds []Directive) universe.Universe {
	mode := SetTo(DefaultOn)
	for _, d := range ds {
		if d.Mode != nil {
			mode = *d.Mode
		}
		v := mode.Apply(u[d.Channel])
		u[d.Channel] = v
		mode = SetTo(v)
	}
	return u
}
