package universe

// Size is the number of channels in a DMX512 universe.
const Size = 512

// Universe wraps the 512 byte array for convenience.
// Index is the DMX channel (0-511), value is the channel level (0-255).
type Universe [Size]byte

// Bytes returns the universe as the raw frame written to the line.
func (u *Universe) Bytes() []byte {
	return u[:]
}
