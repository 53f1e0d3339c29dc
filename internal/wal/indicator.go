package wal

import "bytes"

// operational identifies which of the two data files currently accepts
// mutations.
type operational int

const (
	opTick operational = iota
	opTock
)

func (o operational) other() operational {
	if o == opTick {
		return opTock
	}
	return opTick
}

const indicatorSize = 32

var (
	zeroIndicator = bytes.Repeat([]byte{0x00}, indicatorSize)
	oneIndicator  = bytes.Repeat([]byte{0x01}, indicatorSize)
)

// classifyIndicator inspects a wal.meta payload and reports which file is
// operational. A payload that is not exactly 32 bytes of all-zero or all-one
// is not a legal stable value; ok is false and the indicator is a crash
// signal rather than a caller error.
func classifyIndicator(data []byte) (op operational, ok bool) {
	if len(data) != indicatorSize {
		return 0, false
	}
	if bytes.Equal(data, zeroIndicator) {
		return opTick, true
	}
	if bytes.Equal(data, oneIndicator) {
		return opTock, true
	}
	return 0, false
}

func indicatorFor(op operational) []byte {
	if op == opTick {
		return zeroIndicator
	}
	return oneIndicator
}
