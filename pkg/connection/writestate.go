// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connection

// WriteState tracks whether outgoing connectivity checks on a pair are
// being answered.
type WriteState int

const (
	// WriteStateUnknown is the enum's zero-value.
	WriteStateUnknown WriteState = iota

	// WriteStateWritable means recent pings have been answered.
	WriteStateWritable

	// WriteStateUnreliable means some pings went unanswered but the pair
	// has not timed out yet.
	WriteStateUnreliable

	// WriteStateInit means no ping has been answered yet.
	WriteStateInit

	// WriteStateTimeout means the pair stopped answering and is no longer
	// active.
	WriteStateTimeout
)

const (
	writeStateWritableStr   = "writable"
	writeStateUnreliableStr = "write_unreliable"
	writeStateInitStr       = "write_init"
	writeStateTimeoutStr    = "write_timeout"
	writeStateUnknownStr    = "unknown"
)

// NewWriteState takes a string and converts it into a WriteState.
func NewWriteState(raw string) WriteState {
	switch raw {
	case writeStateWritableStr:
		return WriteStateWritable
	case writeStateUnreliableStr:
		return WriteStateUnreliable
	case writeStateInitStr:
		return WriteStateInit
	case writeStateTimeoutStr:
		return WriteStateTimeout
	default:
		return WriteStateUnknown
	}
}

func (s WriteState) String() string {
	switch s {
	case WriteStateWritable:
		return writeStateWritableStr
	case WriteStateUnreliable:
		return writeStateUnreliableStr
	case WriteStateInit:
		return writeStateInitStr
	case WriteStateTimeout:
		return writeStateTimeoutStr
	default:
		return writeStateUnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s WriteState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *WriteState) UnmarshalText(b []byte) error {
	*s = NewWriteState(string(b))

	return nil
}
