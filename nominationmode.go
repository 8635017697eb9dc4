// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

// NominationMode decides when the controlling agent sets USE-CANDIDATE on
// outgoing checks.
type NominationMode int

const (
	// NominationModeRegular never nominates from the ping path.
	NominationModeRegular NominationMode = iota + 1

	// NominationModeAggressive nominates on every check to a full ICE peer.
	NominationModeAggressive

	// NominationModeSemiAggressive nominates the selected pair and any pair
	// that would replace it.
	NominationModeSemiAggressive
)

const (
	nominationModeRegularStr        = "regular"
	nominationModeAggressiveStr     = "aggressive"
	nominationModeSemiAggressiveStr = "semi-aggressive"
)

func newNominationMode(raw string) NominationMode {
	switch raw {
	case nominationModeRegularStr:
		return NominationModeRegular
	case nominationModeAggressiveStr:
		return NominationModeAggressive
	case nominationModeSemiAggressiveStr:
		return NominationModeSemiAggressive
	default:
		return NominationMode(Unknown)
	}
}

func (m NominationMode) String() string {
	switch m {
	case NominationModeRegular:
		return nominationModeRegularStr
	case NominationModeAggressive:
		return nominationModeAggressiveStr
	case NominationModeSemiAggressive:
		return nominationModeSemiAggressiveStr
	default:
		return unknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m NominationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *NominationMode) UnmarshalText(b []byte) error {
	*m = newNominationMode(string(b))

	return nil
}
