// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"github.com/pion/sdp/v3"
)

// ICEMode is the ICE implementation flavor of an agent.
type ICEMode int

const (
	// ICEModeFull is a full ICE implementation that runs connectivity checks.
	ICEModeFull ICEMode = iota + 1

	// ICEModeLite is an ICE lite implementation that only answers checks.
	ICEModeLite
)

const (
	iceModeFullStr = "full"
	iceModeLiteStr = "lite"
)

func newICEMode(raw string) ICEMode {
	switch raw {
	case iceModeFullStr:
		return ICEModeFull
	case iceModeLiteStr:
		return ICEModeLite
	default:
		return ICEMode(Unknown)
	}
}

func (m ICEMode) String() string {
	switch m {
	case ICEModeFull:
		return iceModeFullStr
	case ICEModeLite:
		return iceModeLiteStr
	default:
		return unknownStr
	}
}

// ICEModeFromSessionDescription reports ICEModeLite if the description
// carries a session level a=ice-lite attribute.
func ICEModeFromSessionDescription(desc *sdp.SessionDescription) ICEMode {
	if desc == nil {
		return ICEModeFull
	}
	if _, ok := desc.Attribute(sdp.AttrKeyICELite); ok {
		return ICEModeLite
	}

	return ICEModeFull
}

// ParseRemoteICEMode parses a raw SDP blob and reports the ICE mode it
// advertises.
func ParseRemoteICEMode(raw []byte) (ICEMode, error) {
	desc := &sdp.SessionDescription{}
	if err := desc.Unmarshal(raw); err != nil {
		return ICEMode(Unknown), err
	}

	return ICEModeFromSessionDescription(desc), nil
}

// MarshalText implements encoding.TextMarshaler.
func (m ICEMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ICEMode) UnmarshalText(b []byte) error {
	*m = newICEMode(string(b))

	return nil
}
