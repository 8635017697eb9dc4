// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"strings"

	"github.com/pion/ice/v4"
)

// TransportState is the aggregate state of the ICE transport that owns the
// controller. Only TransportStateCompleted changes controller behavior: it
// enables backup pinging of non-selected pairs.
type TransportState int

const (
	// TransportStateNew indicates no checks have started.
	TransportStateNew TransportState = iota + 1

	// TransportStateChecking indicates checks are running and no pair
	// works yet.
	TransportStateChecking

	// TransportStateConnected indicates a usable pair exists while checks
	// continue.
	TransportStateConnected

	// TransportStateCompleted indicates checking finished with a working pair.
	TransportStateCompleted

	// TransportStateFailed indicates every pair failed.
	TransportStateFailed

	// TransportStateDisconnected indicates the selected pair stopped
	// responding.
	TransportStateDisconnected

	// TransportStateClosed indicates the transport shut down.
	TransportStateClosed
)

// transportStates maps each state to the pion/ice agent state it mirrors.
// The textual form is the lower case name of the agent state.
var transportStates = [...]struct {
	state    TransportState
	iceState ice.ConnectionState
}{
	{TransportStateNew, ice.ConnectionStateNew},
	{TransportStateChecking, ice.ConnectionStateChecking},
	{TransportStateConnected, ice.ConnectionStateConnected},
	{TransportStateCompleted, ice.ConnectionStateCompleted},
	{TransportStateFailed, ice.ConnectionStateFailed},
	{TransportStateDisconnected, ice.ConnectionStateDisconnected},
	{TransportStateClosed, ice.ConnectionStateClosed},
}

func newTransportState(raw string) TransportState {
	for _, entry := range transportStates {
		if strings.ToLower(entry.iceState.String()) == raw {
			return entry.state
		}
	}

	return TransportState(Unknown)
}

func (s TransportState) String() string {
	for _, entry := range transportStates {
		if entry.state == s {
			return strings.ToLower(entry.iceState.String())
		}
	}

	return unknownStr
}

// NewTransportStateFromICE converts the state reported by a pion/ice Agent.
func NewTransportStateFromICE(state ice.ConnectionState) TransportState {
	for _, entry := range transportStates {
		if entry.iceState == state {
			return entry.state
		}
	}

	return TransportState(Unknown)
}

// MarshalText implements encoding.TextMarshaler.
func (s TransportState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TransportState) UnmarshalText(b []byte) error {
	*s = newTransportState(string(b))

	return nil
}
