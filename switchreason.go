// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

// SwitchReason is the event that caused a selection pass.
type SwitchReason int

const (
	// SwitchReasonRemoteCandidateGenerationChange follows an ICE restart on
	// the remote side.
	SwitchReasonRemoteCandidateGenerationChange SwitchReason = iota + 1

	// SwitchReasonNetworkPreferenceChange follows a change of the preferred
	// adapter type.
	SwitchReasonNetworkPreferenceChange

	// SwitchReasonNewConnectionFromLocalCandidate follows gathering of a new
	// local candidate.
	SwitchReasonNewConnectionFromLocalCandidate

	// SwitchReasonNewConnectionFromRemoteCandidate follows a new signaled
	// remote candidate.
	SwitchReasonNewConnectionFromRemoteCandidate

	// SwitchReasonNewConnectionFromUnknownRemoteAddress follows a check from
	// an address that was never signaled.
	SwitchReasonNewConnectionFromUnknownRemoteAddress

	// SwitchReasonNominationOnControlledSide follows a nomination received
	// from the controlling peer.
	SwitchReasonNominationOnControlledSide

	// SwitchReasonDataReceived follows the first data on a pair.
	SwitchReasonDataReceived

	// SwitchReasonConnectStateChange follows a writable, receiving or
	// connected flip.
	SwitchReasonConnectStateChange

	// SwitchReasonSelectedConnectionDestroyed follows destruction of the
	// selected pair.
	SwitchReasonSelectedConnectionDestroyed

	// SwitchReasonICEControllerRecheck is a deferred recheck requested by the
	// controller itself.
	SwitchReasonICEControllerRecheck
)

const (
	switchReasonRemoteCandidateGenerationChangeStr    = "remote-candidate-generation-change"
	switchReasonNetworkPreferenceChangeStr            = "network-preference-change"
	switchReasonNewConnectionFromLocalCandidateStr    = "new-connection-from-local-candidate"
	switchReasonNewConnectionFromRemoteCandidateStr   = "new-connection-from-remote-candidate"
	switchReasonNewConnectionFromUnknownRemoteAddrStr = "new-connection-from-unknown-remote-address"
	switchReasonNominationOnControlledSideStr         = "nomination-on-controlled-side"
	switchReasonDataReceivedStr                       = "data-received"
	switchReasonConnectStateChangeStr                 = "connect-state-change"
	switchReasonSelectedConnectionDestroyedStr        = "selected-connection-destroyed"
	switchReasonICEControllerRecheckStr               = "ice-controller-recheck"
)

func newSwitchReason(raw string) SwitchReason {
	switch raw {
	case switchReasonRemoteCandidateGenerationChangeStr:
		return SwitchReasonRemoteCandidateGenerationChange
	case switchReasonNetworkPreferenceChangeStr:
		return SwitchReasonNetworkPreferenceChange
	case switchReasonNewConnectionFromLocalCandidateStr:
		return SwitchReasonNewConnectionFromLocalCandidate
	case switchReasonNewConnectionFromRemoteCandidateStr:
		return SwitchReasonNewConnectionFromRemoteCandidate
	case switchReasonNewConnectionFromUnknownRemoteAddrStr:
		return SwitchReasonNewConnectionFromUnknownRemoteAddress
	case switchReasonNominationOnControlledSideStr:
		return SwitchReasonNominationOnControlledSide
	case switchReasonDataReceivedStr:
		return SwitchReasonDataReceived
	case switchReasonConnectStateChangeStr:
		return SwitchReasonConnectStateChange
	case switchReasonSelectedConnectionDestroyedStr:
		return SwitchReasonSelectedConnectionDestroyed
	case switchReasonICEControllerRecheckStr:
		return SwitchReasonICEControllerRecheck
	default:
		return SwitchReason(Unknown)
	}
}

func (r SwitchReason) String() string {
	switch r {
	case SwitchReasonRemoteCandidateGenerationChange:
		return switchReasonRemoteCandidateGenerationChangeStr
	case SwitchReasonNetworkPreferenceChange:
		return switchReasonNetworkPreferenceChangeStr
	case SwitchReasonNewConnectionFromLocalCandidate:
		return switchReasonNewConnectionFromLocalCandidateStr
	case SwitchReasonNewConnectionFromRemoteCandidate:
		return switchReasonNewConnectionFromRemoteCandidateStr
	case SwitchReasonNewConnectionFromUnknownRemoteAddress:
		return switchReasonNewConnectionFromUnknownRemoteAddrStr
	case SwitchReasonNominationOnControlledSide:
		return switchReasonNominationOnControlledSideStr
	case SwitchReasonDataReceived:
		return switchReasonDataReceivedStr
	case SwitchReasonConnectStateChange:
		return switchReasonConnectStateChangeStr
	case SwitchReasonSelectedConnectionDestroyed:
		return switchReasonSelectedConnectionDestroyedStr
	case SwitchReasonICEControllerRecheck:
		return switchReasonICEControllerRecheckStr
	default:
		return unknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r SwitchReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *SwitchReason) UnmarshalText(b []byte) error {
	*r = newSwitchReason(string(b))

	return nil
}
