// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connection

import (
	"strconv"

	"github.com/pion/ice/v4"
)

// Candidate extension keys understood by NewCandidate.
const (
	ExtensionGeneration  = "generation"
	ExtensionNetworkCost = "network-cost"
)

// Network costs as advertised in the network-cost candidate extension.
const (
	NetworkCostMin      uint16 = 0
	NetworkCostLow      uint16 = 10
	NetworkCostUnknown  uint16 = 50
	NetworkCostCellular uint16 = 900
	NetworkCostMax      uint16 = 999
)

// Candidate is one endpoint of a pair. It wraps an ice.Candidate with the
// attributes that pion/ice does not model directly.
type Candidate struct {
	ice.Candidate

	// Username and Password are the ICE credentials the candidate was
	// signaled with. A remote candidate without them cannot be pinged.
	Username string
	Password string

	// Generation is the ICE restart generation the candidate belongs to.
	Generation uint32

	// NetworkCost is the cost of the network the candidate was gathered on.
	NetworkCost uint16

	// RelayProtocol is the protocol between a relay candidate and its TURN
	// server. Empty means it is derived from the candidate itself.
	RelayProtocol string
}

// NewCandidate wraps c, reading generation and network cost from its
// candidate extensions when present.
func NewCandidate(c ice.Candidate, username, password string) Candidate {
	cand := Candidate{
		Candidate: c,
		Username:  username,
		Password:  password,
	}
	if c == nil {
		return cand
	}

	for _, ext := range c.Extensions() {
		switch ext.Key {
		case ExtensionGeneration:
			if v, err := strconv.ParseUint(ext.Value, 10, 32); err == nil {
				cand.Generation = uint32(v)
			}
		case ExtensionNetworkCost:
			if v, err := strconv.ParseUint(ext.Value, 10, 16); err == nil {
				cand.NetworkCost = min(uint16(v), NetworkCostMax)
			}
		}
	}

	return cand
}

// NetworkCostForAdapter is the cost advertised for a candidate gathered on an
// adapter of the given type.
func NetworkCostForAdapter(t AdapterType) uint16 {
	switch t {
	case AdapterTypeEthernet, AdapterTypeLoopback:
		return NetworkCostMin
	case AdapterTypeWiFi:
		return NetworkCostLow
	case AdapterTypeCellular:
		return NetworkCostCellular
	default:
		return NetworkCostUnknown
	}
}

// IsRelay reports if the candidate was allocated on a TURN server.
func (c Candidate) IsRelay() bool {
	return c.Candidate != nil && c.Type() == ice.CandidateTypeRelay
}

// IsPeerReflexive reports if the candidate was learned from an incoming check.
func (c Candidate) IsPeerReflexive() bool {
	return c.Candidate != nil && c.Type() == ice.CandidateTypePeerReflexive
}

// IsUDP reports if the candidate transports media over UDP.
func (c Candidate) IsUDP() bool {
	return c.Candidate != nil && c.NetworkType().IsUDP()
}

// RelayProtocolName returns the protocol spoken to the TURN server for relay
// candidates, falling back to the candidate's own transport.
func (c Candidate) RelayProtocolName() string {
	if c.RelayProtocol != "" {
		return c.RelayProtocol
	}
	if c.Candidate == nil {
		return ""
	}
	if relay, ok := c.Candidate.(interface{ RelayProtocol() string }); ok && relay.RelayProtocol() != "" {
		return relay.RelayProtocol()
	}

	return c.NetworkType().NetworkShort()
}

// HasCredentials reports if both username and password are known.
func (c Candidate) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
