// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connection

import (
	"fmt"
	"net/netip"
)

// Network describes a local network interface. Connections sharing the same
// *Network are considered to be on the same network when grouping for
// pruning and weak-mode pings.
type Network struct {
	Name string
	Type AdapterType

	// UnderlyingTypeForVPN is the adapter a VPN tunnels over. Only
	// meaningful when Type is AdapterTypeVPN.
	UnderlyingTypeForVPN AdapterType

	// BestIP is the preferred address of the interface. An invalid or
	// unspecified address marks an "any address" network.
	BestIP netip.Addr
}

// IsVPN reports if the network is a VPN adapter.
func (n *Network) IsVPN() bool {
	return n != nil && n.Type == AdapterTypeVPN
}

// IsAnyAddress reports if the network is bound to the wildcard address and
// so cannot be compared against its own peers.
func (n *Network) IsAnyAddress() bool {
	return n == nil || !n.BestIP.IsValid() || n.BestIP.IsUnspecified()
}

// AdapterType returns the adapter type, or AdapterTypeUnknown for a nil network.
func (n *Network) AdapterType() AdapterType {
	if n == nil {
		return AdapterTypeUnknown
	}

	return n.Type
}

// UnderlyingType returns the adapter type used for preference decisions.
// For a VPN this is the adapter it tunnels over.
func (n *Network) UnderlyingType() AdapterType {
	if n == nil {
		return AdapterTypeUnknown
	}
	if n.Type == AdapterTypeVPN && n.UnderlyingTypeForVPN != AdapterTypeUnknown {
		return n.UnderlyingTypeForVPN
	}

	return n.Type
}

func (n *Network) String() string {
	if n == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%s(%s %s)", n.Name, n.Type, n.BestIP)
}
