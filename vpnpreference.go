// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

// VPNPreference controls how pairs on VPN adapters rank against the rest.
type VPNPreference int

const (
	// VPNPreferenceDefault treats VPN and non-VPN networks alike.
	VPNPreferenceDefault VPNPreference = iota + 1

	// VPNPreferenceOnlyUseVPN ranks VPN pairs above all others.
	VPNPreferenceOnlyUseVPN

	// VPNPreferenceNeverUseVPN ranks non-VPN pairs above all others.
	VPNPreferenceNeverUseVPN

	// VPNPreferencePreferVPN ranks VPN pairs above others.
	VPNPreferencePreferVPN

	// VPNPreferenceAvoidVPN ranks non-VPN pairs above others.
	VPNPreferenceAvoidVPN
)

const (
	vpnPreferenceDefaultStr     = "default"
	vpnPreferenceOnlyUseVPNStr  = "only-use-vpn"
	vpnPreferenceNeverUseVPNStr = "never-use-vpn"
	vpnPreferencePreferVPNStr   = "prefer-vpn"
	vpnPreferenceAvoidVPNStr    = "avoid-vpn"
)

func newVPNPreference(raw string) VPNPreference {
	switch raw {
	case vpnPreferenceDefaultStr:
		return VPNPreferenceDefault
	case vpnPreferenceOnlyUseVPNStr:
		return VPNPreferenceOnlyUseVPN
	case vpnPreferenceNeverUseVPNStr:
		return VPNPreferenceNeverUseVPN
	case vpnPreferencePreferVPNStr:
		return VPNPreferencePreferVPN
	case vpnPreferenceAvoidVPNStr:
		return VPNPreferenceAvoidVPN
	default:
		return VPNPreference(Unknown)
	}
}

func (p VPNPreference) String() string {
	switch p {
	case VPNPreferenceDefault:
		return vpnPreferenceDefaultStr
	case VPNPreferenceOnlyUseVPN:
		return vpnPreferenceOnlyUseVPNStr
	case VPNPreferenceNeverUseVPN:
		return vpnPreferenceNeverUseVPNStr
	case VPNPreferencePreferVPN:
		return vpnPreferencePreferVPNStr
	case VPNPreferenceAvoidVPN:
		return vpnPreferenceAvoidVPNStr
	default:
		return unknownStr
	}
}

// prefersVPN reports whether VPN pairs rank first, and whether any VPN
// ordering applies at all.
func (p VPNPreference) prefersVPN() (preferVPN, applies bool) {
	switch p {
	case VPNPreferenceOnlyUseVPN, VPNPreferencePreferVPN:
		return true, true
	case VPNPreferenceNeverUseVPN, VPNPreferenceAvoidVPN:
		return false, true
	default:
		return false, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p VPNPreference) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *VPNPreference) UnmarshalText(b []byte) error {
	*p = newVPNPreference(string(b))

	return nil
}
