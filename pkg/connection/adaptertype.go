// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connection

// AdapterType is the kind of network interface a connection is bound to.
type AdapterType int

const (
	// AdapterTypeUnknown is the enum's zero-value.
	AdapterTypeUnknown AdapterType = iota

	// AdapterTypeEthernet is a wired interface.
	AdapterTypeEthernet

	// AdapterTypeWiFi is a wireless LAN interface.
	AdapterTypeWiFi

	// AdapterTypeCellular is a mobile data interface.
	AdapterTypeCellular

	// AdapterTypeVPN is a virtual interface tunneling over another adapter.
	AdapterTypeVPN

	// AdapterTypeLoopback is the local loopback interface.
	AdapterTypeLoopback

	// AdapterTypeAny is a wildcard interface used by sockets bound to
	// the unspecified address.
	AdapterTypeAny
)

// This is done this way because of a linter.
const (
	adapterTypeEthernetStr = "ethernet"
	adapterTypeWiFiStr     = "wifi"
	adapterTypeCellularStr = "cellular"
	adapterTypeVPNStr      = "vpn"
	adapterTypeLoopbackStr = "loopback"
	adapterTypeAnyStr      = "any"
	adapterTypeUnknownStr  = "unknown"
)

// NewAdapterType takes a string and converts it into an AdapterType.
func NewAdapterType(raw string) AdapterType {
	switch raw {
	case adapterTypeEthernetStr:
		return AdapterTypeEthernet
	case adapterTypeWiFiStr:
		return AdapterTypeWiFi
	case adapterTypeCellularStr:
		return AdapterTypeCellular
	case adapterTypeVPNStr:
		return AdapterTypeVPN
	case adapterTypeLoopbackStr:
		return AdapterTypeLoopback
	case adapterTypeAnyStr:
		return AdapterTypeAny
	default:
		return AdapterTypeUnknown
	}
}

func (t AdapterType) String() string {
	switch t {
	case AdapterTypeEthernet:
		return adapterTypeEthernetStr
	case AdapterTypeWiFi:
		return adapterTypeWiFiStr
	case AdapterTypeCellular:
		return adapterTypeCellularStr
	case AdapterTypeVPN:
		return adapterTypeVPNStr
	case AdapterTypeLoopback:
		return adapterTypeLoopbackStr
	case AdapterTypeAny:
		return adapterTypeAnyStr
	default:
		return adapterTypeUnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t AdapterType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AdapterType) UnmarshalText(b []byte) error {
	*t = NewAdapterType(string(b))

	return nil
}
