// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

// Role describes the role the local agent plays in selecting the
// preferred candidate pair.
type Role int

const (
	// RoleControlling indicates the agent that selects the final candidate
	// pair and nominates it to the peer.
	RoleControlling Role = iota + 1

	// RoleControlled indicates the agent that waits for the controlling
	// agent to nominate a pair.
	RoleControlled
)

// This is done this way because of a linter.
const (
	roleControllingStr = "controlling"
	roleControlledStr  = "controlled"
)

func newRole(raw string) Role {
	switch raw {
	case roleControllingStr:
		return RoleControlling
	case roleControlledStr:
		return RoleControlled
	default:
		return Role(Unknown)
	}
}

func (r Role) String() string {
	switch r {
	case RoleControlling:
		return roleControllingStr
	case RoleControlled:
		return roleControlledStr
	default:
		return unknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	*r = newRole(string(b))

	return nil
}
