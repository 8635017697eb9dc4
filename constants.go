// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import "time"

const (
	// Unknown defines default public constant to use for "enum" like struct
	// comparisons when no value was defined.
	Unknown    = iota
	unknownStr = "unknown"
)

const (
	// A new pair must beat the selected one by at least this much RTT to
	// win a tie on every other rule.
	minImprovement = 10 * time.Millisecond

	// Pairs are pinged at the weak interval until they have sent this many
	// pings.
	minPingsAtWeakPingInterval = 3

	defaultCheckIntervalWeakConnectivity   = 48 * time.Millisecond
	defaultCheckIntervalStrongConnectivity = 480 * time.Millisecond

	defaultReceivingTimeout                     = 2500 * time.Millisecond
	defaultBackupConnectionPingInterval         = 25 * time.Second
	defaultStableWritableConnectionPingInterval = 2500 * time.Millisecond
	defaultReceivingSwitchingDelay              = 1000 * time.Millisecond

	weakOrStabilizingWritableConnectionPingInterval = 900 * time.Millisecond

	minCheckReceivingInterval = 50 * time.Millisecond
)
