// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"fmt"
	"time"

	"github.com/pion/icecontrol/pkg/connection"
)

// Config holds the tunables of a Controller. Nil fields fall back to the
// defaults, so the zero value is a valid configuration.
type Config struct {
	ReceivingTimeout                     *time.Duration
	BackupConnectionPingInterval         *time.Duration
	StableWritableConnectionPingInterval *time.Duration
	ReceivingSwitchingDelay              *time.Duration
	CheckIntervalWeakConnectivity        *time.Duration
	CheckIntervalStrongConnectivity      *time.Duration

	// CheckMinInterval is a floor applied to both check intervals.
	CheckMinInterval *time.Duration

	// PrioritizeMostLikelyCandidatePairs pings relay/relay pairs first when
	// choosing among unpinged pairs.
	PrioritizeMostLikelyCandidatePairs bool

	// PresumeWritableWhenFullyRelayed treats relay/relay pairs that have not
	// been checked yet as writable.
	PresumeWritableWhenFullyRelayed bool

	// NetworkPreference, when set, ranks pairs on that adapter type first.
	NetworkPreference connection.AdapterType

	VPNPreference VPNPreference

	FieldTrials FieldTrials
}

// SetReceivingTimeout sets how long a pair may go without traffic before
// it stops receiving.
func (c *Config) SetReceivingTimeout(t time.Duration) {
	c.ReceivingTimeout = &t
}

// SetBackupConnectionPingInterval sets the ping interval for backup pairs
// once ICE has completed.
func (c *Config) SetBackupConnectionPingInterval(t time.Duration) {
	c.BackupConnectionPingInterval = &t
}

// SetStableWritableConnectionPingInterval sets the keepalive interval of
// stable writable pairs.
func (c *Config) SetStableWritableConnectionPingInterval(t time.Duration) {
	c.StableWritableConnectionPingInterval = &t
}

// SetReceivingSwitchingDelay sets how long a receiving flip must hold before
// it may cause a switch away from the selected pair.
func (c *Config) SetReceivingSwitchingDelay(t time.Duration) {
	c.ReceivingSwitchingDelay = &t
}

// SetCheckIntervals sets the ping intervals used while weak and while strong.
func (c *Config) SetCheckIntervals(weak, strong time.Duration) {
	c.CheckIntervalWeakConnectivity = &weak
	c.CheckIntervalStrongConnectivity = &strong
}

// SetCheckMinInterval sets the lower bound applied to both check intervals.
func (c *Config) SetCheckMinInterval(t time.Duration) {
	c.CheckMinInterval = &t
}

func durationOrDefault(d *time.Duration, def time.Duration) time.Duration {
	if d == nil {
		return def
	}

	return *d
}

// ReceivingTimeoutOrDefault returns ReceivingTimeout or its default.
func (c Config) ReceivingTimeoutOrDefault() time.Duration {
	return durationOrDefault(c.ReceivingTimeout, defaultReceivingTimeout)
}

// BackupConnectionPingIntervalOrDefault returns BackupConnectionPingInterval
// or its default.
func (c Config) BackupConnectionPingIntervalOrDefault() time.Duration {
	return durationOrDefault(c.BackupConnectionPingInterval, defaultBackupConnectionPingInterval)
}

// StableWritableConnectionPingIntervalOrDefault returns
// StableWritableConnectionPingInterval or its default.
func (c Config) StableWritableConnectionPingIntervalOrDefault() time.Duration {
	return durationOrDefault(c.StableWritableConnectionPingInterval, defaultStableWritableConnectionPingInterval)
}

// ReceivingSwitchingDelayOrDefault returns ReceivingSwitchingDelay or its
// default.
func (c Config) ReceivingSwitchingDelayOrDefault() time.Duration {
	return durationOrDefault(c.ReceivingSwitchingDelay, defaultReceivingSwitchingDelay)
}

// CheckIntervalWeakConnectivityOrDefault returns the weak ping interval,
// raised to CheckMinInterval when that is larger.
func (c Config) CheckIntervalWeakConnectivityOrDefault() time.Duration {
	return c.applyMinInterval(durationOrDefault(c.CheckIntervalWeakConnectivity, defaultCheckIntervalWeakConnectivity))
}

// CheckIntervalStrongConnectivityOrDefault returns the strong ping interval,
// raised to CheckMinInterval when that is larger.
func (c Config) CheckIntervalStrongConnectivityOrDefault() time.Duration {
	return c.applyMinInterval(durationOrDefault(c.CheckIntervalStrongConnectivity, defaultCheckIntervalStrongConnectivity))
}

func (c Config) applyMinInterval(d time.Duration) time.Duration {
	if c.CheckMinInterval == nil {
		return d
	}

	return max(d, *c.CheckMinInterval)
}

// checkReceivingInterval is how often receiving state needs re-evaluation.
func (c Config) checkReceivingInterval() time.Duration {
	return max(minCheckReceivingInterval, c.ReceivingTimeoutOrDefault()/10)
}

// Validate checks the configuration for values the controller cannot use.
func (c Config) Validate() error {
	durations := []struct {
		name  string
		value *time.Duration
	}{
		{"receiving timeout", c.ReceivingTimeout},
		{"backup connection ping interval", c.BackupConnectionPingInterval},
		{"stable writable connection ping interval", c.StableWritableConnectionPingInterval},
		{"receiving switching delay", c.ReceivingSwitchingDelay},
		{"weak check interval", c.CheckIntervalWeakConnectivity},
		{"strong check interval", c.CheckIntervalStrongConnectivity},
		{"min check interval", c.CheckMinInterval},
		{"initial select dampening", c.FieldTrials.InitialSelectDampening},
		{"initial select dampening ping received", c.FieldTrials.InitialSelectDampeningPingReceived},
	}
	for _, d := range durations {
		if d.value != nil && *d.value < 0 {
			return fmt.Errorf("%w: %s is %v", ErrNegativeInterval, d.name, *d.value)
		}
	}

	if limit := c.FieldTrials.MaxOutstandingPings; limit != nil && *limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxOutstandingPings, *limit)
	}

	return nil
}
