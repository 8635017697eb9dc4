// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package connection models ICE candidate pairs and the arena that owns them.
package connection

import (
	"errors"
	"fmt"
	"time"

	"github.com/pion/ice/v4"
)

// DefaultRTT is assumed until the first ping response arrives.
const DefaultRTT = 3000 * time.Millisecond

const (
	// rttRatio weights the previous estimate against a new sample.
	rttRatio = 3

	// minRTTSamplesForStable is the sample count after which a pair may be
	// considered stable.
	minRTTSamplesForStable = rttRatio + 1
)

var (
	// ErrNoLocalCandidate indicates a pair was created without a local candidate.
	ErrNoLocalCandidate = errors.New("connection: local candidate is required")

	// ErrNoRemoteCandidate indicates a pair was created without a remote candidate.
	ErrNoRemoteCandidate = errors.New("connection: remote candidate is required")
)

// Config is used to create a Connection.
type Config struct {
	Local   Candidate
	Remote  Candidate
	Network *Network

	// Controlling is the local ICE role at the time the pair is formed. It
	// decides which side's priority is G in the pair priority formula.
	Controlling bool
}

// Connection is a local/remote candidate pair together with its observable
// connectivity state. It is owned by a Table and is not safe for concurrent
// use.
type Connection struct {
	seq uint64

	local       Candidate
	remote      Candidate
	network     *Network
	controlling bool

	writeState              WriteState
	receiving               bool
	receivingUnchangedSince time.Time
	connected               bool
	state                   ice.CandidatePairState
	remoteNomination        uint32

	rtt        time.Duration
	rttSamples int

	lastPingSent             time.Time
	lastPingReceived         time.Time
	lastPingResponseReceived time.Time
	lastDataReceived         time.Time
	numPingsSent             int

	// pending holds send times of pings still waiting for a response.
	pending []time.Time
}

// New creates a Connection in its initial state.
func New(config *Config) (*Connection, error) {
	if config.Local.Candidate == nil {
		return nil, ErrNoLocalCandidate
	}
	if config.Remote.Candidate == nil {
		return nil, ErrNoRemoteCandidate
	}

	return &Connection{
		local:       config.Local,
		remote:      config.Remote,
		network:     config.Network,
		controlling: config.Controlling,
		writeState:  WriteStateInit,
		connected:   true,
		state:       ice.CandidatePairStateWaiting,
		rtt:         DefaultRTT,
	}, nil
}

// Seq is the creation sequence assigned by the owning Table.
func (c *Connection) Seq() uint64 { return c.seq }

// Local returns the local candidate.
func (c *Connection) Local() Candidate { return c.local }

// Remote returns the remote candidate.
func (c *Connection) Remote() Candidate { return c.remote }

// Network returns the network the local candidate was gathered on.
func (c *Connection) Network() *Network { return c.network }

// NetworkCost is the combined cost of both candidates.
func (c *Connection) NetworkCost() uint32 {
	return uint32(c.local.NetworkCost) + uint32(c.remote.NetworkCost)
}

// Generation is the combined ICE generation of both candidates.
func (c *Connection) Generation() uint64 {
	return uint64(c.local.Generation) + uint64(c.remote.Generation)
}

// Priority computes the pair priority defined in RFC 8445 section 6.1.2.3.
func (c *Connection) Priority() uint64 {
	var g, d uint64
	if c.controlling {
		g, d = uint64(c.local.Priority()), uint64(c.remote.Priority())
	} else {
		g, d = uint64(c.remote.Priority()), uint64(c.local.Priority())
	}

	var tieBreak uint64
	if g > d {
		tieBreak = 1
	}

	return (1<<32)*min(g, d) + 2*max(g, d) + tieBreak
}

// SetControlling updates the role used for priority computation.
func (c *Connection) SetControlling(controlling bool) { c.controlling = controlling }

// WriteState returns the current write state.
func (c *Connection) WriteState() WriteState { return c.writeState }

// SetWriteState updates the write state.
func (c *Connection) SetWriteState(s WriteState) { c.writeState = s }

// Writable reports if pings on this pair are being answered.
func (c *Connection) Writable() bool { return c.writeState == WriteStateWritable }

// Active reports if the pair has not timed out.
func (c *Connection) Active() bool { return c.writeState != WriteStateTimeout }

// Prune retires a pair that a better one on the same network dominates.
// Outstanding pings are dropped and the pair times out, so it is only
// checked again while the transport is weak.
func (c *Connection) Prune() {
	c.writeState = WriteStateTimeout
	c.pending = c.pending[:0]
}

// Receiving reports if traffic arrived recently.
func (c *Connection) Receiving() bool { return c.receiving }

// ReceivingUnchangedSince is when Receiving last flipped. The zero time
// means it never changed.
func (c *Connection) ReceivingUnchangedSince() time.Time { return c.receivingUnchangedSince }

// SetReceiving updates the receiving flag, recording the time of change.
func (c *Connection) SetReceiving(now time.Time, receiving bool) {
	if c.receiving == receiving {
		return
	}
	c.receiving = receiving
	c.receivingUnchangedSince = now
}

// Connected reports if the underlying socket is usable.
func (c *Connection) Connected() bool { return c.connected }

// SetConnected updates the connected flag.
func (c *Connection) SetConnected(connected bool) { c.connected = connected }

// State returns the ICE check state of the pair.
func (c *Connection) State() ice.CandidatePairState { return c.state }

// SetState updates the ICE check state of the pair.
func (c *Connection) SetState(s ice.CandidatePairState) { c.state = s }

// Failed reports if connectivity checks on this pair have failed.
func (c *Connection) Failed() bool { return c.state == ice.CandidatePairStateFailed }

// Weak reports if the pair is not fully usable right now.
func (c *Connection) Weak() bool {
	return !(c.Writable() && c.receiving && c.connected)
}

// RemoteNomination is the highest nomination value received from the
// controlling peer. Zero means never nominated.
func (c *Connection) RemoteNomination() uint32 { return c.remoteNomination }

// SetRemoteNomination records a nomination received from the peer.
func (c *Connection) SetRemoteNomination(n uint32) {
	if n > c.remoteNomination {
		c.remoteNomination = n
	}
}

// Nominated reports if the remote side nominated this pair.
func (c *Connection) Nominated() bool { return c.remoteNomination > 0 }

// RTT is the smoothed round trip time estimate.
func (c *Connection) RTT() time.Duration { return c.rtt }

// RTTSamples is the number of ping responses folded into RTT.
func (c *Connection) RTTSamples() int { return c.rttSamples }

// LastPingSent returns when the last ping was sent.
func (c *Connection) LastPingSent() time.Time { return c.lastPingSent }

// LastPingReceived returns when the last ping from the peer arrived.
func (c *Connection) LastPingReceived() time.Time { return c.lastPingReceived }

// LastPingResponseReceived returns when the last ping response arrived.
func (c *Connection) LastPingResponseReceived() time.Time { return c.lastPingResponseReceived }

// LastDataReceived returns when the last non-STUN packet arrived.
func (c *Connection) LastDataReceived() time.Time { return c.lastDataReceived }

// NumPingsSent is the number of pings sent over the lifetime of the pair.
func (c *Connection) NumPingsSent() int { return c.numPingsSent }

// OutstandingPings is the number of pings still waiting for a response.
func (c *Connection) OutstandingPings() int { return len(c.pending) }

// OnPingSent records an outgoing connectivity check.
func (c *Connection) OnPingSent(now time.Time) {
	c.lastPingSent = now
	c.numPingsSent++
	c.pending = append(c.pending, now)
	if c.state == ice.CandidatePairStateWaiting {
		c.state = ice.CandidatePairStateInProgress
	}
}

// OnPingResponse records a response to an outgoing check and folds the
// measured round trip into the estimate.
func (c *Connection) OnPingResponse(now time.Time, rtt time.Duration) {
	if c.rttSamples == 0 {
		c.rtt = rtt
	} else {
		c.rtt = (rttRatio*c.rtt + rtt) / (rttRatio + 1)
	}
	c.rttSamples++
	c.lastPingResponseReceived = now
	c.pending = c.pending[:0]
	c.state = ice.CandidatePairStateSucceeded
}

// OnPingReceived records an incoming connectivity check from the peer.
func (c *Connection) OnPingReceived(now time.Time) { c.lastPingReceived = now }

// OnDataReceived records an incoming non-STUN packet.
func (c *Connection) OnDataReceived(now time.Time) { c.lastDataReceived = now }

// TooManyOutstandingPings reports if at least limit pings are unanswered.
// A nil limit disables the check.
func (c *Connection) TooManyOutstandingPings(limit *int) bool {
	return limit != nil && len(c.pending) >= *limit
}

// Stable reports if the RTT estimate has converged and no response is
// overdue.
func (c *Connection) Stable(now time.Time) bool {
	return c.rttSamples > minRTTSamplesForStable && !c.missingResponses(now)
}

func (c *Connection) missingResponses(now time.Time) bool {
	if len(c.pending) == 0 {
		return false
	}

	return now.Sub(c.pending[0]) > 2*c.rtt
}

func (c *Connection) String() string {
	flag := func(set bool, r byte) byte {
		if set {
			return r
		}

		return '-'
	}

	return fmt.Sprintf("Conn[%d:%s:%d->%s:%d|%c%c%c|%s|%d|%s]",
		c.seq,
		c.local.Address(), c.local.Port(),
		c.remote.Address(), c.remote.Port(),
		flag(c.connected, 'C'), flag(c.receiving, 'R'), flag(c.Writable(), 'W'),
		c.state, c.Priority(), c.rtt,
	)
}
