// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"time"

	"github.com/pion/icecontrol/pkg/connection"
)

// PingResult tells the caller what to ping now and when to ask again.
type PingResult struct {
	// Connection is the pair to ping, or the zero handle.
	Connection connection.Handle

	// RecheckDelay is when SelectConnectionToPing should be called next.
	RecheckDelay time.Duration
}

// SelectConnectionToPing picks the pair to ping if the current ping interval
// has elapsed since lastPingSent.
func (c *Controller) SelectConnectionToPing(lastPingSent time.Time) PingResult {
	now := c.now()

	needMorePings := false
	for _, h := range c.connections {
		if p, ok := c.resolve(h); ok && p.conn.Active() && p.conn.NumPingsSent() < minPingsAtWeakPingInterval {
			needMorePings = true

			break
		}
	}

	interval := c.config.CheckIntervalStrongConnectivityOrDefault()
	if c.weak() || needMorePings {
		interval = c.config.CheckIntervalWeakConnectivityOrDefault()
	}

	result := PingResult{
		RecheckDelay: min(interval, c.config.checkReceivingInterval()),
	}
	if !now.Before(lastPingSent.Add(interval)) {
		result.Connection = c.FindNextPingableConnection()
	}

	return result
}

// FindNextPingableConnection returns the pair that should be pinged next,
// or the zero handle if nothing is pingable.
func (c *Controller) FindNextPingableConnection() connection.Handle {
	now := c.now()

	// Keep the selected pair alive first.
	if selected, ok := c.selectedPair(); ok &&
		selected.conn.Connected() && selected.conn.Writable() && !selected.conn.Failed() &&
		c.writableConnectionPastPingInterval(selected.conn, now) {
		return selected.handle
	}

	// While weak, spread pings across the best pair of every network.
	if c.weak() {
		var best candidatePair
		for _, p := range c.bestWritableConnectionPerNetwork() {
			if p.conn.Failed() || !c.writableConnectionPastPingInterval(p.conn, now) {
				continue
			}
			if best.conn == nil || p.conn.LastPingSent().Before(best.conn.LastPingSent()) {
				best = p
			}
		}
		if best.conn != nil {
			return best.handle
		}
	}

	// Triggered checks: answer the peer on pairs it pinged and we did not.
	var oldestTriggered candidatePair
	for _, h := range c.connections {
		p, ok := c.resolve(h)
		if !ok || !c.isPingable(p, now) {
			continue
		}
		if p.conn.Writable() || !p.conn.LastPingReceived().After(p.conn.LastPingSent()) {
			continue
		}
		if oldestTriggered.conn == nil || p.conn.LastPingReceived().Before(oldestTriggered.conn.LastPingReceived()) {
			oldestTriggered = p
		}
	}
	if oldestTriggered.conn != nil {
		c.log.Debugf("Selecting %s for a triggered check", oldestTriggered.conn)

		return oldestTriggered.handle
	}

	// Round robin over unpinged pairs; start a new round once none of them
	// can be pinged.
	c.checkPartition()
	if !c.anyUnpingedPingable(now) {
		for h := range c.pinged {
			c.unpinged[h] = struct{}{}
		}
		clear(c.pinged)
	}

	var next candidatePair
	for _, h := range c.connections {
		if _, ok := c.unpinged[h]; !ok {
			continue
		}
		p, ok := c.resolve(h)
		if !ok || !c.isPingable(p, now) {
			continue
		}
		if next.conn == nil || c.morePingable(p, next) == p.handle {
			next = p
		}
	}

	return next.handle
}

func (c *Controller) anyUnpingedPingable(now time.Time) bool {
	for _, h := range c.connections {
		if _, ok := c.unpinged[h]; !ok {
			continue
		}
		if p, ok := c.resolve(h); ok && c.isPingable(p, now) {
			return true
		}
	}

	return false
}

// MarkConnectionPinged moves h from the unpinged to the pinged set.
func (c *Controller) MarkConnectionPinged(h connection.Handle) {
	if _, ok := c.unpinged[h]; !ok {
		return
	}
	delete(c.unpinged, h)
	c.pinged[h] = struct{}{}
}

// IsPingable reports if h may be pinged at now.
func (c *Controller) IsPingable(h connection.Handle, now time.Time) bool {
	p, ok := c.resolve(h)
	if !ok {
		return false
	}

	return c.isPingable(p, now)
}

func (c *Controller) isPingable(p candidatePair, now time.Time) bool {
	conn := p.conn
	if !conn.Remote().HasCredentials() {
		return false
	}

	// A failed pair never recovers and a pair that is neither connected
	// nor writable cannot carry a ping.
	if conn.Failed() || (!conn.Connected() && !conn.Writable()) {
		return false
	}

	if conn.TooManyOutstandingPings(c.config.FieldTrials.MaxOutstandingPings) {
		return false
	}

	if c.weak() {
		return true
	}

	// Backup pairs are pinged rarely once ICE completed.
	if c.isBackupConnection(p) {
		return conn.RTTSamples() == 0 ||
			!now.Before(conn.LastPingResponseReceived().Add(c.config.BackupConnectionPingIntervalOrDefault()))
	}

	if !conn.Active() {
		return false
	}

	if !conn.Writable() {
		return true
	}

	return c.writableConnectionPastPingInterval(conn, now)
}

func (c *Controller) isBackupConnection(p candidatePair) bool {
	return c.transport.TransportState() == TransportStateCompleted &&
		p.handle != c.selected &&
		p.conn.Active()
}

func (c *Controller) writableConnectionPastPingInterval(conn *connection.Connection, now time.Time) bool {
	interval := c.calculateActiveWritablePingInterval(conn, now)

	return !now.Before(conn.LastPingSent().Add(interval))
}

// calculateActiveWritablePingInterval is the keepalive interval of a
// writable pair: fast until it has a few pings, slower until it is stable.
func (c *Controller) calculateActiveWritablePingInterval(conn *connection.Connection, now time.Time) time.Duration {
	if conn.NumPingsSent() < minPingsAtWeakPingInterval {
		return c.config.CheckIntervalWeakConnectivityOrDefault()
	}

	stableInterval := c.config.StableWritableConnectionPingIntervalOrDefault()
	weakOrStabilizingInterval := min(stableInterval, weakOrStabilizingWritableConnectionPingInterval)

	if !c.weak() && conn.Stable(now) {
		return stableInterval
	}

	return weakOrStabilizingInterval
}

// MorePingable returns whichever of h1 and h2 should be pinged first.
func (c *Controller) MorePingable(h1, h2 connection.Handle) connection.Handle {
	p1, ok1 := c.resolve(h1)
	p2, ok2 := c.resolve(h2)
	switch {
	case !ok1 && !ok2:
		return connection.Handle{}
	case !ok1:
		return h2
	case !ok2:
		return h1
	}

	return c.morePingable(p1, p2)
}

func (c *Controller) morePingable(p1, p2 candidatePair) connection.Handle {
	if c.config.PrioritizeMostLikelyCandidatePairs {
		if winner := mostLikelyToWork(p1, p2); !winner.IsZero() {
			return winner
		}
	}

	if winner := leastRecentlyPinged(p1, p2); !winner.IsZero() {
		return winner
	}

	// Creation order makes the choice deterministic.
	if p1.conn.Seq() <= p2.conn.Seq() {
		return p1.handle
	}

	return p2.handle
}

// mostLikelyToWork prefers relay/relay pairs, and among those pairs whose
// local relay is reached over UDP.
func mostLikelyToWork(p1, p2 candidatePair) connection.Handle {
	relay1 := p1.conn.Local().IsRelay() && p1.conn.Remote().IsRelay()
	relay2 := p2.conn.Local().IsRelay() && p2.conn.Remote().IsRelay()
	if relay1 && !relay2 {
		return p1.handle
	}
	if relay2 && !relay1 {
		return p2.handle
	}
	if relay1 && relay2 {
		udp1 := p1.conn.Local().RelayProtocolName() == "udp"
		udp2 := p2.conn.Local().RelayProtocolName() == "udp"
		if udp1 && !udp2 {
			return p1.handle
		}
		if udp2 && !udp1 {
			return p2.handle
		}
	}

	return connection.Handle{}
}

func leastRecentlyPinged(p1, p2 candidatePair) connection.Handle {
	if p1.conn.LastPingSent().Before(p2.conn.LastPingSent()) {
		return p1.handle
	}
	if p2.conn.LastPingSent().Before(p1.conn.LastPingSent()) {
		return p2.handle
	}

	return connection.Handle{}
}

// bestConnectionByNetwork returns, in first-seen order, the best pair of
// every network: the selected pair on its own network, otherwise the
// first pair in sort order.
func (c *Controller) bestConnectionByNetwork() ([]*connection.Network, map[*connection.Network]candidatePair) {
	var order []*connection.Network
	best := map[*connection.Network]candidatePair{}

	if selected, ok := c.selectedPair(); ok {
		order = append(order, selected.conn.Network())
		best[selected.conn.Network()] = selected
	}

	for _, h := range c.connections {
		p, ok := c.resolve(h)
		if !ok {
			continue
		}
		network := p.conn.Network()
		if _, seen := best[network]; seen {
			continue
		}
		order = append(order, network)
		best[network] = p
	}

	return order, best
}

func (c *Controller) bestWritableConnectionPerNetwork() []candidatePair {
	order, best := c.bestConnectionByNetwork()

	var out []candidatePair
	for _, network := range order {
		p := best[network]
		if p.conn.Writable() && p.conn.Connected() {
			out = append(out, p)
		}
	}

	return out
}
