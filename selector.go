// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"sort"
	"strings"
	"time"

	"github.com/pion/icecontrol/pkg/connection"
)

// RecheckEvent asks the caller to run another selection pass after Delay.
type RecheckEvent struct {
	Reason SwitchReason
	Delay  time.Duration
}

// SwitchResult is the outcome of a selection pass.
type SwitchResult struct {
	// Connection is the pair to switch to, or the zero handle to keep the
	// current selection.
	Connection connection.Handle

	// RecheckEvent, when set, schedules another pass.
	RecheckEvent *RecheckEvent
}

// ShouldSwitchConnection decides whether h should replace the selected pair.
func (c *Controller) ShouldSwitchConnection(reason SwitchReason, h connection.Handle) SwitchResult {
	candidate, ok := c.resolve(h)
	if !ok || !c.readyToSend(candidate.conn) || h == c.selected {
		return SwitchResult{}
	}

	selected, ok := c.selectedPair()
	if !ok {
		return c.handleInitialSelectDampening(reason, candidate)
	}
	if selected.conn.Failed() {
		return SwitchResult{Connection: h}
	}

	// Do not switch to a worse network unless it is receiving.
	if c.compareCandidatePairNetworks(candidate, selected) == OrderingBBetter && !candidate.conn.Receiving() {
		return SwitchResult{}
	}

	delay := c.config.ReceivingSwitchingDelayOrDefault()
	threshold := &receivingThreshold{at: c.now().Add(-delay)}
	cmp := c.compareConnections(selected, candidate, threshold)

	var recheck *RecheckEvent
	if threshold.missed && delay > 0 {
		recheck = &RecheckEvent{Reason: reason, Delay: delay}
	}

	switch cmp {
	case OrderingBBetter:
		return SwitchResult{Connection: h}
	case OrderingABetter:
		return SwitchResult{RecheckEvent: recheck}
	default:
	}

	if candidate.conn.RTT() <= selected.conn.RTT()-minImprovement {
		return SwitchResult{Connection: h}
	}

	return SwitchResult{RecheckEvent: recheck}
}

// SortAndSwitchConnection sorts every pair best first and considers the top
// one for selection.
func (c *Controller) SortAndSwitchConnection(reason SwitchReason) SwitchResult {
	c.purgeStale()

	pairs := make([]candidatePair, 0, len(c.connections))
	for _, h := range c.connections {
		if p, ok := c.resolve(h); ok {
			pairs = append(pairs, p)
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		// Failed pairs sort last so they never shadow a usable one.
		if iFailed, jFailed := pairs[i].conn.Failed(), pairs[j].conn.Failed(); iFailed != jFailed {
			return jFailed
		}
		if cmp := c.compareConnections(pairs[i], pairs[j], nil); cmp != OrderingEqual {
			return cmp == OrderingABetter
		}

		return pairs[i].conn.RTT() < pairs[j].conn.RTT()
	})

	for i, p := range pairs {
		c.connections[i] = p.handle
	}

	c.log.Tracef("Sorted %d connections for %s: %s", len(pairs), reason, describePairs(pairs))

	if len(pairs) == 0 {
		return SwitchResult{}
	}

	return c.ShouldSwitchConnection(reason, pairs[0].handle)
}

// readyToSend reports if data may be sent on conn. A failed pair is never
// ready, whatever its write state.
func (c *Controller) readyToSend(conn *connection.Connection) bool {
	if conn.Failed() {
		return false
	}

	return conn.Writable() ||
		conn.WriteState() == connection.WriteStateUnreliable ||
		c.presumedWritable(conn)
}

// handleInitialSelectDampening delays the very first selection so that a
// better pair becoming writable shortly after can still win.
func (c *Controller) handleInitialSelectDampening(reason SwitchReason, candidate candidatePair) SwitchResult {
	trials := c.config.FieldTrials
	if trials.InitialSelectDampening == nil && trials.InitialSelectDampeningPingReceived == nil {
		return SwitchResult{Connection: candidate.handle}
	}

	now := c.now()

	var maxDelay time.Duration
	if !candidate.conn.LastPingReceived().IsZero() && trials.InitialSelectDampeningPingReceived != nil {
		maxDelay = *trials.InitialSelectDampeningPingReceived
	} else if trials.InitialSelectDampening != nil {
		maxDelay = *trials.InitialSelectDampening
	}

	start := c.initialSelectTimestamp
	if start.IsZero() {
		start = now
	}

	if !now.Before(start.Add(maxDelay)) {
		c.log.Infof("Selecting %s for %s after dampening of %v", candidate.conn, reason, now.Sub(start))
		c.initialSelectTimestamp = time.Time{}

		return SwitchResult{Connection: candidate.handle}
	}

	if c.initialSelectTimestamp.IsZero() {
		c.initialSelectTimestamp = now
	}

	minDelay := maxDelay
	if trials.InitialSelectDampening != nil {
		minDelay = min(minDelay, *trials.InitialSelectDampening)
	}
	if trials.InitialSelectDampeningPingReceived != nil {
		minDelay = min(minDelay, *trials.InitialSelectDampeningPingReceived)
	}

	c.log.Debugf("Delaying initial selection of %s for %v", candidate.conn, minDelay)

	return SwitchResult{
		RecheckEvent: &RecheckEvent{Reason: SwitchReasonICEControllerRecheck, Delay: minDelay},
	}
}

func describePairs(pairs []candidatePair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.conn.String())
	}

	return b.String()
}
