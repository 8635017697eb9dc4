// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"time"

	"github.com/pion/icecontrol/pkg/connection"
)

// Ordering is the outcome of comparing two candidate pairs.
type Ordering int

const (
	// OrderingBBetter means the second pair is preferred.
	OrderingBBetter Ordering = -1

	// OrderingEqual means no rule could tell the pairs apart.
	OrderingEqual Ordering = 0

	// OrderingABetter means the first pair is preferred.
	OrderingABetter Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case OrderingABetter:
		return "a-better"
	case OrderingBBetter:
		return "b-better"
	case OrderingEqual:
		return "equal"
	default:
		return unknownStr
	}
}

func orderBy(aWins, bWins bool) Ordering {
	switch {
	case aWins && !bWins:
		return OrderingABetter
	case bWins && !aWins:
		return OrderingBBetter
	default:
		return OrderingEqual
	}
}

func orderByHigher[T ~int | ~int64 | ~uint32 | ~uint64](a, b T) Ordering {
	return orderBy(a > b, b > a)
}

// receivingThreshold asks the state rule to only let a receiving flip
// decide if both pairs have held their receiving state since at.
type receivingThreshold struct {
	at     time.Time
	missed bool
}

// compareRule returns the preference between a and b for one criterion.
// Rules must not modify the pairs.
type compareRule func(c *Controller, a, b candidatePair, threshold *receivingThreshold) Ordering

var (
	networkRules = []compareRule{
		compareNetworkPreference,
		compareVPNPreference,
		compareNetworkCost,
	}

	candidateRules = []compareRule{
		compareNetworkPreference,
		compareVPNPreference,
		compareNetworkCost,
		comparePriority,
		compareGeneration,
		comparePruned,
	}

	connectionRules = []compareRule{
		compareNetworkPreference,
		compareVPNPreference,
		compareNetworkCost,
		compareConnectionState,
		compareNominationAndRecency,
		comparePriority,
		compareGeneration,
		comparePruned,
	}
)

func (c *Controller) applyRules(rules []compareRule, a, b candidatePair, threshold *receivingThreshold) Ordering {
	for _, rule := range rules {
		if o := rule(c, a, b, threshold); o != OrderingEqual {
			return o
		}
	}

	return OrderingEqual
}

// CompareConnections orders two pairs by every rule. Handles that do not
// resolve compare equal.
func (c *Controller) CompareConnections(a, b connection.Handle) Ordering {
	pa, okA := c.resolve(a)
	pb, okB := c.resolve(b)
	if !okA || !okB {
		return OrderingEqual
	}

	return c.compareConnections(pa, pb, nil)
}

// CompareConnectionCandidates orders two pairs by network and candidate
// rules only, ignoring their current connectivity state.
func (c *Controller) CompareConnectionCandidates(a, b connection.Handle) Ordering {
	pa, okA := c.resolve(a)
	pb, okB := c.resolve(b)
	if !okA || !okB {
		return OrderingEqual
	}

	return c.compareConnectionCandidates(pa, pb)
}

// CompareCandidatePairNetworks orders two pairs by the networks they use.
func (c *Controller) CompareCandidatePairNetworks(a, b connection.Handle) Ordering {
	pa, okA := c.resolve(a)
	pb, okB := c.resolve(b)
	if !okA || !okB {
		return OrderingEqual
	}

	return c.compareCandidatePairNetworks(pa, pb)
}

func (c *Controller) compareConnections(a, b candidatePair, threshold *receivingThreshold) Ordering {
	return c.applyRules(connectionRules, a, b, threshold)
}

func (c *Controller) compareConnectionCandidates(a, b candidatePair) Ordering {
	return c.applyRules(candidateRules, a, b, nil)
}

func (c *Controller) compareCandidatePairNetworks(a, b candidatePair) Ordering {
	return c.applyRules(networkRules, a, b, nil)
}

func compareNetworkPreference(c *Controller, a, b candidatePair, _ *receivingThreshold) Ordering {
	preferred := c.config.NetworkPreference
	if preferred == connection.AdapterTypeUnknown {
		return OrderingEqual
	}

	return orderBy(
		a.conn.Network().UnderlyingType() == preferred,
		b.conn.Network().UnderlyingType() == preferred,
	)
}

func compareVPNPreference(c *Controller, a, b candidatePair, _ *receivingThreshold) Ordering {
	preferVPN, applies := c.config.VPNPreference.prefersVPN()
	if !applies {
		return OrderingEqual
	}

	aVPN, bVPN := a.conn.Network().IsVPN(), b.conn.Network().IsVPN()
	if preferVPN {
		return orderBy(aVPN, bVPN)
	}

	return orderBy(!aVPN, !bVPN)
}

func compareNetworkCost(_ *Controller, a, b candidatePair, _ *receivingThreshold) Ordering {
	// Lower cost wins.
	return orderByHigher(b.conn.NetworkCost(), a.conn.NetworkCost())
}

// compareConnectionState prefers writable pairs, then lower write states,
// then receiving pairs, then connected pairs.
func compareConnectionState(c *Controller, a, b candidatePair, threshold *receivingThreshold) Ordering {
	aWritable := a.conn.Writable() || c.presumedWritable(a.conn)
	bWritable := b.conn.Writable() || c.presumedWritable(b.conn)
	if o := orderBy(aWritable, bWritable); o != OrderingEqual {
		return o
	}

	if o := orderByHigher(writeStateRank(b.conn.WriteState()), writeStateRank(a.conn.WriteState())); o != OrderingEqual {
		return o
	}

	// a is the selected pair when a threshold is supplied, so only a
	// receiving b is held back by it.
	if !a.conn.Receiving() && b.conn.Receiving() {
		if threshold == nil ||
			(!a.conn.ReceivingUnchangedSince().After(threshold.at) &&
				!b.conn.ReceivingUnchangedSince().After(threshold.at)) {
			return OrderingBBetter
		}
		threshold.missed = true
	}
	if a.conn.Receiving() && !b.conn.Receiving() {
		return OrderingABetter
	}

	if a.conn.Writable() && b.conn.Writable() {
		return orderBy(a.conn.Connected(), b.conn.Connected())
	}

	return OrderingEqual
}

// writeStateRank orders write states best first. An unknown state ranks
// below every known one.
func writeStateRank(s connection.WriteState) int {
	if s == connection.WriteStateUnknown {
		return int(connection.WriteStateTimeout) + 1
	}

	return int(s)
}

// compareNominationAndRecency lets a controlled agent follow the pair the
// controlling peer nominated, then the pair that carried data last.
func compareNominationAndRecency(c *Controller, a, b candidatePair, _ *receivingThreshold) Ordering {
	if c.transport.Role() != RoleControlled {
		return OrderingEqual
	}

	if o := orderByHigher(a.conn.RemoteNomination(), b.conn.RemoteNomination()); o != OrderingEqual {
		return o
	}

	return orderBy(
		a.conn.LastDataReceived().After(b.conn.LastDataReceived()),
		b.conn.LastDataReceived().After(a.conn.LastDataReceived()),
	)
}

func comparePriority(_ *Controller, a, b candidatePair, _ *receivingThreshold) Ordering {
	return orderByHigher(a.conn.Priority(), b.conn.Priority())
}

func compareGeneration(_ *Controller, a, b candidatePair, _ *receivingThreshold) Ordering {
	return orderByHigher(a.conn.Generation(), b.conn.Generation())
}

func comparePruned(c *Controller, a, b candidatePair, _ *receivingThreshold) Ordering {
	return orderBy(
		!c.transport.IsConnectionPruned(a.handle),
		!c.transport.IsConnectionPruned(b.handle),
	)
}

// presumedWritable reports if a relay/relay pair that has not been checked
// yet may be used as if writable.
func (c *Controller) presumedWritable(conn *connection.Connection) bool {
	return conn.WriteState() == connection.WriteStateInit &&
		c.config.PresumeWritableWhenFullyRelayed &&
		conn.Local().IsRelay() &&
		(conn.Remote().IsRelay() || conn.Remote().IsPeerReflexive())
}
