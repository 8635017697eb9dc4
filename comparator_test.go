// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"testing"
	"time"

	"github.com/pion/icecontrol/pkg/connection"
	"github.com/stretchr/testify/assert"
)

func TestCompareNetworkPreference(t *testing.T) {
	wifi := testNetwork("wlan0", connection.AdapterTypeWiFi, "192.168.1.2")
	ethernet := testNetwork("eth0", connection.AdapterTypeEthernet, "10.0.0.2")

	config := Config{NetworkPreference: connection.AdapterTypeWiFi}
	h := newHarness(t, config)
	a := h.add(pairOptions{network: ethernet, priority: 1000})
	b := h.add(pairOptions{network: wifi, priority: 10})
	h.makeStrong(a)

	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(a, b))
	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(b, a))
	assert.Equal(t, OrderingBBetter, h.controller.CompareCandidatePairNetworks(a, b))

	assert.NoError(t, h.controller.SetICEConfig(Config{}))
	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(a, b))
}

func TestCompareVPNPreference(t *testing.T) {
	vpn := &connection.Network{
		Name: "tun0", Type: connection.AdapterTypeVPN,
		UnderlyingTypeForVPN: connection.AdapterTypeEthernet,
	}
	vpn.BestIP = testNetwork("", 0, "10.8.0.2").BestIP
	plain := testNetwork("eth0", connection.AdapterTypeEthernet, "10.0.0.2")

	testCases := []struct {
		preference VPNPreference
		expected   Ordering
	}{
		{VPNPreferenceDefault, OrderingBBetter},
		{VPNPreferenceOnlyUseVPN, OrderingABetter},
		{VPNPreferencePreferVPN, OrderingABetter},
		{VPNPreferenceNeverUseVPN, OrderingBBetter},
		{VPNPreferenceAvoidVPN, OrderingBBetter},
	}

	for i, testCase := range testCases {
		h := newHarness(t, Config{VPNPreference: testCase.preference})
		a := h.add(pairOptions{network: vpn, priority: 10})
		b := h.add(pairOptions{network: plain, priority: 20})

		assert.Equal(t,
			testCase.expected,
			h.controller.CompareConnections(a, b),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestCompareNetworkCost(t *testing.T) {
	h := newHarness(t, Config{})
	cheap := h.add(pairOptions{localCost: connection.NetworkCostLow, priority: 10})
	costly := h.add(pairOptions{localCost: connection.NetworkCostCellular, priority: 1000})

	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(cheap, costly))
	assert.Equal(t, OrderingABetter, h.controller.CompareConnectionCandidates(cheap, costly))
}

func TestCompareConnectionState(t *testing.T) {
	h := newHarness(t, Config{})

	writable := h.add(pairOptions{priority: 10})
	h.conn(writable).SetWriteState(connection.WriteStateWritable)
	unreliable := h.add(pairOptions{priority: 1000})
	h.conn(unreliable).SetWriteState(connection.WriteStateUnreliable)
	timedOut := h.add(pairOptions{priority: 1000})
	h.conn(timedOut).SetWriteState(connection.WriteStateTimeout)

	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(writable, unreliable), "writable wins")
	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(unreliable, timedOut), "lower write state wins")

	initial := h.add(pairOptions{priority: 10})
	unknown := h.add(pairOptions{priority: 1000})
	h.conn(unknown).SetWriteState(connection.WriteStateUnknown)
	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(initial, unknown), "unknown write state ranks last")
	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(timedOut, unknown), "unknown write state ranks last")

	receiving := h.add(pairOptions{priority: 10})
	h.conn(receiving).SetWriteState(connection.WriteStateWritable)
	h.conn(receiving).SetReceiving(h.clock.Now(), true)
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(writable, receiving), "receiving wins")

	h.conn(writable).SetReceiving(h.clock.Now(), true)
	h.conn(writable).SetConnected(false)
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(writable, receiving), "connected wins")

	// State is not part of the candidate comparison.
	assert.Equal(t, OrderingEqual, h.controller.CompareConnectionCandidates(writable, receiving))
}

func TestCompareReceivingThreshold(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.add(pairOptions{priority: 1000})
	b := h.add(pairOptions{priority: 10})
	h.conn(a).SetWriteState(connection.WriteStateWritable)
	h.conn(b).SetWriteState(connection.WriteStateWritable)

	h.clock.Advance(time.Second)
	h.conn(b).SetReceiving(h.clock.Now(), true)

	pa, _ := h.controller.resolve(a)
	pb, _ := h.controller.resolve(b)

	threshold := &receivingThreshold{at: h.clock.Now().Add(-500 * time.Millisecond)}
	assert.Equal(t, OrderingABetter, h.controller.compareConnections(pa, pb, threshold))
	assert.True(t, threshold.missed, "b flipped after the threshold")

	threshold = &receivingThreshold{at: h.clock.Now()}
	assert.Equal(t, OrderingBBetter, h.controller.compareConnections(pa, pb, threshold))
	assert.False(t, threshold.missed)

	assert.Equal(t, OrderingBBetter, h.controller.compareConnections(pa, pb, nil))
}

func TestCompareNominationOnControlledSide(t *testing.T) {
	h := newHarness(t, Config{})
	h.transport.role = RoleControlled

	a := h.add(pairOptions{priority: 10})
	b := h.add(pairOptions{priority: 1000})
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(a, b))

	h.conn(a).SetRemoteNomination(1)
	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(a, b), "nominated wins")

	h.conn(b).SetRemoteNomination(1)
	h.conn(b).OnDataReceived(h.clock.Now())
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(a, b), "recent data wins")

	h.transport.role = RoleControlling
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(a, b), "priority decides")
	h.conn(a).OnDataReceived(h.clock.Now().Add(time.Second))
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(a, b), "recency ignored when controlling")
}

func TestCompareCandidateLevel(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.add(pairOptions{priority: 50})
	b := h.add(pairOptions{priority: 50, generation: 1})
	c := h.add(pairOptions{priority: 50, generation: 1})
	d := h.add(pairOptions{priority: 60})

	assert.Equal(t, OrderingBBetter, h.controller.CompareConnectionCandidates(a, d), "priority")
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnectionCandidates(a, b), "generation")
	assert.Equal(t, OrderingEqual, h.controller.CompareConnectionCandidates(b, c))

	h.transport.pruned[c] = true
	assert.Equal(t, OrderingABetter, h.controller.CompareConnectionCandidates(b, c), "pruned loses")
	assert.Equal(t, OrderingBBetter, h.controller.CompareConnections(c, b))
}

func TestCompareUnknownHandles(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.add(pairOptions{})

	assert.Equal(t, OrderingEqual, h.controller.CompareConnections(a, connection.Handle{}))
	assert.Equal(t, OrderingEqual, h.controller.CompareConnectionCandidates(connection.Handle{}, a))
	assert.Equal(t, OrderingEqual, h.controller.CompareCandidatePairNetworks(a, connection.Handle{}))
}

func TestPresumedWritable(t *testing.T) {
	h := newHarness(t, Config{PresumeWritableWhenFullyRelayed: true})
	relayed := h.add(pairOptions{localRelay: true, remoteRelay: true})
	host := h.add(pairOptions{priority: 1 << 30})

	assert.Equal(t, OrderingABetter, h.controller.CompareConnections(relayed, host))
	assert.True(t, h.controller.readyToSend(h.conn(relayed)))
	assert.False(t, h.controller.readyToSend(h.conn(host)))

	h.conn(relayed).SetWriteState(connection.WriteStateTimeout)
	assert.False(t, h.controller.readyToSend(h.conn(relayed)))
}

func TestOrdering_String(t *testing.T) {
	testCases := []struct {
		ordering       Ordering
		expectedString string
	}{
		{OrderingABetter, "a-better"},
		{OrderingBBetter, "b-better"},
		{OrderingEqual, "equal"},
		{Ordering(7), unknownStr},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedString,
			testCase.ordering.String(),
			"testCase: %d %v", i, testCase,
		)
	}
}
