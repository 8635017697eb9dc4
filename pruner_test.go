// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"net/netip"
	"testing"

	"github.com/pion/ice/v4"
	"github.com/pion/icecontrol/pkg/connection"
	"github.com/stretchr/testify/assert"
)

func TestPruneDominatedConnection(t *testing.T) {
	h := newHarness(t, Config{})
	n1 := testNetwork("n1", connection.AdapterTypeEthernet, "10.0.0.1")
	weaker := h.add(pairOptions{priority: 10, network: n1})
	dominant := h.add(pairOptions{priority: 20, network: n1})
	h.makeStrong(dominant)
	h.controller.SortAndSwitchConnection(SwitchReasonConnectStateChange)

	pruned := h.controller.PruneConnections()
	assert.Equal(t, []connection.Handle{weaker}, pruned)
	assert.NotContains(t, pruned, dominant)
}

func TestPruneSkipsWeakBest(t *testing.T) {
	h := newHarness(t, Config{})
	n1 := testNetwork("n1", connection.AdapterTypeEthernet, "10.0.0.1")
	h.add(pairOptions{priority: 20, network: n1})
	h.add(pairOptions{priority: 10, network: n1})
	h.controller.SortAndSwitchConnection(SwitchReasonConnectStateChange)

	assert.Empty(t, h.controller.PruneConnections())
}

func TestPruneIsPerNetwork(t *testing.T) {
	h := newHarness(t, Config{})
	n1 := testNetwork("n1", connection.AdapterTypeEthernet, "10.0.0.1")
	n2 := testNetwork("n2", connection.AdapterTypeEthernet, "10.0.1.1")
	best := h.add(pairOptions{priority: 20, network: n1})
	other := h.add(pairOptions{priority: 10, network: n2})
	h.makeStrong(best)
	h.controller.SortAndSwitchConnection(SwitchReasonConnectStateChange)

	assert.Empty(t, h.controller.PruneConnections(), "%s is alone on its network", other)
}

func TestPruneSelectedIsBestOnItsNetwork(t *testing.T) {
	h := newHarness(t, Config{})
	n1 := testNetwork("n1", connection.AdapterTypeEthernet, "10.0.0.1")
	higher := h.add(pairOptions{priority: 30, network: n1})
	selected := h.add(pairOptions{priority: 20, network: n1})
	lower := h.add(pairOptions{priority: 10, network: n1})
	h.makeStrong(selected)
	h.controller.SetSelectedConnection(selected)

	pruned := h.controller.PruneConnections()
	assert.Equal(t, []connection.Handle{lower}, pruned)
	assert.NotContains(t, pruned, higher)
}

func TestPruneAnyAddressNetworkUsesSelected(t *testing.T) {
	h := newHarness(t, Config{})
	anyNet := &connection.Network{Name: "any", Type: connection.AdapterTypeAny, BestIP: netip.IPv4Unspecified()}
	n1 := testNetwork("n1", connection.AdapterTypeEthernet, "10.0.0.1")
	wildcard := h.add(pairOptions{priority: 10, network: anyNet})

	assert.Empty(t, h.controller.PruneConnections(), "nothing selected")

	selected := h.add(pairOptions{priority: 20, network: n1})
	h.makeStrong(selected)
	h.controller.SetSelectedConnection(selected)

	assert.Equal(t, []connection.Handle{wildcard}, h.controller.PruneConnections())
}

func TestPruneRequiresStrictlyBetter(t *testing.T) {
	h := newHarness(t, Config{})
	n1 := testNetwork("n1", connection.AdapterTypeEthernet, "10.0.0.1")
	a := h.add(pairOptions{priority: 20, network: n1})
	h.add(pairOptions{priority: 20, network: n1})
	h.makeStrong(a)
	h.controller.SetSelectedConnection(a)

	assert.Empty(t, h.controller.PruneConnections())
}

func TestPruneSkipsFailedBest(t *testing.T) {
	h := newHarness(t, Config{})
	n1 := testNetwork("n1", connection.AdapterTypeEthernet, "10.0.0.1")
	failed := h.add(pairOptions{priority: 20, network: n1})
	healthy := h.add(pairOptions{priority: 10, network: n1})
	h.makeStrong(failed).SetState(ice.CandidatePairStateFailed)
	h.makeStrong(healthy)
	h.controller.SortAndSwitchConnection(SwitchReasonConnectStateChange)

	assert.NotContains(t, h.controller.PruneConnections(), healthy)

	h.controller.SetSelectedConnection(failed)
	assert.NotContains(t, h.controller.PruneConnections(), healthy)
}
