// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import "github.com/pion/icecontrol/pkg/connection"

// PruneConnections returns the pairs that are dominated by a non-weak pair
// on the same network and no longer need to be checked. Pairs on an "any
// address" network are compared against the selected pair.
func (c *Controller) PruneConnections() []connection.Handle {
	_, bestByNetwork := c.bestConnectionByNetwork()
	selected, haveSelected := c.selectedPair()

	var pruned []connection.Handle
	for _, h := range c.connections {
		p, ok := c.resolve(h)
		if !ok {
			continue
		}

		var best candidatePair
		if network := p.conn.Network(); network.IsAnyAddress() {
			if !haveSelected {
				continue
			}
			best = selected
		} else {
			best = bestByNetwork[network]
		}

		if best.conn == nil || best.handle == h || best.conn.Weak() || best.conn.Failed() {
			continue
		}

		// State is left out: the dominating pair need not be writable yet.
		if c.compareConnectionCandidates(best, p) == OrderingABetter {
			c.log.Debugf("Pruning %s in favor of %s", p.conn, best.conn)
			pruned = append(pruned, h)
		}
	}

	return pruned
}
