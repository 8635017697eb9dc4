// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import "github.com/pion/icecontrol/pkg/connection"

// GetUseCandidateAttr reports if a check sent on h by the controlling agent
// should carry USE-CANDIDATE.
func (c *Controller) GetUseCandidateAttr(h connection.Handle, mode NominationMode, remoteMode ICEMode) bool {
	p, ok := c.resolve(h)
	if !ok {
		return false
	}

	switch mode {
	case NominationModeAggressive:
		if remoteMode == ICEModeLite {
			return c.GetUseCandidateAttr(h, NominationModeRegular, remoteMode)
		}

		return true
	case NominationModeSemiAggressive:
		isSelected := h == c.selected
		if remoteMode == ICEModeLite {
			return isSelected && p.conn.Writable()
		}

		selected, haveSelected := c.selectedPair()
		betterThanSelected := !haveSelected ||
			!selected.conn.Writable() ||
			c.compareConnectionCandidates(selected, p) == OrderingBBetter

		return isSelected || betterThanSelected
	default:
		// Regular nomination is signaled outside of the ping path.
		return false
	}
}
