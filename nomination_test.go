// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"testing"

	"github.com/pion/icecontrol/pkg/connection"
	"github.com/stretchr/testify/assert"
)

func TestGetUseCandidateAttr(t *testing.T) {
	h := newHarness(t, Config{})
	selected := h.add(pairOptions{priority: 20})
	better := h.add(pairOptions{priority: 30})
	worse := h.add(pairOptions{priority: 10})
	h.makeStrong(selected)
	h.controller.SetSelectedConnection(selected)

	testCases := []struct {
		handle   connection.Handle
		mode     NominationMode
		remote   ICEMode
		expected bool
	}{
		{selected, NominationModeRegular, ICEModeFull, false},
		{better, NominationModeRegular, ICEModeFull, false},

		{worse, NominationModeAggressive, ICEModeFull, true},
		{selected, NominationModeAggressive, ICEModeLite, false},

		{selected, NominationModeSemiAggressive, ICEModeFull, true},
		{better, NominationModeSemiAggressive, ICEModeFull, true},
		{worse, NominationModeSemiAggressive, ICEModeFull, false},
		{selected, NominationModeSemiAggressive, ICEModeLite, true},
		{better, NominationModeSemiAggressive, ICEModeLite, false},

		{connection.Handle{}, NominationModeAggressive, ICEModeFull, false},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expected,
			h.controller.GetUseCandidateAttr(testCase.handle, testCase.mode, testCase.remote),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestGetUseCandidateAttrSemiAggressiveWithoutWritableSelection(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.add(pairOptions{priority: 10})
	b := h.add(pairOptions{priority: 20})

	assert.True(t, h.controller.GetUseCandidateAttr(a, NominationModeSemiAggressive, ICEModeFull), "nothing selected")

	h.controller.SetSelectedConnection(b)
	assert.True(t, h.controller.GetUseCandidateAttr(a, NominationModeSemiAggressive, ICEModeFull), "selection not writable")
	assert.False(t, h.controller.GetUseCandidateAttr(b, NominationModeSemiAggressive, ICEModeLite), "selection not writable")
}
