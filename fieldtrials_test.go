// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldTrials(t *testing.T) {
	trials, err := ParseFieldTrials("initial_select_dampening:100, initial_select_dampening_ping_received:50,max_outstanding_pings:3")
	require.NoError(t, err)

	if assert.NotNil(t, trials.InitialSelectDampening) {
		assert.Equal(t, 100*time.Millisecond, *trials.InitialSelectDampening)
	}
	if assert.NotNil(t, trials.InitialSelectDampeningPingReceived) {
		assert.Equal(t, 50*time.Millisecond, *trials.InitialSelectDampeningPingReceived)
	}
	if assert.NotNil(t, trials.MaxOutstandingPings) {
		assert.Equal(t, 3, *trials.MaxOutstandingPings)
	}

	assert.Equal(t,
		"initial_select_dampening:100,initial_select_dampening_ping_received:50,max_outstanding_pings:3",
		trials.String(),
	)
}

func TestParseFieldTrialsEmptyAndUnknown(t *testing.T) {
	trials, err := ParseFieldTrials("")
	require.NoError(t, err)
	assert.Equal(t, FieldTrials{}, trials)
	assert.Equal(t, "", trials.String())

	trials, err = ParseFieldTrials("some_other_trial:enabled,,max_outstanding_pings:1")
	require.NoError(t, err)
	assert.Nil(t, trials.InitialSelectDampening)
	if assert.NotNil(t, trials.MaxOutstandingPings) {
		assert.Equal(t, 1, *trials.MaxOutstandingPings)
	}
}

func TestParseFieldTrialsInvalid(t *testing.T) {
	testCases := []string{
		"initial_select_dampening",
		"initial_select_dampening:abc",
		"initial_select_dampening:-5",
		"initial_select_dampening_ping_received:1.5",
		"max_outstanding_pings:0",
		"max_outstanding_pings:many",
	}

	for i, testCase := range testCases {
		_, err := ParseFieldTrials(testCase)
		assert.ErrorIs(t, err, ErrInvalidFieldTrial, "testCase: %d %v", i, testCase)
	}
}

func TestFieldTrialsUnmarshalText(t *testing.T) {
	var trials FieldTrials
	require.NoError(t, trials.UnmarshalText([]byte("max_outstanding_pings:2")))
	if assert.NotNil(t, trials.MaxOutstandingPings) {
		assert.Equal(t, 2, *trials.MaxOutstandingPings)
	}

	assert.ErrorIs(t, trials.UnmarshalText([]byte("max_outstanding_pings")), ErrInvalidFieldTrial)
	assert.NotNil(t, trials.MaxOutstandingPings, "left untouched on error")
}
