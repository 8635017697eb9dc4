// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominationMode_String(t *testing.T) {
	testCases := []struct {
		mode           NominationMode
		expectedString string
	}{
		{NominationMode(Unknown), unknownStr},
		{NominationModeRegular, "regular"},
		{NominationModeAggressive, "aggressive"},
		{NominationModeSemiAggressive, "semi-aggressive"},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedString,
			testCase.mode.String(),
			"testCase: %d %v", i, testCase,
		)
		assert.Equal(t,
			testCase.mode,
			newNominationMode(testCase.expectedString),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestNominationMode_UnmarshalText(t *testing.T) {
	var mode NominationMode
	require.NoError(t, mode.UnmarshalText([]byte("aggressive")))
	assert.Equal(t, NominationModeAggressive, mode)

	require.NoError(t, mode.UnmarshalText([]byte("eager")))
	assert.Equal(t, NominationMode(Unknown), mode)
}
