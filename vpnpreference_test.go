// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVPNPreference_String(t *testing.T) {
	testCases := []struct {
		preference     VPNPreference
		expectedString string
	}{
		{VPNPreference(Unknown), unknownStr},
		{VPNPreferenceDefault, "default"},
		{VPNPreferenceOnlyUseVPN, "only-use-vpn"},
		{VPNPreferenceNeverUseVPN, "never-use-vpn"},
		{VPNPreferencePreferVPN, "prefer-vpn"},
		{VPNPreferenceAvoidVPN, "avoid-vpn"},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedString,
			testCase.preference.String(),
			"testCase: %d %v", i, testCase,
		)
		assert.Equal(t,
			testCase.preference,
			newVPNPreference(testCase.expectedString),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestVPNPreference_prefersVPN(t *testing.T) {
	testCases := []struct {
		preference VPNPreference
		preferVPN  bool
		applies    bool
	}{
		{VPNPreference(Unknown), false, false},
		{VPNPreferenceDefault, false, false},
		{VPNPreferenceOnlyUseVPN, true, true},
		{VPNPreferencePreferVPN, true, true},
		{VPNPreferenceNeverUseVPN, false, true},
		{VPNPreferenceAvoidVPN, false, true},
	}

	for i, testCase := range testCases {
		preferVPN, applies := testCase.preference.prefersVPN()
		assert.Equal(t, testCase.preferVPN, preferVPN, "testCase: %d %v", i, testCase)
		assert.Equal(t, testCase.applies, applies, "testCase: %d %v", i, testCase)
	}
}
