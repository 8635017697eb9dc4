// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	testCases := []struct {
		roleString   string
		expectedRole Role
	}{
		{unknownStr, Role(Unknown)},
		{"controlling", RoleControlling},
		{"controlled", RoleControlled},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedRole,
			newRole(testCase.roleString),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestRole_String(t *testing.T) {
	testCases := []struct {
		role           Role
		expectedString string
	}{
		{Role(Unknown), unknownStr},
		{RoleControlling, "controlling"},
		{RoleControlled, "controlled"},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedString,
			testCase.role.String(),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestRole_MarshalText(t *testing.T) {
	b, err := RoleControlled.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, []byte("controlled"), b)

	var role Role
	require.NoError(t, role.UnmarshalText([]byte("controlling")))
	assert.Equal(t, RoleControlling, role)
}
