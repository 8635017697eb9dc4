// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package bindreq

import (
	"testing"

	"github.com/pion/stun/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildControlling(t *testing.T) {
	msg, err := Build(Params{
		LocalUfrag:     "local",
		RemoteUfrag:    "remote",
		RemotePassword: "remotepassword",
		Priority:       1845494015,
		Controlling:    true,
		TieBreaker:     0xdeadbeef,
		UseCandidate:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, stun.BindingRequest, msg.Type)
	assert.True(t, msg.Contains(stun.AttrICEControlling))
	assert.False(t, msg.Contains(stun.AttrICEControlled))
	assert.True(t, msg.Contains(stun.AttrUseCandidate))
	assert.True(t, msg.Contains(stun.AttrMessageIntegrity))
	assert.True(t, msg.Contains(stun.AttrFingerprint))

	check, err := Parse(msg.Raw, "remotepassword")
	require.NoError(t, err)
	assert.Equal(t, Check{
		Username:     "remote:local",
		Priority:     1845494015,
		Controlling:  true,
		TieBreaker:   0xdeadbeef,
		UseCandidate: true,
	}, check)
}

func TestBuildControlled(t *testing.T) {
	msg, err := Build(Params{
		LocalUfrag:     "local",
		RemoteUfrag:    "remote",
		RemotePassword: "remotepassword",
		Priority:       100,
		TieBreaker:     42,
		UseCandidate:   true,
	})
	require.NoError(t, err)

	assert.True(t, msg.Contains(stun.AttrICEControlled))
	assert.False(t, msg.Contains(stun.AttrUseCandidate), "only the controlling agent nominates")

	check, err := Parse(msg.Raw, "remotepassword")
	require.NoError(t, err)
	assert.False(t, check.Controlling)
	assert.Equal(t, uint64(42), check.TieBreaker)
}

func TestBuildMissingCredentials(t *testing.T) {
	testCases := []Params{
		{RemoteUfrag: "r", RemotePassword: "p"},
		{LocalUfrag: "l", RemotePassword: "p"},
		{LocalUfrag: "l", RemoteUfrag: "r"},
	}

	for i, testCase := range testCases {
		_, err := Build(testCase)
		assert.ErrorIs(t, err, ErrMissingCredentials, "testCase: %d %v", i, testCase)
	}
}

func TestParseWrongPassword(t *testing.T) {
	msg, err := Build(Params{LocalUfrag: "l", RemoteUfrag: "r", RemotePassword: "secret"})
	require.NoError(t, err)

	_, err = Parse(msg.Raw, "other")
	assert.ErrorIs(t, err, stun.ErrIntegrityMismatch)
}

func TestParseNotBindingRequest(t *testing.T) {
	msg, err := stun.Build(stun.BindingSuccess, stun.TransactionID, stun.Fingerprint)
	require.NoError(t, err)

	_, err = Parse(msg.Raw, "pwd")
	assert.ErrorIs(t, err, ErrNotBindingRequest)
}

func TestGenerateCredentials(t *testing.T) {
	ufrag, pwd, err := GenerateCredentials()
	require.NoError(t, err)
	assert.Len(t, ufrag, lenUFrag)
	assert.Len(t, pwd, lenPwd)

	other, _, err := GenerateCredentials()
	require.NoError(t, err)
	assert.NotEqual(t, ufrag, other)
}
