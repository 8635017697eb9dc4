// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package bindreq builds the STUN Binding requests used as ICE connectivity
// checks.
package bindreq

import (
	"errors"
	"fmt"

	"github.com/pion/ice/v4"
	"github.com/pion/randutil"
	"github.com/pion/stun/v3"
)

const (
	runesAlpha = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	lenUFrag = 16
	lenPwd   = 32
)

//nolint:gochecknoglobals
var globalMathRandomGenerator = randutil.NewMathRandomGenerator()

var (
	// ErrMissingCredentials indicates a check cannot be built because a
	// username fragment or the remote password is unknown.
	ErrMissingCredentials = errors.New("bindreq: ICE credentials are required")

	// ErrNotBindingRequest indicates a message that is not a Binding request.
	ErrNotBindingRequest = errors.New("bindreq: not a binding request")
)

// Params describes one outgoing connectivity check.
type Params struct {
	LocalUfrag     string
	RemoteUfrag    string
	RemotePassword string

	// Priority is the priority a peer reflexive candidate learned from this
	// check would get.
	Priority uint32

	Controlling bool
	TieBreaker  uint64

	// UseCandidate nominates the pair. Only the controlling agent sets it.
	UseCandidate bool
}

// Build encodes a Binding request carrying the ICE attributes described by
// params, signed with the remote password.
func Build(params Params) (*stun.Message, error) {
	if params.LocalUfrag == "" || params.RemoteUfrag == "" || params.RemotePassword == "" {
		return nil, ErrMissingCredentials
	}

	setters := []stun.Setter{
		stun.BindingRequest,
		stun.TransactionID,
		stun.NewUsername(params.RemoteUfrag + ":" + params.LocalUfrag),
		ice.PriorityAttr(params.Priority),
	}
	if params.Controlling {
		setters = append(setters, ice.AttrControlling(params.TieBreaker))
	} else {
		setters = append(setters, ice.AttrControlled(params.TieBreaker))
	}
	if params.UseCandidate && params.Controlling {
		setters = append(setters, ice.UseCandidate())
	}
	setters = append(setters,
		stun.NewShortTermIntegrity(params.RemotePassword),
		stun.Fingerprint,
	)

	msg, err := stun.Build(setters...)
	if err != nil {
		return nil, fmt.Errorf("bindreq: build: %w", err)
	}

	return msg, nil
}

// Check is the decoded view of a received connectivity check.
type Check struct {
	Username     string
	Priority     uint32
	Controlling  bool
	TieBreaker   uint64
	UseCandidate bool
}

// Parse verifies integrity and fingerprint of a raw Binding request with the
// local password and returns its ICE attributes.
func Parse(raw []byte, localPassword string) (Check, error) {
	msg := &stun.Message{Raw: append([]byte{}, raw...)}
	if err := msg.Decode(); err != nil {
		return Check{}, err
	}
	if msg.Type != stun.BindingRequest {
		return Check{}, fmt.Errorf("%w: %s", ErrNotBindingRequest, msg.Type)
	}
	if err := stun.Fingerprint.Check(msg); err != nil {
		return Check{}, err
	}
	if err := stun.NewShortTermIntegrity(localPassword).Check(msg); err != nil {
		return Check{}, err
	}

	check := Check{}

	var username stun.Username
	if err := username.GetFrom(msg); err != nil {
		return Check{}, err
	}
	check.Username = username.String()

	var priority ice.PriorityAttr
	if err := priority.GetFrom(msg); err != nil {
		return Check{}, err
	}
	check.Priority = uint32(priority)

	var controlling ice.AttrControlling
	var controlled ice.AttrControlled
	switch {
	case controlling.GetFrom(msg) == nil:
		check.Controlling = true
		check.TieBreaker = uint64(controlling)
	case controlled.GetFrom(msg) == nil:
		check.TieBreaker = uint64(controlled)
	}

	check.UseCandidate = ice.UseCandidate().IsSet(msg)

	return check, nil
}

// NewTieBreaker returns a random ICE role tie breaker.
func NewTieBreaker() uint64 {
	return globalMathRandomGenerator.Uint64()
}

// GenerateCredentials returns a fresh local username fragment and password.
func GenerateCredentials() (ufrag, pwd string, err error) {
	ufrag, err = randutil.GenerateCryptoRandomString(lenUFrag, runesAlpha)
	if err != nil {
		return "", "", err
	}
	pwd, err = randutil.GenerateCryptoRandomString(lenPwd, runesAlpha)
	if err != nil {
		return "", "", err
	}

	return ufrag, pwd, nil
}
