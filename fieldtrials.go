// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldTrials are experimental knobs that are off unless set.
type FieldTrials struct {
	// InitialSelectDampening delays the first selection so that a slightly
	// better pair found shortly after has a chance to win.
	InitialSelectDampening *time.Duration

	// InitialSelectDampeningPingReceived replaces InitialSelectDampening for
	// candidates that already received a ping from the peer.
	InitialSelectDampeningPingReceived *time.Duration

	// MaxOutstandingPings stops pinging a pair once this many pings are
	// unanswered.
	MaxOutstandingPings *int
}

const (
	fieldTrialInitialSelectDampening             = "initial_select_dampening"
	fieldTrialInitialSelectDampeningPingReceived = "initial_select_dampening_ping_received"
	fieldTrialMaxOutstandingPings                = "max_outstanding_pings"
)

// ParseFieldTrials parses a comma separated list of key:value pairs, e.g.
// "initial_select_dampening:100,max_outstanding_pings:3". Durations are in
// milliseconds. Unknown keys are ignored.
func ParseFieldTrials(raw string) (FieldTrials, error) {
	trials := FieldTrials{}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		key, value, ok := strings.Cut(entry, ":")
		if !ok {
			return FieldTrials{}, fmt.Errorf("%w: %q has no value", ErrInvalidFieldTrial, entry)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case fieldTrialInitialSelectDampening:
			d, err := parseFieldTrialMillis(key, value)
			if err != nil {
				return FieldTrials{}, err
			}
			trials.InitialSelectDampening = &d
		case fieldTrialInitialSelectDampeningPingReceived:
			d, err := parseFieldTrialMillis(key, value)
			if err != nil {
				return FieldTrials{}, err
			}
			trials.InitialSelectDampeningPingReceived = &d
		case fieldTrialMaxOutstandingPings:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return FieldTrials{}, fmt.Errorf("%w: %s=%q", ErrInvalidFieldTrial, key, value)
			}
			trials.MaxOutstandingPings = &n
		}
	}

	return trials, nil
}

func parseFieldTrialMillis(key, value string) (time.Duration, error) {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidFieldTrial, key, value)
	}

	return time.Duration(ms) * time.Millisecond, nil
}

func (f FieldTrials) String() string {
	var parts []string
	if f.InitialSelectDampening != nil {
		parts = append(parts, fmt.Sprintf("%s:%d", fieldTrialInitialSelectDampening, f.InitialSelectDampening.Milliseconds()))
	}
	if f.InitialSelectDampeningPingReceived != nil {
		parts = append(parts, fmt.Sprintf("%s:%d",
			fieldTrialInitialSelectDampeningPingReceived, f.InitialSelectDampeningPingReceived.Milliseconds()))
	}
	if f.MaxOutstandingPings != nil {
		parts = append(parts, fmt.Sprintf("%s:%d", fieldTrialMaxOutstandingPings, *f.MaxOutstandingPings))
	}

	return strings.Join(parts, ",")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FieldTrials) UnmarshalText(b []byte) error {
	trials, err := ParseFieldTrials(string(b))
	if err != nil {
		return err
	}
	*f = trials

	return nil
}
