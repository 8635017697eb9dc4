// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConnectionLookup indicates a Controller was created without a
	// way to resolve connection handles.
	ErrNoConnectionLookup = errors.New("icecontrol: connection lookup is required")

	// ErrNoTransport indicates a Controller was created without a Transport.
	ErrNoTransport = errors.New("icecontrol: transport is required")

	// ErrNegativeInterval indicates a configured interval or timeout is negative.
	ErrNegativeInterval = errors.New("icecontrol: interval must not be negative")

	// ErrInvalidMaxOutstandingPings indicates a non-positive outstanding ping limit.
	ErrInvalidMaxOutstandingPings = errors.New("icecontrol: max outstanding pings must be positive")

	// ErrInvalidFieldTrial indicates a field trial string could not be parsed.
	ErrInvalidFieldTrial = errors.New("icecontrol: invalid field trial")

	// ErrSchedulerClosed indicates the Scheduler was used after Close.
	ErrSchedulerClosed = errors.New("icecontrol: scheduler closed")

	// ErrNilConnection indicates a nil Connection was handed to the Scheduler.
	ErrNilConnection = errors.New("icecontrol: connection is nil")

	// ErrUnknownConnection indicates a handle that no longer resolves.
	ErrUnknownConnection = errors.New("icecontrol: unknown connection")

	errPartitionCorrupted = errors.New("icecontrol: pinged/unpinged partition corrupted")
)

// InvalidStateError indicates the object is in an invalid state.
type InvalidStateError struct {
	Err error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidStateError) Unwrap() error {
	return e.Err
}
