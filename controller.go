// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package icecontrol decides which ICE candidate pair to ping next, which
// pair to send media on, and which pairs are redundant.
package icecontrol

import (
	"fmt"
	"slices"
	"time"

	"github.com/pion/icecontrol/pkg/connection"
	"github.com/pion/logging"
)

// Transport is the view of the owning ICE transport the controller needs.
type Transport interface {
	TransportState() TransportState
	Role() Role
	IsConnectionPruned(h connection.Handle) bool
}

// ConnectionLookup resolves handles to the connections they reference.
// *connection.Table implements it.
type ConnectionLookup interface {
	Get(h connection.Handle) (*connection.Connection, bool)
}

// ControllerConfig collects the arguments to Controller construction into
// a single structure, for future-proofness of the interface.
type ControllerConfig struct {
	Connections ConnectionLookup
	Transport   Transport
	Config      Config

	// LoggerFactory defaults to logging.NewDefaultLoggerFactory when nil.
	LoggerFactory logging.LoggerFactory

	// Now defaults to time.Now when nil.
	Now func() time.Time
}

// Controller holds the candidate pair bookkeeping of one ICE transport.
// It has no locks: every method must be called from the same goroutine.
type Controller struct {
	lookup    ConnectionLookup
	transport Transport
	config    Config
	now       func() time.Time
	log       logging.LeveledLogger

	connections []connection.Handle
	pinged      map[connection.Handle]struct{}
	unpinged    map[connection.Handle]struct{}
	selected    connection.Handle

	// initialSelectTimestamp is set when dampening first defers a selection.
	initialSelectTimestamp time.Time
}

// candidatePair is a resolved handle.
type candidatePair struct {
	handle connection.Handle
	conn   *connection.Connection
}

// NewController creates a Controller.
func NewController(config *ControllerConfig) (*Controller, error) {
	if config.Connections == nil {
		return nil, ErrNoConnectionLookup
	}
	if config.Transport == nil {
		return nil, ErrNoTransport
	}
	if err := config.Config.Validate(); err != nil {
		return nil, err
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Controller{
		lookup:    config.Connections,
		transport: config.Transport,
		config:    config.Config,
		now:       now,
		log:       loggerFactory.NewLogger("icecontrol"),
		pinged:    map[connection.Handle]struct{}{},
		unpinged:  map[connection.Handle]struct{}{},
	}, nil
}

// SetICEConfig replaces the configuration.
func (c *Controller) SetICEConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.config = config

	return nil
}

// Config returns the current configuration.
func (c *Controller) Config() Config {
	return c.config
}

// AddConnection registers a connection. It starts out unpinged.
func (c *Controller) AddConnection(h connection.Handle) {
	if h.IsZero() || slices.Contains(c.connections, h) {
		return
	}
	c.connections = append(c.connections, h)
	c.unpinged[h] = struct{}{}
}

// OnConnectionDestroyed drops every reference to h. It must be called
// before the connection is removed from its table.
func (c *Controller) OnConnectionDestroyed(h connection.Handle) {
	delete(c.pinged, h)
	delete(c.unpinged, h)
	c.connections = slices.DeleteFunc(c.connections, func(other connection.Handle) bool {
		return other == h
	})
	if c.selected == h {
		c.selected = connection.Handle{}
	}
}

// SetSelectedConnection records the pair the transport now sends on.
func (c *Controller) SetSelectedConnection(h connection.Handle) {
	c.selected = h
}

// SelectedConnection returns the selected pair, or the zero handle if none
// is selected or it no longer resolves.
func (c *Controller) SelectedConnection() connection.Handle {
	if _, ok := c.resolve(c.selected); !ok {
		return connection.Handle{}
	}

	return c.selected
}

// Connections returns the known pairs in their current sort order.
func (c *Controller) Connections() []connection.Handle {
	out := make([]connection.Handle, 0, len(c.connections))
	for _, h := range c.connections {
		if _, ok := c.resolve(h); ok {
			out = append(out, h)
		}
	}

	return out
}

// HasPingableConnection reports if any known pair can be pinged now.
func (c *Controller) HasPingableConnection() bool {
	now := c.now()
	for _, h := range c.connections {
		if c.IsPingable(h, now) {
			return true
		}
	}

	return false
}

func (c *Controller) resolve(h connection.Handle) (candidatePair, bool) {
	if h.IsZero() {
		return candidatePair{}, false
	}
	conn, ok := c.lookup.Get(h)
	if !ok {
		return candidatePair{}, false
	}

	return candidatePair{handle: h, conn: conn}, true
}

func (c *Controller) selectedPair() (candidatePair, bool) {
	return c.resolve(c.selected)
}

// weak reports if there is no selected pair or the selected pair is weak.
func (c *Controller) weak() bool {
	selected, ok := c.selectedPair()

	return !ok || selected.conn.Weak()
}

// checkPartition panics if pinged and unpinged no longer partition
// connections. That can only happen through a bookkeeping bug.
func (c *Controller) checkPartition() {
	if len(c.pinged)+len(c.unpinged) != len(c.connections) {
		panic(fmt.Errorf("%w: %d pinged + %d unpinged != %d connections", //nolint:err113
			errPartitionCorrupted, len(c.pinged), len(c.unpinged), len(c.connections)))
	}
	for _, h := range c.connections {
		_, inPinged := c.pinged[h]
		_, inUnpinged := c.unpinged[h]
		if inPinged == inUnpinged {
			panic(fmt.Errorf("%w: %s", errPartitionCorrupted, h)) //nolint:err113
		}
	}
}

// purgeStale forgets handles whose connection was removed without
// OnConnectionDestroyed.
func (c *Controller) purgeStale() {
	for _, h := range slices.Clone(c.connections) {
		if _, ok := c.resolve(h); !ok {
			c.log.Warnf("Dropping stale connection handle %s", h)
			c.OnConnectionDestroyed(h)
		}
	}
	if !c.selected.IsZero() {
		if _, ok := c.resolve(c.selected); !ok {
			c.selected = connection.Handle{}
		}
	}
}
