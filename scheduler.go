// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package icecontrol

import (
	"fmt"
	"sync"
	"time"

	"github.com/pion/icecontrol/pkg/connection"
	"github.com/pion/logging"
)

// SchedulerConfig collects the arguments to Scheduler construction into
// a single structure, for future-proofness of the interface.
type SchedulerConfig struct {
	Config Config

	// Role defaults to RoleControlling.
	Role Role

	// NominationMode defaults to NominationModeSemiAggressive.
	NominationMode NominationMode

	// RemoteICEMode defaults to ICEModeFull.
	RemoteICEMode ICEMode

	// LoggerFactory defaults to logging.NewDefaultLoggerFactory when nil.
	LoggerFactory logging.LoggerFactory
}

type task func(*Scheduler)

// Scheduler drives a Controller: it owns the connection table, runs the
// ping timer, applies selection results and arms rechecks. All controller
// access happens on the scheduler goroutine.
//
// Handlers run on the scheduler goroutine. They may read the connection
// they are given but must not call back into the Scheduler synchronously.
type Scheduler struct {
	onPingHdlr                     func(connection.Handle, *connection.Connection, bool)
	onSelectedConnectionChangeHdlr func(connection.Handle, SwitchReason)
	onPruneHdlr                    func(connection.Handle)

	// State owned by the taskLoop
	table          *connection.Table
	controller     *Controller
	role           Role
	transportState TransportState
	nominationMode NominationMode
	remoteICEMode  ICEMode
	pruned         map[connection.Handle]struct{}
	lastPingSent   time.Time
	pingTimer      *time.Timer
	rechecks       map[*time.Timer]struct{}

	log logging.LeveledLogger

	taskChan  chan task
	done      chan struct{}
	closeOnce sync.Once
}

// schedulerTransport lets the controller read scheduler state without
// exposing it on the Scheduler's public API.
type schedulerTransport struct {
	s *Scheduler
}

func (t schedulerTransport) TransportState() TransportState { return t.s.transportState }

func (t schedulerTransport) Role() Role { return t.s.role }

func (t schedulerTransport) IsConnectionPruned(h connection.Handle) bool {
	_, ok := t.s.pruned[h]

	return ok
}

// NewScheduler creates a Scheduler and starts its task loop.
func NewScheduler(config *SchedulerConfig) (*Scheduler, error) {
	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	s := &Scheduler{
		table:          connection.NewTable(),
		role:           config.Role,
		transportState: TransportStateNew,
		nominationMode: config.NominationMode,
		remoteICEMode:  config.RemoteICEMode,
		pruned:         map[connection.Handle]struct{}{},
		rechecks:       map[*time.Timer]struct{}{},
		log:            loggerFactory.NewLogger("icescheduler"),
		taskChan:       make(chan task),
		done:           make(chan struct{}),
	}
	if s.role == Role(Unknown) {
		s.role = RoleControlling
	}
	if s.nominationMode == NominationMode(Unknown) {
		s.nominationMode = NominationModeSemiAggressive
	}
	if s.remoteICEMode == ICEMode(Unknown) {
		s.remoteICEMode = ICEModeFull
	}

	controller, err := NewController(&ControllerConfig{
		Connections:   s.table,
		Transport:     schedulerTransport{s: s},
		Config:        config.Config,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return nil, err
	}
	s.controller = controller

	go s.taskLoop()

	return s, nil
}

func (s *Scheduler) run(t task) error {
	select {
	case <-s.done:
		return &InvalidStateError{Err: ErrSchedulerClosed}
	default:
	}

	select {
	case <-s.done:
		return &InvalidStateError{Err: ErrSchedulerClosed}
	case s.taskChan <- t:
	}

	return nil
}

func (s *Scheduler) taskLoop() {
	for {
		select {
		case t := <-s.taskChan:
			// Run the task
			t(s)

		case <-s.done:
			return
		}
	}
}

// Close stops the task loop and every pending timer.
func (s *Scheduler) Close() error {
	err := s.run(func(s *Scheduler) {
		if s.pingTimer != nil {
			s.pingTimer.Stop()
		}
		for timer := range s.rechecks {
			timer.Stop()
		}
		clear(s.rechecks)
		s.closeOnce.Do(func() { close(s.done) })
	})
	if err != nil {
		return err
	}
	s.log.Debug("Scheduler closed")

	return nil
}

// OnPing sets a handler that is fired with every pair the controller
// decides to ping. useCandidate tells whether the check nominates the pair.
func (s *Scheduler) OnPing(f func(h connection.Handle, conn *connection.Connection, useCandidate bool)) error {
	return s.run(func(s *Scheduler) {
		s.onPingHdlr = f
	})
}

// OnSelectedConnectionChange sets a handler that is fired when the selected
// pair changes.
func (s *Scheduler) OnSelectedConnectionChange(f func(h connection.Handle, reason SwitchReason)) error {
	return s.run(func(s *Scheduler) {
		s.onSelectedConnectionChangeHdlr = f
	})
}

// OnPrune sets a handler that is fired once for every pruned pair.
func (s *Scheduler) OnPrune(f func(h connection.Handle)) error {
	return s.run(func(s *Scheduler) {
		s.onPruneHdlr = f
	})
}

// AddConnection takes ownership of conn, registers it with the controller
// and runs a selection pass.
func (s *Scheduler) AddConnection(conn *connection.Connection, reason SwitchReason) (connection.Handle, error) {
	if conn == nil {
		return connection.Handle{}, ErrNilConnection
	}

	result := make(chan connection.Handle, 1)
	if err := s.run(func(s *Scheduler) {
		conn.SetControlling(s.role == RoleControlling)
		h := s.table.Insert(conn)
		s.controller.AddConnection(h)
		s.log.Debugf("Added %s as %s", conn, h)
		s.sortAndSwitch(reason)
		if s.pingTimer == nil {
			s.pingTick()
		}
		result <- h
	}); err != nil {
		return connection.Handle{}, err
	}

	return <-result, nil
}

// RemoveConnection destroys the pair behind h. If it was selected a new
// selection pass runs.
func (s *Scheduler) RemoveConnection(h connection.Handle) error {
	result := make(chan error, 1)
	if err := s.run(func(s *Scheduler) {
		if _, ok := s.table.Get(h); !ok {
			result <- fmt.Errorf("%w: %s", ErrUnknownConnection, h)

			return
		}
		wasSelected := s.controller.SelectedConnection() == h
		s.controller.OnConnectionDestroyed(h)
		delete(s.pruned, h)
		s.table.Remove(h)
		if wasSelected {
			s.log.Infof("Selected connection %s destroyed", h)
			s.sortAndSwitch(SwitchReasonSelectedConnectionDestroyed)
		}
		result <- nil
	}); err != nil {
		return err
	}

	return <-result
}

// UpdateConnection runs f against the pair behind h on the scheduler
// goroutine, then runs a selection pass for reason. I/O callbacks use it to
// report writable, receiving, RTT and nomination changes.
func (s *Scheduler) UpdateConnection(h connection.Handle, reason SwitchReason, f func(*connection.Connection)) error {
	result := make(chan error, 1)
	if err := s.run(func(s *Scheduler) {
		conn, ok := s.table.Get(h)
		if !ok {
			result <- fmt.Errorf("%w: %s", ErrUnknownConnection, h)

			return
		}
		f(conn)
		s.sortAndSwitch(reason)
		result <- nil
	}); err != nil {
		return err
	}

	return <-result
}

// SelectedConnection returns the selected pair, or the zero handle.
func (s *Scheduler) SelectedConnection() (connection.Handle, error) {
	result := make(chan connection.Handle, 1)
	if err := s.run(func(s *Scheduler) {
		result <- s.controller.SelectedConnection()
	}); err != nil {
		return connection.Handle{}, err
	}

	return <-result, nil
}

// SetRole changes the local ICE role. Pair priorities are recomputed for
// the new role.
func (s *Scheduler) SetRole(role Role) error {
	return s.run(func(s *Scheduler) {
		if s.role == role {
			return
		}
		s.role = role
		s.table.Range(func(_ connection.Handle, conn *connection.Connection) bool {
			conn.SetControlling(role == RoleControlling)

			return true
		})
		s.sortAndSwitch(SwitchReasonRemoteCandidateGenerationChange)
	})
}

// SetTransportState records the aggregate ICE transport state.
func (s *Scheduler) SetTransportState(state TransportState) error {
	return s.run(func(s *Scheduler) {
		if s.transportState != state {
			s.log.Infof("Transport state changed: %s -> %s", s.transportState, state)
			s.transportState = state
		}
	})
}

// SetRemoteICEMode records whether the peer is a lite implementation.
func (s *Scheduler) SetRemoteICEMode(mode ICEMode) error {
	return s.run(func(s *Scheduler) {
		s.remoteICEMode = mode
	})
}

// SetICEConfig replaces the controller configuration.
func (s *Scheduler) SetICEConfig(config Config) error {
	result := make(chan error, 1)
	if err := s.run(func(s *Scheduler) {
		result <- s.controller.SetICEConfig(config)
	}); err != nil {
		return err
	}

	return <-result
}

func (s *Scheduler) pingTick() {
	result := s.controller.SelectConnectionToPing(s.lastPingSent)
	if conn, ok := s.table.Get(result.Connection); ok {
		useCandidate := s.role == RoleControlling &&
			s.controller.GetUseCandidateAttr(result.Connection, s.nominationMode, s.remoteICEMode)
		s.controller.MarkConnectionPinged(result.Connection)

		now := time.Now()
		conn.OnPingSent(now)
		s.lastPingSent = now

		s.log.Tracef("Pinging %s (use-candidate: %t)", conn, useCandidate)
		if hdlr := s.onPingHdlr; hdlr != nil {
			hdlr(result.Connection, conn, useCandidate)
		}
	}

	s.pingTimer = time.AfterFunc(result.RecheckDelay, func() {
		_ = s.run(func(s *Scheduler) {
			s.pingTick()
		})
	})
}

func (s *Scheduler) sortAndSwitch(reason SwitchReason) {
	result := s.controller.SortAndSwitchConnection(reason)
	if !result.Connection.IsZero() {
		s.switchSelectedConnection(reason, result.Connection)
	}

	if event := result.RecheckEvent; event != nil {
		s.log.Debugf("Rechecking selection for %s in %v", event.Reason, event.Delay)

		var timer *time.Timer
		timer = time.AfterFunc(event.Delay, func() {
			_ = s.run(func(s *Scheduler) {
				delete(s.rechecks, timer)
				s.sortAndSwitch(event.Reason)
			})
		})
		s.rechecks[timer] = struct{}{}
	}
}

func (s *Scheduler) switchSelectedConnection(reason SwitchReason, h connection.Handle) {
	previous := s.controller.SelectedConnection()
	s.controller.SetSelectedConnection(h)
	s.log.Infof("Selected connection changed for %s: %s -> %s", reason, previous, h)

	if s.transportState == TransportStateNew || s.transportState == TransportStateChecking {
		s.transportState = TransportStateConnected
	}

	if hdlr := s.onSelectedConnectionChangeHdlr; hdlr != nil {
		hdlr(h, reason)
	}

	s.pruneConnections()
}

func (s *Scheduler) pruneConnections() {
	for _, h := range s.controller.PruneConnections() {
		if _, ok := s.pruned[h]; ok {
			continue
		}
		s.pruned[h] = struct{}{}
		if conn, ok := s.table.Get(h); ok {
			conn.Prune()
			s.log.Debugf("Pruned %s", conn)
		}
		if hdlr := s.onPruneHdlr; hdlr != nil {
			hdlr(h)
		}
	}
}
