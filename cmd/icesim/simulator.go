// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"net/netip"
	"sort"
	"strings"
	"time"

	"github.com/pion/ice/v4"
	"github.com/pion/icecontrol"
	"github.com/pion/icecontrol/internal/bindreq"
	"github.com/pion/icecontrol/pkg/connection"
	"github.com/pion/logging"
)

// simEpoch is the virtual time every run starts at.
var simEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

var _ icecontrol.Transport = (*simulator)(nil)

type pendingRecheck struct {
	at     time.Time
	reason icecontrol.SwitchReason
}

// simulator plays a Scenario against a Controller. It owns the connection
// table and acts as the controller's Transport.
type simulator struct {
	scenario *Scenario
	out      io.Writer
	log      logging.LeveledLogger

	now        time.Time
	table      *connection.Table
	controller *icecontrol.Controller

	role           icecontrol.Role
	transportState icecontrol.TransportState
	nomination     icecontrol.NominationMode
	remoteICEMode  icecontrol.ICEMode
	credentials    CredentialsSpec
	tieBreaker     uint64

	networks map[string]*connection.Network
	handles  map[string]connection.Handle
	names    map[connection.Handle]string
	pruned   map[connection.Handle]struct{}

	lastPingSent time.Time
	rechecks     []pendingRecheck
}

func newSimulator(scenario *Scenario, config icecontrol.Config, loggerFactory logging.LoggerFactory, out io.Writer) (*simulator, error) {
	s := &simulator{
		scenario:       scenario,
		out:            out,
		log:            loggerFactory.NewLogger("icesim"),
		now:            simEpoch,
		table:          connection.NewTable(),
		role:           scenario.Role,
		transportState: scenario.TransportState,
		nomination:     scenario.Nomination,
		remoteICEMode:  scenario.RemoteICEMode,
		credentials:    scenario.Credentials,
		tieBreaker:     bindreq.NewTieBreaker(),
		networks:       map[string]*connection.Network{},
		handles:        map[string]connection.Handle{},
		names:          map[connection.Handle]string{},
		pruned:         map[connection.Handle]struct{}{},
	}
	if s.role == icecontrol.Role(icecontrol.Unknown) {
		s.role = icecontrol.RoleControlling
	}
	if s.transportState == icecontrol.TransportState(icecontrol.Unknown) {
		s.transportState = icecontrol.TransportStateChecking
	}
	if s.nomination == icecontrol.NominationMode(icecontrol.Unknown) {
		s.nomination = icecontrol.NominationModeSemiAggressive
	}
	if s.remoteICEMode == icecontrol.ICEMode(icecontrol.Unknown) {
		s.remoteICEMode = icecontrol.ICEModeFull
	}
	if err := s.fillCredentials(); err != nil {
		return nil, err
	}

	controller, err := icecontrol.NewController(&icecontrol.ControllerConfig{
		Connections:   s.table,
		Transport:     s,
		Config:        config,
		LoggerFactory: loggerFactory,
		Now:           func() time.Time { return s.now },
	})
	if err != nil {
		return nil, err
	}
	s.controller = controller

	for _, n := range scenario.Networks {
		network := &connection.Network{Name: n.Name, Type: n.Type, UnderlyingTypeForVPN: n.Underlying}
		if n.IP != "" {
			network.BestIP = netip.MustParseAddr(n.IP)
		}
		s.networks[n.Name] = network
	}

	return s, nil
}

func (s *simulator) fillCredentials() error {
	if s.credentials.LocalUfrag == "" || s.credentials.LocalPassword == "" {
		ufrag, pwd, err := bindreq.GenerateCredentials()
		if err != nil {
			return err
		}
		s.credentials.LocalUfrag, s.credentials.LocalPassword = ufrag, pwd
	}
	if s.credentials.RemoteUfrag == "" || s.credentials.RemotePassword == "" {
		ufrag, pwd, err := bindreq.GenerateCredentials()
		if err != nil {
			return err
		}
		s.credentials.RemoteUfrag, s.credentials.RemotePassword = ufrag, pwd
	}

	return nil
}

// TransportState implements icecontrol.Transport.
func (s *simulator) TransportState() icecontrol.TransportState { return s.transportState }

// Role implements icecontrol.Transport.
func (s *simulator) Role() icecontrol.Role { return s.role }

// IsConnectionPruned implements icecontrol.Transport.
func (s *simulator) IsConnectionPruned(h connection.Handle) bool {
	_, ok := s.pruned[h]

	return ok
}

func (s *simulator) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, "%8s  ", s.now.Sub(simEpoch))
	fmt.Fprintf(s.out, format, args...)
	fmt.Fprintln(s.out)
}

func (s *simulator) name(h connection.Handle) string {
	if name, ok := s.names[h]; ok {
		return name
	}

	return "none"
}

// Run adds every connection that is not deferred and plays the timeline.
func (s *simulator) Run() error {
	for _, spec := range s.scenario.Connections {
		if spec.Deferred {
			continue
		}
		if err := s.add(spec.Name); err != nil {
			return err
		}
	}

	for i, step := range s.scenario.Steps {
		if err := s.step(step); err != nil {
			return fmt.Errorf("icesim: step %d: %w", i, err)
		}
	}

	s.printf("done: selected=%s connections=%s", s.name(s.controller.SelectedConnection()), s.describeOrder())

	return nil
}

func (s *simulator) step(step Step) error {
	if step.Advance > 0 {
		s.advance(step.Advance)
	}
	if step.TransportState != nil {
		s.transportState = *step.TransportState
		s.printf("transport state %s", s.transportState)
	}
	if step.Add != "" {
		if err := s.add(step.Add); err != nil {
			return err
		}
	}
	if step.Update != nil {
		s.update(step.Update)
	}
	for i := 0; i < step.Ping; i++ {
		if err := s.ping(); err != nil {
			return err
		}
	}
	if step.Switch != nil {
		s.sortAndSwitch(*step.Switch)
	}
	if step.Prune {
		s.prune()
	}
	if step.Destroy != "" {
		s.destroy(step.Destroy)
	}

	return nil
}

// advance moves the clock forward, firing due rechecks at their own time.
func (s *simulator) advance(d time.Duration) {
	target := s.now.Add(d)
	for {
		sort.SliceStable(s.rechecks, func(i, j int) bool {
			return s.rechecks[i].at.Before(s.rechecks[j].at)
		})
		if len(s.rechecks) == 0 || s.rechecks[0].at.After(target) {
			break
		}
		next := s.rechecks[0]
		s.rechecks = s.rechecks[1:]
		s.now = next.at
		s.printf("recheck %s", next.reason)
		s.sortAndSwitch(next.reason)
	}
	s.now = target
}

func (s *simulator) add(name string) error {
	var spec ConnectionSpec
	for _, c := range s.scenario.Connections {
		if c.Name == name {
			spec = c
		}
	}
	if _, ok := s.handles[name]; ok {
		return fmt.Errorf("%w: %q added twice", errDuplicateName, name)
	}

	local, err := ice.UnmarshalCandidate(spec.Local)
	if err != nil {
		return fmt.Errorf("icesim: local candidate of %q: %w", name, err)
	}
	remote, err := ice.UnmarshalCandidate(spec.Remote)
	if err != nil {
		return fmt.Errorf("icesim: remote candidate of %q: %w", name, err)
	}

	remotePassword := s.credentials.RemotePassword
	if spec.NoRemotePassword {
		remotePassword = ""
	}
	conn, err := connection.New(&connection.Config{
		Local:       connection.NewCandidate(local, s.credentials.LocalUfrag, s.credentials.LocalPassword),
		Remote:      connection.NewCandidate(remote, s.credentials.RemoteUfrag, remotePassword),
		Network:     s.networks[spec.Network],
		Controlling: s.role == icecontrol.RoleControlling,
	})
	if err != nil {
		return err
	}

	h := s.table.Insert(conn)
	s.handles[name] = h
	s.names[h] = name
	s.controller.AddConnection(h)
	s.printf("add %s %s", name, conn)

	reason := icecontrol.SwitchReasonNewConnectionFromLocalCandidate
	if remote.Type() == ice.CandidateTypePeerReflexive {
		reason = icecontrol.SwitchReasonNewConnectionFromUnknownRemoteAddress
	}
	s.sortAndSwitch(reason)

	return nil
}

func (s *simulator) update(u *UpdateStep) {
	h := s.handles[u.Connection]
	conn, ok := s.table.Get(h)
	if !ok {
		s.printf("update %s: not present", u.Connection)

		return
	}

	if u.WriteState != nil {
		conn.SetWriteState(*u.WriteState)
	}
	if u.Receiving != nil {
		conn.SetReceiving(s.now, *u.Receiving)
	}
	if u.Connected != nil {
		conn.SetConnected(*u.Connected)
	}
	if u.Failed {
		conn.SetState(ice.CandidatePairStateFailed)
	}
	if u.RTT != nil {
		conn.OnPingResponse(s.now, *u.RTT)
	}
	if u.PingReceived {
		conn.OnPingReceived(s.now)
	}
	if u.DataReceived {
		conn.OnDataReceived(s.now)
	}
	if u.Nomination > 0 {
		conn.SetRemoteNomination(u.Nomination)
	}
	s.printf("update %s %s", u.Connection, conn)

	reason := icecontrol.SwitchReasonConnectStateChange
	if u.Reason != nil {
		reason = *u.Reason
	}
	s.sortAndSwitch(reason)
}

func (s *simulator) ping() error {
	result := s.controller.SelectConnectionToPing(s.lastPingSent)
	conn, ok := s.table.Get(result.Connection)
	if !ok {
		s.printf("ping none, next check in %v", result.RecheckDelay)

		return nil
	}

	controlling := s.role == icecontrol.RoleControlling
	useCandidate := controlling &&
		s.controller.GetUseCandidateAttr(result.Connection, s.nomination, s.remoteICEMode)
	s.controller.MarkConnectionPinged(result.Connection)
	conn.OnPingSent(s.now)
	s.lastPingSent = s.now

	msg, err := bindreq.Build(bindreq.Params{
		LocalUfrag:     conn.Local().Username,
		RemoteUfrag:    conn.Remote().Username,
		RemotePassword: conn.Remote().Password,
		Priority:       conn.Local().Priority(),
		Controlling:    controlling,
		TieBreaker:     s.tieBreaker,
		UseCandidate:   useCandidate,
	})
	if err != nil {
		return err
	}

	// Decode the request the way the peer would to show what is on the wire.
	check, err := bindreq.Parse(msg.Raw, conn.Remote().Password)
	if err != nil {
		return err
	}
	s.printf("ping %s username=%s priority=%d use-candidate=%t, next check in %v",
		s.name(result.Connection), check.Username, check.Priority, check.UseCandidate, result.RecheckDelay)

	return nil
}

func (s *simulator) sortAndSwitch(reason icecontrol.SwitchReason) {
	result := s.controller.SortAndSwitchConnection(reason)
	s.log.Tracef("Order after %s: %s", reason, s.describeOrder())

	if !result.Connection.IsZero() {
		previous := s.controller.SelectedConnection()
		s.controller.SetSelectedConnection(result.Connection)
		s.printf("select %s (was %s) for %s", s.name(result.Connection), s.name(previous), reason)
		if s.transportState == icecontrol.TransportStateNew || s.transportState == icecontrol.TransportStateChecking {
			s.transportState = icecontrol.TransportStateConnected
		}
		s.prune()
	}

	if event := result.RecheckEvent; event != nil {
		s.printf("recheck for %s scheduled in %v", event.Reason, event.Delay)
		s.rechecks = append(s.rechecks, pendingRecheck{at: s.now.Add(event.Delay), reason: event.Reason})
	}
}

func (s *simulator) prune() {
	for _, h := range s.controller.PruneConnections() {
		if _, ok := s.pruned[h]; ok {
			continue
		}
		s.pruned[h] = struct{}{}
		if conn, ok := s.table.Get(h); ok {
			conn.Prune()
		}
		s.printf("prune %s", s.name(h))
	}
}

func (s *simulator) destroy(name string) {
	h, ok := s.handles[name]
	if !ok {
		return
	}
	wasSelected := s.controller.SelectedConnection() == h

	s.controller.OnConnectionDestroyed(h)
	s.table.Remove(h)
	delete(s.handles, name)
	delete(s.names, h)
	delete(s.pruned, h)
	s.printf("destroy %s", name)

	if wasSelected {
		s.sortAndSwitch(icecontrol.SwitchReasonSelectedConnectionDestroyed)
	}
}

func (s *simulator) describeOrder() string {
	names := []string{}
	for _, h := range s.controller.Connections() {
		names = append(names, s.name(h))
	}

	return "[" + strings.Join(names, " ") + "]"
}
