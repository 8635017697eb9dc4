// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/pion/icecontrol"
	"github.com/pion/icecontrol/pkg/connection"
	"gopkg.in/yaml.v3"
)

var (
	errNoConnections     = errors.New("icesim: scenario has no connections")
	errUnknownNetwork    = errors.New("icesim: unknown network")
	errUnknownConnection = errors.New("icesim: unknown connection")
	errDuplicateName     = errors.New("icesim: duplicate name")
	errEmptyStep         = errors.New("icesim: step does nothing")
)

// Scenario is a scripted run of the controller against a virtual clock.
type Scenario struct {
	Role           icecontrol.Role           `yaml:"role"`
	Nomination     icecontrol.NominationMode `yaml:"nomination"`
	RemoteICEMode  icecontrol.ICEMode        `yaml:"remote_ice_mode"`
	TransportState icecontrol.TransportState `yaml:"transport_state"`
	FieldTrials    string                    `yaml:"field_trials"`

	Config      ConfigSpec       `yaml:"config"`
	Credentials CredentialsSpec  `yaml:"credentials"`
	Networks    []NetworkSpec    `yaml:"networks"`
	Connections []ConnectionSpec `yaml:"connections"`
	Steps       []Step           `yaml:"steps"`
}

// ConfigSpec mirrors icecontrol.Config. Unset durations keep their defaults.
type ConfigSpec struct {
	ReceivingTimeout                     *time.Duration `yaml:"receiving_timeout"`
	BackupConnectionPingInterval         *time.Duration `yaml:"backup_connection_ping_interval"`
	StableWritableConnectionPingInterval *time.Duration `yaml:"stable_writable_connection_ping_interval"`
	ReceivingSwitchingDelay              *time.Duration `yaml:"receiving_switching_delay"`
	CheckIntervalWeakConnectivity        *time.Duration `yaml:"check_interval_weak"`
	CheckIntervalStrongConnectivity      *time.Duration `yaml:"check_interval_strong"`
	CheckMinInterval                     *time.Duration `yaml:"check_min_interval"`

	PrioritizeMostLikelyCandidatePairs bool                     `yaml:"prioritize_most_likely_candidate_pairs"`
	PresumeWritableWhenFullyRelayed    bool                     `yaml:"presume_writable_when_fully_relayed"`
	NetworkPreference                  connection.AdapterType   `yaml:"network_preference"`
	VPNPreference                      icecontrol.VPNPreference `yaml:"vpn_preference"`
}

// CredentialsSpec holds the ICE credentials of both agents. Empty values
// are generated.
type CredentialsSpec struct {
	LocalUfrag     string `yaml:"local_ufrag"`
	LocalPassword  string `yaml:"local_password"`
	RemoteUfrag    string `yaml:"remote_ufrag"`
	RemotePassword string `yaml:"remote_password"`
}

// NetworkSpec describes a local interface.
type NetworkSpec struct {
	Name       string                 `yaml:"name"`
	Type       connection.AdapterType `yaml:"type"`
	Underlying connection.AdapterType `yaml:"underlying"`
	IP         string                 `yaml:"ip"`
}

// ConnectionSpec describes a candidate pair by its two candidate lines.
type ConnectionSpec struct {
	Name    string `yaml:"name"`
	Network string `yaml:"network"`
	Local   string `yaml:"local"`
	Remote  string `yaml:"remote"`

	// NoRemotePassword simulates a peer reflexive remote whose credentials
	// are not known yet.
	NoRemotePassword bool `yaml:"no_remote_password"`

	// Deferred connections are only added by an "add" step.
	Deferred bool `yaml:"deferred"`
}

// Step is one entry of the timeline. Exactly one action is expected per step.
type Step struct {
	Advance time.Duration            `yaml:"advance"`
	Add     string                   `yaml:"add"`
	Update  *UpdateStep              `yaml:"update"`
	Ping    int                      `yaml:"ping"`
	Switch  *icecontrol.SwitchReason `yaml:"switch"`
	Prune   bool                     `yaml:"prune"`
	Destroy string                   `yaml:"destroy"`

	TransportState *icecontrol.TransportState `yaml:"transport_state"`
}

// UpdateStep changes the observed state of one connection, then runs a
// selection pass.
type UpdateStep struct {
	Connection   string                 `yaml:"connection"`
	WriteState   *connection.WriteState `yaml:"write_state"`
	Receiving    *bool                  `yaml:"receiving"`
	Connected    *bool                  `yaml:"connected"`
	Failed       bool                   `yaml:"failed"`
	RTT          *time.Duration         `yaml:"rtt"`
	PingReceived bool                   `yaml:"ping_received"`
	DataReceived bool                   `yaml:"data_received"`
	Nomination   uint32                 `yaml:"nomination"`

	// Reason defaults to connect-state-change.
	Reason *icecontrol.SwitchReason `yaml:"reason"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return ParseScenario(f)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(r io.Reader) (*Scenario, error) {
	scenario := &Scenario{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(scenario); err != nil {
		return nil, fmt.Errorf("icesim: decoding scenario: %w", err)
	}

	if err := scenario.validate(); err != nil {
		return nil, err
	}

	return scenario, nil
}

func (s *Scenario) validate() error {
	if len(s.Connections) == 0 {
		return errNoConnections
	}

	networks := map[string]struct{}{}
	for _, n := range s.Networks {
		if _, ok := networks[n.Name]; ok {
			return fmt.Errorf("%w: network %q", errDuplicateName, n.Name)
		}
		if n.IP != "" {
			if _, err := netip.ParseAddr(n.IP); err != nil {
				return fmt.Errorf("icesim: network %q: %w", n.Name, err)
			}
		}
		networks[n.Name] = struct{}{}
	}

	connections := map[string]struct{}{}
	for _, c := range s.Connections {
		if _, ok := connections[c.Name]; ok {
			return fmt.Errorf("%w: connection %q", errDuplicateName, c.Name)
		}
		if _, ok := networks[c.Network]; !ok {
			return fmt.Errorf("%w: %q used by %q", errUnknownNetwork, c.Network, c.Name)
		}
		connections[c.Name] = struct{}{}
	}

	for i, step := range s.Steps {
		for _, name := range []string{step.Add, step.Destroy, step.updateTarget()} {
			if name == "" {
				continue
			}
			if _, ok := connections[name]; !ok {
				return fmt.Errorf("%w: %q in step %d", errUnknownConnection, name, i)
			}
		}
		if step.empty() {
			return fmt.Errorf("%w: step %d", errEmptyStep, i)
		}
	}

	return nil
}

func (s Step) updateTarget() string {
	if s.Update == nil {
		return ""
	}

	return s.Update.Connection
}

func (s Step) empty() bool {
	return s.Advance == 0 && s.Add == "" && s.Update == nil && s.Ping == 0 &&
		s.Switch == nil && !s.Prune && s.Destroy == "" && s.TransportState == nil
}

// controllerConfig converts the YAML config into a controller Config.
func (s *Scenario) controllerConfig() (icecontrol.Config, error) {
	trials, err := icecontrol.ParseFieldTrials(s.FieldTrials)
	if err != nil {
		return icecontrol.Config{}, err
	}

	c := s.Config
	config := icecontrol.Config{
		ReceivingTimeout:                     c.ReceivingTimeout,
		BackupConnectionPingInterval:         c.BackupConnectionPingInterval,
		StableWritableConnectionPingInterval: c.StableWritableConnectionPingInterval,
		ReceivingSwitchingDelay:              c.ReceivingSwitchingDelay,
		CheckIntervalWeakConnectivity:        c.CheckIntervalWeakConnectivity,
		CheckIntervalStrongConnectivity:      c.CheckIntervalStrongConnectivity,
		CheckMinInterval:                     c.CheckMinInterval,
		PrioritizeMostLikelyCandidatePairs:   c.PrioritizeMostLikelyCandidatePairs,
		PresumeWritableWhenFullyRelayed:      c.PresumeWritableWhenFullyRelayed,
		NetworkPreference:                    c.NetworkPreference,
		VPNPreference:                        c.VPNPreference,
		FieldTrials:                          trials,
	}

	return config, config.Validate()
}
