// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// icesim replays a YAML scenario against the ICE candidate pair controller
// on a virtual clock and prints every decision it makes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pion/icecontrol/internal/log"
	"github.com/spf13/cobra"
)

const (
	logLevelFlag = "log-level"
	trialsFlag   = "trials"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "icesim",
		Short:        "Simulate ICE candidate pair selection",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String(logLevelFlag, "warn", "controller log level: debug, info, warn or error")
	rootCmd.AddCommand(newRunCmd())

	return rootCmd
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Play a scenario and print the controller decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := cmd.Flags().GetString(logLevelFlag)
			if err != nil {
				return err
			}
			trials, err := cmd.Flags().GetString(trialsFlag)
			if err != nil {
				return err
			}

			scenario, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed(trialsFlag) {
				scenario.FieldTrials = trials
			}

			return runScenario(scenario, level, cmd.OutOrStdout())
		},
	}
	runCmd.Flags().String(trialsFlag, "", "field trials overriding the scenario, e.g. initial_select_dampening:100")

	return runCmd
}

func runScenario(scenario *Scenario, level string, out io.Writer) error {
	loggerFactory, err := log.NewDevelopmentFactory(level)
	if err != nil {
		return fmt.Errorf("icesim: %w", err)
	}
	defer func() {
		_ = loggerFactory.Sync()
	}()

	config, err := scenario.controllerConfig()
	if err != nil {
		return err
	}

	sim, err := newSimulator(scenario, config, loggerFactory, out)
	if err != nil {
		return err
	}

	return sim.Run()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
