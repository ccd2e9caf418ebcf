// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/moodtune/internal/config"
	"github.com/tomtom215/moodtune/internal/logging"
)

// Version is the CLI version.
const Version = "0.1.0"

// cli carries state shared by subcommands.
type cli struct {
	cfg     *config.Config
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "moodctl",
		Short:         "MoodTune operator tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := "warn"
			if c.verbose {
				level = "debug"
			}
			logging.Init(logging.Config{Level: level, Format: "console"})
			c.cfg = cfg
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(c.classifyCmd(), c.recommendCmd(), c.userCmd())
	return root
}
