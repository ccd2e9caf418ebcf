// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moodtune/internal/app"
	"github.com/tomtom215/moodtune/internal/catalog"
	"github.com/tomtom215/moodtune/internal/mood"
)

func (c *cli) recommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <mood>",
		Short: "Resolve a mood to tracks through the configured catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, breaker, err := app.NewResolver(c.cfg, nil)
			if err != nil {
				return err
			}
			label := strings.Join(args, " ")
			tracks := resolver.Resolve(cmd.Context(), label)
			printTracks(cmd.OutOrStdout(), mood.Normalize(label), tracks)
			if breaker.State() != "closed" {
				fmt.Fprintf(cmd.ErrOrStderr(), "catalog circuit is %s\n", breaker.State())
			}
			return nil
		},
	}
}

func printTracks(w io.Writer, term string, tracks []catalog.Track) {
	fmt.Fprintf(w, "mood: %s\n", term)
	for i, t := range tracks {
		fmt.Fprintf(w, "%d. %s - %s\n   %s\n", i+1, t.Name, t.Artist, t.URL)
	}
}
