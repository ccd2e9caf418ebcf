// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Command moodctl is the MoodTune operator CLI. It reads the same
// configuration as the server and works on the configured stores and models
// directly, without a running server.
//
//	moodctl classify ./frames
//	moodctl recommend happy
//	moodctl user add alice --password secret
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
