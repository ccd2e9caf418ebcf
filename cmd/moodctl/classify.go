// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tomtom215/moodtune/internal/app"
	"github.com/tomtom215/moodtune/internal/mood"
	"github.com/tomtom215/moodtune/internal/predict"
	"github.com/tomtom215/moodtune/internal/vision"
)

// cliIdentity owns the mood state entries written by classify runs.
const cliIdentity = "moodctl"

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// imagePredictor is the part of predict.Predictor classify needs.
type imagePredictor interface {
	PredictImage(ctx context.Context, identity string, img image.Image) (predict.Result, error)
}

func (c *cli) classifyCmd() *cobra.Command {
	var capture bool
	cmd := &cobra.Command{
		Use:   "classify <file|dir>",
		Short: "Run face location and mood classification on image files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, isDir, err := collectImages(args[0])
			if err != nil {
				return err
			}

			cfg := *c.cfg
			cfg.Vision.CaptureEnabled = capture
			p, err := app.NewPredictor(&cfg, mood.NewState(), nil, nil)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if isDir {
				bar = progressbar.NewOptions(len(files),
					progressbar.OptionSetDescription("classifying"),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
				)
			}

			failed := classifyFiles(cmd.Context(), p, files, cfg.Vision.MaxImagePixels, cmd.OutOrStdout(), bar)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&capture, "capture", false, "Save a copy of each classified frame to the capture directory")
	return cmd
}

// collectImages expands path into the image files to classify. A directory
// is walked recursively and its files are returned sorted.
func collectImages(path string) (files []string, isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if !info.IsDir() {
		return []string{path}, false, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, true, err
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("no image files under %s", path)
	}
	sort.Strings(files)
	return files, true, nil
}

// classifyFiles writes one tab separated line per file and returns the
// number of files that could not be classified. Frames larger than
// maxPixels are rejected before decoding. It stops early when ctx is
// canceled.
func classifyFiles(ctx context.Context, p imagePredictor, files []string, maxPixels int, w io.Writer, bar *progressbar.ProgressBar) int {
	failed := 0
	for _, f := range files {
		if ctx.Err() != nil {
			return failed + 1
		}
		emotion, err := classifyFile(ctx, p, f, maxPixels)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\terror: %v\n", f, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", f, emotion)
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return failed
}

func classifyFile(ctx context.Context, p imagePredictor, path string, maxPixels int) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	img, err := vision.DecodeRaster(raw, maxPixels)
	if err != nil {
		return "", err
	}
	res, err := p.PredictImage(ctx, cliIdentity, img)
	if err != nil {
		return "", err
	}
	return res.Emotion, nil
}
