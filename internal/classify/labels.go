// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package classify

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultLabels is the built-in label order of the CNN backend.
func DefaultLabels() []Label {
	return []Label{"Angry", "Disgust", "Fear", "Happy", "Sad", "Surprise", "Neutral"}
}

// LoadLabels reads the label table for the linear backend. path is either a
// directory, whose subdirectory names are the labels (one per training
// class), or a file with one label per line. The result is sorted so that
// it lines up with the class indices the model was trained with.
//
// A missing path yields an empty table rather than an error; every
// classification then fails with ErrLabelMisalignment.
func LoadLabels(path string) ([]Label, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat labels: %w", err)
	}

	var names []string
	if info.IsDir() {
		names, err = labelsFromDir(path)
	} else {
		names, err = labelsFromFile(path)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	labels := make([]Label, len(names))
	for i, n := range names {
		labels[i] = Label(n)
	}
	return labels, nil
}

func labelsFromDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read labels dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func labelsFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer func() { _ = f.Close() }()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return names, nil
}
