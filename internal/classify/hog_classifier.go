// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package classify

import (
	"fmt"
	"image"

	"github.com/tomtom215/moodtune/internal/logging"
)

const backendHOG = "hog"

// HOGClassifier scores HOG descriptors with a linear model.
type HOGClassifier struct {
	model  *LinearModel
	labels []Label
}

// NewHOGClassifier creates a HOGClassifier. An empty label table is
// accepted; classification then always fails with ErrLabelMisalignment.
func NewHOGClassifier(model *LinearModel, labels []Label) (*HOGClassifier, error) {
	if model == nil {
		return nil, fmt.Errorf("hog classifier: nil model")
	}
	if err := model.Validate(HOGFeatureLen); err != nil {
		return nil, fmt.Errorf("hog classifier: %w", err)
	}
	return &HOGClassifier{model: model, labels: labels}, nil
}

// Classify implements Classifier.
func (c *HOGClassifier) Classify(face *image.Gray) (Label, error) {
	if err := checkCrop(backendHOG, face); err != nil {
		return "", err
	}
	idx := c.model.Predict(HOGDescriptor(face))
	label, err := resolveLabel(backendHOG, c.labels, idx)
	if err != nil {
		logging.Error().
			Err(err).
			Int("index", idx).
			Int("labels", len(c.labels)).
			Msg("Model output misaligned with label table")
		return "", err
	}
	return label, nil
}

// Labels implements Classifier.
func (c *HOGClassifier) Labels() []Label { return c.labels }

// Backend implements Classifier.
func (c *HOGClassifier) Backend() string { return backendHOG }
