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

const backendCNN = "cnn"

// CNNClassifier runs a convolutional network over normalized pixels.
type CNNClassifier struct {
	net    *Network
	labels []Label
}

// NewCNNClassifier creates a CNNClassifier. The network must produce one
// score per label.
func NewCNNClassifier(net *Network, labels []Label) (*CNNClassifier, error) {
	if net == nil {
		return nil, fmt.Errorf("cnn classifier: nil network")
	}
	if net.OutputLen() == 0 {
		if err := net.Compile(); err != nil {
			return nil, fmt.Errorf("cnn classifier: %w", err)
		}
	}
	if net.OutputLen() != len(labels) {
		return nil, fmt.Errorf("cnn classifier: network emits %d scores for %d labels", net.OutputLen(), len(labels))
	}
	return &CNNClassifier{net: net, labels: labels}, nil
}

// Classify implements Classifier.
func (c *CNNClassifier) Classify(face *image.Gray) (Label, error) {
	if err := checkCrop(backendCNN, face); err != nil {
		return "", err
	}

	scores := c.net.Forward(NormalizePixels(face))
	if len(scores) != len(c.labels) {
		err := &ClassificationError{Backend: backendCNN, Index: -1, Err: ErrLabelMisalignment}
		logging.Error().Err(err).Int("scores", len(scores)).Int("labels", len(c.labels)).Msg("Network output misaligned with label list")
		return "", err
	}
	label, err := resolveLabel(backendCNN, c.labels, argmax(scores))
	if err != nil {
		logging.Error().Err(err).Int("scores", len(scores)).Msg("Network output misaligned with label list")
		return "", err
	}
	return label, nil
}

// Labels implements Classifier.
func (c *CNNClassifier) Labels() []Label { return c.labels }

// Backend implements Classifier.
func (c *CNNClassifier) Backend() string { return backendCNN }

// NormalizePixels scales 8-bit intensities to [0,1] in row-major order.
func NormalizePixels(face *image.Gray) []float32 {
	b := face.Bounds()
	out := make([]float32, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, float32(face.GrayAt(x, y).Y)/255)
		}
	}
	return out
}

// argmax returns the first index of the maximum value, or -1 if v is empty.
func argmax(v []float32) int {
	best := -1
	for i, x := range v {
		if best < 0 || x > v[best] {
			best = i
		}
	}
	return best
}
