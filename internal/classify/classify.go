// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package classify maps a 48x48 grayscale face crop to an emotion label.
//
// Two backends satisfy Classifier:
//
//   - HOGClassifier: gradient histogram descriptor (8x8 cells, 2x2 blocks)
//     scored by a pretrained linear multi-class model. The winning class
//     index is resolved against an alphabetically sorted label list.
//   - CNNClassifier: pixel intensities scaled to [0,1] and fed through a
//     pretrained sequential convolutional network; the label is the argmax
//     over DefaultLabels.
//
// The backend is chosen once by New. Callers must resize crops to CropSize
// before classification; other sizes are rejected.
package classify

import (
	"errors"
	"fmt"
	"image"

	"github.com/tomtom215/moodtune/internal/config"
)

// CropSize is the required edge length of a face crop.
const CropSize = 48

// Label is an emotion tag from the loaded label set.
type Label string

// String implements fmt.Stringer.
func (l Label) String() string { return string(l) }

// Classifier assigns a label to a face crop.
type Classifier interface {
	Classify(face *image.Gray) (Label, error)
	// Labels returns the closed label set this classifier can emit.
	Labels() []Label
	// Backend names the implementation for logs and health output.
	Backend() string
}

var (
	// ErrClassification is matched by every ClassificationError.
	ErrClassification = errors.New("classification failed")

	// ErrCropSize means the crop is not CropSize x CropSize.
	ErrCropSize = errors.New("face crop must be 48x48")

	// ErrLabelMisalignment means the model produced an index outside the
	// label table, or the table is empty. This indicates a model/label
	// mismatch, not bad input.
	ErrLabelMisalignment = errors.New("model output does not align with label table")
)

// ClassificationError describes a classifier fault.
type ClassificationError struct {
	Backend string
	// Index is the raw model output index, or -1 when not applicable.
	Index int
	Err   error
}

func (e *ClassificationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s classifier: index %d: %v", e.Backend, e.Index, e.Err)
	}
	return fmt.Sprintf("%s classifier: %v", e.Backend, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrClassification) match any ClassificationError.
func (e *ClassificationError) Is(target error) bool { return target == ErrClassification }

func checkCrop(backend string, face *image.Gray) error {
	if face == nil {
		return &ClassificationError{Backend: backend, Index: -1, Err: ErrCropSize}
	}
	if b := face.Bounds(); b.Dx() != CropSize || b.Dy() != CropSize {
		return &ClassificationError{
			Backend: backend,
			Index:   -1,
			Err:     fmt.Errorf("%w: got %dx%d", ErrCropSize, b.Dx(), b.Dy()),
		}
	}
	return nil
}

// resolveLabel returns labels[idx] or a misalignment error.
func resolveLabel(backend string, labels []Label, idx int) (Label, error) {
	if len(labels) == 0 || idx < 0 || idx >= len(labels) {
		return "", &ClassificationError{Backend: backend, Index: idx, Err: ErrLabelMisalignment}
	}
	return labels[idx], nil
}

// New builds the classifier selected by cfg.Backend.
func New(cfg config.ClassifierConfig) (Classifier, error) {
	switch cfg.Backend {
	case config.BackendHOG:
		model, err := LoadLinearModel(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		labels, err := LoadLabels(cfg.LabelsPath)
		if err != nil {
			return nil, err
		}
		return NewHOGClassifier(model, labels)
	case config.BackendCNN:
		net, err := LoadNetwork(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		return NewCNNClassifier(net, DefaultLabels())
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
}
