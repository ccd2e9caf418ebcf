// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package predict runs the mood inference pipeline: decode, locate the
// largest face, crop to 48x48, classify, and record the caller's last known
// mood.
package predict

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodtune/internal/classify"
	"github.com/tomtom215/moodtune/internal/logging"
	"github.com/tomtom215/moodtune/internal/metrics"
	"github.com/tomtom215/moodtune/internal/mood"
	"github.com/tomtom215/moodtune/internal/vision"
)

// Result is a completed prediction. NoFace results carry the
// mood.NoFaceDetected sentinel as Emotion and never a label.
type Result struct {
	Emotion     string
	NoFace      bool
	Face        vision.FaceBox
	CapturePath string
}

// Predictor is safe for concurrent use.
type Predictor struct {
	locator    *vision.Locator
	classifier classify.Classifier
	state      *mood.State
	capturer   *vision.Capturer
	maxBytes   int
	maxPixels  int
	logger     zerolog.Logger
}

// Options wires a Predictor.
type Options struct {
	Detector   vision.Detector
	Classifier classify.Classifier
	State      *mood.State
	// Capturer is optional; nil disables frame capture.
	Capturer       *vision.Capturer
	MaxImageBytes  int
	MaxImagePixels int
}

// New creates a Predictor.
func New(o Options) (*Predictor, error) {
	switch {
	case o.Detector == nil:
		return nil, errors.New("predict: detector is required")
	case o.Classifier == nil:
		return nil, errors.New("predict: classifier is required")
	case o.State == nil:
		return nil, errors.New("predict: mood state is required")
	}
	return &Predictor{
		locator:    vision.NewLocator(o.Detector),
		classifier: o.Classifier,
		state:      o.State,
		capturer:   o.Capturer,
		maxBytes:   o.MaxImageBytes,
		maxPixels:  o.MaxImagePixels,
		logger:     logging.WithComponent("predict"),
	}, nil
}

// Classifier returns the configured backend.
func (p *Predictor) Classifier() classify.Classifier {
	return p.classifier
}

// Predict decodes a transport payload and classifies it for identity.
// Decode failures match vision.ErrDecode; model faults match
// classify.ErrClassification.
func (p *Predictor) Predict(ctx context.Context, identity, payload string) (Result, error) {
	start := time.Now()
	img, err := vision.DecodeImage(payload, p.maxBytes, p.maxPixels)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeDecodeError, "", time.Since(start))
		logging.Ctx(ctx).Warn().Err(err).Msg("DecodeError: rejecting image payload")
		return Result{}, err
	}
	return p.classify(ctx, identity, img, start)
}

// PredictImage classifies an already decoded frame.
func (p *Predictor) PredictImage(ctx context.Context, identity string, img image.Image) (Result, error) {
	return p.classify(ctx, identity, img, time.Now())
}

func (p *Predictor) classify(ctx context.Context, identity string, img image.Image, start time.Time) (Result, error) {
	gray := vision.ToGray(img)

	box, err := p.locator.LocateLargest(gray)
	if errors.Is(err, vision.ErrNoFace) {
		p.state.Clear(identity)
		metrics.RecordPrediction(metrics.OutcomeNoFace, "", time.Since(start))
		logging.Ctx(ctx).Info().Msg("no face detected")
		return Result{Emotion: mood.NoFaceDetected, NoFace: true}, nil
	}

	crop := vision.CropResize(gray, box, classify.CropSize)
	label, err := p.classifier.Classify(crop)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeClassificationError, "", time.Since(start))
		// Loud on purpose: this means the model and label table disagree.
		logging.Ctx(ctx).Error().Err(err).
			Str("backend", p.classifier.Backend()).
			Int("labels", len(p.classifier.Labels())).
			Msg("ClassificationError: model output does not match label table")
		return Result{}, fmt.Errorf("classify face: %w", err)
	}

	p.state.Set(identity, label.String())
	metrics.RecordPrediction(metrics.OutcomeLabel, label.String(), time.Since(start))

	res := Result{Emotion: label.String(), Face: box}
	if p.capturer != nil {
		path, err := p.capturer.Save(img)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("failed to capture frame")
		} else {
			res.CapturePath = path
		}
	}

	logging.Ctx(ctx).Info().
		Str("emotion", res.Emotion).
		Int("face_w", box.Width).
		Int("face_h", box.Height).
		Dur("took", time.Since(start)).
		Msg("prediction complete")
	return res, nil
}
