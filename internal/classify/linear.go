// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package classify

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// LinearModel is a pretrained one-vs-rest linear classifier exported as
//
//	{"coef": [[...], ...], "intercept": [...], "classes": [0, 1, ...]}
//
// A single coefficient row denotes a binary model whose positive side is
// classes[1].
type LinearModel struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
	Classes   []int       `json:"classes,omitempty"`
}

// LoadLinearModel reads and validates a model file.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read linear model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse linear model: %w", err)
	}
	if err := m.Validate(HOGFeatureLen); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the model is usable for features of length dim.
func (m *LinearModel) Validate(dim int) error {
	if len(m.Coef) == 0 {
		return fmt.Errorf("linear model has no coefficients")
	}
	if len(m.Intercept) != len(m.Coef) {
		return fmt.Errorf("linear model has %d intercepts for %d coefficient rows", len(m.Intercept), len(m.Coef))
	}
	for i, row := range m.Coef {
		if len(row) != dim {
			return fmt.Errorf("linear model row %d has %d weights, want %d", i, len(row), dim)
		}
	}
	want := len(m.Coef)
	if want == 1 {
		want = 2
	}
	if m.Classes != nil && len(m.Classes) != want {
		return fmt.Errorf("linear model lists %d classes, want %d", len(m.Classes), want)
	}
	return nil
}

// Predict returns the raw class index for x. The index is not bounds
// checked against any label table.
func (m *LinearModel) Predict(x []float64) int {
	if len(m.Coef) == 1 {
		pos := 0
		if dot(m.Coef[0], x)+m.Intercept[0] > 0 {
			pos = 1
		}
		return m.class(pos)
	}

	best, bestScore := 0, 0.0
	for i, row := range m.Coef {
		score := dot(row, x) + m.Intercept[i]
		if i == 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return m.class(best)
}

func (m *LinearModel) class(pos int) int {
	if m.Classes == nil {
		return pos
	}
	return m.Classes[pos]
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
