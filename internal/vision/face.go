// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package vision

import (
	"errors"
	"image"
)

// ErrNoFace is the no-face outcome. It is a result, not a failure.
var ErrNoFace = errors.New("no face detected")

// FaceBox is a face region in frame coordinates.
type FaceBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (b FaceBox) Area() int { return b.Width * b.Height }

// Rect returns the box as an image.Rectangle.
func (b FaceBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Detector finds candidate face boxes in a grayscale frame. Output order is
// not guaranteed to be sorted by size.
type Detector interface {
	Detect(gray *image.Gray) []FaceBox
}

// LargestFace returns the box with the largest area. Ties keep the earliest
// box in detector order. ok is false when boxes is empty.
func LargestFace(boxes []FaceBox) (best FaceBox, ok bool) {
	for i, b := range boxes {
		if i == 0 || b.Area() > best.Area() {
			best = b
		}
	}
	return best, len(boxes) > 0
}

// Locator wraps a Detector with the largest-face policy.
type Locator struct {
	detector Detector
}

// NewLocator creates a Locator.
func NewLocator(d Detector) *Locator {
	return &Locator{detector: d}
}

// Locate returns all detected boxes.
func (l *Locator) Locate(gray *image.Gray) []FaceBox {
	return l.detector.Detect(gray)
}

// LocateLargest returns the largest face, or ErrNoFace.
func (l *Locator) LocateLargest(gray *image.Gray) (FaceBox, error) {
	box, ok := LargestFace(l.detector.Detect(gray))
	if !ok {
		return FaceBox{}, ErrNoFace
	}
	return box, nil
}
