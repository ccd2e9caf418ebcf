// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package vision

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Fixed detector parameters. These are tuning constants, not learned values.
const (
	ScaleFactor  = 1.1
	ShiftFactor  = 0.1
	MinNeighbors = 5
	IoUThreshold = 0.2
)

// PigoConfig sets the window size range for PigoDetector.
type PigoConfig struct {
	CascadePath string
	MinSize     int
	MaxSize     int
}

// PigoDetector is a sliding-window face detector backed by a pretrained
// pigo cascade.
type PigoDetector struct {
	classifier *pigo.Pigo
	minSize    int
	maxSize    int
}

// NewPigoDetector loads the cascade at cfg.CascadePath.
func NewPigoDetector(cfg PigoConfig) (*PigoDetector, error) {
	data, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("read face cascade: %w", err)
	}
	return NewPigoDetectorFromBytes(data, cfg.MinSize, cfg.MaxSize)
}

// NewPigoDetectorFromBytes unpacks a cascade already in memory.
func NewPigoDetectorFromBytes(cascade []byte, minSize, maxSize int) (*PigoDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpack face cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier, minSize: minSize, maxSize: maxSize}, nil
}

// Detect runs the cascade and keeps clusters backed by at least
// MinNeighbors raw window hits.
func (d *PigoDetector) Detect(gray *image.Gray) []FaceBox {
	b := gray.Bounds()
	params := pigo.CascadeParams{
		MinSize:     d.minSize,
		MaxSize:     d.maxSize,
		ShiftFactor: ShiftFactor,
		ScaleFactor: ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: packedPixels(gray),
			Rows:   b.Dy(),
			Cols:   b.Dx(),
			Dim:    b.Dx(),
		},
	}

	raw := d.classifier.RunCascade(params, 0.0)
	clusters := d.classifier.ClusterDetections(raw, IoUThreshold)

	boxes := make([]FaceBox, 0, len(clusters))
	for _, c := range clusters {
		if neighborCount(c, raw) < MinNeighbors {
			continue
		}
		box := detectionBox(c).Rect().Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
		if box.Empty() {
			continue
		}
		boxes = append(boxes, FaceBox{X: box.Min.X, Y: box.Min.Y, Width: box.Dx(), Height: box.Dy()})
	}
	return boxes
}

// packedPixels returns row-major pixels without stride padding.
func packedPixels(gray *image.Gray) []uint8 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if gray.Stride == w && b.Min == (image.Point{}) {
		return gray.Pix[:w*h]
	}
	out := make([]uint8, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := gray.PixOffset(b.Min.X, y)
		out = append(out, gray.Pix[start:start+w]...)
	}
	return out
}

// detectionBox converts a centre/scale detection to a square box.
func detectionBox(det pigo.Detection) FaceBox {
	return FaceBox{
		X:      det.Col - det.Scale/2,
		Y:      det.Row - det.Scale/2,
		Width:  det.Scale,
		Height: det.Scale,
	}
}

func neighborCount(cluster pigo.Detection, raw []pigo.Detection) int {
	cb := detectionBox(cluster)
	n := 0
	for _, r := range raw {
		if iou(cb, detectionBox(r)) > IoUThreshold {
			n++
		}
	}
	return n
}

func iou(a, b FaceBox) float64 {
	inter := a.Rect().Intersect(b.Rect())
	if inter.Empty() {
		return 0
	}
	ia := inter.Dx() * inter.Dy()
	union := a.Area() + b.Area() - ia
	if union <= 0 {
		return 0
	}
	return float64(ia) / float64(union)
}
