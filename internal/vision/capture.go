// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package vision

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// captureQuality is the JPEG quality for audit captures.
const captureQuality = 90

// Capturer writes classified frames to a directory for later audit.
type Capturer struct {
	dir string
	now func() time.Time
}

// NewCapturer creates a Capturer writing into dir. The directory is created
// on first use.
func NewCapturer(dir string) *Capturer {
	return &Capturer{dir: dir, now: time.Now}
}

// Save encodes img as JPEG and returns the written path.
func (c *Capturer) Save(img image.Image) (string, error) {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	name := fmt.Sprintf("full_image_%s_%s.jpg",
		c.now().UTC().Format("20060102_150405.000000"),
		uuid.NewString()[:8])
	path := filepath.Join(c.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: captureQuality}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("encode capture: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close capture file: %w", err)
	}
	return path, nil
}
