// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package vision turns transport-encoded images into grayscale face crops.
//
// The flow for one prediction is:
//
//	img, err := vision.DecodeImage(payload, maxBytes, maxPixels) // *ImageDecodeError on failure
//	gray := vision.ToGray(img)
//	box, ok := vision.LargestFace(locator.Locate(gray)) // !ok means no face
//	crop := vision.CropResize(gray, box, 48)
//
// Face detection runs a pigo pixel-intensity-comparison cascade over a
// sliding window. Detector is an interface so tests can supply fixed boxes.
package vision
