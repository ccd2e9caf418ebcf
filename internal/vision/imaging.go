// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// ToGray converts img to an 8-bit grayscale image anchored at (0,0).
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Resize scales src to w x h with bilinear interpolation.
func Resize(src *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// CropResize cuts box out of gray and scales it to size x size.
func CropResize(gray *image.Gray, box FaceBox, size int) *image.Gray {
	rect := box.Rect().Intersect(gray.Bounds())
	sub, ok := gray.SubImage(rect).(*image.Gray)
	if !ok || rect.Empty() {
		return image.NewGray(image.Rect(0, 0, size, size))
	}
	return Resize(sub, size, size)
}
