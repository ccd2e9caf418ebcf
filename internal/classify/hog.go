// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package classify

import (
	"image"
	"math"
)

// HOG geometry. With a 48x48 crop this yields 5x5 blocks of 2x2 cells with
// 9 bins each, i.e. HOGFeatureLen features.
const (
	HOGOrientations  = 9
	HOGCellSize      = 8
	HOGBlockSize     = 2
	hogL2HysClip     = 0.2
	hogEps           = 1e-5
	hogCellsPerSide  = CropSize / HOGCellSize
	hogBlocksPerSide = hogCellsPerSide - HOGBlockSize + 1
	HOGFeatureLen    = hogBlocksPerSide * hogBlocksPerSide * HOGBlockSize * HOGBlockSize * HOGOrientations
)

// HOGDescriptor computes a histogram of oriented gradients for a
// CropSize x CropSize crop. Gradients are central differences (zero on the
// border rows/columns), orientations are unsigned in [0,180), cell
// histograms hold mean magnitude per bin and blocks are L2-Hys normalized.
// Features are ordered block row, block column, cell row, cell column, bin.
func HOGDescriptor(face *image.Gray) []float64 {
	const n = CropSize
	b := face.Bounds()
	px := func(x, y int) float64 {
		return float64(face.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
	}

	var hist [hogCellsPerSide][hogCellsPerSide][HOGOrientations]float64
	binWidth := 180.0 / HOGOrientations

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			var gx, gy float64
			if x > 0 && x < n-1 {
				gx = px(x+1, y) - px(x-1, y)
			}
			if y > 0 && y < n-1 {
				gy = px(x, y+1) - px(x, y-1)
			}
			mag := math.Hypot(gx, gy)
			if mag == 0 {
				continue
			}
			angle := math.Mod(math.Atan2(gy, gx)*180/math.Pi+180, 180)
			bin := int(angle / binWidth)
			if bin >= HOGOrientations {
				bin = HOGOrientations - 1
			}
			hist[y/HOGCellSize][x/HOGCellSize][bin] += mag
		}
	}

	cellArea := float64(HOGCellSize * HOGCellSize)
	features := make([]float64, 0, HOGFeatureLen)
	block := make([]float64, HOGBlockSize*HOGBlockSize*HOGOrientations)

	for by := 0; by < hogBlocksPerSide; by++ {
		for bx := 0; bx < hogBlocksPerSide; bx++ {
			i := 0
			for cy := 0; cy < HOGBlockSize; cy++ {
				for cx := 0; cx < HOGBlockSize; cx++ {
					for o := 0; o < HOGOrientations; o++ {
						block[i] = hist[by+cy][bx+cx][o] / cellArea
						i++
					}
				}
			}
			l2hys(block)
			features = append(features, block...)
		}
	}
	return features
}

// l2hys normalizes v in place: L2 norm, clip, then L2 norm again.
func l2hys(v []float64) {
	l2norm(v)
	for i := range v {
		if v[i] > hogL2HysClip {
			v[i] = hogL2HysClip
		}
	}
	l2norm(v)
}

func l2norm(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum + hogEps*hogEps)
	for i := range v {
		v[i] /= norm
	}
}
