// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package vision

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w x h gray
// frame with no pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth; color type 0 (gray)

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	raw := encodePNG(t, 16, 12)
	b64 := base64.StdEncoding.EncodeToString(raw)
	huge := base64.StdEncoding.EncodeToString(pngHeader(60000, 60000))

	tests := []struct {
		name      string
		payload   string
		maxBytes  int
		maxPixels int
		wantStage string
	}{
		{"data uri", "data:image/png;base64," + b64, 0, 0, ""},
		{"bare base64", b64, 0, 0, ""},
		{"unpadded base64", strings.TrimRight(b64, "="), 0, 0, ""},
		{"within pixel cap", b64, 0, 16 * 12, ""},
		{"empty", "", 0, 0, StageEmpty},
		{"empty after envelope", "data:image/png;base64,", 0, 0, StageEmpty},
		{"not base64", "data:image/png;base64,!!!not-base64!!!", 0, 0, StageBase64},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello world")), 0, 0, StageRaster},
		{"not an image with pixel cap", base64.StdEncoding.EncodeToString([]byte("hello world")), 0, 100, StageRaster},
		{"too large", b64, 8, 0, StageSize},
		{"too many pixels", b64, 0, 16*12 - 1, StageSize},
		{"huge frame from tiny payload", huge, 8 << 20, 40_000_000, StageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			img, err := DecodeImage(tt.payload, tt.maxBytes, tt.maxPixels)
			if tt.wantStage == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
					t.Errorf("bounds = %v, want 16x12", img.Bounds())
				}
				return
			}
			if img != nil {
				t.Error("expected no partial image on failure")
			}
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			var decErr *ImageDecodeError
			if !errors.As(err, &decErr) || decErr.Stage != tt.wantStage {
				t.Fatalf("expected stage %q, got %v", tt.wantStage, err)
			}
		})
	}
}

func TestLargestFace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		boxes []FaceBox
		want  FaceBox
		ok    bool
	}{
		{"none", nil, FaceBox{}, false},
		{"single", []FaceBox{{1, 2, 3, 4}}, FaceBox{1, 2, 3, 4}, true},
		{"unsorted input", []FaceBox{{0, 0, 10, 10}, {5, 5, 30, 20}, {9, 9, 20, 20}}, FaceBox{5, 5, 30, 20}, true},
		{"tie keeps first", []FaceBox{{0, 0, 10, 40}, {50, 50, 20, 20}, {90, 90, 40, 10}}, FaceBox{0, 0, 10, 40}, true},
		{"largest last", []FaceBox{{0, 0, 1, 1}, {0, 0, 2, 2}, {7, 7, 3, 3}}, FaceBox{7, 7, 3, 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := LargestFace(tt.boxes)
			if ok != tt.ok || got != tt.want {
				t.Errorf("LargestFace() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

type staticDetector []FaceBox

func (s staticDetector) Detect(*image.Gray) []FaceBox { return s }

func TestLocatorLocateLargest(t *testing.T) {
	t.Parallel()

	gray := image.NewGray(image.Rect(0, 0, 100, 100))

	_, err := NewLocator(staticDetector(nil)).LocateLargest(gray)
	if !errors.Is(err, ErrNoFace) {
		t.Fatalf("expected ErrNoFace, got %v", err)
	}

	box, err := NewLocator(staticDetector{{0, 0, 5, 5}, {10, 10, 50, 50}}).LocateLargest(gray)
	if err != nil || box.Width != 50 {
		t.Fatalf("LocateLargest() = %v, %v", box, err)
	}
}

func TestCropResize(t *testing.T) {
	t.Parallel()

	gray := image.NewGray(image.Rect(0, 0, 200, 150))
	for i := range gray.Pix {
		gray.Pix[i] = 200
	}

	crop := CropResize(gray, FaceBox{X: 20, Y: 30, Width: 96, Height: 96}, 48)
	if crop.Bounds() != image.Rect(0, 0, 48, 48) {
		t.Fatalf("crop bounds = %v", crop.Bounds())
	}
	if crop.GrayAt(24, 24).Y != 200 {
		t.Errorf("expected uniform intensity to survive resize, got %d", crop.GrayAt(24, 24).Y)
	}

	// A box hanging off the frame is clipped, not rejected.
	edge := CropResize(gray, FaceBox{X: 180, Y: 130, Width: 60, Height: 60}, 48)
	if edge.Bounds().Dx() != 48 {
		t.Errorf("edge crop width = %d", edge.Bounds().Dx())
	}
}

func TestToGrayAnchorsAtOrigin(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(10, 10, 20, 30))
	gray := ToGray(src)
	if gray.Bounds() != image.Rect(0, 0, 10, 20) {
		t.Errorf("bounds = %v", gray.Bounds())
	}
	if len(packedPixels(gray)) != 200 {
		t.Errorf("packed pixel count = %d", len(packedPixels(gray)))
	}
}

func TestIoU(t *testing.T) {
	t.Parallel()

	a := FaceBox{0, 0, 10, 10}
	if got := iou(a, a); got != 1 {
		t.Errorf("iou(a,a) = %v", got)
	}
	if got := iou(a, FaceBox{20, 20, 5, 5}); got != 0 {
		t.Errorf("disjoint iou = %v", got)
	}
	if got := iou(a, FaceBox{5, 0, 10, 10}); got < 0.33 || got > 0.34 {
		t.Errorf("half overlap iou = %v", got)
	}
}

func TestCapturerSave(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "captured_faces")
	path, err := NewCapturer(dir).Save(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "full_image_") || filepath.Ext(path) != ".jpg" {
		t.Errorf("unexpected capture name %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("capture not written: %v", err)
	}
}
