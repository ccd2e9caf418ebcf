// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WEBP decoder
)

// ErrDecode is matched by every ImageDecodeError.
var ErrDecode = errors.New("failed to decode image")

// Decode stages reported in ImageDecodeError.
const (
	StageEmpty  = "empty"
	StageSize   = "size"
	StageBase64 = "base64"
	StageRaster = "raster"
)

// ImageDecodeError reports why an image payload could not be decoded.
type ImageDecodeError struct {
	Stage string
	Err   error
}

func (e *ImageDecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode image (%s)", e.Stage)
	}
	return fmt.Sprintf("decode image (%s): %v", e.Stage, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDecode) match any decode failure.
func (e *ImageDecodeError) Is(target error) bool { return target == ErrDecode }

// DecodeImage decodes a base64 image payload, optionally wrapped in a data
// URI ("data:image/jpeg;base64,..."). maxBytes bounds the decoded payload
// size and maxPixels the frame area; a value <= 0 disables either check.
func DecodeImage(payload string, maxBytes, maxPixels int) (image.Image, error) {
	raw, err := decodeBase64Payload(payload, maxBytes)
	if err != nil {
		return nil, err
	}
	return DecodeRaster(raw, maxPixels)
}

// DecodeRaster decodes raw image file bytes (JPEG, PNG, GIF, BMP or WEBP).
// The header is checked against maxPixels before any pixel is allocated.
func DecodeRaster(raw []byte, maxPixels int) (image.Image, error) {
	if len(raw) == 0 {
		return nil, &ImageDecodeError{Stage: StageEmpty}
	}
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			return nil, &ImageDecodeError{Stage: StageRaster, Err: err}
		}
		if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
			return nil, &ImageDecodeError{
				Stage: StageSize,
				Err:   fmt.Errorf("frame %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxPixels),
			}
		}
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &ImageDecodeError{Stage: StageRaster, Err: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &ImageDecodeError{Stage: StageRaster, Err: errors.New("image has no pixels")}
	}
	return img, nil
}

func decodeBase64Payload(payload string, maxBytes int) ([]byte, error) {
	data := strings.TrimSpace(payload)
	if _, after, found := strings.Cut(data, ","); found {
		data = after
	}
	if data == "" {
		return nil, &ImageDecodeError{Stage: StageEmpty}
	}
	if maxBytes > 0 && len(data) > base64.StdEncoding.EncodedLen(maxBytes) {
		return nil, &ImageDecodeError{
			Stage: StageSize,
			Err:   fmt.Errorf("payload exceeds %d bytes", maxBytes),
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
	}
	if err != nil {
		return nil, &ImageDecodeError{Stage: StageBase64, Err: err}
	}
	return raw, nil
}
