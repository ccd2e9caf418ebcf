// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package predict

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/tomtom215/moodtune/internal/classify"
	"github.com/tomtom215/moodtune/internal/mood"
	"github.com/tomtom215/moodtune/internal/vision"
)

type fixedDetector []vision.FaceBox

func (d fixedDetector) Detect(*image.Gray) []vision.FaceBox { return d }

type fakeClassifier struct {
	label    classify.Label
	err      error
	lastCrop image.Rectangle
}

func (c *fakeClassifier) Classify(face *image.Gray) (classify.Label, error) {
	c.lastCrop = face.Bounds()
	return c.label, c.err
}

func (c *fakeClassifier) Labels() []classify.Label { return classify.DefaultLabels() }
func (c *fakeClassifier) Backend() string          { return "fake" }

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newPredictor(t *testing.T, d vision.Detector, c classify.Classifier, capture *vision.Capturer) (*Predictor, *mood.State) {
	t.Helper()
	state := mood.NewState()
	p, err := New(Options{Detector: d, Classifier: c, State: state, Capturer: capture, MaxImageBytes: 1 << 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, state
}

func TestPredictLabel(t *testing.T) {
	t.Parallel()

	boxes := fixedDetector{
		{X: 0, Y: 0, Width: 20, Height: 20},
		{X: 10, Y: 10, Width: 60, Height: 50},
		{X: 5, Y: 5, Width: 50, Height: 60},
	}
	clf := &fakeClassifier{label: "Happy"}
	p, state := newPredictor(t, boxes, clf, nil)

	res, err := p.Predict(context.Background(), "alice", pngDataURI(t, 100, 100))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.Emotion != "Happy" || res.NoFace {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Face != boxes[1] {
		t.Errorf("largest-face tie must keep first box, got %+v", res.Face)
	}
	if clf.lastCrop.Dx() != classify.CropSize || clf.lastCrop.Dy() != classify.CropSize {
		t.Errorf("classifier got %v crop, want 48x48", clf.lastCrop)
	}
	if got := state.Get("alice"); got != "Happy" {
		t.Errorf("last known mood = %q", got)
	}
	if got := state.Get("bob"); got != mood.None {
		t.Errorf("other identities must be untouched, got %q", got)
	}
}

func TestPredictNoFaceClearsMood(t *testing.T) {
	t.Parallel()

	p, state := newPredictor(t, fixedDetector(nil), &fakeClassifier{label: "Sad"}, nil)
	state.Set("alice", "Sad")

	res, err := p.Predict(context.Background(), "alice", pngDataURI(t, 32, 32))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !res.NoFace || res.Emotion != mood.NoFaceDetected {
		t.Errorf("want no-face sentinel, got %+v", res)
	}
	if got := state.Get("alice"); got != mood.None {
		t.Errorf("last known mood = %q, want %q", got, mood.None)
	}
}

func TestPredictDecodeError(t *testing.T) {
	t.Parallel()

	p, state := newPredictor(t, fixedDetector{{Width: 10, Height: 10}}, &fakeClassifier{label: "Happy"}, nil)
	state.Set("alice", "Fear")

	for _, payload := range []string{"", "data:image/png;base64,!!!", base64.StdEncoding.EncodeToString([]byte("not an image"))} {
		_, err := p.Predict(context.Background(), "alice", payload)
		if !errors.Is(err, vision.ErrDecode) {
			t.Errorf("Predict(%q) err = %v, want ErrDecode", payload, err)
		}
	}
	if got := state.Get("alice"); got != "Fear" {
		t.Errorf("decode failure must not touch mood, got %q", got)
	}
}

func TestPredictClassificationError(t *testing.T) {
	t.Parallel()

	clf := &fakeClassifier{err: &classify.ClassificationError{Backend: "fake", Index: 9, Err: classify.ErrLabelMisalignment}}
	p, _ := newPredictor(t, fixedDetector{{Width: 30, Height: 30}}, clf, nil)

	_, err := p.Predict(context.Background(), "alice", pngDataURI(t, 64, 64))
	if !errors.Is(err, classify.ErrClassification) || !errors.Is(err, classify.ErrLabelMisalignment) {
		t.Fatalf("err = %v, want ClassificationError", err)
	}
}

func TestPredictCapturesFrame(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, _ := newPredictor(t, fixedDetector{{Width: 30, Height: 30}}, &fakeClassifier{label: "Neutral"}, vision.NewCapturer(dir))

	res, err := p.Predict(context.Background(), "", pngDataURI(t, 64, 64))
	if err != nil {
		t.Fatal(err)
	}
	if res.CapturePath == "" {
		t.Fatal("expected capture path")
	}
	if _, err := os.Stat(res.CapturePath); err != nil {
		t.Errorf("capture not written: %v", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for empty options")
	}
}
