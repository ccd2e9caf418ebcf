// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/songs", "200"))
	RecordAPIRequest("POST", "/api/v1/songs", 200, 20*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/songs", "200"))
	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestRecordPrediction(t *testing.T) {
	tests := []struct {
		outcome string
		label   string
	}{
		{OutcomeLabel, "happy"},
		{OutcomeNoFace, ""},
		{OutcomeDecodeError, ""},
		{OutcomeClassificationError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			before := testutil.ToFloat64(PredictionsTotal.WithLabelValues(tt.outcome))
			RecordPrediction(tt.outcome, tt.label, time.Millisecond)
			if got := testutil.ToFloat64(PredictionsTotal.WithLabelValues(tt.outcome)) - before; got != 1 {
				t.Errorf("outcome %s increased by %v", tt.outcome, got)
			}
		})
	}
	if testutil.ToFloat64(PredictionLabels.WithLabelValues("happy")) < 1 {
		t.Error("expected label counter for happy")
	}
}

func TestRecordCatalogRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("error"))

	RecordCatalogRequest(time.Millisecond, nil)
	RecordCatalogRequest(time.Millisecond, errors.New("boom"))

	if testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("ok"))-okBefore != 1 {
		t.Error("ok counter not incremented")
	}
	if testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("error"))-errBefore != 1 {
		t.Error("error counter not incremented")
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if testutil.ToFloat64(APIActiveRequests)-before != 1 {
		t.Error("gauge not incremented")
	}
	TrackActiveRequest(false)
	if testutil.ToFloat64(APIActiveRequests) != before {
		t.Error("gauge not decremented")
	}
}
