package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/glycoguard/glycoguard/internal/metrics"
	"github.com/glycoguard/glycoguard/internal/model"
	"github.com/glycoguard/glycoguard/internal/oracle"
	"github.com/glycoguard/glycoguard/internal/repository"
	"github.com/glycoguard/glycoguard/internal/risk"
)

func newTestPredictionService(c *fakeClassifier, h *fakeHistory) (*PredictionService, *metrics.InMemoryRecorder) {
	recorder := metrics.NewInMemory()
	return NewPredictionService(c, h, discardLogger(), recorder, time.Second), recorder
}

func sampleInput(userID string) PredictInput {
	return PredictInput{
		UserID:   userID,
		Features: oracle.SampleFeatures,
		Sex:      "Female",
	}
}

func TestPredictionService_Predict_Anonymous(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{}
	svc, recorder := newTestPredictionService(&fakeClassifier{prob: 0.25}, history)

	res, err := svc.Predict(context.Background(), sampleInput(""))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if res.Tier != risk.NotDiabetic {
		t.Errorf("Tier = %v, want Not Diabetic", res.Tier)
	}
	if res.RiskPercentage != 25 {
		t.Errorf("RiskPercentage = %v, want 25", res.RiskPercentage)
	}
	if res.Glucose != 120 || res.BloodPressure != 70 {
		t.Errorf("echoed inputs = %v/%v", res.Glucose, res.BloodPressure)
	}
	if len(history.records) != 0 {
		t.Errorf("anonymous prediction wrote %d history rows", len(history.records))
	}
	if got := recorder.Snapshot().HistoryWrites[metrics.StatusSkipped]; got != 1 {
		t.Errorf("history skipped = %d, want 1", got)
	}
}

func TestPredictionService_Predict_RecordsHistory(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{}
	svc, _ := newTestPredictionService(&fakeClassifier{prob: 0.73}, history)

	res, err := svc.Predict(context.Background(), sampleInput("user-1"))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(history.records) != 1 {
		t.Fatalf("expected one history row, got %d", len(history.records))
	}

	rec := history.records[0]
	if rec.UserID != "user-1" || rec.Label != "Diabetic" || rec.Sex != "Female" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.RiskPercentage != res.RiskPercentage {
		t.Errorf("record risk %v != response risk %v", rec.RiskPercentage, res.RiskPercentage)
	}
	if rec.AdvisoryText != risk.Diabetic.Advice() {
		t.Errorf("AdvisoryText = %q", rec.AdvisoryText)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Error("record should carry an id and timestamp")
	}
}

func TestPredictionService_Predict_HistoryFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{createErr: errors.New("insert failed")}
	svc, recorder := newTestPredictionService(&fakeClassifier{prob: 0.5}, history)

	res, err := svc.Predict(context.Background(), sampleInput("user-1"))
	if err != nil {
		t.Fatalf("history failure must not fail the prediction: %v", err)
	}
	if res.Tier != risk.Borderline {
		t.Errorf("Tier = %v, want Borderline Risk", res.Tier)
	}
	if got := recorder.Snapshot().HistoryWrites[metrics.StatusFailed]; got != 1 {
		t.Errorf("history failed = %d, want 1", got)
	}
}

func TestPredictionService_Predict_DetachedFromCancellation(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{}
	svc, _ := newTestPredictionService(&fakeClassifier{prob: 0.1}, history)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Predict(ctx, sampleInput("user-1")); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(history.ctxErrs) != 1 || history.ctxErrs[0] != nil {
		t.Errorf("history write saw a cancelled context: %v", history.ctxErrs)
	}
}

func TestPredictionService_Predict_Errors(t *testing.T) {
	t.Parallel()

	t.Run("model unavailable", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestPredictionService(&fakeClassifier{err: oracle.ErrModelUnavailable}, &fakeHistory{})
		_, err := svc.Predict(context.Background(), sampleInput(""))
		if !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("error = %v, want ErrModelUnavailable", err)
		}
	})

	t.Run("non-finite feature", func(t *testing.T) {
		t.Parallel()

		history := &fakeHistory{}
		svc, _ := newTestPredictionService(&fakeClassifier{prob: 0.9}, history)

		in := sampleInput("user-1")
		in.Features.Glucose = math.NaN()

		_, err := svc.Predict(context.Background(), in)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "Glucose" {
			t.Fatalf("expected ValidationError on Glucose, got %v", err)
		}
		if len(history.records) != 0 {
			t.Error("rejected input must not be recorded")
		}
	})

	t.Run("classifier failure", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestPredictionService(&fakeClassifier{err: errors.New("boom")}, &fakeHistory{})
		_, err := svc.Predict(context.Background(), sampleInput(""))
		if err == nil || errors.Is(err, ErrModelUnavailable) {
			t.Errorf("expected internal error, got %v", err)
		}
	})
}

func TestPredictionService_Predict_TierBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prob float64
		want risk.Tier
	}{
		{0.399, risk.NotDiabetic},
		{0.40, risk.Borderline},
		{0.60, risk.Borderline},
		{0.601, risk.Diabetic},
	}

	for _, tt := range tests {
		svc, _ := newTestPredictionService(&fakeClassifier{prob: tt.prob}, &fakeHistory{})
		res, err := svc.Predict(context.Background(), sampleInput(""))
		if err != nil {
			t.Fatalf("Predict(%v): %v", tt.prob, err)
		}
		if res.Tier != tt.want {
			t.Errorf("p=%v: Tier = %v, want %v", tt.prob, res.Tier, tt.want)
		}
		if res.RiskPercentage != tt.prob*100 {
			t.Errorf("p=%v: RiskPercentage = %v", tt.prob, res.RiskPercentage)
		}
	}
}

func TestPredictionService_PredictBatch(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{batch: []oracle.Result{
		{Positive: true, Probability: 0.55},
		{Positive: false, Probability: 0.36},
		{Positive: false, Probability: 0.35},
	}}
	svc, recorder := newTestPredictionService(classifier, &fakeHistory{})

	rows := []BatchRow{
		{Name: "Ann", Features: oracle.SampleFeatures},
		{Name: "Ben", Features: oracle.SampleFeatures},
		{Name: "Cy", Features: oracle.SampleFeatures},
	}

	out, err := svc.PredictBatch(context.Background(), rows)
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	if len(out) != len(rows) {
		t.Fatalf("len = %d, want %d", len(out), len(rows))
	}

	want := []struct {
		name string
		tier risk.Tier
	}{
		{"Ann", risk.Diabetic},
		{"Ben", risk.Borderline},
		{"Cy", risk.NotDiabetic},
	}
	for i, w := range want {
		if out[i].Name != w.name || out[i].Tier != w.tier {
			t.Errorf("row %d = %s/%v, want %s/%v", i, out[i].Name, out[i].Tier, w.name, w.tier)
		}
	}
	if want := model.RiskPercentage(0.55); out[0].RiskPercentage != want {
		t.Errorf("RiskPercentage = %v, want %v", out[0].RiskPercentage, want)
	}
	if got := recorder.Snapshot().BatchRows; got != 3 {
		t.Errorf("batch rows = %d, want 3", got)
	}
}

func TestPredictionService_PredictBatch_HeaderOnly(t *testing.T) {
	t.Parallel()

	// The classifier is never reached for zero rows.
	svc, _ := newTestPredictionService(&fakeClassifier{err: oracle.ErrModelUnavailable}, &fakeHistory{})

	out, err := svc.PredictBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("out = %#v, want empty non-nil slice", out)
	}
}

func TestPredictionService_PredictBatch_Errors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestPredictionService(&fakeClassifier{err: oracle.ErrModelUnavailable}, &fakeHistory{})

	var verr *ValidationError
	bad := oracle.SampleFeatures
	bad.BMI = math.Inf(1)
	_, err := svc.PredictBatch(context.Background(), []BatchRow{{Name: "a", Features: oracle.SampleFeatures}, {Name: "b", Features: bad}})
	if !errors.As(err, &verr) || verr.Field != "BMI" || !strings.HasPrefix(verr.Message, "row 2") {
		t.Errorf("expected row 2 BMI ValidationError, got %v", err)
	}

	_, err = svc.PredictBatch(context.Background(), []BatchRow{{Name: "a", Features: oracle.SampleFeatures}})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("error = %v, want ErrModelUnavailable", err)
	}
}

func TestPredictionService_History(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{}
	svc, _ := newTestPredictionService(&fakeClassifier{prob: 0.2}, history)
	ctx := context.Background()

	for _, p := range []float64{0.2, 0.9} {
		svc.classifier.(*fakeClassifier).prob = p
		if _, err := svc.Predict(ctx, sampleInput("user-1")); err != nil {
			t.Fatalf("Predict: %v", err)
		}
	}
	if _, err := svc.Predict(ctx, sampleInput("user-2")); err != nil {
		t.Fatalf("Predict: %v", err)
	}

	records, err := svc.History(ctx, "user-1", HistoryQuery{Labels: []string{"Diabetic"}, Limit: 10})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].Label != "Diabetic" {
		t.Errorf("newest record should come first, got %s", records[0].Label)
	}
	if got := history.lastQuery; got.Limit != 10 || len(got.Labels) != 1 {
		t.Errorf("filter not passed through: %+v", got)
	}
}

func TestPredictionService_History_Rejects(t *testing.T) {
	t.Parallel()

	svc, _ := newTestPredictionService(&fakeClassifier{}, &fakeHistory{})
	ctx := context.Background()

	if _, err := svc.History(ctx, "", HistoryQuery{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous history: %v", err)
	}

	var verr *ValidationError
	if _, err := svc.History(ctx, "u", HistoryQuery{Labels: []string{"Sick"}}); !errors.As(err, &verr) || verr.Field != "label" {
		t.Errorf("unknown label: %v", err)
	}
	if _, err := svc.History(ctx, "u", HistoryQuery{Limit: repository.MaxHistoryLimit + 1}); !errors.As(err, &verr) || verr.Field != "limit" {
		t.Errorf("limit too large: %v", err)
	}
}

func TestPredictionService_Accuracy(t *testing.T) {
	t.Parallel()

	svc, _ := newTestPredictionService(&fakeClassifier{acc: 0.7532}, &fakeHistory{})
	acc, err := svc.Accuracy()
	if err != nil || acc != 0.7532 {
		t.Errorf("Accuracy = %v, %v", acc, err)
	}

	svc, _ = newTestPredictionService(&fakeClassifier{accErr: oracle.ErrAccuracyUnavailable}, &fakeHistory{})
	if _, err := svc.Accuracy(); !errors.Is(err, ErrAccuracyUnavailable) {
		t.Errorf("error = %v, want ErrAccuracyUnavailable", err)
	}
}

func TestPredictionService_UsesOracle(t *testing.T) {
	t.Parallel()

	m, err := oracle.ParseModel(strings.NewReader(`{
		"kind": "logistic",
		"feature_count": 8,
		"coefficients": [0, 0, 0, 0, 0, 0, 0, 0],
		"intercept": 0
	}`))
	if err != nil {
		t.Fatalf("ParseModel: %v", err)
	}

	svc, _ := newTestPredictionServiceWith(oracle.New(m, 0.8))
	res, err := svc.Predict(context.Background(), PredictInput{Features: model.Features{}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.Probability != 0.5 || res.Tier != risk.Borderline {
		t.Errorf("got p=%v tier=%v, want 0.5 Borderline Risk", res.Probability, res.Tier)
	}
}

func newTestPredictionServiceWith(c Classifier) (*PredictionService, *fakeHistory) {
	h := &fakeHistory{}
	return NewPredictionService(c, h, discardLogger(), nil, 0), h
}
