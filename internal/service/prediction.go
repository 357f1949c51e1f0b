package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glycoguard/glycoguard/internal/metrics"
	"github.com/glycoguard/glycoguard/internal/model"
	"github.com/glycoguard/glycoguard/internal/oracle"
	"github.com/glycoguard/glycoguard/internal/repository"
	"github.com/glycoguard/glycoguard/internal/risk"
)

// DefaultHistoryWriteTimeout bounds the best-effort history insert.
const DefaultHistoryWriteTimeout = 2 * time.Second

// Classifier scores feature rows.
type Classifier interface {
	ClassifyOne(f model.Features) (float64, error)
	ClassifyBatch(rows []model.Features) ([]oracle.Result, error)
	Accuracy() (float64, error)
}

// HistoryStore persists and lists prediction records.
type HistoryStore interface {
	CreatePrediction(ctx context.Context, p *model.Prediction) error
	ListPredictions(ctx context.Context, userID string, filter repository.PredictionFilter) ([]*model.Prediction, error)
}

// PredictInput is one record submitted for scoring.
type PredictInput struct {
	// UserID is empty for anonymous callers.
	UserID   string
	Features model.Features
	Sex      string
}

// PredictResult is the outcome of single-record scoring.
type PredictResult struct {
	Tier           risk.Tier
	Probability    float64
	RiskPercentage float64
	Glucose        float64
	BloodPressure  float64
}

// BatchRow is one named CSV row.
type BatchRow struct {
	Name     string
	Features model.Features
}

// BatchResult is one scored CSV row.
type BatchResult struct {
	Name           string
	Tier           risk.Tier
	Probability    float64
	RiskPercentage float64
}

// HistoryQuery narrows a history listing.
type HistoryQuery struct {
	Labels []string
	Limit  int
}

// PredictionService orchestrates scoring, tiering and history.
type PredictionService struct {
	classifier     Classifier
	history        HistoryStore
	logger         *slog.Logger
	metrics        metrics.Recorder
	historyTimeout time.Duration
}

// NewPredictionService creates a new PredictionService.
func NewPredictionService(classifier Classifier, history HistoryStore, logger *slog.Logger, recorder metrics.Recorder, historyTimeout time.Duration) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if historyTimeout <= 0 {
		historyTimeout = DefaultHistoryWriteTimeout
	}
	return &PredictionService{
		classifier:     classifier,
		history:        history,
		logger:         logger.With("component", "prediction"),
		metrics:        recorder,
		historyTimeout: historyTimeout,
	}
}

// Predict scores one record and, for identified callers, appends it to
// their history. A failed history write never fails the prediction.
func (s *PredictionService) Predict(ctx context.Context, in PredictInput) (*PredictResult, error) {
	if verr := validateFeatures(in.Features); verr != nil {
		return nil, verr
	}

	start := time.Now()
	prob, err := s.classifier.ClassifyOne(in.Features)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return nil, ErrModelUnavailable
		}
		return nil, fmt.Errorf("failed to classify record: %w", err)
	}
	s.metrics.ObserveInferenceDuration(metrics.SourceSingle, time.Since(start))

	tier := risk.Classify(prob)
	s.metrics.IncPrediction(metrics.SourceSingle, tier.Label())

	result := &PredictResult{
		Tier:           tier,
		Probability:    prob,
		RiskPercentage: model.RiskPercentage(prob),
		Glucose:        in.Features.Glucose,
		BloodPressure:  in.Features.BloodPressure,
	}

	if in.UserID == "" {
		s.metrics.IncHistoryWrite(metrics.StatusSkipped)
		return result, nil
	}

	s.recordHistory(ctx, &model.Prediction{
		ID:             generateULID(),
		UserID:         in.UserID,
		Label:          tier.Label(),
		Glucose:        result.Glucose,
		BloodPressure:  result.BloodPressure,
		RiskPercentage: result.RiskPercentage,
		AdvisoryText:   tier.Advice(),
		Sex:            in.Sex,
		CreatedAt:      time.Now().UTC(),
	})

	return result, nil
}

// recordHistory runs detached from the request so a client disconnect does
// not abort the insert; the write has its own deadline instead.
func (s *PredictionService) recordHistory(ctx context.Context, p *model.Prediction) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.historyTimeout)
	defer cancel()

	if err := s.history.CreatePrediction(ctx, p); err != nil {
		s.metrics.IncHistoryWrite(metrics.StatusFailed)
		s.logger.Warn("failed to record prediction history",
			"user_id", p.UserID,
			"error", err,
		)
		return
	}
	s.metrics.IncHistoryWrite(metrics.StatusSuccess)
}

// PredictBatch scores rows in order using the batch tier policy.
// A header-only upload yields an empty result.
func (s *PredictionService) PredictBatch(ctx context.Context, rows []BatchRow) ([]BatchResult, error) {
	if len(rows) == 0 {
		return []BatchResult{}, nil
	}

	features := make([]model.Features, len(rows))
	for i, row := range rows {
		if verr := validateFeatures(row.Features); verr != nil {
			return nil, invalid(verr.Field, fmt.Sprintf("row %d: %s", i+1, verr.Message))
		}
		features[i] = row.Features
	}

	start := time.Now()
	scored, err := s.classifier.ClassifyBatch(features)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return nil, ErrModelUnavailable
		}
		return nil, fmt.Errorf("failed to classify batch: %w", err)
	}
	s.metrics.ObserveInferenceDuration(metrics.SourceBatch, time.Since(start))
	s.metrics.ObserveBatchRows(len(rows))

	out := make([]BatchResult, len(rows))
	for i, r := range scored {
		tier := risk.ClassifyBatch(r.Positive, r.Probability)
		s.metrics.IncPrediction(metrics.SourceBatch, tier.Label())
		out[i] = BatchResult{
			Name:           rows[i].Name,
			Tier:           tier,
			Probability:    r.Probability,
			RiskPercentage: model.RiskPercentage(r.Probability),
		}
	}

	s.logger.Debug("batch scored", "rows", len(rows))
	return out, nil
}

// History returns the caller's records, newest first.
func (s *PredictionService) History(ctx context.Context, userID string, q HistoryQuery) ([]*model.Prediction, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	for _, label := range q.Labels {
		if _, ok := risk.ParseLabel(label); !ok {
			return nil, invalid("label", fmt.Sprintf("unknown label %q", label))
		}
	}
	if q.Limit < 0 || q.Limit > repository.MaxHistoryLimit {
		return nil, invalid("limit", fmt.Sprintf("limit must be between 1 and %d", repository.MaxHistoryLimit))
	}

	records, err := s.history.ListPredictions(ctx, userID, repository.PredictionFilter{
		Labels: q.Labels,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return records, nil
}

// Accuracy returns the stored model accuracy as a fraction.
func (s *PredictionService) Accuracy() (float64, error) {
	return s.classifier.Accuracy()
}

func validateFeatures(f model.Features) *ValidationError {
	for i, v := range f.Vector() {
		if !model.IsFinite(v) {
			name := model.FeatureNames[i]
			return invalid(name, fmt.Sprintf("Invalid numeric value for %s", name))
		}
	}
	return nil
}
