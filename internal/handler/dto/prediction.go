package dto

import (
	"time"

	"github.com/glycoguard/glycoguard/internal/model"
	"github.com/glycoguard/glycoguard/internal/service"
)

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	Prediction     string  `json:"prediction"`
	Glucose        float64 `json:"glucose"`
	BloodPressure  float64 `json:"blood_pressure"`
	RiskPercentage float64 `json:"risk_percentage"`
	DietSuggestion string  `json:"diet_suggestion"`
	Probability    float64 `json:"probability"`
}

// ToPredictResponse converts a scoring result to its wire form.
func ToPredictResponse(res *service.PredictResult) PredictResponse {
	return PredictResponse{
		Prediction:     res.Tier.Label(),
		Glucose:        res.Glucose,
		BloodPressure:  res.BloodPressure,
		RiskPercentage: res.RiskPercentage,
		DietSuggestion: res.Tier.Advice(),
		Probability:    res.Probability,
	}
}

// BatchPrediction is one row of POST /predict_csv.
type BatchPrediction struct {
	Name           string  `json:"name"`
	Prediction     string  `json:"prediction"`
	RiskPercentage float64 `json:"risk_percentage"`
}

// BatchResponse is returned by POST /predict_csv.
type BatchResponse struct {
	Predictions []BatchPrediction `json:"predictions"`
}

// ToBatchResponse preserves input order.
func ToBatchResponse(results []service.BatchResult) BatchResponse {
	out := make([]BatchPrediction, len(results))
	for i, r := range results {
		out[i] = BatchPrediction{
			Name:           r.Name,
			Prediction:     r.Tier.Label(),
			RiskPercentage: r.RiskPercentage,
		}
	}
	return BatchResponse{Predictions: out}
}

// HistoryEntry is one stored prediction.
type HistoryEntry struct {
	Prediction     string    `json:"prediction"`
	Glucose        float64   `json:"glucose"`
	BloodPressure  float64   `json:"blood_pressure"`
	RiskPercentage float64   `json:"risk_percentage"`
	DietSuggestion string    `json:"diet_suggestion"`
	Sex            string    `json:"sex"`
	Timestamp      time.Time `json:"timestamp"`
}

// HistoryResponse is returned by GET /history.
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

// ToHistoryResponse converts stored records, keeping their order.
func ToHistoryResponse(records []*model.Prediction) HistoryResponse {
	out := make([]HistoryEntry, len(records))
	for i, p := range records {
		out[i] = HistoryEntry{
			Prediction:     p.Label,
			Glucose:        p.Glucose,
			BloodPressure:  p.BloodPressure,
			RiskPercentage: p.RiskPercentage,
			DietSuggestion: p.AdvisoryText,
			Sex:            p.Sex,
			Timestamp:      p.CreatedAt,
		}
	}
	return HistoryResponse{History: out}
}

// AccuracyResponse is returned by GET /model_accuracy.
type AccuracyResponse struct {
	Accuracy string `json:"accuracy"`
}
