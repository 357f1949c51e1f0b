package model

import (
	"math"
	"time"
)

// FeatureCount is the number of inputs the classifier expects.
const FeatureCount = 8

// FeatureNames lists the input fields in the positional order the
// classifier was trained on. The names double as form and CSV column names.
var FeatureNames = [FeatureCount]string{
	"Pregnancies",
	"Glucose",
	"BloodPressure",
	"SkinThickness",
	"Insulin",
	"BMI",
	"DiabetesPedigreeFunction",
	"Age",
}

// Features is one health record submitted for scoring.
type Features struct {
	Pregnancies              float64 `json:"pregnancies"`
	Glucose                  float64 `json:"glucose"`
	BloodPressure            float64 `json:"blood_pressure"`
	SkinThickness            float64 `json:"skin_thickness"`
	Insulin                  float64 `json:"insulin"`
	BMI                      float64 `json:"bmi"`
	DiabetesPedigreeFunction float64 `json:"diabetes_pedigree_function"`
	Age                      float64 `json:"age"`
}

// Vector returns the features in classifier order.
func (f Features) Vector() []float64 {
	return []float64{
		f.Pregnancies,
		f.Glucose,
		f.BloodPressure,
		f.SkinThickness,
		f.Insulin,
		f.BMI,
		f.DiabetesPedigreeFunction,
		f.Age,
	}
}

// FeaturesFromVector is the inverse of Vector.
// The caller guarantees len(v) == FeatureCount.
func FeaturesFromVector(v []float64) Features {
	return Features{
		Pregnancies:              v[0],
		Glucose:                  v[1],
		BloodPressure:            v[2],
		SkinThickness:            v[3],
		Insulin:                  v[4],
		BMI:                      v[5],
		DiabetesPedigreeFunction: v[6],
		Age:                      v[7],
	}
}

// Prediction is an immutable history record written for an identified caller.
type Prediction struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Label          string    `json:"prediction"`
	Glucose        float64   `json:"glucose"`
	BloodPressure  float64   `json:"blood_pressure"`
	RiskPercentage float64   `json:"risk_percentage"`
	AdvisoryText   string    `json:"diet_suggestion"`
	Sex            string    `json:"sex,omitempty"`
	CreatedAt      time.Time `json:"timestamp"`
}

// RiskPercentage converts a class-1 probability to a percentage.
// It is the only place the scale factor appears.
func RiskPercentage(probability float64) float64 {
	return probability * 100
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
