package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/glycoguard/glycoguard/internal/model"
)

var (
	// ErrModelUnavailable means no classifier was loaded at startup.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrAccuracyUnavailable means no accuracy figure was loaded at startup.
	ErrAccuracyUnavailable = errors.New("model accuracy not available")
)

// SampleFeatures is scored once at startup as a smoke check.
var SampleFeatures = model.Features{
	Pregnancies:              2,
	Glucose:                  120,
	BloodPressure:            70,
	SkinThickness:            20,
	Insulin:                  85,
	BMI:                      32.5,
	DiabetesPedigreeFunction: 0.5,
	Age:                      25,
}

// Result is one scored row of a batch.
type Result struct {
	// Positive is the hard class decision: probability strictly above 0.5.
	Positive    bool
	Probability float64
}

// Oracle is the process-wide handle to the classifier and its accuracy.
// Either part may be missing; callers get typed errors instead of a crash.
type Oracle struct {
	model    *Model
	accuracy float64
	hasAcc   bool
}

// New builds an Oracle from already-loaded parts. A nil model or a
// negative accuracy marks that part unavailable.
func New(m *Model, accuracy float64) *Oracle {
	return &Oracle{
		model:    m,
		accuracy: accuracy,
		hasAcc:   accuracy >= 0,
	}
}

// Load reads both artifacts. It always returns a usable Oracle; the error
// reports which parts failed so the caller can log them and keep serving.
func Load(modelPath, accuracyPath string) (*Oracle, error) {
	o := &Oracle{}
	var errs []error

	m, err := LoadModel(modelPath)
	if err != nil {
		errs = append(errs, err)
	} else {
		o.model = m
	}

	acc, err := LoadAccuracy(accuracyPath)
	if err != nil {
		errs = append(errs, err)
	} else {
		o.accuracy, o.hasAcc = acc, true
	}

	return o, errors.Join(errs...)
}

// LoadAccuracy reads a fraction in [0,1] from a text file.
func LoadAccuracy(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read accuracy file: %w", err)
	}

	acc, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse accuracy file: %w", err)
	}
	if !finite(acc) || acc < 0 || acc > 1 {
		return 0, fmt.Errorf("accuracy %v outside [0,1]", acc)
	}
	return acc, nil
}

// Ready reports whether a classifier is loaded.
func (o *Oracle) Ready() bool {
	return o != nil && o.model != nil
}

// Kind returns the loaded artifact kind, or "" when unavailable.
func (o *Oracle) Kind() string {
	if !o.Ready() {
		return ""
	}
	return o.model.Kind()
}

// Ping implements the readiness checker used by the health endpoint.
func (o *Oracle) Ping(context.Context) error {
	if !o.Ready() {
		return ErrModelUnavailable
	}
	return nil
}

// ClassifyOne returns the class-1 probability for one record.
func (o *Oracle) ClassifyOne(f model.Features) (float64, error) {
	if !o.Ready() {
		return 0, ErrModelUnavailable
	}
	return o.model.Probability(f.Vector())
}

// ClassifyBatch scores rows in order.
func (o *Oracle) ClassifyBatch(rows []model.Features) ([]Result, error) {
	if !o.Ready() {
		return nil, ErrModelUnavailable
	}

	out := make([]Result, len(rows))
	for i, row := range rows {
		p, err := o.model.Probability(row.Vector())
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = Result{Positive: p > 0.5, Probability: p}
	}
	return out, nil
}

// Accuracy returns the stored held-out accuracy as a fraction.
func (o *Oracle) Accuracy() (float64, error) {
	if o == nil || !o.hasAcc {
		return 0, ErrAccuracyUnavailable
	}
	return o.accuracy, nil
}

// FormatAccuracy renders a fraction as a percentage with two decimals, e.g. "75.32%".
func FormatAccuracy(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}
