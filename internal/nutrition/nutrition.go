// Package nutrition computes body-mass, energy and macronutrient targets
// from anthropometric inputs using fixed textbook formulas.
//
// All values are computed at full precision. Rounding is a presentation
// concern and happens at the HTTP boundary via Round2.
package nutrition

import (
	"fmt"
	"math"
	"strings"
)

// Formula selects the basal metabolic rate equation.
type Formula string

const (
	// HarrisBenedict is the original Harris-Benedict equation, height in cm.
	HarrisBenedict Formula = "harris_benedict"
	// MifflinStJeor is the Mifflin-St Jeor equation, height in cm.
	MifflinStJeor Formula = "mifflin_st_jeor"
)

// ParseFormula validates a configured formula name.
func ParseFormula(s string) (Formula, error) {
	switch Formula(s) {
	case HarrisBenedict, MifflinStJeor:
		return Formula(s), nil
	default:
		return "", fmt.Errorf("unknown BMR formula %q", s)
	}
}

// Activity is a self-reported activity level.
type Activity string

const (
	ActivityLow      Activity = "Low"
	ActivityModerate Activity = "Moderate"
	ActivityHigh     Activity = "High"
)

// ParseActivity accepts Low, Moderate (alias Medium) or High in any case.
func ParseActivity(s string) (Activity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ActivityLow, nil
	case "moderate", "medium":
		return ActivityModerate, nil
	case "high":
		return ActivityHigh, nil
	default:
		return "", &InputError{Field: "ActivityLevel", Message: "ActivityLevel must be Low, Moderate or High"}
	}
}

// Factor is the TDEE multiplier for the level.
func (a Activity) Factor() float64 {
	switch a {
	case ActivityLow:
		return 1.2
	case ActivityHigh:
		return 1.9
	default:
		return 1.55
	}
}

// Description is a short human description of the level.
func (a Activity) Description() string {
	switch a {
	case ActivityLow:
		return "Little to no exercise"
	case ActivityHigh:
		return "Daily exercise or intense training"
	default:
		return "3-5 days of exercise per week"
	}
}

// Goal is a body-composition goal.
type Goal string

const (
	GoalCutting  Goal = "Cutting"
	GoalStandard Goal = "Standard"
	GoalBulking  Goal = "Bulking"
)

// ParseGoal accepts Cutting, Standard or Bulking in any case.
func ParseGoal(s string) (Goal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cutting":
		return GoalCutting, nil
	case "standard":
		return GoalStandard, nil
	case "bulking":
		return GoalBulking, nil
	default:
		return "", &InputError{Field: "Goal", Message: "Goal must be Cutting, Standard or Bulking"}
	}
}

// Offset is the daily kcal adjustment applied to TDEE.
func (g Goal) Offset() float64 {
	switch g {
	case GoalCutting:
		return -300
	case GoalBulking:
		return 400
	default:
		return 0
	}
}

// Energy density in kcal per gram.
const (
	kcalPerGramCarbs   = 4
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

// DiabeticEnergyFactor scales target energy down for diabetic users.
const DiabeticEnergyFactor = 0.85

const (
	waterLitresPerKg  = 0.033
	fiberGramsPer1000 = 14
)

// Plausible adult height range in metres. Values outside it are almost
// always centimetres or inches and are rejected rather than converted.
const (
	MinHeightM = 0.5
	MaxHeightM = 2.75
)

// InputError reports an invalid profile field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Profile is the user's anthropometric input.
type Profile struct {
	Age      float64
	HeightM  float64
	WeightKg float64
	Sex      string
	Activity Activity
	Goal     Goal
	Diabetic bool
}

// Female reports whether the female equation branch applies.
func (p Profile) Female() bool {
	return strings.EqualFold(strings.TrimSpace(p.Sex), "female")
}

// Validate rejects non-finite or non-positive measurements.
func (p Profile) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"Age", p.Age},
		{"Height", p.HeightM},
		{"Weight", p.WeightKg},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value <= 0 {
			return &InputError{Field: c.field, Message: c.field + " must be a positive number"}
		}
	}
	if p.HeightM < MinHeightM || p.HeightM > MaxHeightM {
		return &InputError{Field: "Height", Message: "Height must be in metres"}
	}
	if p.Activity == "" {
		return &InputError{Field: "ActivityLevel", Message: "ActivityLevel is required"}
	}
	if p.Goal == "" {
		return &InputError{Field: "Goal", Message: "Goal is required"}
	}
	return nil
}

// Macros are daily energy and macronutrient targets.
type Macros struct {
	Energy  float64
	Carbs   float64
	Protein float64
	Fat     float64
}

// Recommendation is the full calculator output.
type Recommendation struct {
	BMI                 float64
	BMR                 float64
	TDEE                float64
	Nutrition           Macros
	WaterLitres         float64
	FiberGrams          float64
	ActivityDescription string
}

// Calculator evaluates the configured formula set.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	formula Formula
}

// NewCalculator creates a Calculator using formula for BMR.
func NewCalculator(formula Formula) *Calculator {
	if formula == "" {
		formula = HarrisBenedict
	}
	return &Calculator{formula: formula}
}

// Formula returns the configured BMR equation.
func (c *Calculator) Formula() Formula {
	return c.formula
}

// BMI returns weight / height^2 with height in metres.
func BMI(weightKg, heightM float64) float64 {
	return weightKg / (heightM * heightM)
}

// BMR returns basal metabolic rate in kcal/day. Height is in centimetres.
func (c *Calculator) BMR(weightKg, heightCm, age float64, female bool) float64 {
	if c.formula == MifflinStJeor {
		base := 10*weightKg + 6.25*heightCm - 5*age
		if female {
			return base - 161
		}
		return base + 5
	}

	if female {
		return 655 + 9.6*weightKg + 1.8*heightCm - 4.7*age
	}
	return 66 + 13.7*weightKg + 5*heightCm - 6.8*age
}

// TDEE returns total daily energy expenditure.
func TDEE(bmr float64, activity Activity) float64 {
	return bmr * activity.Factor()
}

// Targets applies the goal offset, the diabetic energy factor and the
// macro split to a TDEE.
func Targets(tdee float64, goal Goal, diabetic bool) Macros {
	energy := tdee + goal.Offset()

	carbs, protein, fat := 0.5, 0.25, 0.25
	if diabetic {
		energy *= DiabeticEnergyFactor
		carbs, protein, fat = 0.4, 0.3, 0.3
	}

	return Macros{
		Energy:  energy,
		Carbs:   energy * carbs / kcalPerGramCarbs,
		Protein: energy * protein / kcalPerGramProtein,
		Fat:     energy * fat / kcalPerGramFat,
	}
}

// Recommend runs the whole calculation for a profile.
func (c *Calculator) Recommend(p Profile) (*Recommendation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bmr := c.BMR(p.WeightKg, p.HeightM*100, p.Age, p.Female())
	tdee := TDEE(bmr, p.Activity)
	macros := Targets(tdee, p.Goal, p.Diabetic)

	return &Recommendation{
		BMI:                 BMI(p.WeightKg, p.HeightM),
		BMR:                 bmr,
		TDEE:                tdee,
		Nutrition:           macros,
		WaterLitres:         p.WeightKg * waterLitresPerKg,
		FiberGrams:          macros.Energy / 1000 * fiberGramsPer1000,
		ActivityDescription: p.Activity.Description(),
	}, nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
