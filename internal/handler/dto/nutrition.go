package dto

import (
	"github.com/glycoguard/glycoguard/internal/nutrition"
)

// Macros are rounded daily targets.
type Macros struct {
	Energy  float64 `json:"energy"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// RecommendationResponse is returned by POST /recommend.
type RecommendationResponse struct {
	BMI                 float64 `json:"bmi"`
	TDEE                float64 `json:"tdee"`
	Nutrition           Macros  `json:"nutrition"`
	BMR                 float64 `json:"bmr"`
	WaterNeeds          float64 `json:"water_needs"`
	FiberNeeds          float64 `json:"fiber_needs"`
	ActivityDescription string  `json:"activity_description"`
}

// ToRecommendationResponse rounds every figure to two decimals.
// Rounding happens here only; the calculator keeps full precision.
func ToRecommendationResponse(rec *nutrition.Recommendation) RecommendationResponse {
	r2 := nutrition.Round2
	return RecommendationResponse{
		BMI:  r2(rec.BMI),
		TDEE: r2(rec.TDEE),
		Nutrition: Macros{
			Energy:  r2(rec.Nutrition.Energy),
			Carbs:   r2(rec.Nutrition.Carbs),
			Protein: r2(rec.Nutrition.Protein),
			Fat:     r2(rec.Nutrition.Fat),
		},
		BMR:                 r2(rec.BMR),
		WaterNeeds:          r2(rec.WaterLitres),
		FiberNeeds:          r2(rec.FiberGrams),
		ActivityDescription: rec.ActivityDescription,
	}
}

// ProfileSummary echoes the user's inputs in a health plan.
type ProfileSummary struct {
	Age                 float64 `json:"age"`
	Height              float64 `json:"height"`
	Weight              float64 `json:"weight"`
	Sex                 string  `json:"sex"`
	BMI                 float64 `json:"bmi"`
	ActivityLevel       string  `json:"activity_level"`
	ActivityDescription string  `json:"activity_description"`
	Goal                string  `json:"goal"`
	DiabetesStatus      string  `json:"diabetes_status"`
}

// MealResponse is one meal slot.
type MealResponse struct {
	Meal       string  `json:"meal"`
	Calories   float64 `json:"calories"`
	Suggestion string  `json:"suggestion"`
}

// DayPlanResponse is one day of a meal plan.
type DayPlanResponse struct {
	Day           int            `json:"day"`
	TotalCalories float64        `json:"total_calories"`
	Meals         []MealResponse `json:"meals"`
}

// ExerciseResponse is one exercise recommendation.
type ExerciseResponse struct {
	Type      string `json:"type"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
	Intensity string `json:"intensity"`
	Benefits  string `json:"benefits"`
	Tips      string `json:"tips"`
}

// HealthPlanResponse is returned by POST /health_plan.
type HealthPlanResponse struct {
	Profile                 ProfileSummary         `json:"profile"`
	Nutrition               RecommendationResponse `json:"nutrition"`
	MealPlan                []DayPlanResponse      `json:"meal_plan"`
	ExerciseRecommendations []ExerciseResponse     `json:"exercise_recommendations"`
}

// ToHealthPlanResponse converts a plan to its wire form.
func ToHealthPlanResponse(plan *nutrition.HealthPlan) HealthPlanResponse {
	p := plan.Profile
	status := "Low Risk"
	if p.Diabetic {
		status = "At Risk"
	}

	days := make([]DayPlanResponse, len(plan.Meals))
	for i, d := range plan.Meals {
		meals := make([]MealResponse, len(d.Meals))
		for j, m := range d.Meals {
			meals[j] = MealResponse{
				Meal:       m.Name,
				Calories:   nutrition.Round2(m.Calories),
				Suggestion: m.Suggestion,
			}
		}
		days[i] = DayPlanResponse{
			Day:           d.Day,
			TotalCalories: nutrition.Round2(d.TotalCalories),
			Meals:         meals,
		}
	}

	exercises := make([]ExerciseResponse, len(plan.Exercises))
	for i, e := range plan.Exercises {
		exercises[i] = ExerciseResponse(e)
	}

	return HealthPlanResponse{
		Profile: ProfileSummary{
			Age:                 p.Age,
			Height:              p.HeightM,
			Weight:              p.WeightKg,
			Sex:                 p.Sex,
			BMI:                 nutrition.Round2(plan.Recommendation.BMI),
			ActivityLevel:       string(p.Activity),
			ActivityDescription: plan.Recommendation.ActivityDescription,
			Goal:                string(p.Goal),
			DiabetesStatus:      status,
		},
		Nutrition:               ToRecommendationResponse(plan.Recommendation),
		MealPlan:                days,
		ExerciseRecommendations: exercises,
	}
}

// FoodResponse is one catalogue entry.
type FoodResponse struct {
	Name       string `json:"name"`
	GI         int    `json:"gi"`
	GICategory string `json:"gi_category"`
	Benefits   string `json:"benefits"`
	Portion    string `json:"portion"`
}

// FoodsResponse is returned by GET /foods.
type FoodsResponse struct {
	Foods map[string][]FoodResponse `json:"foods"`
}

// ToFoodsResponse annotates each food with its GI category.
func ToFoodsResponse(foods map[string][]nutrition.Food) FoodsResponse {
	out := make(map[string][]FoodResponse, len(foods))
	for category, list := range foods {
		items := make([]FoodResponse, len(list))
		for i, f := range list {
			items[i] = FoodResponse{
				Name:       f.Name,
				GI:         f.GI,
				GICategory: nutrition.GICategory(f.GI),
				Benefits:   f.Benefits,
				Portion:    f.Portion,
			}
		}
		out[category] = items
	}
	return FoodsResponse{Foods: out}
}
