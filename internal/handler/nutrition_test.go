package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/glycoguard/glycoguard/internal/handler/dto"
	"github.com/glycoguard/glycoguard/internal/nutrition"
	"github.com/glycoguard/glycoguard/internal/service"
)

func newNutritionHandler() *NutritionHandler {
	return NewNutritionHandler(service.NewNutritionService(nutrition.NewCalculator(nutrition.HarrisBenedict)), discardLogger())
}

func advisorForm() url.Values {
	return url.Values{
		"Age":           {"30"},
		"Height":        {"1.75"},
		"Weight":        {"70"},
		"Sex":           {"male"},
		"ActivityLevel": {"Moderate"},
		"Goal":          {"Standard"},
		"Diabetic":      {"false"},
	}
}

func TestNutritionHandler_Recommend(t *testing.T) {
	h := newNutritionHandler()

	rec := httptest.NewRecorder()
	h.Recommend(rec, formRequest(t, http.MethodPost, "/recommend", advisorForm()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.RecommendationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// BMR = 66 + 13.7*70 + 5*175 - 6.8*30 = 1696; TDEE = 1696 * 1.55.
	if math.Abs(resp.BMR-1696) > 1e-9 {
		t.Errorf("bmr = %v, want 1696", resp.BMR)
	}
	if math.Abs(resp.TDEE-2628.8) > 1e-9 {
		t.Errorf("tdee = %v, want 2628.8", resp.TDEE)
	}
	if math.Abs(resp.BMI-22.86) > 1e-9 {
		t.Errorf("bmi = %v, want 22.86", resp.BMI)
	}
	if resp.ActivityDescription == "" {
		t.Error("expected an activity description")
	}
}

func TestNutritionHandler_RecommendDiabeticFlag(t *testing.T) {
	tests := []struct {
		value    string
		diabetic bool
	}{
		{"true", true},
		{"TRUE", true},
		{"yes", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			h := newNutritionHandler()

			form := advisorForm()
			form.Set("Diabetic", tt.value)

			rec := httptest.NewRecorder()
			h.Recommend(rec, formRequest(t, http.MethodPost, "/recommend", form))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			var resp dto.RecommendationResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			want := nutrition.Round2(nutrition.Targets(2628.8, nutrition.GoalStandard, tt.diabetic).Energy)
			if math.Abs(resp.Nutrition.Energy-want) > 1e-9 {
				t.Errorf("energy = %v, want %v", resp.Nutrition.Energy, want)
			}
		})
	}
}

func TestNutritionHandler_RecommendRejects(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		value     string
		wantField string
	}{
		{"missing age", "Age", "", "Age"},
		{"bad height", "Height", "tall", "Height"},
		{"height in centimetres", "Height", "175", "Height"},
		{"zero weight", "Weight", "0", "Weight"},
		{"unknown activity", "ActivityLevel", "Extreme", "ActivityLevel"},
		{"unknown goal", "Goal", "Shred", "Goal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newNutritionHandler()

			form := advisorForm()
			form.Set(tt.field, tt.value)

			rec := httptest.NewRecorder()
			h.Recommend(rec, formRequest(t, http.MethodPost, "/recommend", form))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if got := decodeError(t, rec); got.Field != tt.wantField {
				t.Errorf("field = %q, want %q", got.Field, tt.wantField)
			}
		})
	}
}

func TestNutritionHandler_HealthPlan(t *testing.T) {
	h := newNutritionHandler()

	form := advisorForm()
	form.Set("Diabetic", "true")
	form.Set("Days", "3")

	rec := httptest.NewRecorder()
	h.HealthPlan(rec, formRequest(t, http.MethodPost, "/health_plan", form))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.HealthPlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.MealPlan) != 3 {
		t.Fatalf("expected 3 days, got %d", len(resp.MealPlan))
	}
	if len(resp.MealPlan[0].Meals) != 6 {
		t.Errorf("diabetic plan should have 6 meals, got %d", len(resp.MealPlan[0].Meals))
	}
	if resp.Profile.DiabetesStatus != "At Risk" {
		t.Errorf("unexpected diabetes status %q", resp.Profile.DiabetesStatus)
	}

	last := resp.ExerciseRecommendations[len(resp.ExerciseRecommendations)-1]
	if last.Type != "Blood Sugar Monitoring" {
		t.Errorf("diabetic plan should end with monitoring, got %q", last.Type)
	}
}

func TestNutritionHandler_HealthPlanDays(t *testing.T) {
	tests := []struct {
		days       string
		wantStatus int
		wantDays   int
	}{
		{"", http.StatusOK, 1},
		{"7", http.StatusOK, 7},
		{"0", http.StatusBadRequest, 0},
		{"8", http.StatusBadRequest, 0},
		{"two", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run("days="+tt.days, func(t *testing.T) {
			h := newNutritionHandler()

			form := advisorForm()
			if tt.days != "" {
				form.Set("Days", tt.days)
			}

			rec := httptest.NewRecorder()
			h.HealthPlan(rec, formRequest(t, http.MethodPost, "/health_plan", form))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				if got := decodeError(t, rec); got.Field != "Days" {
					t.Errorf("field = %q, want Days", got.Field)
				}
				return
			}

			var resp dto.HealthPlanResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.MealPlan) != tt.wantDays {
				t.Errorf("days = %d, want %d", len(resp.MealPlan), tt.wantDays)
			}
		})
	}
}

func TestNutritionHandler_Foods(t *testing.T) {
	h := newNutritionHandler()

	rec := httptest.NewRecorder()
	h.Foods(rec, httptest.NewRequest(http.MethodGet, "/foods", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var all dto.FoodsResponse
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(all.Foods) != len(nutrition.FoodCategories()) {
		t.Errorf("expected %d categories, got %d", len(nutrition.FoodCategories()), len(all.Foods))
	}

	rec = httptest.NewRecorder()
	h.Foods(rec, httptest.NewRequest(http.MethodGet, "/foods?category=Vegetables", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var one dto.FoodsResponse
	if err := json.NewDecoder(rec.Body).Decode(&one); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	veg, ok := one.Foods["vegetables"]
	if len(one.Foods) != 1 || !ok || len(veg) == 0 {
		t.Fatalf("unexpected filtered catalogue: %+v", one.Foods)
	}
	for _, f := range veg {
		if f.GICategory != nutrition.GICategory(f.GI) {
			t.Errorf("%s: gi_category %q does not match gi %d", f.Name, f.GICategory, f.GI)
		}
	}
}

func TestNutritionHandler_FoodsUnknownCategory(t *testing.T) {
	h := newNutritionHandler()

	rec := httptest.NewRecorder()
	h.Foods(rec, httptest.NewRequest(http.MethodGet, "/foods?category=candy", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != "UNKNOWN_CATEGORY" {
		t.Errorf("unexpected code %s", got.Code)
	}
}
