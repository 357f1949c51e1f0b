package service

import (
	"errors"

	"github.com/glycoguard/glycoguard/internal/nutrition"
)

// ErrUnknownFoodCategory is returned for a category outside the catalogue.
var ErrUnknownFoodCategory = errors.New("unknown food category")

// NutritionService exposes the calculator and the food catalogue.
type NutritionService struct {
	calc *nutrition.Calculator
}

// NewNutritionService creates a new NutritionService.
func NewNutritionService(calc *nutrition.Calculator) *NutritionService {
	if calc == nil {
		calc = nutrition.NewCalculator(nutrition.HarrisBenedict)
	}
	return &NutritionService{calc: calc}
}

// Recommend computes energy and macro targets for a profile.
func (s *NutritionService) Recommend(p nutrition.Profile) (*nutrition.Recommendation, error) {
	rec, err := s.calc.Recommend(p)
	if err != nil {
		return nil, asValidation(err)
	}
	return rec, nil
}

// Plan builds a meal and exercise plan covering days days.
func (s *NutritionService) Plan(p nutrition.Profile, days int) (*nutrition.HealthPlan, error) {
	plan, err := s.calc.Plan(p, days)
	if err != nil {
		return nil, asValidation(err)
	}
	return plan, nil
}

// Foods returns the catalogue, optionally limited to one category.
func (s *NutritionService) Foods(category string) (map[string][]nutrition.Food, error) {
	foods, ok := nutrition.Foods(category)
	if !ok {
		return nil, ErrUnknownFoodCategory
	}
	return foods, nil
}

// FoodCategories lists the catalogue categories.
func (s *NutritionService) FoodCategories() []string {
	return nutrition.FoodCategories()
}
