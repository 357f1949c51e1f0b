package nutrition

import "fmt"

// MaxPlanDays bounds the generated meal plan.
const MaxPlanDays = 7

// Meal is one slot in a daily plan.
type Meal struct {
	Name       string
	Calories   float64
	Suggestion string
}

// DayPlan is a single day of meals.
type DayPlan struct {
	Day           int
	TotalCalories float64
	Meals         []Meal
}

type mealShare struct {
	name  string
	share float64
}

// Diabetic users get more frequent, smaller meals.
var (
	diabeticMeals = []mealShare{
		{"breakfast", 0.2},
		{"morning_snack", 0.1},
		{"lunch", 0.25},
		{"afternoon_snack", 0.1},
		{"dinner", 0.25},
		{"evening_snack", 0.1},
	}
	standardMeals = []mealShare{
		{"breakfast", 0.25},
		{"lunch", 0.35},
		{"dinner", 0.3},
		{"snack", 0.1},
	}
)

func mealSuggestion(meal string, diabetic bool) string {
	switch meal {
	case "breakfast":
		if diabetic {
			return "Greek yogurt with berries and nuts, sprinkled with cinnamon"
		}
		return "Oatmeal with fruit and nuts"
	case "lunch":
		if diabetic {
			return "Grilled chicken salad with olive oil dressing and a small portion of quinoa"
		}
		return "Sandwich with lean protein and vegetables"
	case "dinner":
		if diabetic {
			return "Baked salmon with roasted non-starchy vegetables and a small sweet potato"
		}
		return "Protein with vegetables and whole grains"
	default:
		if diabetic {
			return "Apple slices with almond butter or vegetable sticks with hummus"
		}
		return "Fruit or nuts"
	}
}

// MealPlan splits the daily energy target across meals for the given
// number of days (1..MaxPlanDays).
func MealPlan(energy float64, diabetic bool, days int) ([]DayPlan, error) {
	if days < 1 || days > MaxPlanDays {
		return nil, &InputError{Field: "Days", Message: fmt.Sprintf("Days must be between 1 and %d", MaxPlanDays)}
	}

	shares := standardMeals
	if diabetic {
		shares = diabeticMeals
	}

	plan := make([]DayPlan, 0, days)
	for d := 1; d <= days; d++ {
		day := DayPlan{Day: d, TotalCalories: energy, Meals: make([]Meal, 0, len(shares))}
		for _, s := range shares {
			day.Meals = append(day.Meals, Meal{
				Name:       s.name,
				Calories:   energy * s.share,
				Suggestion: mealSuggestion(s.name, diabetic),
			})
		}
		plan = append(plan, day)
	}
	return plan, nil
}

// Exercise is one recommended activity.
type Exercise struct {
	Type      string
	Frequency string
	Duration  string
	Intensity string
	Benefits  string
	Tips      string
}

var exercisesByActivity = map[Activity][]Exercise{
	ActivityLow: {
		{"Walking", "Daily", "30 minutes", "Moderate pace",
			"Improves insulin sensitivity and helps manage blood sugar levels",
			"Break it up into three 10-minute sessions if needed"},
		{"Swimming", "2-3 times per week", "20-30 minutes", "Light to moderate",
			"Low-impact exercise that's gentle on joints while improving cardiovascular health",
			"Focus on steady, consistent movement rather than speed"},
		{"Gentle Yoga", "2-3 times per week", "20-30 minutes", "Low",
			"Improves flexibility, reduces stress, and may help lower blood sugar",
			"Look for 'beginner', 'gentle', or 'diabetes-friendly' yoga classes or videos"},
	},
	ActivityModerate: {
		{"Brisk Walking or Jogging", "4-5 times per week", "30-45 minutes", "Moderate to somewhat hard",
			"Improves cardiovascular health and helps maintain healthy blood sugar levels",
			"Alternate between walking and jogging to build endurance"},
		{"Cycling", "3-4 times per week", "30 minutes", "Moderate",
			"Improves leg strength and cardiovascular fitness without high impact",
			"Indoor stationary bikes are great for consistent workouts regardless of weather"},
		{"Strength Training", "2-3 times per week", "20-30 minutes", "Moderate",
			"Builds muscle mass which improves insulin sensitivity and glucose metabolism",
			"Focus on major muscle groups with bodyweight exercises or light weights"},
	},
	ActivityHigh: {
		{"Interval Training", "3-4 times per week", "20-30 minutes", "Alternating between moderate and high",
			"Efficiently improves cardiovascular fitness and glucose metabolism",
			"Always include proper warm-up and cool-down periods"},
		{"Strength Training", "3-4 times per week", "30-45 minutes", "Moderate to high",
			"Increases muscle mass which improves insulin sensitivity and metabolic health",
			"Include a mix of resistance exercises for all major muscle groups"},
		{"Active Recovery", "2-3 times per week", "20-30 minutes", "Low",
			"Promotes recovery while maintaining activity levels",
			"Try yoga, swimming, or light walking on rest days"},
	},
}

var glucoseMonitoring = Exercise{
	Type:      "Blood Sugar Monitoring",
	Frequency: "Before and after exercise",
	Duration:  "N/A",
	Intensity: "N/A",
	Benefits:  "Helps understand how exercise affects your blood sugar levels",
	Tips:      "Keep fast-acting carbohydrates handy in case of low blood sugar during exercise",
}

// Exercises returns recommendations for the activity level. Diabetic users
// additionally get a glucose monitoring entry.
func Exercises(activity Activity, diabetic bool) []Exercise {
	base := exercisesByActivity[activity]
	if base == nil {
		base = exercisesByActivity[ActivityModerate]
	}

	out := make([]Exercise, len(base), len(base)+1)
	copy(out, base)
	if diabetic {
		out = append(out, glucoseMonitoring)
	}
	return out
}

// HealthPlan bundles a recommendation with meals and exercises.
type HealthPlan struct {
	Profile        Profile
	Recommendation *Recommendation
	Meals          []DayPlan
	Exercises      []Exercise
}

// Plan builds a multi-day health plan for the profile.
func (c *Calculator) Plan(p Profile, days int) (*HealthPlan, error) {
	rec, err := c.Recommend(p)
	if err != nil {
		return nil, err
	}

	meals, err := MealPlan(rec.Nutrition.Energy, p.Diabetic, days)
	if err != nil {
		return nil, err
	}

	return &HealthPlan{
		Profile:        p,
		Recommendation: rec,
		Meals:          meals,
		Exercises:      Exercises(p.Activity, p.Diabetic),
	}, nil
}
