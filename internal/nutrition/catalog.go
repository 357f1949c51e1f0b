package nutrition

import "sort"

// GICategory buckets a glycemic index value: <=55 Low, <=70 Medium, else High.
func GICategory(gi int) string {
	switch {
	case gi <= 55:
		return "Low"
	case gi <= 70:
		return "Medium"
	default:
		return "High"
	}
}

// Food is one catalogue entry.
type Food struct {
	Name     string
	GI       int
	Benefits string
	Portion  string
}

var foodCatalog = map[string][]Food{
	"vegetables": {
		{"Spinach", 0, "Rich in vitamins A, C, K, iron, and folate", "2 cups raw"},
		{"Broccoli", 0, "High in fiber, vitamin C, and antioxidants", "1 cup cooked"},
		{"Kale", 0, "Excellent source of vitamins A, C, K and minerals", "2 cups raw"},
		{"Bell Peppers", 15, "High in vitamin C and antioxidants", "1 medium pepper"},
		{"Cauliflower", 0, "Low-carb alternative to grains, high in fiber", "1 cup cooked"},
		{"Zucchini", 15, "Low in carbs, good source of vitamin C", "1 cup cooked"},
	},
	"proteins": {
		{"Salmon", 0, "Rich in omega-3 fatty acids, high-quality protein", "4 oz cooked"},
		{"Chicken Breast", 0, "Lean protein, low in fat", "4 oz cooked"},
		{"Eggs", 0, "Complete protein, vitamin D, choline", "2 whole eggs"},
		{"Greek Yogurt", 35, "High in protein, calcium, probiotics", "6 oz (plain, unsweetened)"},
		{"Tofu", 15, "Plant-based protein, calcium, iron", "4 oz"},
		{"Lentils", 30, "Plant protein, fiber, slow-digesting carbs", "1/2 cup cooked"},
	},
	"fats": {
		{"Avocado", 0, "Healthy monounsaturated fats, fiber, potassium", "1/4 to 1/2 avocado"},
		{"Olive Oil", 0, "Monounsaturated fats, antioxidants", "1 tablespoon"},
		{"Nuts (Almonds)", 0, "Healthy fats, protein, fiber, magnesium", "1/4 cup"},
		{"Seeds (Chia)", 0, "Omega-3 fatty acids, fiber, protein", "2 tablespoons"},
		{"Fatty Fish", 0, "Omega-3 fatty acids, protein", "4 oz cooked"},
	},
	"carbs": {
		{"Sweet Potato", 55, "Complex carbs, fiber, vitamins A and C", "1/2 cup cooked"},
		{"Quinoa", 53, "Complete protein, fiber, minerals", "1/3 cup cooked"},
		{"Berries", 40, "Low sugar fruits, antioxidants, fiber", "3/4 cup"},
		{"Oats", 55, "Soluble fiber, helps control blood sugar", "1/2 cup cooked"},
		{"Beans", 40, "Fiber, protein, resistant starch", "1/2 cup cooked"},
	},
}

// FoodCategories returns the catalogue categories in sorted order.
func FoodCategories() []string {
	out := make([]string, 0, len(foodCatalog))
	for k := range foodCatalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Foods returns the diabetes-friendly catalogue. An empty category returns
// everything; an unknown category returns ok=false.
func Foods(category string) (map[string][]Food, bool) {
	if category == "" {
		out := make(map[string][]Food, len(foodCatalog))
		for k, v := range foodCatalog {
			out[k] = append([]Food(nil), v...)
		}
		return out, true
	}

	foods, ok := foodCatalog[category]
	if !ok {
		return nil, false
	}
	return map[string][]Food{category: append([]Food(nil), foods...)}, true
}
