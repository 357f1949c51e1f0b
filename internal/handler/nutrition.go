package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/glycoguard/glycoguard/internal/handler/dto"
	"github.com/glycoguard/glycoguard/internal/nutrition"
	"github.com/glycoguard/glycoguard/internal/service"
)

// NutritionHandler serves the nutrition advisor endpoints.
type NutritionHandler struct {
	service *service.NutritionService
	logger  *slog.Logger
}

// NewNutritionHandler creates a new NutritionHandler.
func NewNutritionHandler(svc *service.NutritionService, logger *slog.Logger) *NutritionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NutritionHandler{service: svc, logger: logger}
}

// Recommend handles POST /recommend.
func (h *NutritionHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profileFromForm(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Recommend(profile)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecommendationResponse(rec))
}

// HealthPlan handles POST /health_plan.
// Accepts the /recommend form plus an optional Days (default 1).
func (h *NutritionHandler) HealthPlan(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profileFromForm(w, r)
	if !ok {
		return
	}

	days := 1
	if raw := strings.TrimSpace(r.FormValue("Days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeFieldError(w, "Days", "Days must be a whole number")
			return
		}
		days = n
	}

	plan, err := h.service.Plan(profile, days)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToHealthPlanResponse(plan))
}

// Foods handles GET /foods.
// Query: category (optional).
func (h *NutritionHandler) Foods(w http.ResponseWriter, r *http.Request) {
	category := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category")))

	foods, err := h.service.Foods(category)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToFoodsResponse(foods))
}

// profileFromForm parses the shared advisor form. It writes the error
// response itself and reports whether parsing succeeded.
func (h *NutritionHandler) profileFromForm(w http.ResponseWriter, r *http.Request) (nutrition.Profile, bool) {
	if err := parseForm(r); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		}
		return nutrition.Profile{}, false
	}

	var p nutrition.Profile
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"Age", &p.Age},
		{"Height", &p.HeightM},
		{"Weight", &p.WeightKg},
	} {
		v, ferr := formFloat(r, f.name)
		if ferr != nil {
			ferr.write(w)
			return nutrition.Profile{}, false
		}
		*f.dst = v
	}

	activity, err := nutrition.ParseActivity(r.FormValue("ActivityLevel"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return nutrition.Profile{}, false
	}
	goal, err := nutrition.ParseGoal(r.FormValue("Goal"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return nutrition.Profile{}, false
	}

	p.Sex = strings.TrimSpace(r.FormValue("Sex"))
	p.Activity = activity
	p.Goal = goal
	p.Diabetic = strings.EqualFold(strings.TrimSpace(r.FormValue("Diabetic")), "true")

	return p, true
}
