package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/glycoguard/glycoguard/internal/auth"
	"github.com/glycoguard/glycoguard/internal/handler/dto"
	"github.com/glycoguard/glycoguard/internal/model"
	"github.com/glycoguard/glycoguard/internal/oracle"
	"github.com/glycoguard/glycoguard/internal/repository"
	"github.com/glycoguard/glycoguard/internal/service"
)

// PredictionService is the scoring surface used by PredictionHandler.
type PredictionService interface {
	Predict(ctx context.Context, in service.PredictInput) (*service.PredictResult, error)
	PredictBatch(ctx context.Context, rows []service.BatchRow) ([]service.BatchResult, error)
	History(ctx context.Context, userID string, q service.HistoryQuery) ([]*model.Prediction, error)
	Accuracy() (float64, error)
}

// PredictionHandler handles scoring, batch scoring and history.
type PredictionHandler struct {
	service PredictionService
	logger  *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(svc PredictionService, logger *slog.Logger) *PredictionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionHandler{service: svc, logger: logger}
}

// Predict handles POST /predict.
// The caller may be anonymous; identified callers get a history record.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.writeFormError(w, err)
		return
	}

	var values [model.FeatureCount]float64
	for i, name := range model.FeatureNames {
		v, ferr := formFloat(r, name)
		if ferr != nil {
			ferr.write(w)
			return
		}
		values[i] = v
	}

	res, err := h.service.Predict(r.Context(), service.PredictInput{
		UserID:   auth.UserIDFromContext(r.Context()),
		Features: model.FeaturesFromVector(values[:]),
		Sex:      strings.TrimSpace(r.FormValue("Sex")),
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPredictResponse(res))
}

// PredictCSV handles POST /predict_csv.
// Expects a multipart "file" field holding a CSV with a header row.
func (h *PredictionHandler) PredictCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			writeFieldError(w, "file", "No file uploaded")
			return
		}
		h.writeFormError(w, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeFieldError(w, "file", "No file uploaded")
		return
	}
	defer file.Close()

	rows, err := service.ParseBatchCSV(file)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	results, err := h.service.PredictBatch(r.Context(), rows)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBatchResponse(results))
}

// History handles GET /history.
// Query: label (repeatable), limit (1..500).
func (h *PredictionHandler) History(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var q service.HistoryQuery
	for _, label := range query["label"] {
		if label = strings.TrimSpace(label); label != "" {
			q.Labels = append(q.Labels, label)
		}
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > repository.MaxHistoryLimit {
			writeFieldError(w, "limit", fmt.Sprintf("limit must be between 1 and %d", repository.MaxHistoryLimit))
			return
		}
		q.Limit = limit
	}

	records, err := h.service.History(r.Context(), auth.UserIDFromContext(r.Context()), q)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToHistoryResponse(records))
}

// Accuracy handles GET /model_accuracy.
// A missing accuracy is reported as 500.
func (h *PredictionHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	acc, err := h.service.Accuracy()
	if err != nil {
		if !errors.Is(err, service.ErrAccuracyUnavailable) {
			h.logger.Error("failed to read model accuracy", "error", err)
		}
		writeError(w, http.StatusInternalServerError, "ACCURACY_UNAVAILABLE", "Model accuracy not available")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccuracyResponse{Accuracy: oracle.FormatAccuracy(acc)})
}

func (h *PredictionHandler) writeFormError(w http.ResponseWriter, err error) {
	if isBodyTooLarge(err) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
}
