package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/glycoguard/glycoguard/internal/model"
)

// History listing bounds.
const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
)

// PredictionFilter narrows a history listing.
type PredictionFilter struct {
	// Labels restricts results to these tier labels. Empty means all.
	Labels []string
	// Limit caps the number of rows. Zero means DefaultHistoryLimit.
	Limit int
}

func (f PredictionFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultHistoryLimit
	case f.Limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return f.Limit
	}
}

// CreatePrediction appends a history record. Records are never updated.
// Returns ErrUserNotFound if the owning user does not exist.
func (r *Repository) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	query := `
		INSERT INTO predictions (
			id, user_id, label, glucose, blood_pressure,
			risk_percentage, advisory_text, sex, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Label,
		p.Glucose,
		p.BloodPressure,
		p.RiskPercentage,
		p.AdvisoryText,
		p.Sex,
		p.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// ListPredictions returns a user's history, newest first. Records with equal
// timestamps are ordered by ID, which is a ULID and therefore time-sortable.
func (r *Repository) ListPredictions(ctx context.Context, userID string, filter PredictionFilter) ([]*model.Prediction, error) {
	query := `
		SELECT id, user_id, label, glucose, blood_pressure,
		       risk_percentage, advisory_text, sex, created_at
		FROM predictions
		WHERE user_id = $1
		  AND (cardinality($2::text[]) = 0 OR label = ANY($2::text[]))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	labels := filter.Labels
	if labels == nil {
		labels = []string{}
	}

	rows, err := r.pool.Query(ctx, query, userID, pq.Array(labels), filter.limit())
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*model.Prediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return predictions, nil
}

// CountPredictions returns how many records a user has.
func (r *Repository) CountPredictions(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM predictions WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}

func scanPrediction(row pgx.Row) (*model.Prediction, error) {
	var p model.Prediction
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Label,
		&p.Glucose,
		&p.BloodPressure,
		&p.RiskPercentage,
		&p.AdvisoryText,
		&p.Sex,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
