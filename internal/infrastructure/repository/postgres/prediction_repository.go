package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bolaohq/bolao-server/internal/domain/prediction"
	qb "github.com/bolaohq/bolao-server/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Upsert relies on the partial unique index over (match_public_id, user_id)
// to keep one live prediction per user per match. A resubmission overwrites
// the guess and nulls any previously computed points.
func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	insertModel := predictionInsertModel{
		PublicID:  p.ID,
		PoolID:    p.PoolID,
		MatchID:   p.MatchID,
		UserID:    p.UserID,
		HomeGoals: p.HomeGoals,
		AwayGoals: p.AwayGoals,
	}
	query, args, err := qb.InsertModel("predictions", insertModel, `ON CONFLICT (match_public_id, user_id) WHERE deleted_at IS NULL
DO UPDATE SET
    home_goals = EXCLUDED.home_goals,
    away_goals = EXCLUDED.away_goals,
    points = NULL,
    updated_at = NOW()`)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build upsert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	saved, exists, err := r.GetByUserAndMatch(ctx, p.UserID, p.MatchID)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("prediction missing after upsert match=%s user=%s", p.MatchID, p.UserID)
	}
	return saved, nil
}

func (r *PredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("match_public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}

	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("match_public_id", matchID))
}

func (r *PredictionRepository) ListByUserAndPool(ctx context.Context, userID, poolID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("user_id", userID), qb.Eq("pool_public_id", poolID))
}

func (r *PredictionRepository) ListByPool(ctx context.Context, poolID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("pool_public_id", poolID))
}

func (r *PredictionRepository) list(ctx context.Context, conditions ...qb.Condition) ([]prediction.Prediction, error) {
	conditions = append(conditions, qb.IsNull("deleted_at"))
	query, args, err := qb.Select("*").From("predictions").
		Where(conditions...).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func (r *PredictionRepository) UpdatePoints(ctx context.Context, id string, points int) error {
	query, args, err := qb.Update("predictions").
		Set("points", points).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update prediction points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update prediction points: %w", err)
	}
	return nil
}

func (r *PredictionRepository) ClearPointsByMatch(ctx context.Context, matchID string) error {
	query, args, err := qb.Update("predictions").
		SetExpr("points", "NULL").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear prediction points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear prediction points: %w", err)
	}
	return nil
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:        row.PublicID,
		PoolID:    row.PoolID,
		MatchID:   row.MatchID,
		UserID:    row.UserID,
		HomeGoals: row.HomeGoals,
		AwayGoals: row.AwayGoals,
		Points:    nullIntToIntPtr(row.Points),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
