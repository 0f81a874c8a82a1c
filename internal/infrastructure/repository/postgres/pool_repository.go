package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
	qb "github.com/bolaohq/bolao-server/internal/platform/querybuilder"
)

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) Create(ctx context.Context, p pool.Pool) error {
	insertModel := poolInsertModel{
		PublicID:       p.ID,
		Name:           p.Name,
		Championship:   p.Championship,
		OwnerID:        p.OwnerID,
		ExactScore:     p.Rules.ExactScore,
		CorrectOutcome: p.Rules.CorrectOutcome,
		ExactGoalBonus: p.Rules.ExactGoalBonus,
		BonusEnabled:   p.Rules.BonusEnabled,
	}
	query, args, err := qb.InsertModel("pools", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert pool query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert pool: %w", err)
	}
	return nil
}

func (r *PoolRepository) GetByID(ctx context.Context, id string) (pool.Pool, bool, error) {
	query, args, err := qb.Select("*").From("pools").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return pool.Pool{}, false, fmt.Errorf("build get pool by id query: %w", err)
	}

	var row poolTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Pool{}, false, nil
		}
		return pool.Pool{}, false, fmt.Errorf("get pool by id: %w", err)
	}

	return pool.Pool{
		ID:           row.PublicID,
		Name:         row.Name,
		Championship: row.Championship,
		OwnerID:      row.OwnerID,
		Rules: scoring.Rules{
			ExactScore:     row.ExactScore,
			CorrectOutcome: row.CorrectOutcome,
			ExactGoalBonus: row.ExactGoalBonus,
			BonusEnabled:   row.BonusEnabled,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *PoolRepository) UpdateRules(ctx context.Context, id string, rules scoring.Rules) error {
	query, args, err := qb.Update("pools").
		Set("exact_score_points", rules.ExactScore).
		Set("correct_outcome_points", rules.CorrectOutcome).
		Set("exact_goal_bonus_points", rules.ExactGoalBonus).
		Set("bonus_enabled", rules.BonusEnabled).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pool rules query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update pool rules: %w", err)
	}
	return nil
}
