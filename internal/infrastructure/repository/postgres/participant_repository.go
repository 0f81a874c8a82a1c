package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bolaohq/bolao-server/internal/domain/participant"
	qb "github.com/bolaohq/bolao-server/internal/platform/querybuilder"
)

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p participant.Participant) error {
	insertModel := participantInsertModel{
		PublicID: p.ID,
		PoolID:   p.PoolID,
		UserID:   p.UserID,
		Status:   p.Status,
		JoinedAt: p.JoinedAt,
	}
	query, args, err := qb.InsertModel("participants", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert participant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant by id query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant by id: %w", err)
	}

	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) GetByUserAndPool(ctx context.Context, userID, poolID string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant by user query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant by user: %w", err)
	}

	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) ListByPool(ctx context.Context, poolID string) ([]participant.Participant, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("joined_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func (r *ParticipantRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query, args, err := qb.Update("participants").
		Set("status", status).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update participant status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update participant status: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) UpdateAggregates(ctx context.Context, id string, agg participant.Aggregate) error {
	query, args, err := qb.Update("participants").
		Set("points", agg.Points).
		Set("correct_count", agg.CorrectCount).
		Set("total_predictions", agg.TotalPredictions).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update participant aggregates query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update participant aggregates: %w", err)
	}
	return nil
}

// ReplaceRanking writes the whole leaderboard in one transaction: positions
// are zeroed for the pool first so participants dropped from the ranking do
// not keep a stale position.
func (r *ParticipantRepository) ReplaceRanking(ctx context.Context, poolID string, ranks []participant.Rank) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace ranking: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update("participants").
		Set("position", 0).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear ranking query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear ranking: %w", err)
	}

	for _, rank := range ranks {
		query, args, err := qb.Update("participants").
			Set("position", rank.Position).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("public_id", rank.ParticipantID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build set position query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("set position participant=%s: %w", rank.ParticipantID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace ranking tx: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.Update("participants").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete participant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

func participantFromRow(row participantTableModel) participant.Participant {
	return participant.Participant{
		ID:               row.PublicID,
		PoolID:           row.PoolID,
		UserID:           row.UserID,
		Status:           row.Status,
		Points:           row.Points,
		CorrectCount:     row.CorrectCount,
		TotalPredictions: row.TotalPredictions,
		Position:         row.Position,
		JoinedAt:         row.JoinedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
