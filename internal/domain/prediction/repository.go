package prediction

import "context"

type Repository interface {
	// Upsert creates or overwrites the single prediction for (match, user).
	Upsert(ctx context.Context, p Prediction) (Prediction, error)
	GetByUserAndMatch(ctx context.Context, userID, matchID string) (Prediction, bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	ListByUserAndPool(ctx context.Context, userID, poolID string) ([]Prediction, error)
	ListByPool(ctx context.Context, poolID string) ([]Prediction, error)
	UpdatePoints(ctx context.Context, id string, points int) error
	// ClearPointsByMatch nulls stored points when a finalized result is withdrawn.
	ClearPointsByMatch(ctx context.Context, matchID string) error
}
