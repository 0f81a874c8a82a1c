package participant

import "context"

type Repository interface {
	Create(ctx context.Context, p Participant) error
	GetByID(ctx context.Context, id string) (Participant, bool, error)
	GetByUserAndPool(ctx context.Context, userID, poolID string) (Participant, bool, error)
	ListByPool(ctx context.Context, poolID string) ([]Participant, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateAggregates(ctx context.Context, id string, agg Aggregate) error
	// ReplaceRanking persists positions for the ranked participants of a pool
	// and resets the position of every participant left out of the ranking.
	ReplaceRanking(ctx context.Context, poolID string, ranks []Rank) error
	Delete(ctx context.Context, id string) error
}
