package match

import "context"

type Repository interface {
	Create(ctx context.Context, m Match) error
	GetByID(ctx context.Context, id string) (Match, bool, error)
	ListByPool(ctx context.Context, poolID string) ([]Match, error)
	Update(ctx context.Context, m Match) error
}
