package pool

import (
	"context"

	"github.com/bolaohq/bolao-server/internal/domain/scoring"
)

type Repository interface {
	Create(ctx context.Context, p Pool) error
	GetByID(ctx context.Context, id string) (Pool, bool, error)
	UpdateRules(ctx context.Context, id string, rules scoring.Rules) error
}
