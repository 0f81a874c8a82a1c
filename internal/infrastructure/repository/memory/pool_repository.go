package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
)

type PoolRepository struct {
	mu    sync.RWMutex
	items map[string]pool.Pool
}

func NewPoolRepository() *PoolRepository {
	return &PoolRepository{items: make(map[string]pool.Pool)}
}

func (r *PoolRepository) Create(_ context.Context, p pool.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = p
	return nil
}

func (r *PoolRepository) GetByID(_ context.Context, id string) (pool.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	return p, ok, nil
}

func (r *PoolRepository) UpdateRules(_ context.Context, id string, rules scoring.Rules) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil
	}
	p.Rules = rules
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p
	return nil
}
