package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bolaohq/bolao-server/internal/domain/prediction"
)

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[string]prediction.Prediction)}
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.MatchID == p.MatchID && existing.UserID == p.UserID {
			existing.HomeGoals = p.HomeGoals
			existing.AwayGoals = p.AwayGoals
			existing.Points = nil
			existing.UpdatedAt = p.UpdatedAt
			r.items[id] = existing
			return existing, nil
		}
	}
	r.items[p.ID] = p
	return p, nil
}

func (r *PredictionRepository) GetByUserAndMatch(_ context.Context, userID, matchID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.UserID == userID && p.MatchID == matchID {
			return p, true, nil
		}
	}
	return prediction.Prediction{}, false, nil
}

func (r *PredictionRepository) ListByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p prediction.Prediction) bool { return p.MatchID == matchID }), nil
}

func (r *PredictionRepository) ListByUserAndPool(_ context.Context, userID, poolID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p prediction.Prediction) bool {
		return p.UserID == userID && p.PoolID == poolID
	}), nil
}

func (r *PredictionRepository) ListByPool(_ context.Context, poolID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p prediction.Prediction) bool { return p.PoolID == poolID }), nil
}

func (r *PredictionRepository) UpdatePoints(_ context.Context, id string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil
	}
	p.Points = &points
	r.items[id] = p
	return nil
}

func (r *PredictionRepository) ClearPointsByMatch(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.items {
		if p.MatchID == matchID {
			p.Points = nil
			r.items[id] = p
		}
	}
	return nil
}

// collect assumes the caller holds at least a read lock.
func (r *PredictionRepository) collect(keep func(prediction.Prediction) bool) []prediction.Prediction {
	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
