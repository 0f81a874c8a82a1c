package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/participant"
)

type ParticipantRepository struct {
	mu    sync.RWMutex
	items map[string]participant.Participant
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{items: make(map[string]participant.Participant)}
}

func (r *ParticipantRepository) Create(_ context.Context, p participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = p
	return nil
}

func (r *ParticipantRepository) GetByID(_ context.Context, id string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	return p, ok, nil
}

func (r *ParticipantRepository) GetByUserAndPool(_ context.Context, userID, poolID string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.UserID == userID && p.PoolID == poolID {
			return p, true, nil
		}
	}
	return participant.Participant{}, false, nil
}

func (r *ParticipantRepository) ListByPool(_ context.Context, poolID string) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0)
	for _, p := range r.items {
		if p.PoolID == poolID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *ParticipantRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p
	return nil
}

func (r *ParticipantRepository) UpdateAggregates(_ context.Context, id string, agg participant.Aggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil
	}
	p.Points = agg.Points
	p.CorrectCount = agg.CorrectCount
	p.TotalPredictions = agg.TotalPredictions
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p
	return nil
}

func (r *ParticipantRepository) ReplaceRanking(_ context.Context, poolID string, ranks []participant.Rank) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	positions := make(map[string]int, len(ranks))
	for _, rank := range ranks {
		positions[rank.ParticipantID] = rank.Position
	}

	for id, p := range r.items {
		if p.PoolID != poolID {
			continue
		}
		p.Position = positions[p.ID]
		r.items[id] = p
	}
	return nil
}

func (r *ParticipantRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}
