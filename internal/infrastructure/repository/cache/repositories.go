package cache

import (
	"context"

	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
	basecache "github.com/bolaohq/bolao-server/internal/platform/cache"
)

// PoolRepository serves pool reads from a TTL cache. Writes go straight to
// the wrapped repository and drop the affected keys.
type PoolRepository struct {
	next  pool.Repository
	cache *basecache.Store
}

func NewPoolRepository(next pool.Repository, cache *basecache.Store) *PoolRepository {
	return &PoolRepository{next: next, cache: cache}
}

func (r *PoolRepository) Create(ctx context.Context, p pool.Pool) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.cache.Delete(ctx, poolByIDKey(p.ID))
	return nil
}

func (r *PoolRepository) GetByID(ctx context.Context, id string) (pool.Pool, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, poolByIDKey(id), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedPoolByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return pool.Pool{}, false, err
	}

	cached, _ := v.(cachedPoolByID)
	return cached.value, cached.exists, nil
}

func (r *PoolRepository) UpdateRules(ctx context.Context, id string, rules scoring.Rules) error {
	if err := r.next.UpdateRules(ctx, id, rules); err != nil {
		return err
	}
	r.cache.Delete(ctx, poolByIDKey(id))
	return nil
}

type cachedPoolByID struct {
	value  pool.Pool
	exists bool
}

func poolByIDKey(id string) string {
	return "pool:id:" + id
}

// ParticipantRepository caches the membership reads behind the leaderboard
// and prediction authorization. Every write can move a member in or out of
// the ranked set, so writes drop the whole participant keyspace.
type ParticipantRepository struct {
	next  participant.Repository
	cache *basecache.Store
}

func NewParticipantRepository(next participant.Repository, cache *basecache.Store) *ParticipantRepository {
	return &ParticipantRepository{next: next, cache: cache}
}

func (r *ParticipantRepository) Create(ctx context.Context, p participant.Participant) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, participantPrefix)
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *ParticipantRepository) GetByUserAndPool(ctx context.Context, userID, poolID string) (participant.Participant, bool, error) {
	key := participantPrefix + "user:" + userID + ":pool:" + poolID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByUserAndPool(ctx, userID, poolID)
		if err != nil {
			return nil, err
		}
		return cachedParticipant{value: item, exists: exists}, nil
	})
	if err != nil {
		return participant.Participant{}, false, err
	}

	cached, _ := v.(cachedParticipant)
	return cached.value, cached.exists, nil
}

func (r *ParticipantRepository) ListByPool(ctx context.Context, poolID string) ([]participant.Participant, error) {
	key := participantPrefix + "list:pool:" + poolID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByPool(ctx, poolID)
		if err != nil {
			return nil, err
		}
		return append([]participant.Participant(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]participant.Participant)
	return append([]participant.Participant(nil), items...), nil
}

func (r *ParticipantRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if err := r.next.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, participantPrefix)
	return nil
}

func (r *ParticipantRepository) UpdateAggregates(ctx context.Context, id string, agg participant.Aggregate) error {
	if err := r.next.UpdateAggregates(ctx, id, agg); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, participantPrefix)
	return nil
}

func (r *ParticipantRepository) ReplaceRanking(ctx context.Context, poolID string, ranks []participant.Rank) error {
	if err := r.next.ReplaceRanking(ctx, poolID, ranks); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, participantPrefix)
	return nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, participantPrefix)
	return nil
}

type cachedParticipant struct {
	value  participant.Participant
	exists bool
}

const participantPrefix = "participant:"
