package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/match"
	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
	"github.com/bolaohq/bolao-server/internal/infrastructure/repository/memory"
	"github.com/bolaohq/bolao-server/internal/platform/logging"
)

type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("id-%03d", g.n), nil
}

type testEnv struct {
	pools        *memory.PoolRepository
	matches      *memory.MatchRepository
	participants *memory.ParticipantRepository
	predictions  *memory.PredictionRepository

	recompute      *RecomputeService
	poolService    *PoolService
	matchService   *MatchService
	predictService *PredictionService
	rankingService *RankingService

	now time.Time
}

func newTestEnv() *testEnv {
	pools := memory.NewPoolRepository()
	matches := memory.NewMatchRepository()
	participants := memory.NewParticipantRepository()
	predictions := memory.NewPredictionRepository()

	logger := logging.NewNop()
	ids := &seqIDGenerator{}

	recompute := NewRecomputeService(pools, matches, predictions, participants, logger)
	recompute.rankRetryDelay = time.Millisecond

	env := &testEnv{
		pools:          pools,
		matches:        matches,
		participants:   participants,
		predictions:    predictions,
		recompute:      recompute,
		poolService:    NewPoolService(pools, participants, recompute, ids, logger),
		matchService:   NewMatchService(pools, matches, recompute, ids, logger),
		predictService: NewPredictionService(pools, matches, participants, predictions, ids, logger),
		rankingService: NewRankingService(pools, participants),
		now:            time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	env.poolService.now = func() time.Time { return env.now }
	env.matchService.now = func() time.Time { return env.now }
	env.predictService.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) seedPool(id, ownerID string, rules scoring.Rules) pool.Pool {
	p := pool.Pool{
		ID:           id,
		Name:         "Brasileirão " + id,
		Championship: "Brasileirão 2026",
		OwnerID:      ownerID,
		Rules:        rules,
		CreatedAt:    e.now,
		UpdatedAt:    e.now,
	}
	_ = e.pools.Create(context.Background(), p)
	return p
}

func (e *testEnv) seedParticipant(id, poolID, userID, status string, joinedAt time.Time) participant.Participant {
	p := participant.Participant{
		ID:       id,
		PoolID:   poolID,
		UserID:   userID,
		Status:   status,
		JoinedAt: joinedAt,
	}
	_ = e.participants.Create(context.Background(), p)
	return p
}

func (e *testEnv) seedMatch(id, poolID string, kickoffAt time.Time) match.Match {
	m := match.Match{
		ID:        id,
		PoolID:    poolID,
		Round:     1,
		HomeTeam:  "Flamengo",
		AwayTeam:  "Palmeiras",
		KickoffAt: kickoffAt,
		Status:    match.StatusScheduled,
		CreatedAt: e.now,
		UpdatedAt: e.now,
	}
	_ = e.matches.Create(context.Background(), m)
	return m
}

func intPtr(v int) *int { return &v }
