package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	concpool "github.com/sourcegraph/conc/pool"

	"github.com/bolaohq/bolao-server/internal/domain/match"
	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/prediction"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
	"github.com/bolaohq/bolao-server/internal/platform/logging"
)

const (
	defaultScoreWorkers   = 8
	defaultRankLockTries  = 5
	defaultRankRetryDelay = 100 * time.Millisecond
)

// RecomputeReport summarizes one run of the score -> aggregate -> rank pipeline.
type RecomputeReport struct {
	PredictionsScored   int
	ParticipantsUpdated int
}

// RecomputeService drives rescoring when a match result lands, changes, or a
// pool's scoring rules are edited. The three phases run strictly in order:
// every prediction is scored before any participant aggregate is recomputed,
// and every aggregate is written before the pool ranking is rebuilt.
type RecomputeService struct {
	poolRepo        pool.Repository
	matchRepo       match.Repository
	predictionRepo  prediction.Repository
	participantRepo participant.Repository
	logger          *logging.Logger

	scoreWorkers   int
	rankLockTries  int
	rankRetryDelay time.Duration
	submitScore    func(workers *ants.Pool, task func()) error

	mu        sync.Mutex
	rankLocks map[string]*sync.Mutex
}

func NewRecomputeService(
	poolRepo pool.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	participantRepo participant.Repository,
	logger *logging.Logger,
) *RecomputeService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RecomputeService{
		poolRepo:        poolRepo,
		matchRepo:       matchRepo,
		predictionRepo:  predictionRepo,
		participantRepo: participantRepo,
		logger:          logger,
		scoreWorkers:    defaultScoreWorkers,
		rankLockTries:   defaultRankLockTries,
		rankRetryDelay:  defaultRankRetryDelay,
		rankLocks:       make(map[string]*sync.Mutex),
	}
}

// SetScoreWorkers overrides the size of the scoring worker pool.
func (s *RecomputeService) SetScoreWorkers(n int) {
	if n > 0 {
		s.scoreWorkers = n
	}
}

// OnMatchFinalized rescoring entrypoint for a single match. Safe to run
// repeatedly: points are overwritten, aggregates and positions are derived
// from scratch each time.
func (s *RecomputeService) OnMatchFinalized(ctx context.Context, matchID string) (RecomputeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.OnMatchFinalized")
	defer span.End()

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("get match for recompute: %w", err)
	}
	if !exists {
		return RecomputeReport{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !m.Finalized() {
		return RecomputeReport{}, fmt.Errorf("%w: match=%s is not finalized with a complete score", ErrPreconditionFailed, matchID)
	}

	p, exists, err := s.poolRepo.GetByID(ctx, m.PoolID)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("get pool for recompute: %w", err)
	}
	if !exists {
		return RecomputeReport{}, fmt.Errorf("%w: pool=%s", ErrNotFound, m.PoolID)
	}

	predictions, err := s.predictionRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("list predictions by match: %w", err)
	}
	if len(predictions) == 0 {
		s.logger.InfoContext(ctx, "recompute no-op, match has no predictions", "match_id", matchID)
		return RecomputeReport{}, nil
	}

	scored, affectedUsers, err := s.scorePredictions(ctx, predictions, m, p.Rules)
	if err != nil {
		return RecomputeReport{}, err
	}

	updated, err := s.aggregateUsers(ctx, m.PoolID, affectedUsers)
	if err != nil {
		return RecomputeReport{}, err
	}

	if err := s.RebuildRanking(ctx, m.PoolID); err != nil {
		return RecomputeReport{}, err
	}

	report := RecomputeReport{PredictionsScored: scored, ParticipantsUpdated: updated}
	s.logger.InfoContext(ctx, "match recompute done",
		"match_id", matchID,
		"pool_id", m.PoolID,
		"predictions_scored", report.PredictionsScored,
		"participants_updated", report.ParticipantsUpdated,
	)
	return report, nil
}

// OnRulesChanged rescoring for every finalized match of a pool, used after a
// scoring-rule edit so stored points match the active rule set.
func (s *RecomputeService) OnRulesChanged(ctx context.Context, poolID string) (RecomputeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.OnRulesChanged")
	defer span.End()

	p, exists, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("get pool for full recompute: %w", err)
	}
	if !exists {
		return RecomputeReport{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}

	matches, err := s.matchRepo.ListByPool(ctx, poolID)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("list matches for full recompute: %w", err)
	}

	totalScored := 0
	affected := make(map[string]struct{})
	for _, m := range matches {
		if !m.Finalized() {
			continue
		}
		predictions, err := s.predictionRepo.ListByMatch(ctx, m.ID)
		if err != nil {
			return RecomputeReport{}, fmt.Errorf("list predictions match=%s: %w", m.ID, err)
		}
		if len(predictions) == 0 {
			continue
		}
		scored, users, err := s.scorePredictions(ctx, predictions, m, p.Rules)
		if err != nil {
			return RecomputeReport{}, err
		}
		totalScored += scored
		for userID := range users {
			affected[userID] = struct{}{}
		}
	}

	updated, err := s.aggregateUsers(ctx, poolID, affected)
	if err != nil {
		return RecomputeReport{}, err
	}

	if err := s.RebuildRanking(ctx, poolID); err != nil {
		return RecomputeReport{}, err
	}

	report := RecomputeReport{PredictionsScored: totalScored, ParticipantsUpdated: updated}
	s.logger.InfoContext(ctx, "pool recompute done",
		"pool_id", poolID,
		"predictions_scored", report.PredictionsScored,
		"participants_updated", report.ParticipantsUpdated,
	)
	return report, nil
}

// OnMatchVoided clears stored points after a finalized result is withdrawn
// (postponed or cancelled after being finalized), then re-aggregates and
// re-ranks the affected pool.
func (s *RecomputeService) OnMatchVoided(ctx context.Context, matchID string) (RecomputeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.OnMatchVoided")
	defer span.End()

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("get match for void: %w", err)
	}
	if !exists {
		return RecomputeReport{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	predictions, err := s.predictionRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("list predictions for void: %w", err)
	}

	if err := s.predictionRepo.ClearPointsByMatch(ctx, matchID); err != nil {
		return RecomputeReport{}, fmt.Errorf("clear prediction points match=%s: %w", matchID, err)
	}

	affected := make(map[string]struct{}, len(predictions))
	for _, item := range predictions {
		affected[item.UserID] = struct{}{}
	}

	updated, err := s.aggregateUsers(ctx, m.PoolID, affected)
	if err != nil {
		return RecomputeReport{}, err
	}

	if err := s.RebuildRanking(ctx, m.PoolID); err != nil {
		return RecomputeReport{}, err
	}

	return RecomputeReport{ParticipantsUpdated: updated}, nil
}

// scorePredictions is the scoring phase: evaluates every prediction against
// the finalized match and persists the points, overwriting stale values.
// Unapproved participants are scored too; ranking excludes them later.
func (s *RecomputeService) scorePredictions(
	ctx context.Context,
	predictions []prediction.Prediction,
	m match.Match,
	rules scoring.Rules,
) (int, map[string]struct{}, error) {
	workers, err := ants.NewPool(s.scoreWorkers)
	if err != nil {
		return 0, nil, fmt.Errorf("create scoring worker pool: %w", err)
	}
	defer workers.Release()

	submit := s.submitScore
	if submit == nil {
		submit = (*ants.Pool).Submit
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, item := range predictions {
		item := item
		wg.Add(1)
		if err := submit(workers, func() {
			defer wg.Done()

			result := scoring.Evaluate(item.HomeGoals, item.AwayGoals, *m.HomeScore, *m.AwayScore, rules)
			if err := s.predictionRepo.UpdatePoints(ctx, item.ID, result.Points); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("persist prediction points id=%s: %w", item.ID, err)
				}
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit prediction to scoring pool: %w", err)
			}
			mu.Unlock()
			// In-flight submissions still write points; wait them out
			// before surfacing the failure.
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return 0, nil, firstErr
	}

	affected := make(map[string]struct{}, len(predictions))
	for _, item := range predictions {
		affected[item.UserID] = struct{}{}
	}
	return len(predictions), affected, nil
}

// aggregateUsers is the aggregation phase: recomputes derived counters for
// each affected user. Order-independent and idempotent, so users run in
// parallel.
func (s *RecomputeService) aggregateUsers(ctx context.Context, poolID string, users map[string]struct{}) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	group := concpool.New().WithErrors().WithContext(ctx)
	var updated sync.Map
	for userID := range users {
		userID := userID
		group.Go(func(ctx context.Context) error {
			changed, err := s.recomputeParticipant(ctx, userID, poolID)
			if err != nil {
				return err
			}
			if changed {
				updated.Store(userID, struct{}{})
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	count := 0
	updated.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count, nil
}

func (s *RecomputeService) recomputeParticipant(ctx context.Context, userID, poolID string) (bool, error) {
	part, exists, err := s.participantRepo.GetByUserAndPool(ctx, userID, poolID)
	if err != nil {
		return false, fmt.Errorf("get participant user=%s pool=%s: %w", userID, poolID, err)
	}
	if !exists {
		// Prediction left behind by a removed participant; nothing to aggregate.
		return false, nil
	}

	predictions, err := s.predictionRepo.ListByUserAndPool(ctx, userID, poolID)
	if err != nil {
		return false, fmt.Errorf("list predictions user=%s pool=%s: %w", userID, poolID, err)
	}

	agg := participant.Aggregate{}
	for _, item := range predictions {
		if item.Points == nil {
			continue
		}
		agg.TotalPredictions++
		agg.Points += *item.Points
		if *item.Points > 0 {
			agg.CorrectCount++
		}
	}

	if err := s.participantRepo.UpdateAggregates(ctx, part.ID, agg); err != nil {
		return false, fmt.Errorf("update aggregates participant=%s: %w", part.ID, err)
	}
	return true, nil
}

// RebuildRanking is the ranking phase: a full-pool rewrite of positions for
// approved participants. At most one rebuild runs per pool; a second caller
// retries with backoff and then surfaces a conflict for the caller to retry.
func (s *RecomputeService) RebuildRanking(ctx context.Context, poolID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RebuildRanking")
	defer span.End()

	lock := s.rankLock(poolID)
	acquired := false
	for attempt := 0; attempt < s.rankLockTries; attempt++ {
		if lock.TryLock() {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.rankRetryDelay * time.Duration(attempt+1)):
		}
	}
	if !acquired {
		return fmt.Errorf("%w: pool=%s", ErrConcurrencyConflict, poolID)
	}
	defer lock.Unlock()

	participants, err := s.participantRepo.ListByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("list participants for ranking: %w", err)
	}

	ranked := make([]participant.Participant, 0, len(participants))
	for _, item := range participants {
		if participant.NormalizeStatus(item.Status) == participant.StatusApproved {
			ranked = append(ranked, item)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		if ranked[i].CorrectCount != ranked[j].CorrectCount {
			return ranked[i].CorrectCount > ranked[j].CorrectCount
		}
		if !ranked[i].JoinedAt.Equal(ranked[j].JoinedAt) {
			return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})

	// Ties get consecutive distinct positions, never a shared rank.
	ranks := make([]participant.Rank, 0, len(ranked))
	for idx, item := range ranked {
		ranks = append(ranks, participant.Rank{
			ParticipantID: item.ID,
			UserID:        item.UserID,
			Position:      idx + 1,
			Points:        item.Points,
			CorrectCount:  item.CorrectCount,
		})
	}

	if err := s.participantRepo.ReplaceRanking(ctx, poolID, ranks); err != nil {
		return fmt.Errorf("replace ranking pool=%s: %w", poolID, err)
	}
	return nil
}

func (s *RecomputeService) rankLock(poolID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.rankLocks[poolID]
	if !ok {
		lock = &sync.Mutex{}
		s.rankLocks[poolID] = lock
	}
	return lock
}
