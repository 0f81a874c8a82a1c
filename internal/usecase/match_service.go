package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/match"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	idgen "github.com/bolaohq/bolao-server/internal/platform/id"
	"github.com/bolaohq/bolao-server/internal/platform/logging"
)

type MatchService struct {
	poolRepo  pool.Repository
	matchRepo match.Repository
	recompute *RecomputeService
	ids       idgen.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewMatchService(
	poolRepo pool.Repository,
	matchRepo match.Repository,
	recompute *RecomputeService,
	ids idgen.Generator,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		poolRepo:  poolRepo,
		matchRepo: matchRepo,
		recompute: recompute,
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateMatchInput struct {
	Round     int
	HomeTeam  string
	AwayTeam  string
	KickoffAt time.Time
}

func (s *MatchService) Create(ctx context.Context, poolID, actorID string, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	p, exists, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get pool: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}
	if p.OwnerID != actorID {
		return match.Match{}, fmt.Errorf("%w: only the pool owner can register matches", ErrForbidden)
	}

	input.HomeTeam = strings.TrimSpace(input.HomeTeam)
	input.AwayTeam = strings.TrimSpace(input.AwayTeam)
	if input.HomeTeam == "" || input.AwayTeam == "" {
		return match.Match{}, fmt.Errorf("%w: both team names are required", ErrInvalidInput)
	}
	if strings.EqualFold(input.HomeTeam, input.AwayTeam) {
		return match.Match{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidInput)
	}
	if input.Round < 1 {
		return match.Match{}, fmt.Errorf("%w: round must be at least 1", ErrInvalidInput)
	}
	if input.KickoffAt.IsZero() {
		return match.Match{}, fmt.Errorf("%w: kickoff time is required", ErrInvalidInput)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	created := match.Match{
		ID:        matchID,
		PoolID:    poolID,
		Round:     input.Round,
		HomeTeam:  input.HomeTeam,
		AwayTeam:  input.AwayTeam,
		KickoffAt: input.KickoffAt.UTC(),
		Status:    match.StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.matchRepo.Create(ctx, created); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created",
		"match_id", matchID,
		"pool_id", poolID,
		"round", input.Round,
	)
	return created, nil
}

func (s *MatchService) ListByPool(ctx context.Context, poolID string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByPool")
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}
	if _, exists, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		return nil, fmt.Errorf("get pool: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}

	items, err := s.matchRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

type UpdateMatchInput struct {
	Status    string
	HomeScore *int
	AwayScore *int
}

// UpdateResult mutates a match's status and score, then drives the recompute
// pipeline. Finalizing (or re-finalizing with a corrected score) rescored
// every prediction on the match before the call returns; withdrawing a
// finalized result clears the derived points instead.
func (s *MatchService) UpdateResult(ctx context.Context, matchID, actorID string, input UpdateMatchInput) (match.Match, RecomputeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateResult")
	defer span.End()

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, RecomputeReport{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, RecomputeReport{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	p, exists, err := s.poolRepo.GetByID(ctx, m.PoolID)
	if err != nil {
		return match.Match{}, RecomputeReport{}, fmt.Errorf("get pool: %w", err)
	}
	if !exists {
		return match.Match{}, RecomputeReport{}, fmt.Errorf("%w: pool=%s", ErrNotFound, m.PoolID)
	}
	if p.OwnerID != actorID {
		return match.Match{}, RecomputeReport{}, fmt.Errorf("%w: only the pool owner can enter results", ErrForbidden)
	}

	status := match.NormalizeStatus(input.Status)
	if !match.IsValidStatus(status) {
		return match.Match{}, RecomputeReport{}, fmt.Errorf("%w: unknown match status %q", ErrInvalidInput, status)
	}

	wasFinalized := m.Finalized()
	m.Status = status
	m.UpdatedAt = s.now().UTC()

	if status == match.StatusFinalized {
		if input.HomeScore == nil || input.AwayScore == nil {
			return match.Match{}, RecomputeReport{}, fmt.Errorf("%w: a finalized match needs both scores", ErrInvalidInput)
		}
		if *input.HomeScore < 0 || *input.AwayScore < 0 {
			return match.Match{}, RecomputeReport{}, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
		}
		m.HomeScore = input.HomeScore
		m.AwayScore = input.AwayScore
	} else {
		if input.HomeScore != nil || input.AwayScore != nil {
			return match.Match{}, RecomputeReport{}, fmt.Errorf("%w: scores are only valid on a finalized match", ErrInvalidInput)
		}
		m.HomeScore = nil
		m.AwayScore = nil
	}

	if err := s.matchRepo.Update(ctx, m); err != nil {
		return match.Match{}, RecomputeReport{}, fmt.Errorf("update match: %w", err)
	}

	var report RecomputeReport
	switch {
	case status == match.StatusFinalized:
		report, err = s.recompute.OnMatchFinalized(ctx, matchID)
	case wasFinalized:
		report, err = s.recompute.OnMatchVoided(ctx, matchID)
	}
	if err != nil {
		return match.Match{}, RecomputeReport{}, err
	}

	return m, report, nil
}
