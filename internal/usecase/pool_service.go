package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
	idgen "github.com/bolaohq/bolao-server/internal/platform/id"
	"github.com/bolaohq/bolao-server/internal/platform/logging"
)

type PoolService struct {
	poolRepo        pool.Repository
	participantRepo participant.Repository
	recompute       *RecomputeService
	ids             idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewPoolService(
	poolRepo pool.Repository,
	participantRepo participant.Repository,
	recompute *RecomputeService,
	ids idgen.Generator,
	logger *logging.Logger,
) *PoolService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PoolService{
		poolRepo:        poolRepo,
		participantRepo: participantRepo,
		recompute:       recompute,
		ids:             ids,
		logger:          logger,
		now:             time.Now,
	}
}

type CreatePoolInput struct {
	Name         string
	Championship string
	Rules        scoring.Rules
}

func (s *PoolService) Create(ctx context.Context, ownerID string, input CreatePoolInput) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.Championship = strings.TrimSpace(input.Championship)
	if input.Name == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool name is required", ErrInvalidInput)
	}
	if input.Championship == "" {
		return pool.Pool{}, fmt.Errorf("%w: championship is required", ErrInvalidInput)
	}
	if err := scoring.ValidateRules(input.Rules); err != nil {
		return pool.Pool{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	poolID, err := s.ids.NewID()
	if err != nil {
		return pool.Pool{}, fmt.Errorf("generate pool id: %w", err)
	}

	now := s.now().UTC()
	created := pool.Pool{
		ID:           poolID,
		Name:         input.Name,
		Championship: input.Championship,
		OwnerID:      ownerID,
		Rules:        input.Rules,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.poolRepo.Create(ctx, created); err != nil {
		return pool.Pool{}, fmt.Errorf("create pool: %w", err)
	}

	// The owner plays too: registered up front as an approved participant.
	participantID, err := s.ids.NewID()
	if err != nil {
		return pool.Pool{}, fmt.Errorf("generate participant id: %w", err)
	}
	owner := participant.Participant{
		ID:       participantID,
		PoolID:   poolID,
		UserID:   ownerID,
		Status:   participant.StatusApproved,
		JoinedAt: now,
	}
	if err := s.participantRepo.Create(ctx, owner); err != nil {
		return pool.Pool{}, fmt.Errorf("create owner participant: %w", err)
	}

	// Seeding an approved member changes the ranked set, so the leaderboard
	// starts out with the owner on it.
	if err := s.recompute.RebuildRanking(ctx, poolID); err != nil {
		return pool.Pool{}, err
	}

	s.logger.InfoContext(ctx, "pool created", "pool_id", poolID, "owner_id", ownerID)
	return created, nil
}

func (s *PoolService) GetByID(ctx context.Context, poolID string) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.GetByID")
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	p, exists, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	if !exists {
		return pool.Pool{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}
	return p, nil
}

// UpdateRules edits a pool's scoring parameters and retroactively rescores
// every already-finalized match so stored points follow the active rules.
func (s *PoolService) UpdateRules(ctx context.Context, poolID, actorID string, rules scoring.Rules) (RecomputeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.UpdateRules")
	defer span.End()

	p, err := s.GetByID(ctx, poolID)
	if err != nil {
		return RecomputeReport{}, err
	}
	if p.OwnerID != actorID {
		return RecomputeReport{}, fmt.Errorf("%w: only the pool owner can edit scoring rules", ErrForbidden)
	}
	if err := scoring.ValidateRules(rules); err != nil {
		return RecomputeReport{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.poolRepo.UpdateRules(ctx, poolID, rules); err != nil {
		return RecomputeReport{}, fmt.Errorf("update pool rules: %w", err)
	}

	report, err := s.recompute.OnRulesChanged(ctx, poolID)
	if err != nil {
		return RecomputeReport{}, err
	}

	s.logger.InfoContext(ctx, "pool rules updated",
		"pool_id", poolID,
		"predictions_rescored", report.PredictionsScored,
	)
	return report, nil
}

func (s *PoolService) Join(ctx context.Context, poolID, userID string) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Join")
	defer span.End()

	if _, err := s.GetByID(ctx, poolID); err != nil {
		return participant.Participant{}, err
	}

	if _, exists, err := s.participantRepo.GetByUserAndPool(ctx, userID, poolID); err != nil {
		return participant.Participant{}, fmt.Errorf("get participant: %w", err)
	} else if exists {
		return participant.Participant{}, fmt.Errorf("%w: user already joined pool=%s", ErrInvalidInput, poolID)
	}

	participantID, err := s.ids.NewID()
	if err != nil {
		return participant.Participant{}, fmt.Errorf("generate participant id: %w", err)
	}

	joined := participant.Participant{
		ID:       participantID,
		PoolID:   poolID,
		UserID:   userID,
		Status:   participant.StatusPending,
		JoinedAt: s.now().UTC(),
	}
	if err := s.participantRepo.Create(ctx, joined); err != nil {
		return participant.Participant{}, fmt.Errorf("create participant: %w", err)
	}

	s.logger.InfoContext(ctx, "participant joined", "pool_id", poolID, "user_id", userID)
	return joined, nil
}

// UpdateParticipantStatus approves, blocks or declines a membership. Any
// status change alters the ranked set, so the pool leaderboard is rebuilt.
func (s *PoolService) UpdateParticipantStatus(ctx context.Context, poolID, participantID, actorID, status string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.UpdateParticipantStatus")
	defer span.End()

	p, err := s.GetByID(ctx, poolID)
	if err != nil {
		return err
	}
	if p.OwnerID != actorID {
		return fmt.Errorf("%w: only the pool owner can manage participants", ErrForbidden)
	}

	status = participant.NormalizeStatus(status)
	if !participant.IsValidStatus(status) {
		return fmt.Errorf("%w: unknown participant status %q", ErrInvalidInput, status)
	}

	part, exists, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if !exists || part.PoolID != poolID {
		return fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}

	if err := s.participantRepo.UpdateStatus(ctx, participantID, status); err != nil {
		return fmt.Errorf("update participant status: %w", err)
	}

	return s.recompute.RebuildRanking(ctx, poolID)
}

func (s *PoolService) RemoveParticipant(ctx context.Context, poolID, participantID, actorID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.RemoveParticipant")
	defer span.End()

	p, err := s.GetByID(ctx, poolID)
	if err != nil {
		return err
	}

	part, exists, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if !exists || part.PoolID != poolID {
		return fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}

	if p.OwnerID != actorID && part.UserID != actorID {
		return fmt.Errorf("%w: only the pool owner or the participant can remove a membership", ErrForbidden)
	}

	if err := s.participantRepo.Delete(ctx, participantID); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}

	return s.recompute.RebuildRanking(ctx, poolID)
}
