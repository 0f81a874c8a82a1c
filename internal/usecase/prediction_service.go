package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/match"
	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/prediction"
	idgen "github.com/bolaohq/bolao-server/internal/platform/id"
	"github.com/bolaohq/bolao-server/internal/platform/logging"
)

type PredictionService struct {
	poolRepo        pool.Repository
	matchRepo       match.Repository
	participantRepo participant.Repository
	predictionRepo  prediction.Repository
	ids             idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewPredictionService(
	poolRepo pool.Repository,
	matchRepo match.Repository,
	participantRepo participant.Repository,
	predictionRepo prediction.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionService{
		poolRepo:        poolRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		predictionRepo:  predictionRepo,
		ids:             ids,
		logger:          logger,
		now:             time.Now,
	}
}

type SubmitPredictionInput struct {
	MatchID   string
	HomeGoals int
	AwayGoals int
}

// Submit upserts the single prediction for (user, match). Resubmitting before
// kickoff overwrites in place; once kickoff passes the window is closed.
func (s *PredictionService) Submit(ctx context.Context, poolID, userID string, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.MatchID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.HomeGoals < 0 || input.AwayGoals < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: predicted scores cannot be negative", ErrInvalidInput)
	}

	if _, exists, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		return prediction.Prediction{}, fmt.Errorf("get pool: %w", err)
	} else if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}

	part, exists, err := s.participantRepo.GetByUserAndPool(ctx, userID, poolID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get participant: %w", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: user has not joined pool=%s", ErrForbidden, poolID)
	}
	switch participant.NormalizeStatus(part.Status) {
	case participant.StatusBlocked, participant.StatusDeclined:
		return prediction.Prediction{}, fmt.Errorf("%w: membership is %s", ErrForbidden, strings.ToLower(part.Status))
	}

	m, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get match: %w", err)
	}
	if !exists || m.PoolID != poolID {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	status := match.NormalizeStatus(m.Status)
	if status == match.StatusFinalized || status == match.StatusCancelled {
		return prediction.Prediction{}, fmt.Errorf("%w: match no longer accepts predictions", ErrPreconditionFailed)
	}
	if !s.now().UTC().Before(m.KickoffAt) {
		return prediction.Prediction{}, fmt.Errorf("%w: predictions closed at kickoff", ErrPreconditionFailed)
	}

	predictionID, err := s.ids.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
	}

	now := s.now().UTC()
	saved, err := s.predictionRepo.Upsert(ctx, prediction.Prediction{
		ID:        predictionID,
		PoolID:    poolID,
		MatchID:   input.MatchID,
		UserID:    userID,
		HomeGoals: input.HomeGoals,
		AwayGoals: input.AwayGoals,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	s.logger.InfoContext(ctx, "prediction saved",
		"pool_id", poolID,
		"match_id", input.MatchID,
		"user_id", userID,
	)
	return saved, nil
}

// ListByUserAndPool returns a user's prediction history with whatever points
// the engine has persisted; it never recomputes on read.
func (s *PredictionService) ListByUserAndPool(ctx context.Context, poolID, userID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListByUserAndPool")
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	userID = strings.TrimSpace(userID)
	if poolID == "" || userID == "" {
		return nil, fmt.Errorf("%w: pool id and user id are required", ErrInvalidInput)
	}

	if _, exists, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		return nil, fmt.Errorf("get pool: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}

	items, err := s.predictionRepo.ListByUserAndPool(ctx, userID, poolID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return items, nil
}
