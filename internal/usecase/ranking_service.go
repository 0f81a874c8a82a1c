package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
)

// RankingService reads the leaderboard the recompute pipeline maintains.
type RankingService struct {
	poolRepo        pool.Repository
	participantRepo participant.Repository
}

func NewRankingService(poolRepo pool.Repository, participantRepo participant.Repository) *RankingService {
	return &RankingService{
		poolRepo:        poolRepo,
		participantRepo: participantRepo,
	}
}

func (s *RankingService) GetByPool(ctx context.Context, poolID string) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.GetByPool")
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

	participants, err := s.participantRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	ranked := make([]participant.Participant, 0, len(participants))
	for _, item := range participants {
		if participant.NormalizeStatus(item.Status) == participant.StatusApproved && item.Position > 0 {
			ranked = append(ranked, item)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Position < ranked[j].Position
	})
	return ranked, nil
}
