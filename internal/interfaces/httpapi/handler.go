package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bolaohq/bolao-server/internal/domain/match"
	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/prediction"
	"github.com/bolaohq/bolao-server/internal/platform/logging"
	"github.com/bolaohq/bolao-server/internal/usecase"
)

type Handler struct {
	poolService       *usecase.PoolService
	matchService      *usecase.MatchService
	predictionService *usecase.PredictionService
	rankingService    *usecase.RankingService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	poolService *usecase.PoolService,
	matchService *usecase.MatchService,
	predictionService *usecase.PredictionService,
	rankingService *usecase.RankingService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		poolService:       poolService,
		matchService:      matchService,
		predictionService: predictionService,
		rankingService:    rankingService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type rulesPayload struct {
	ExactScore     int  `json:"exact_score" validate:"gte=0,lte=50"`
	CorrectOutcome int  `json:"correct_outcome" validate:"gte=0,lte=25"`
	ExactGoalBonus int  `json:"exact_goal_bonus" validate:"gte=0,lte=10"`
	BonusEnabled   bool `json:"bonus_enabled"`
}

type createPoolRequest struct {
	Name         string        `json:"name" validate:"required,max=120"`
	Championship string        `json:"championship" validate:"required,max=120"`
	Rules        *rulesPayload `json:"rules"`
}

type updateRulesRequest struct {
	Rules rulesPayload `json:"rules" validate:"required"`
}

type updateParticipantStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type createMatchRequest struct {
	Round     int       `json:"round" validate:"gte=1"`
	HomeTeam  string    `json:"home_team" validate:"required,max=120"`
	AwayTeam  string    `json:"away_team" validate:"required,max=120"`
	KickoffAt time.Time `json:"kickoff_at" validate:"required"`
}

type updateMatchRequest struct {
	Status    string `json:"status" validate:"required"`
	HomeScore *int   `json:"home_score" validate:"omitempty,gte=0"`
	AwayScore *int   `json:"away_score" validate:"omitempty,gte=0"`
}

type submitPredictionRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	HomeGoals int    `json:"home_goals" validate:"gte=0"`
	AwayGoals int    `json:"away_goals" validate:"gte=0"`
}

type rulesDTO struct {
	ExactScore     int  `json:"exact_score"`
	CorrectOutcome int  `json:"correct_outcome"`
	ExactGoalBonus int  `json:"exact_goal_bonus"`
	BonusEnabled   bool `json:"bonus_enabled"`
}

type poolDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Championship string    `json:"championship"`
	OwnerID      string    `json:"owner_id"`
	Rules        rulesDTO  `json:"rules"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type participantDTO struct {
	ID               string    `json:"id"`
	PoolID           string    `json:"pool_id"`
	UserID           string    `json:"user_id"`
	Status           string    `json:"status"`
	Points           int       `json:"points"`
	CorrectCount     int       `json:"correct_count"`
	TotalPredictions int       `json:"total_predictions"`
	Position         int       `json:"position,omitempty"`
	JoinedAt         time.Time `json:"joined_at"`
}

type matchDTO struct {
	ID        string    `json:"id"`
	PoolID    string    `json:"pool_id"`
	Round     int       `json:"round"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	KickoffAt time.Time `json:"kickoff_at"`
	Status    string    `json:"status"`
	HomeScore *int      `json:"home_score,omitempty"`
	AwayScore *int      `json:"away_score,omitempty"`
}

type predictionDTO struct {
	ID        string `json:"id"`
	PoolID    string `json:"pool_id"`
	MatchID   string `json:"match_id"`
	UserID    string `json:"user_id"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
	Points    *int   `json:"points,omitempty"`
}

type recomputeReportDTO struct {
	PredictionsScored   int `json:"predictions_scored"`
	ParticipantsUpdated int `json:"participants_updated"`
}

func poolToDTO(p pool.Pool) poolDTO {
	return poolDTO{
		ID:           p.ID,
		Name:         p.Name,
		Championship: p.Championship,
		OwnerID:      p.OwnerID,
		Rules: rulesDTO{
			ExactScore:     p.Rules.ExactScore,
			CorrectOutcome: p.Rules.CorrectOutcome,
			ExactGoalBonus: p.Rules.ExactGoalBonus,
			BonusEnabled:   p.Rules.BonusEnabled,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func participantToDTO(p participant.Participant) participantDTO {
	return participantDTO{
		ID:               p.ID,
		PoolID:           p.PoolID,
		UserID:           p.UserID,
		Status:           p.Status,
		Points:           p.Points,
		CorrectCount:     p.CorrectCount,
		TotalPredictions: p.TotalPredictions,
		Position:         p.Position,
		JoinedAt:         p.JoinedAt,
	}
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:        m.ID,
		PoolID:    m.PoolID,
		Round:     m.Round,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		KickoffAt: m.KickoffAt,
		Status:    m.Status,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
	}
}

func predictionToDTO(p prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:        p.ID,
		PoolID:    p.PoolID,
		MatchID:   p.MatchID,
		UserID:    p.UserID,
		HomeGoals: p.HomeGoals,
		AwayGoals: p.AwayGoals,
		Points:    p.Points,
	}
}
