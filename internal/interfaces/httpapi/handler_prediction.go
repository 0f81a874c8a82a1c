package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/bolaohq/bolao-server/internal/usecase"
)

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	poolID := strings.TrimSpace(r.PathValue("poolID"))

	var req submitPredictionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.predictionService.Submit(ctx, poolID, principal.UserID, usecase.SubmitPredictionInput{
		MatchID:   req.MatchID,
		HomeGoals: req.HomeGoals,
		AwayGoals: req.AwayGoals,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed",
			"pool_id", poolID,
			"match_id", req.MatchID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(saved))
}

func (h *Handler) ListUserPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserPredictions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	poolID := strings.TrimSpace(r.PathValue("poolID"))
	userID := strings.TrimSpace(r.PathValue("userID"))

	// Users can only read their own prediction history.
	if userID != principal.UserID {
		writeError(ctx, w, fmt.Errorf("%w: cannot read another user's predictions", usecase.ErrForbidden))
		return
	}

	predictions, err := h.predictionService.ListByUserAndPool(ctx, poolID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list user predictions failed", "pool_id", poolID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionDTO, 0, len(predictions))
	for _, p := range predictions {
		items = append(items, predictionToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
