package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/bolaohq/bolao-server/internal/domain/scoring"
	"github.com/bolaohq/bolao-server/internal/usecase"
)

func (h *Handler) CreatePool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePool")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createPoolRequest
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

	rules := scoring.DefaultRules()
	if req.Rules != nil {
		rules = rulesFromPayload(*req.Rules)
	}

	created, err := h.poolService.Create(ctx, principal.UserID, usecase.CreatePoolInput{
		Name:         req.Name,
		Championship: req.Championship,
		Rules:        rules,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create pool failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, poolToDTO(created))
}

func (h *Handler) GetPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPool")
	defer span.End()

	poolID := strings.TrimSpace(r.PathValue("poolID"))
	p, err := h.poolService.GetByID(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pool failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, poolToDTO(p))
}

func (h *Handler) UpdatePoolRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePoolRules")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	poolID := strings.TrimSpace(r.PathValue("poolID"))

	var req updateRulesRequest
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

	report, err := h.poolService.UpdateRules(ctx, poolID, principal.UserID, rulesFromPayload(req.Rules))
	if err != nil {
		h.logger.WarnContext(ctx, "update pool rules failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recomputeReportDTO{
		PredictionsScored:   report.PredictionsScored,
		ParticipantsUpdated: report.ParticipantsUpdated,
	})
}

func (h *Handler) JoinPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinPool")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	poolID := strings.TrimSpace(r.PathValue("poolID"))

	joined, err := h.poolService.Join(ctx, poolID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "join pool failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(joined))
}

func (h *Handler) UpdateParticipantStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateParticipantStatus")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	poolID := strings.TrimSpace(r.PathValue("poolID"))
	participantID := strings.TrimSpace(r.PathValue("participantID"))

	var req updateParticipantStatusRequest
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

	if err := h.poolService.UpdateParticipantStatus(ctx, poolID, participantID, principal.UserID, req.Status); err != nil {
		h.logger.WarnContext(ctx, "update participant status failed",
			"pool_id", poolID,
			"participant_id", participantID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveParticipant")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	poolID := strings.TrimSpace(r.PathValue("poolID"))
	participantID := strings.TrimSpace(r.PathValue("participantID"))

	if err := h.poolService.RemoveParticipant(ctx, poolID, participantID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "remove participant failed",
			"pool_id", poolID,
			"participant_id", participantID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

func rulesFromPayload(payload rulesPayload) scoring.Rules {
	return scoring.Rules{
		ExactScore:     payload.ExactScore,
		CorrectOutcome: payload.CorrectOutcome,
		ExactGoalBonus: payload.ExactGoalBonus,
		BonusEnabled:   payload.BonusEnabled,
	}
}
