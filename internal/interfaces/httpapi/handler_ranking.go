package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRanking")
	defer span.End()

	poolID := strings.TrimSpace(r.PathValue("poolID"))
	ranked, err := h.rankingService.GetByPool(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "get ranking failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]participantDTO, 0, len(ranked))
	for _, p := range ranked {
		items = append(items, participantToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
