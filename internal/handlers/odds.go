package handlers

import (
	"context"
	"net/http"

	"github.com/XavierBriggs/Athena/internal/drilldown"
	"github.com/XavierBriggs/Athena/pkg/models"
)

// GetBestOdds ranks every book's price for one line and picks the best
// Query params: event_id, market, player, side, line
func (h *Handler) GetBestOdds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	market, err := models.ParseMarket(q.Get("market"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	line, err := parseLineParam(r, "line")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "line must be a number", nil)
		return
	}
	if line == nil {
		h.respondError(w, http.StatusBadRequest, "line is required", nil)
		return
	}

	resp, err := h.service.BestOdds(ctx, drilldown.BestOddsRequest{
		EventID:    q.Get("event_id"),
		Market:     market,
		PlayerName: q.Get("player"),
		Side:       q.Get("side"),
		Line:       line,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
