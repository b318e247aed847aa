package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/XavierBriggs/Athena/internal/drilldown"
	"github.com/XavierBriggs/Athena/internal/filters"
	"github.com/XavierBriggs/Athena/internal/hitrate"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/go-chi/chi/v5"
)

// GetDrilldown returns hit rates for one or more market lines over the filtered games
// Query params: market (repeatable), line (aligned with market), custom_line, team_id, filters
func (h *Handler) GetDrilldown(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	playerID, teamID, state, ok := h.playerRequest(w, r)
	if !ok {
		return
	}

	lines, err := parseMarketLines(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.service.Drilldown(ctx, drilldown.DrilldownRequest{
		PlayerID: playerID,
		TeamID:   teamID,
		Lines:    lines,
		Filters:  state,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetAlternateLines returns every quoted line with its filtered hit rate and best price
// Query params: market, event_id, player, side, team_id, filters
func (h *Handler) GetAlternateLines(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	playerID, teamID, state, ok := h.playerRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	market, err := models.ParseMarket(q.Get("market"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.service.AlternateLines(ctx, drilldown.AlternateLinesRequest{
		PlayerID:   playerID,
		TeamID:     teamID,
		PlayerName: q.Get("player"),
		EventID:    q.Get("event_id"),
		Market:     market,
		Side:       q.Get("side"),
		Filters:    state,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetCorrelations returns teammates ordered by how much the anchor hitting moves them
// Query params: market, line, teammate_market, teammate_line, team_id, filters
func (h *Handler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	playerID, teamID, state, ok := h.playerRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	market, err := models.ParseMarket(q.Get("market"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var teammateMarket models.Market
	if raw := q.Get("teammate_market"); raw != "" {
		if teammateMarket, err = models.ParseMarket(raw); err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	line, err := parseLineParam(r, "line")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "line must be a number", nil)
		return
	}
	teammateLine, err := parseLineParam(r, "teammate_line")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "teammate_line must be a number", nil)
		return
	}

	resp, err := h.service.Correlations(ctx, drilldown.CorrelationsRequest{
		PlayerID:       playerID,
		TeamID:         teamID,
		Market:         market,
		Line:           line,
		TeammateMarket: teammateMarket,
		TeammateLine:   teammateLine,
		Filters:        state,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// playerRequest parses the pieces shared by every player route. It writes the
// error response itself and reports false when the request is unusable.
func (h *Handler) playerRequest(w http.ResponseWriter, r *http.Request) (int, int, models.FilterState, bool) {
	playerID, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil || playerID <= 0 {
		h.respondError(w, http.StatusBadRequest, "playerID must be a positive integer", nil)
		return 0, 0, models.FilterState{}, false
	}

	teamID, err := parseIntParam(r, "team_id", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "team_id must be an integer", nil)
		return 0, 0, models.FilterState{}, false
	}

	state, err := filters.ParseQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return 0, 0, models.FilterState{}, false
	}

	return playerID, teamID, state, true
}

// parseMarketLines pairs each market param with the line param at the same index.
// A custom_line replaces the first market's line unless it is not a usable number.
func parseMarketLines(r *http.Request) ([]models.MarketLine, error) {
	q := r.URL.Query()
	markets := q["market"]
	lines := q["line"]

	if len(markets) == 0 {
		return nil, fmt.Errorf("market is required")
	}

	out := make([]models.MarketLine, 0, len(markets))
	for i, raw := range markets {
		market, err := models.ParseMarket(raw)
		if err != nil {
			return nil, err
		}

		ml := models.MarketLine{Market: market}
		if i < len(lines) && lines[i] != "" {
			v, err := parseLine(lines[i])
			if err != nil {
				return nil, fmt.Errorf("line %q must be a number", lines[i])
			}
			ml.Line = v
		}
		out = append(out, ml)
	}

	if custom := q.Get("custom_line"); custom != "" {
		previous := 0.0
		if out[0].Line != nil {
			previous = *out[0].Line
		}
		v := hitrate.ParseCustomLine(custom, previous)
		if out[0].Line != nil || v != previous {
			out[0].Line = &v
		}
	}

	return out, nil
}
