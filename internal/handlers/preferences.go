package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/XavierBriggs/Athena/internal/prefs"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/go-chi/chi/v5"
)

// GetPreferences returns a user's starred players and saved filters
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, ok := h.container(w, r)
	if !ok {
		return
	}

	p, err := c.Load(ctx)
	if err != nil {
		h.respondError(w, http.StatusBadGateway, "failed to load preferences", err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// ToggleStar stars or unstars a player for the user
func (h *Handler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	playerID, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil || playerID <= 0 {
		h.respondError(w, http.StatusBadRequest, "playerID must be a positive integer", nil)
		return
	}

	c, ok := h.container(w, r)
	if !ok {
		return
	}

	p, err := c.ToggleStar(ctx, playerID)
	if err != nil {
		h.respondError(w, http.StatusBadGateway, "failed to save preferences", err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// ApplyFilterChange merges a partial filter change into the user's saved filters
func (h *Handler) ApplyFilterChange(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var event models.FilterChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	c, ok := h.container(w, r)
	if !ok {
		return
	}

	p, err := c.ApplyFilterChange(ctx, event)
	if err != nil {
		if errors.Is(err, prefs.ErrInvalidChange) {
			h.respondError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		h.respondError(w, http.StatusBadGateway, "failed to save preferences", err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) container(w http.ResponseWriter, r *http.Request) (*prefs.Container, bool) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "userID is required", nil)
		return nil, false
	}
	return prefs.NewContainer(h.prefs, h.publisher, userID, h.log), true
}
