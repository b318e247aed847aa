package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/XavierBriggs/Athena/internal/drilldown"
	"github.com/XavierBriggs/Athena/internal/prefs"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Second

// CheckFunc reports the health of one dependency
type CheckFunc func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	service   *drilldown.Service
	prefs     prefs.Store
	publisher prefs.Publisher
	checks    map[string]CheckFunc
	log       *logrus.Entry
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// NewHandler creates a new handler with dependencies. publisher may be nil.
func NewHandler(service *drilldown.Service, store prefs.Store, publisher prefs.Publisher, checks map[string]CheckFunc, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		service:   service,
		prefs:     store,
		publisher: publisher,
		checks:    checks,
		log:       log,
	}
}

// HealthCheck reports healthy only when every dependency answers
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.respondError(w, http.StatusServiceUnavailable, name+" unhealthy", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "athena",
	})
}

// respondServiceError maps service errors onto status codes
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, drilldown.ErrInvalidRequest), errors.Is(err, prefs.ErrInvalidChange):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, drilldown.ErrLoadFailed):
		h.respondError(w, http.StatusBadGateway, "failed to load", err)
	default:
		h.respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.log.WithError(err).WithField("status", status).Error(message)
	}

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("error encoding response")
	}
}

// parseIntParam reads an optional integer query parameter
func parseIntParam(r *http.Request, param string, defaultValue int) (int, error) {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(valueStr)
}

// parseLineParam reads an optional line; an empty value means no quoted line
func parseLineParam(r *http.Request, param string) (*float64, error) {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return nil, nil
	}
	return parseLine(valueStr)
}

// parseLine accepts finite numbers only. ParseFloat also reads "NaN" and
// "Inf", which cannot be encoded back to JSON.
func parseLine(valueStr string) (*float64, error) {
	v, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("line %q is not a finite number", valueStr)
	}
	return &v, nil
}
