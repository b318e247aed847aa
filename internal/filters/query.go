package filters

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// ParseQuery decodes the drilldown filter query form:
//
//	quick=home,win  range=minutes:20:40  with=123  without=456  window=10|season  h2h=BOS
func ParseQuery(q url.Values) (models.FilterState, error) {
	var state models.FilterState

	for _, raw := range splitList(q["quick"]) {
		f := models.QuickFilter(raw)
		if !ValidQuick(f) {
			return state, fmt.Errorf("invalid quick filter %q", raw)
		}
		state.QuickFilters = append(state.QuickFilters, f)
	}
	state.QuickFilters = NewQuickSet(state.QuickFilters...)

	for _, raw := range q["range"] {
		r, err := parseRange(raw)
		if err != nil {
			return state, err
		}
		state.RangeFilters = append(state.RangeFilters, r)
	}

	with, err := parseInjuries(q["with"], models.InjuryWith)
	if err != nil {
		return state, err
	}
	without, err := parseInjuries(q["without"], models.InjuryWithout)
	if err != nil {
		return state, err
	}
	inWith := make(map[int]bool, len(with))
	for _, f := range with {
		inWith[f.PlayerID] = true
	}
	for _, f := range without {
		if inWith[f.PlayerID] {
			return state, fmt.Errorf("player %d cannot be both with and without", f.PlayerID)
		}
	}
	state.InjuryFilters = append(with, without...)

	switch w := strings.TrimSpace(q.Get("window")); w {
	case "", "season":
		state.GameWindow = 0
	default:
		n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(w), "L"))
		if err != nil || !ValidWindow(n) {
			return state, fmt.Errorf("invalid window %q", w)
		}
		state.GameWindow = n
	}

	state.H2HOpponent = strings.ToUpper(strings.TrimSpace(q.Get("h2h")))

	return state, nil
}

func parseRange(raw string) (models.RangeFilter, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return models.RangeFilter{}, fmt.Errorf("invalid range %q: want field:min:max", raw)
	}

	field := models.RangeField(parts[0])
	if !ValidRangeField(field) {
		return models.RangeFilter{}, fmt.Errorf("invalid range field %q", parts[0])
	}

	lo, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return models.RangeFilter{}, fmt.Errorf("invalid range min %q: %w", parts[1], err)
	}
	hi, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return models.RangeFilter{}, fmt.Errorf("invalid range max %q: %w", parts[2], err)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return models.RangeFilter{}, fmt.Errorf("invalid range %q: bounds must be numbers", raw)
	}
	if lo > hi {
		return models.RangeFilter{}, fmt.Errorf("invalid range %q: min exceeds max", raw)
	}

	return models.RangeFilter{Field: field, Min: lo, Max: hi}, nil
}

func parseInjuries(values []string, mode models.InjuryMode) ([]models.InjuryFilter, error) {
	var out []models.InjuryFilter
	for _, raw := range splitList(values) {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s player id %q", mode, raw)
		}
		m := mode
		out = append(out, models.InjuryFilter{PlayerID: id, Mode: &m})
	}
	return out, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
