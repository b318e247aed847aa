// Package filters composes the drilldown filter stages over a game log.
//
// Stages always run in this order: quick filters, range filters, injury
// filters, then head-to-head or game-count limiting. Limiting last means
// "last 10 wins" is the 10 most recent wins, not the wins among the last 10 games.
package filters

import (
	"strings"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// Windows accepted for game-count limiting. 0 is the full season.
var Windows = []int{5, 10, 20}

// Apply runs the pipeline. Entries must be sorted most-recent-first.
// The input is never modified.
func Apply(entries []models.GameLogEntry, state models.FilterState, out models.TeammatesOut) []models.GameLogEntry {
	quick := NewQuickSet(state.QuickFilters...)

	filtered := make([]models.GameLogEntry, 0, len(entries))
	for _, e := range entries {
		if !quick.Match(e) {
			continue
		}
		if !MatchRanges(state.RangeFilters, e) {
			continue
		}
		if !MatchInjuries(state.InjuryFilters, out, e) {
			continue
		}
		filtered = append(filtered, e)
	}

	return Limit(filtered, state.GameWindow, state.H2HOpponent)
}

// Limit applies the final stage. A head-to-head opponent takes precedence over the window.
func Limit(entries []models.GameLogEntry, window int, h2hOpponent string) []models.GameLogEntry {
	if h2hOpponent != "" {
		limited := make([]models.GameLogEntry, 0, len(entries))
		for _, e := range entries {
			if strings.EqualFold(e.OpponentAbbr, h2hOpponent) {
				limited = append(limited, e)
			}
		}
		return limited
	}

	n := len(entries)
	if window > 0 && window < n {
		n = window
	}
	limited := make([]models.GameLogEntry, n)
	copy(limited, entries[:n])
	return limited
}

// ValidWindow reports whether w is an accepted game-count window
func ValidWindow(w int) bool {
	if w == 0 {
		return true
	}
	for _, allowed := range Windows {
		if w == allowed {
			return true
		}
	}
	return false
}
