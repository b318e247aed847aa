package drilldown

import (
	"context"
	"fmt"

	"github.com/XavierBriggs/Athena/internal/hitrate"
	"github.com/XavierBriggs/Athena/pkg/models"
)

// DrilldownRequest asks for hit rates on one or more lines for a player
type DrilldownRequest struct {
	PlayerID int
	TeamID   int // optional, taken from the logs when zero
	Lines    []models.MarketLine
	Filters  models.FilterState
}

// MarketSummary is everything one stat card shows for a market line
type MarketSummary struct {
	Market        models.Market      `json:"market"`
	Label         string             `json:"label"`
	Line          *float64           `json:"line"`
	EffectiveLine float64            `json:"effectiveLine"`
	HitRate       models.HitRateStat `json:"hitRate"`
	Average       *float64           `json:"average"`
	AvgWhenHit    *float64           `json:"avgWhenHit"`
	AvgWhenMiss   *float64           `json:"avgWhenMiss"`
	Series        []hitrate.Point    `json:"series"`
}

// DrilldownResponse carries the filtered games and per-market summaries.
// No games is a valid answer, not an error.
type DrilldownResponse struct {
	PlayerID    int                   `json:"playerId"`
	TeamID      int                   `json:"teamId"`
	SeasonGames int                   `json:"seasonGames"`
	Games       []models.GameLogEntry `json:"games"`
	Markets     []MarketSummary       `json:"markets"`
}

// Drilldown loads a player's season, applies filters and summarizes every requested line
func (s *Service) Drilldown(ctx context.Context, req DrilldownRequest) (*DrilldownResponse, error) {
	if req.PlayerID <= 0 {
		return nil, fmt.Errorf("%w: player id must be positive", ErrInvalidRequest)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one market is required", ErrInvalidRequest)
	}
	for _, ml := range req.Lines {
		if !ml.Market.Valid() {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRequest, models.ErrUnknownMarket, ml.Market)
		}
	}
	if err := validateFilters(req.Filters); err != nil {
		return nil, err
	}

	games, err := s.loadGames(ctx, req.PlayerID, req.TeamID, req.Filters)
	if err != nil {
		return nil, err
	}

	resp := &DrilldownResponse{
		PlayerID:    req.PlayerID,
		TeamID:      games.teamID,
		SeasonGames: len(games.all),
		Games:       games.filtered,
		Markets:     make([]MarketSummary, 0, len(req.Lines)),
	}

	for _, ml := range req.Lines {
		resp.Markets = append(resp.Markets, summarize(games.filtered, ml))
	}

	return resp, nil
}

func summarize(games []models.GameLogEntry, ml models.MarketLine) MarketSummary {
	whenHit, whenMiss := hitrate.Averages(games, ml.Market, ml.Line)
	return MarketSummary{
		Market:        ml.Market,
		Label:         ml.Market.Label(),
		Line:          ml.Line,
		EffectiveLine: hitrate.EffectiveLine(ml.Line),
		HitRate:       hitrate.Compute(games, ml.Market, ml.Line),
		Average:       hitrate.Average(games, ml.Market),
		AvgWhenHit:    whenHit,
		AvgWhenMiss:   whenMiss,
		Series:        hitrate.Series(games, ml.Market, ml.Line),
	}
}
