package drilldown

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/XavierBriggs/Athena/internal/bestodds"
	"github.com/XavierBriggs/Athena/internal/hitrate"
	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
)

const (
	SideOver  = "over"
	SideUnder = "under"
)

// AlternateLinesRequest selects one player's alternate lines for an event
type AlternateLinesRequest struct {
	PlayerID   int
	TeamID     int
	PlayerName string
	EventID    string
	Market     models.Market
	Side       string // empty returns both sides
	Filters    models.FilterState
}

// BestPrice is the best quote at a line and every book tied at it
type BestPrice struct {
	Price              int               `json:"price"`
	Primary            models.BookOdds   `json:"primary"`
	Books              []models.BookOdds `json:"books"`
	ImpliedProbability float64           `json:"impliedProbability"`
}

// AlternateLineRow is one (line, side) with its filtered hit rate and prices
type AlternateLineRow struct {
	Line    float64            `json:"line"`
	Side    string             `json:"side"`
	HitRate models.HitRateStat `json:"hitRate"`
	Best    *BestPrice         `json:"best"`
	Odds    []models.BookOdds  `json:"odds"`
}

// AlternateLinesResponse lists rows by line ascending
type AlternateLinesResponse struct {
	PlayerID int                `json:"playerId"`
	Market   models.Market      `json:"market"`
	Games    int                `json:"games"`
	Lines    []AlternateLineRow `json:"lines"`
}

// AlternateLines rates every quoted line for the player over the filtered games
func (s *Service) AlternateLines(ctx context.Context, req AlternateLinesRequest) (*AlternateLinesResponse, error) {
	if req.PlayerID <= 0 || req.EventID == "" || req.PlayerName == "" {
		return nil, fmt.Errorf("%w: player id, player name and event id are required", ErrInvalidRequest)
	}
	if !req.Market.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRequest, models.ErrUnknownMarket, req.Market)
	}
	side := strings.ToLower(req.Side)
	if side != "" && side != SideOver && side != SideUnder {
		return nil, fmt.Errorf("%w: side must be over or under", ErrInvalidRequest)
	}
	if err := validateFilters(req.Filters); err != nil {
		return nil, err
	}

	games, err := s.loadGames(ctx, req.PlayerID, req.TeamID, req.Filters)
	if err != nil {
		return nil, err
	}

	quoted, err := s.odds.GetAlternateLines(ctx, contracts.OddsQuery{
		EventID:    req.EventID,
		Market:     req.Market,
		PlayerName: req.PlayerName,
		Side:       side,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: alternate lines: %w", ErrLoadFailed, err)
	}

	rows := make([]AlternateLineRow, 0, len(quoted))
	for _, alt := range quoted {
		line := alt.Line
		row := AlternateLineRow{
			Line:    alt.Line,
			Side:    strings.ToLower(alt.Side),
			HitRate: sideRate(hitrate.Compute(games.filtered, req.Market, &line), req.Market, alt.Side),
			Odds:    bestodds.Rank(alt.Odds),
		}
		row.Best = bestPrice(alt.Odds)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Line < rows[j].Line
	})

	return &AlternateLinesResponse{
		PlayerID: req.PlayerID,
		Market:   req.Market,
		Games:    len(games.filtered),
		Lines:    rows,
	}, nil
}

// sideRate turns a market-direction hit rate into the rate for the quoted side.
// The side opposite the market's direction hits on every game the market misses.
func sideRate(stat models.HitRateStat, market models.Market, side string) models.HitRateStat {
	natural := SideOver
	if market.LowerIsBetter() {
		natural = SideUnder
	}
	if side == "" || strings.EqualFold(side, natural) {
		return stat
	}

	misses := stat.Games - stat.TimesHit
	return models.HitRateStat{
		Pct:      hitrate.Percentage(misses, stat.Games),
		TimesHit: misses,
		Games:    stat.Games,
	}
}

func bestPrice(odds []models.BookOdds) *BestPrice {
	sel, ok := bestodds.Best(odds)
	if !ok {
		return nil
	}

	bp := &BestPrice{
		Price:   sel.Price,
		Primary: sel.Primary(),
		Books:   sel.Books,
	}
	if p, err := sel.ImpliedProbability(); err == nil {
		bp.ImpliedProbability = p
	}
	return bp
}
