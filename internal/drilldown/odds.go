package drilldown

import (
	"context"
	"fmt"
	"strings"

	"github.com/XavierBriggs/Athena/internal/bestodds"
	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
)

// BestOddsRequest selects one line for one player
type BestOddsRequest struct {
	EventID    string
	Market     models.Market
	PlayerName string
	Side       string
	Line       *float64
}

// BestOddsResponse is every book at the line, ranked, plus the best price.
// Best is nil when no book quotes the line.
type BestOddsResponse struct {
	Market models.Market     `json:"market"`
	Player string            `json:"player"`
	Side   string            `json:"side"`
	Line   *float64          `json:"line"`
	Best   *BestPrice        `json:"best"`
	Odds   []models.BookOdds `json:"odds"`
}

// BestOdds ranks the books quoting a line and picks the best price
func (s *Service) BestOdds(ctx context.Context, req BestOddsRequest) (*BestOddsResponse, error) {
	if req.EventID == "" || req.PlayerName == "" {
		return nil, fmt.Errorf("%w: event id and player are required", ErrInvalidRequest)
	}
	if !req.Market.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRequest, models.ErrUnknownMarket, req.Market)
	}
	// Prices are only comparable within one line
	if req.Line == nil {
		return nil, fmt.Errorf("%w: line is required", ErrInvalidRequest)
	}
	side := strings.ToLower(req.Side)
	if side == "" {
		side = SideOver
	}
	if side != SideOver && side != SideUnder {
		return nil, fmt.Errorf("%w: side must be over or under", ErrInvalidRequest)
	}

	odds, err := s.odds.GetBookOdds(ctx, contracts.OddsQuery{
		EventID:    req.EventID,
		Market:     req.Market,
		PlayerName: req.PlayerName,
		Side:       side,
		Line:       req.Line,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: book odds: %w", ErrLoadFailed, err)
	}

	return &BestOddsResponse{
		Market: req.Market,
		Player: req.PlayerName,
		Side:   side,
		Line:   req.Line,
		Best:   bestPrice(odds),
		Odds:   bestodds.Rank(odds),
	}, nil
}
