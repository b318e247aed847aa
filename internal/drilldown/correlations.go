package drilldown

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/XavierBriggs/Athena/internal/hitrate"
	"github.com/XavierBriggs/Athena/pkg/models"
)

// CorrelationsRequest conditions teammates' markets on the anchor's line
type CorrelationsRequest struct {
	PlayerID       int
	TeamID         int
	Market         models.Market
	Line           *float64
	TeammateMarket models.Market // defaults to Market
	TeammateLine   *float64
	Filters        models.FilterState
}

// CorrelationsResponse lists teammates by the size of their boost
type CorrelationsResponse struct {
	PlayerID   int                                `json:"playerId"`
	Market     models.Market                      `json:"market"`
	Line       float64                            `json:"line"`
	AnchorRate models.HitRateStat                 `json:"anchorHitRate"`
	Teammates  []models.TeammateCorrelationRecord `json:"teammates"`
}

// Correlations computes a record for every rostered teammate of the anchor
func (s *Service) Correlations(ctx context.Context, req CorrelationsRequest) (*CorrelationsResponse, error) {
	if req.PlayerID <= 0 {
		return nil, fmt.Errorf("%w: player id must be positive", ErrInvalidRequest)
	}
	if req.TeammateMarket == "" {
		req.TeammateMarket = req.Market
	}
	for _, m := range []models.Market{req.Market, req.TeammateMarket} {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRequest, models.ErrUnknownMarket, m)
		}
	}
	if err := validateFilters(req.Filters); err != nil {
		return nil, err
	}

	anchor, err := s.loadGames(ctx, req.PlayerID, req.TeamID, req.Filters)
	if err != nil {
		return nil, err
	}

	resp := &CorrelationsResponse{
		PlayerID:   req.PlayerID,
		Market:     req.Market,
		Line:       hitrate.EffectiveLine(req.Line),
		AnchorRate: hitrate.Compute(anchor.filtered, req.Market, req.Line),
		Teammates:  []models.TeammateCorrelationRecord{},
	}

	if anchor.teamID == 0 || len(anchor.filtered) == 0 {
		return resp, nil
	}

	roster, err := s.injuries.GetRoster(ctx, anchor.teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: roster for team %d: %w", ErrLoadFailed, anchor.teamID, err)
	}

	teammates := make([]models.RosterEntry, 0, len(roster))
	ids := make([]int, 0, len(roster))
	for _, r := range roster {
		if r.PlayerID == req.PlayerID {
			continue
		}
		teammates = append(teammates, r)
		ids = append(ids, r.PlayerID)
	}

	logs, err := s.teammateLogs(ctx, ids)
	if err != nil {
		return nil, err
	}

	a := hitrate.Anchor{Logs: anchor.filtered, Market: req.Market, Line: req.Line}
	for _, tm := range teammates {
		resp.Teammates = append(resp.Teammates, hitrate.Correlate(a, tm, logs[tm.PlayerID], req.TeammateMarket, req.TeammateLine))
	}

	SortByBoost(resp.Teammates)
	return resp, nil
}

func (s *Service) teammateLogs(ctx context.Context, ids []int) (map[int][]models.GameLogEntry, error) {
	if batch, ok := s.logs.(BatchGameLogSource); ok {
		logs, err := batch.GetGameLogsBatch(ctx, ids, s.season)
		if err != nil {
			return nil, fmt.Errorf("%w: teammate game logs: %w", ErrLoadFailed, err)
		}
		return logs, nil
	}

	logs := make(map[int][]models.GameLogEntry, len(ids))
	for _, id := range ids {
		l, err := s.logs.GetGameLogs(ctx, id, s.season)
		if err != nil {
			return nil, fmt.Errorf("%w: game logs for teammate %d: %w", ErrLoadFailed, id, err)
		}
		logs[id] = l
	}
	return logs, nil
}

// SortByBoost orders records by |Boost| descending. Records without a boost
// sort last; ties keep their input order.
func SortByBoost(records []models.TeammateCorrelationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		bi, bj := records[i].Boost, records[j].Boost
		if bi == nil || bj == nil {
			return bi != nil && bj == nil
		}
		return math.Abs(*bi) > math.Abs(*bj)
	})
}
