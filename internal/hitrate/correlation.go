package hitrate

import (
	"github.com/XavierBriggs/Athena/pkg/models"
)

// Anchor describes the player whose hit/miss conditions a correlation
type Anchor struct {
	Logs   []models.GameLogEntry
	Market models.Market
	Line   *float64
}

// Correlate conditions a teammate's market on the anchor hitting their line.
// Teammate logs are joined to anchor games by game id; anchor games the
// teammate did not play are skipped.
func Correlate(anchor Anchor, teammate models.RosterEntry, teammateLogs []models.GameLogEntry, market models.Market, line *float64) models.TeammateCorrelationRecord {
	byGame := make(map[string]models.GameLogEntry, len(teammateLogs))
	for _, e := range teammateLogs {
		byGame[e.GameID] = e
	}

	anchorHit, anchorMiss := Split(anchor.Logs, anchor.Market, anchor.Line)
	whenHit := joinGames(anchorHit, byGame)
	whenMiss := joinGames(anchorMiss, byGame)

	record := models.TeammateCorrelationRecord{
		TeammateID:   teammate.PlayerID,
		TeammateName: teammate.PlayerName,
		Market:       market,
		AvgWhenHit:   Average(whenHit, market),
		AvgWhenMiss:  Average(whenMiss, market),
		GamesHit:     len(whenHit),
		GamesMiss:    len(whenMiss),
		HitRate:      Compute(whenHit, market, line),
	}

	if record.AvgWhenHit != nil && record.AvgWhenMiss != nil {
		boost := *record.AvgWhenHit - *record.AvgWhenMiss
		record.Boost = &boost
	}

	return record
}

func joinGames(anchorGames []models.GameLogEntry, byGame map[string]models.GameLogEntry) []models.GameLogEntry {
	joined := make([]models.GameLogEntry, 0, len(anchorGames))
	for _, g := range anchorGames {
		if e, ok := byGame[g.GameID]; ok {
			joined = append(joined, e)
		}
	}
	return joined
}
