package filters

import (
	"github.com/XavierBriggs/Athena/pkg/models"
)

var rangeFields = map[models.RangeField]func(models.GameLogEntry) float64{
	models.RangeMinutes:   func(e models.GameLogEntry) float64 { return e.Minutes },
	models.RangeUsage:     func(e models.GameLogEntry) float64 { return e.UsagePct },
	models.RangePoints:    func(e models.GameLogEntry) float64 { return e.Pts },
	models.RangeRebounds:  func(e models.GameLogEntry) float64 { return e.Reb },
	models.RangeAssists:   func(e models.GameLogEntry) float64 { return e.Ast },
	models.RangeThrees:    func(e models.GameLogEntry) float64 { return e.Fg3m },
	models.RangeSteals:    func(e models.GameLogEntry) float64 { return e.Stl },
	models.RangeBlocks:    func(e models.GameLogEntry) float64 { return e.Blk },
	models.RangeTurnovers: func(e models.GameLogEntry) float64 { return e.Tov },
	models.RangePRA:       func(e models.GameLogEntry) float64 { return e.Pra },
	models.RangePlusMinus: func(e models.GameLogEntry) float64 { return e.PlusMinus },
	models.RangeFgPct:     func(e models.GameLogEntry) float64 { return e.FgPct },
	models.RangeFg3Pct:    func(e models.GameLogEntry) float64 { return e.Fg3Pct },
	models.RangeFtPct:     func(e models.GameLogEntry) float64 { return e.FtPct },
}

// ValidRangeField reports whether f can carry a range filter
func ValidRangeField(f models.RangeField) bool {
	_, ok := rangeFields[f]
	return ok
}

// MatchRanges reports whether every range filter contains its field (inclusive)
func MatchRanges(ranges []models.RangeFilter, e models.GameLogEntry) bool {
	for _, r := range ranges {
		field, ok := rangeFields[r.Field]
		if !ok {
			continue
		}
		v := field(e)
		if v < r.Min || v > r.Max {
			return false
		}
	}
	return true
}

// MatchInjuries evaluates with/without teammate filters against the out set for e's game
func MatchInjuries(injuries []models.InjuryFilter, out models.TeammatesOut, e models.GameLogEntry) bool {
	for _, inj := range injuries {
		if inj.Mode == nil {
			continue
		}
		isOut := out.IsOut(e.GameID, inj.PlayerID)
		switch *inj.Mode {
		case models.InjuryWith:
			if isOut {
				return false
			}
		case models.InjuryWithout:
			if !isOut {
				return false
			}
		}
	}
	return true
}
