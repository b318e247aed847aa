// Package hitrate derives hit counts, hit percentages and conditional averages
// from already-filtered game logs. Every surface that shows a rate calls into
// this package so card, table and sparkbar views always agree.
package hitrate

import (
	"math"
	"strconv"
	"strings"

	"github.com/XavierBriggs/Athena/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// FallbackLine is used when a player has no quoted line: any positive
// occurrence of the stat counts as a hit.
const FallbackLine = 0.5

// Point is one game in a recent-form series
type Point struct {
	GameID   string  `json:"gameId"`
	Opponent string  `json:"opponent"`
	Value    float64 `json:"value"`
	Hit      bool    `json:"hit"`
}

// EffectiveLine returns the line used for computation
func EffectiveLine(line *float64) float64 {
	if line == nil || math.IsNaN(*line) || math.IsInf(*line, 0) || *line <= 0 {
		return FallbackLine
	}
	return *line
}

// IsHit applies the market's direction. Both boundaries are inclusive.
func IsHit(market models.Market, value, effectiveLine float64) bool {
	if market.LowerIsBetter() {
		return value <= effectiveLine
	}
	return value >= effectiveLine
}

// Compute counts hits of market at line over entries
func Compute(entries []models.GameLogEntry, market models.Market, line *float64) models.HitRateStat {
	eff := EffectiveLine(line)

	hits := 0
	for _, e := range entries {
		if IsHit(market, market.Value(e), eff) {
			hits++
		}
	}

	return models.HitRateStat{
		Pct:      Percentage(hits, len(entries)),
		TimesHit: hits,
		Games:    len(entries),
	}
}

// Percentage rounds 100*hits/total half-up. Nil when total is 0.
func Percentage(hits, total int) *int {
	if total == 0 {
		return nil
	}
	pct := int(math.Floor(100*float64(hits)/float64(total) + 0.5))
	return &pct
}

// Series returns per-game values and hit flags in input order
func Series(entries []models.GameLogEntry, market models.Market, line *float64) []Point {
	eff := EffectiveLine(line)

	points := make([]Point, 0, len(entries))
	for _, e := range entries {
		v := market.Value(e)
		points = append(points, Point{
			GameID:   e.GameID,
			Opponent: e.OpponentAbbr,
			Value:    v,
			Hit:      IsHit(market, v, eff),
		})
	}
	return points
}

// Average returns the mean stat value, nil for an empty list
func Average(entries []models.GameLogEntry, market models.Market) *float64 {
	if len(entries) == 0 {
		return nil
	}
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = market.Value(e)
	}
	avg := stat.Mean(values, nil)
	return &avg
}

// Averages returns the mean stat value over hit games and over missed games
func Averages(entries []models.GameLogEntry, market models.Market, line *float64) (whenHit, whenMiss *float64) {
	hit, miss := Split(entries, market, line)
	return Average(hit, market), Average(miss, market)
}

// Split partitions entries into games where the line was hit and games where it was missed
func Split(entries []models.GameLogEntry, market models.Market, line *float64) (hit, miss []models.GameLogEntry) {
	eff := EffectiveLine(line)

	hit = make([]models.GameLogEntry, 0, len(entries))
	miss = make([]models.GameLogEntry, 0, len(entries))
	for _, e := range entries {
		if IsHit(market, market.Value(e), eff) {
			hit = append(hit, e)
		} else {
			miss = append(miss, e)
		}
	}
	return hit, miss
}

// ParseCustomLine parses a user-typed line. Non-numeric or negative input is
// rejected and previous is returned unchanged.
func ParseCustomLine(input string, previous float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return previous
	}
	return v
}
