package models

import (
	"errors"
	"fmt"
)

// ErrUnknownMarket is returned when a market key is not one of the supported props
var ErrUnknownMarket = errors.New("unknown market")

// Market identifies a player prop market. The set is closed; string keys from
// vendors and API callers are resolved through ParseMarket.
type Market string

const (
	MarketPoints              Market = "player_points"
	MarketRebounds            Market = "player_rebounds"
	MarketAssists             Market = "player_assists"
	MarketThrees              Market = "player_threes"
	MarketSteals              Market = "player_steals"
	MarketBlocks              Market = "player_blocks"
	MarketTurnovers           Market = "player_turnovers"
	MarketPointsReboundsAssts Market = "player_points_rebounds_assists"
	MarketPointsRebounds      Market = "player_points_rebounds"
	MarketPointsAssists       Market = "player_points_assists"
	MarketReboundsAssists     Market = "player_rebounds_assists"
	MarketBlocksSteals        Market = "player_blocks_steals"
	MarketDoubleDouble        Market = "player_double_double"
	MarketTripleDouble        Market = "player_triple_double"
)

type marketDef struct {
	stat          func(GameLogEntry) float64
	lowerIsBetter bool
	label         string
}

var marketDefs = map[Market]marketDef{
	MarketPoints:              {stat: func(e GameLogEntry) float64 { return e.Pts }, label: "PTS"},
	MarketRebounds:            {stat: func(e GameLogEntry) float64 { return e.Reb }, label: "REB"},
	MarketAssists:             {stat: func(e GameLogEntry) float64 { return e.Ast }, label: "AST"},
	MarketThrees:              {stat: func(e GameLogEntry) float64 { return e.Fg3m }, label: "3PM"},
	MarketSteals:              {stat: func(e GameLogEntry) float64 { return e.Stl }, label: "STL"},
	MarketBlocks:              {stat: func(e GameLogEntry) float64 { return e.Blk }, label: "BLK"},
	MarketTurnovers:           {stat: func(e GameLogEntry) float64 { return e.Tov }, label: "TOV", lowerIsBetter: true},
	MarketPointsReboundsAssts: {stat: func(e GameLogEntry) float64 { return e.Pra }, label: "PRA"},
	MarketPointsRebounds:      {stat: func(e GameLogEntry) float64 { return e.Pr }, label: "P+R"},
	MarketPointsAssists:       {stat: func(e GameLogEntry) float64 { return e.Pa }, label: "P+A"},
	MarketReboundsAssists:     {stat: func(e GameLogEntry) float64 { return e.Ra }, label: "R+A"},
	MarketBlocksSteals:        {stat: func(e GameLogEntry) float64 { return e.Bs }, label: "B+S"},
	MarketDoubleDouble:        {stat: func(e GameLogEntry) float64 { return doubleDigitFlag(e, 2) }, label: "DD"},
	MarketTripleDouble:        {stat: func(e GameLogEntry) float64 { return doubleDigitFlag(e, 3) }, label: "TD"},
}

// ParseMarket resolves an API/vendor market key
func ParseMarket(key string) (Market, error) {
	m := Market(key)
	if _, ok := marketDefs[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMarket, key)
	}
	return m, nil
}

// Markets returns every supported market in a stable order
func Markets() []Market {
	return []Market{
		MarketPoints, MarketRebounds, MarketAssists, MarketThrees,
		MarketPointsReboundsAssts, MarketPointsRebounds, MarketPointsAssists,
		MarketReboundsAssists, MarketSteals, MarketBlocks, MarketTurnovers,
		MarketBlocksSteals, MarketDoubleDouble, MarketTripleDouble,
	}
}

// Valid reports whether m is a supported market
func (m Market) Valid() bool {
	_, ok := marketDefs[m]
	return ok
}

// Value reads the market's stat from a game log entry. Unknown markets read as 0.
func (m Market) Value(e GameLogEntry) float64 {
	def, ok := marketDefs[m]
	if !ok || def.stat == nil {
		return 0
	}
	return def.stat(e)
}

// LowerIsBetter reports whether the market hits at or below the line (turnovers)
func (m Market) LowerIsBetter() bool {
	return marketDefs[m].lowerIsBetter
}

// Label returns the short column label used by the dashboard
func (m Market) Label() string {
	if def, ok := marketDefs[m]; ok {
		return def.label
	}
	return string(m)
}

// doubleDigitFlag returns 1 when at least n of pts/reb/ast/stl/blk reached 10
func doubleDigitFlag(e GameLogEntry, n int) float64 {
	count := 0
	for _, v := range []float64{e.Pts, e.Reb, e.Ast, e.Stl, e.Blk} {
		if v >= 10 {
			count++
		}
	}
	if count >= n {
		return 1
	}
	return 0
}
