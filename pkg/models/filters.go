package models

import "time"

// QuickFilter is a curated boolean game filter
type QuickFilter string

const (
	QuickHome      QuickFilter = "home"
	QuickAway      QuickFilter = "away"
	QuickWin       QuickFilter = "win"
	QuickLoss      QuickFilter = "loss"
	QuickWonBy10   QuickFilter = "wonBy10"
	QuickLostBy10  QuickFilter = "lostBy10"
	QuickPrimetime QuickFilter = "primetime"
)

// RangeField names a numeric game-log field that can carry a range filter
type RangeField string

const (
	RangeMinutes   RangeField = "minutes"
	RangeUsage     RangeField = "usage"
	RangePoints    RangeField = "pts"
	RangeRebounds  RangeField = "reb"
	RangeAssists   RangeField = "ast"
	RangeThrees    RangeField = "fg3m"
	RangeSteals    RangeField = "stl"
	RangeBlocks    RangeField = "blk"
	RangeTurnovers RangeField = "tov"
	RangePRA       RangeField = "pra"
	RangePlusMinus RangeField = "plusMinus"
	RangeFgPct     RangeField = "fgPct"
	RangeFg3Pct    RangeField = "fg3Pct"
	RangeFtPct     RangeField = "ftPct"
)

// RangeFilter is an inclusive [Min, Max] bound on one field
type RangeFilter struct {
	Field RangeField `json:"field"`
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
}

// InjuryMode selects how a teammate's availability constrains games
type InjuryMode string

const (
	InjuryWith    InjuryMode = "with"
	InjuryWithout InjuryMode = "without"
)

// InjuryFilter restricts games by whether a teammate played. A nil Mode is inactive.
type InjuryFilter struct {
	PlayerID   int         `json:"playerId"`
	PlayerName string      `json:"playerName"`
	TeamID     int         `json:"teamId"`
	Mode       *InjuryMode `json:"mode"`
}

// FilterState is everything a user has selected in one drilldown view.
// GameWindow 0 means the whole season.
type FilterState struct {
	QuickFilters  []QuickFilter  `json:"quickFilters"`
	RangeFilters  []RangeFilter  `json:"rangeFilters"`
	InjuryFilters []InjuryFilter `json:"injuryFilters"`
	GameWindow    int            `json:"gameWindow"`
	H2HOpponent   string         `json:"h2hOpponent,omitempty"`
}

// FilterChangeEvent is a partial record of whichever filter fields changed
type FilterChangeEvent struct {
	EventID       string          `json:"eventId"`
	UserID        string          `json:"userId"`
	ChangedAt     time.Time       `json:"changedAt"`
	QuickFilters  *[]QuickFilter  `json:"quickFilters,omitempty"`
	RangeFilters  *[]RangeFilter  `json:"rangeFilters,omitempty"`
	InjuryFilters *[]InjuryFilter `json:"injuryFilters,omitempty"`
	GameWindow    *int            `json:"gameWindow,omitempty"`
	H2HOpponent   *string         `json:"h2hOpponent,omitempty"`
}

// Preferences is the durable per-user state behind the dashboard
type Preferences struct {
	StarredPlayers []int       `json:"starredPlayers"`
	Filters        FilterState `json:"filters"`
}
