package models

import "time"

// GameLogEntry is one player's box score line for one game.
// Combination stats (Pra, Pr, Pa, Ra, Bs) come from the source and are never
// recomputed from their components.
type GameLogEntry struct {
	GameID       string    `json:"gameId"`
	PlayerID     int       `json:"playerId"`
	TeamID       int       `json:"teamId"`
	Date         time.Time `json:"date"`
	OpponentAbbr string    `json:"opponentAbbr"`
	HomeAway     string    `json:"homeAway"` // "H" or "A"
	Result       string    `json:"result"`   // "W" or "L"
	Margin       float64   `json:"margin"`   // team score minus opponent score
	Minutes      float64   `json:"minutes"`
	UsagePct     float64   `json:"usagePct"`
	NationalTV   bool      `json:"nationalTv"`

	Pts  float64 `json:"pts"`
	Reb  float64 `json:"reb"`
	Ast  float64 `json:"ast"`
	Fg3m float64 `json:"fg3m"`
	Stl  float64 `json:"stl"`
	Blk  float64 `json:"blk"`
	Tov  float64 `json:"tov"`
	Pra  float64 `json:"pra"`
	Pr   float64 `json:"pr"`
	Pa   float64 `json:"pa"`
	Ra   float64 `json:"ra"`
	Bs   float64 `json:"bs"`

	PlusMinus float64 `json:"plusMinus"`
	FgPct     float64 `json:"fgPct"`
	Fg3Pct    float64 `json:"fg3Pct"`
	FtPct     float64 `json:"ftPct"`
}

const (
	Home = "H"
	Away = "A"
	Win  = "W"
	Loss = "L"
)

// RosterEntry is a teammate that can be used in an injury filter
type RosterEntry struct {
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
	TeamID     int    `json:"teamId"`
	Position   string `json:"position,omitempty"`
}

// TeammatesOut maps a game id to the set of player ids marked out for that game
type TeammatesOut map[string]map[int]bool

// IsOut reports whether playerID was marked out for gameID. Missing data means not out.
func (t TeammatesOut) IsOut(gameID string, playerID int) bool {
	out, ok := t[gameID]
	if !ok {
		return false
	}
	return out[playerID]
}
