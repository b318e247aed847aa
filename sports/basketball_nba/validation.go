package basketball_nba

import (
	"fmt"
	"strings"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// ValidateGameLog checks a box score line before it is used in a drilldown
func ValidateGameLog(e models.GameLogEntry) error {
	if e.GameID == "" {
		return fmt.Errorf("game id cannot be empty")
	}

	if e.HomeAway != models.Home && e.HomeAway != models.Away {
		return fmt.Errorf("game %s: invalid home/away flag %q", e.GameID, e.HomeAway)
	}

	if e.Result != models.Win && e.Result != models.Loss {
		return fmt.Errorf("game %s: invalid result %q", e.GameID, e.Result)
	}

	if e.Minutes < 0 || e.Minutes > 65 {
		return fmt.Errorf("game %s: minutes out of range: %.1f", e.GameID, e.Minutes)
	}

	return nil
}

// NormalizeTeamAbbr standardizes opponent abbreviations across feeds
func NormalizeTeamAbbr(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))

	replacements := map[string]string{
		"GS":   "GSW",
		"NY":   "NYK",
		"SA":   "SAS",
		"NO":   "NOP",
		"UTAH": "UTA",
		"WSH":  "WAS",
		"PHO":  "PHX",
		"BRK":  "BKN",
	}

	if normalized, ok := replacements[abbr]; ok {
		return normalized
	}

	return abbr
}
