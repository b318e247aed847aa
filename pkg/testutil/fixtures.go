package testutil

import (
	"fmt"
	"time"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// NewTestEvent creates an upcoming NBA event starting hoursUntilStart after now
func NewTestEvent(eventID string, now time.Time, hoursUntilStart float64) models.Event {
	return models.Event{
		EventID:      eventID,
		SportKey:     "basketball_nba",
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "New York Knicks",
		CommenceTime: now.Add(time.Duration(hoursUntilStart * float64(time.Hour))),
		EventStatus:  "upcoming",
	}
}

// NewTestProp creates one book's price for a player prop outcome
func NewTestProp(eventID, marketKey, bookKey, outcomeName, playerName string, price int, point float64) models.RawOdds {
	now := time.Now()
	return models.RawOdds{
		EventID:          eventID,
		SportKey:         "basketball_nba",
		MarketKey:        marketKey,
		BookKey:          bookKey,
		OutcomeName:      outcomeName,
		PlayerName:       playerName,
		Price:            price,
		Point:            &point,
		VendorLastUpdate: now,
		ReceivedAt:       now,
	}
}

// PointsLogs builds a player's game logs from point totals, most recent first.
// Every game is a home win with 30 minutes played.
func PointsLogs(playerID int, points ...float64) []models.GameLogEntry {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	logs := make([]models.GameLogEntry, len(points))
	for i, pts := range points {
		logs[i] = models.GameLogEntry{
			GameID:       fmt.Sprintf("g%d", len(points)-i),
			PlayerID:     playerID,
			TeamID:       10,
			Date:         start.AddDate(0, 0, len(points)-i),
			OpponentAbbr: "BOS",
			HomeAway:     models.Home,
			Result:       models.Win,
			Margin:       5,
			Minutes:      30,
			Pts:          pts,
			Pra:          pts,
		}
	}
	return logs
}
