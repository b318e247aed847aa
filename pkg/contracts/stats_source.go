package contracts

import (
	"context"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// GameLogSource supplies pre-materialized game logs, most recent first
type GameLogSource interface {
	GetGameLogs(ctx context.Context, playerID int, season string) ([]models.GameLogEntry, error)
}

// InjurySource supplies teammate availability for the injury filters
type InjurySource interface {
	GetTeammatesOut(ctx context.Context, teamID int, gameIDs []string) (models.TeammatesOut, error)
	GetRoster(ctx context.Context, teamID int) ([]models.RosterEntry, error)
}

// OddsSource supplies the latest book prices for player props
type OddsSource interface {
	GetBookOdds(ctx context.Context, q OddsQuery) ([]models.BookOdds, error)
	GetAlternateLines(ctx context.Context, q OddsQuery) ([]models.AlternateLine, error)
}

// OddsQuery selects one player's prop odds for an event
type OddsQuery struct {
	EventID    string
	Market     models.Market
	PlayerName string
	Side       string   // "over" or "under"
	Line       *float64 // nil selects every line
}
