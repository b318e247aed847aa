package store

import (
	"context"
	"fmt"

	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/lib/pq"
)

const gameLogColumns = `
	game_id, player_id, team_id, game_date, opponent_abbr, home_away, result, margin,
	minutes, usage_pct, national_tv,
	pts, reb, ast, fg3m, stl, blk, tov, pra, pr, pa, ra, bs,
	plus_minus, fg_pct, fg3_pct, ft_pct`

// GetGameLogs returns a player's game logs for a season, most recent first
func (s *Store) GetGameLogs(ctx context.Context, playerID int, season string) ([]models.GameLogEntry, error) {
	query := `SELECT` + gameLogColumns + `
		FROM player_game_logs
		WHERE player_id = $1 AND season = $2
		ORDER BY game_date DESC, game_id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("query game logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.GameLogEntry, 0, 82)
	for rows.Next() {
		var e models.GameLogEntry
		if err := rows.Scan(
			&e.GameID, &e.PlayerID, &e.TeamID, &e.Date, &e.OpponentAbbr, &e.HomeAway, &e.Result, &e.Margin,
			&e.Minutes, &e.UsagePct, &e.NationalTV,
			&e.Pts, &e.Reb, &e.Ast, &e.Fg3m, &e.Stl, &e.Blk, &e.Tov, &e.Pra, &e.Pr, &e.Pa, &e.Ra, &e.Bs,
			&e.PlusMinus, &e.FgPct, &e.Fg3Pct, &e.FtPct,
		); err != nil {
			return nil, fmt.Errorf("scan game log: %w", err)
		}
		logs = append(logs, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game logs: %w", err)
	}

	return logs, nil
}

// GetTeammatesOut returns, for each of the given games, the team's players marked out
func (s *Store) GetTeammatesOut(ctx context.Context, teamID int, gameIDs []string) (models.TeammatesOut, error) {
	out := make(models.TeammatesOut)
	if len(gameIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT game_id, player_id
		FROM game_availability
		WHERE team_id = $1
		  AND game_id = ANY($2::text[])
		  AND status = 'out'
	`

	rows, err := s.db.QueryContext(ctx, query, teamID, pq.Array(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("query teammates out: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var gameID string
		var playerID int
		if err := rows.Scan(&gameID, &playerID); err != nil {
			return nil, fmt.Errorf("scan teammate out: %w", err)
		}
		if out[gameID] == nil {
			out[gameID] = make(map[int]bool)
		}
		out[gameID][playerID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teammates out: %w", err)
	}

	return out, nil
}

// GetRoster returns a team's active players ordered by name
func (s *Store) GetRoster(ctx context.Context, teamID int) ([]models.RosterEntry, error) {
	query := `
		SELECT player_id, player_name, team_id, COALESCE(position, '')
		FROM players
		WHERE team_id = $1 AND active = true
		ORDER BY player_name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var roster []models.RosterEntry
	for rows.Next() {
		var r models.RosterEntry
		if err := rows.Scan(&r.PlayerID, &r.PlayerName, &r.TeamID, &r.Position); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		roster = append(roster, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}

	return roster, nil
}
