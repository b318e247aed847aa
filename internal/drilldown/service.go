// Package drilldown composes the read path behind the player pages:
// fetch game logs and availability, run the filter pipeline, then derive
// hit rates, alternate-line comparisons and teammate correlations.
package drilldown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/XavierBriggs/Athena/internal/filters"
	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidRequest marks requests that can never succeed as sent
	ErrInvalidRequest = errors.New("invalid request")

	// ErrLoadFailed marks failures of an upstream data source
	ErrLoadFailed = errors.New("failed to load")
)

// BatchGameLogSource is implemented by sources that can resolve many players at once
type BatchGameLogSource interface {
	GetGameLogsBatch(ctx context.Context, playerIDs []int, season string) (map[int][]models.GameLogEntry, error)
}

// Service answers drilldown, alternate line, correlation and best odds queries
type Service struct {
	logs     contracts.GameLogSource
	injuries contracts.InjurySource
	odds     contracts.OddsSource
	sport    contracts.SportModule
	season   string
	log      *logrus.Entry
}

// NewService wires a service for one sport and season
func NewService(
	logs contracts.GameLogSource,
	injuries contracts.InjurySource,
	odds contracts.OddsSource,
	sport contracts.SportModule,
	season string,
	log *logrus.Entry,
) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		logs:     logs,
		injuries: injuries,
		odds:     odds,
		sport:    sport,
		season:   season,
		log:      log,
	}
}

// playerGames is a player's season after validation and filtering
type playerGames struct {
	all      []models.GameLogEntry
	filtered []models.GameLogEntry
	teamID   int
}

// loadGames fetches, cleans and filters one player's season
func (s *Service) loadGames(ctx context.Context, playerID, teamID int, state models.FilterState) (playerGames, error) {
	raw, err := s.logs.GetGameLogs(ctx, playerID, s.season)
	if err != nil {
		return playerGames{}, fmt.Errorf("%w: game logs for player %d: %w", ErrLoadFailed, playerID, err)
	}

	all := s.clean(raw)
	if teamID == 0 && len(all) > 0 {
		teamID = all[0].TeamID
	}

	state.H2HOpponent = s.normalizeTeam(state.H2HOpponent)

	var out models.TeammatesOut
	if hasActiveInjuryFilter(state.InjuryFilters) && teamID != 0 && len(all) > 0 {
		gameIDs := make([]string, len(all))
		for i, e := range all {
			gameIDs[i] = e.GameID
		}
		out, err = s.injuries.GetTeammatesOut(ctx, teamID, gameIDs)
		if err != nil {
			return playerGames{}, fmt.Errorf("%w: teammates out for team %d: %w", ErrLoadFailed, teamID, err)
		}
	}

	return playerGames{
		all:      all,
		filtered: filters.Apply(all, state, out),
		teamID:   teamID,
	}, nil
}

// clean drops malformed entries and normalizes opponent abbreviations
func (s *Service) clean(raw []models.GameLogEntry) []models.GameLogEntry {
	cleaned := make([]models.GameLogEntry, 0, len(raw))
	dropped := 0
	for _, e := range raw {
		if s.sport != nil {
			if err := s.sport.ValidateGameLog(e); err != nil {
				dropped++
				s.log.WithError(err).Debug("dropping game log")
				continue
			}
		}
		e.OpponentAbbr = s.normalizeTeam(e.OpponentAbbr)
		cleaned = append(cleaned, e)
	}
	if dropped > 0 {
		s.log.WithField("dropped", dropped).Warn("malformed game logs skipped")
	}
	return cleaned
}

func (s *Service) normalizeTeam(abbr string) string {
	if abbr == "" {
		return ""
	}
	if s.sport != nil {
		return s.sport.NormalizeTeam(abbr)
	}
	return strings.ToUpper(strings.TrimSpace(abbr))
}

func hasActiveInjuryFilter(injuries []models.InjuryFilter) bool {
	for _, f := range injuries {
		if f.Mode != nil {
			return true
		}
	}
	return false
}

func validateFilters(state models.FilterState) error {
	if !filters.ValidWindow(state.GameWindow) {
		return fmt.Errorf("%w: unsupported game window %d", ErrInvalidRequest, state.GameWindow)
	}
	return nil
}
