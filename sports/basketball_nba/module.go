package basketball_nba

import (
	"fmt"

	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
)

// Module implements the SportModule interface for NBA Basketball
type Module struct {
	config *Config
}

var _ contracts.SportModule = (*Module)(nil)

// NewModule creates a new NBA sport module
func NewModule() *Module {
	return &Module{
		config: DefaultConfig(),
	}
}

func (m *Module) GetSportKey() string { return m.config.SportKey }

func (m *Module) GetDisplayName() string { return m.config.DisplayName }

func (m *Module) GetPropsMarkets() []models.Market { return PropsMarkets() }

func (m *Module) GetRegions() []string { return m.config.Regions }

func (m *Module) GetPropsRefreshSchedule() string { return m.config.Props.RefreshSchedule }

func (m *Module) GetPropsRampSchedule() string { return m.config.Props.RampSchedule }

func (m *Module) InRampWindow(hoursUntilStart float64) bool { return m.config.InRamp(hoursUntilStart) }

func (m *Module) GetDiscoveryWindowHours() int { return m.config.Props.DiscoveryWindowHours }

func (m *Module) GetSharpBooks() []string { return m.config.SharpBooks }

// ShouldRefreshProps returns whether props refresh is enabled
func (m *Module) ShouldRefreshProps() bool { return m.config.Props.Enabled }

// ValidateOdds performs NBA-specific validation on a prop outcome
func (m *Module) ValidateOdds(odds models.RawOdds) error {
	if odds.SportKey != m.config.SportKey {
		return fmt.Errorf("invalid sport_key: expected %s, got %s", m.config.SportKey, odds.SportKey)
	}

	if !IsPropsMarket(odds.MarketKey) {
		return fmt.Errorf("invalid market_key for NBA: %s", odds.MarketKey)
	}

	if odds.Price == 0 {
		return fmt.Errorf("invalid price: cannot be 0")
	}

	if odds.PlayerName == "" {
		return fmt.Errorf("market %s requires a player", odds.MarketKey)
	}

	if odds.Point == nil {
		return fmt.Errorf("market %s requires point value", odds.MarketKey)
	}

	return nil
}

func (m *Module) ValidateGameLog(entry models.GameLogEntry) error { return ValidateGameLog(entry) }

func (m *Module) NormalizeTeam(abbr string) string { return NormalizeTeamAbbr(abbr) }
