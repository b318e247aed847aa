package contracts

import (
	"github.com/XavierBriggs/Athena/pkg/models"
)

// SportModule defines the sport-specific settings behind odds refresh and
// drilldown validation
type SportModule interface {
	// GetSportKey returns the unique identifier for this sport (e.g., "basketball_nba")
	GetSportKey() string

	// GetDisplayName returns the human-readable name (e.g., "NBA Basketball")
	GetDisplayName() string

	// GetPropsMarkets returns the prop markets this sport supports
	GetPropsMarkets() []models.Market

	// GetRegions returns the vendor regions to poll (e.g., ["us", "us2"])
	GetRegions() []string

	// GetPropsRefreshSchedule returns the cron spec for refreshing prop odds
	GetPropsRefreshSchedule() string

	// GetPropsRampSchedule returns the tighter cron spec used close to tipoff, empty to disable
	GetPropsRampSchedule() string

	// InRampWindow reports whether an event hoursUntilStart away belongs to the ramp schedule
	InRampWindow(hoursUntilStart float64) bool

	// ShouldRefreshProps returns whether props odds are refreshed for this sport
	ShouldRefreshProps() bool

	// GetDiscoveryWindowHours returns how many hours ahead to refresh events
	GetDiscoveryWindowHours() int

	// GetSharpBooks returns books whose prices are flagged as sharp
	GetSharpBooks() []string

	// ValidateOdds performs sport-specific validation on raw odds
	ValidateOdds(odds models.RawOdds) error

	// ValidateGameLog rejects malformed box score lines before they reach a drilldown
	ValidateGameLog(entry models.GameLogEntry) error

	// NormalizeTeam maps feed-specific team abbreviations to one canonical form
	NormalizeTeam(abbr string) string
}
