package basketball_nba

// Config contains NBA-specific props refresh configuration
type Config struct {
	// Sport identification
	SportKey    string
	DisplayName string

	// Regions to poll
	Regions []string

	// Props refresh configuration
	Props PropsConfig

	// Books whose prices are flagged as sharp in odds comparisons
	SharpBooks []string
}

// PropsConfig defines how player prop odds are refreshed
type PropsConfig struct {
	// Enable props refresh
	Enabled bool

	// Cron spec for the refresh job
	RefreshSchedule string

	// Only events starting within this many hours are refreshed
	DiscoveryWindowHours int

	// Tight refresh inside this many hours of tipoff
	RampWithinHours float64
	RampSchedule    string
}

// DefaultConfig returns the default NBA configuration
func DefaultConfig() *Config {
	return &Config{
		SportKey:    "basketball_nba",
		DisplayName: "NBA Basketball",
		Regions:     []string{"us", "us2"},

		Props: PropsConfig{
			Enabled:              true,
			RefreshSchedule:      "*/30 * * * *",
			DiscoveryWindowHours: 48,
			RampWithinHours:      1.5,
			RampSchedule:         "*/2 * * * *",
		},

		SharpBooks: []string{"pinnacle", "circasports"},
	}
}

// InRamp reports whether an event hoursUntilStart away is refreshed on the ramp schedule
func (c *Config) InRamp(hoursUntilStart float64) bool {
	return hoursUntilStart >= 0 && hoursUntilStart <= c.Props.RampWithinHours
}
