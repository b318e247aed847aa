package models

// MarketLine is a betting proposition: a market and its threshold.
// A nil Line means no sportsbook quote is available.
type MarketLine struct {
	Market Market   `json:"market"`
	Line   *float64 `json:"line"`
}

// HitRateStat summarizes how often a line was hit over a set of games.
// Pct is nil when no games were considered.
type HitRateStat struct {
	Pct      *int `json:"pct"`
	TimesHit int  `json:"timesHit"`
	Games    int  `json:"games"`
}

// TeammateCorrelationRecord is a teammate's output conditioned on whether the
// anchor player hit their own line in the same game
type TeammateCorrelationRecord struct {
	TeammateID   int         `json:"teammateId"`
	TeammateName string      `json:"teammateName"`
	Market       Market      `json:"market"`
	AvgWhenHit   *float64    `json:"avgWhenHit"`
	AvgWhenMiss  *float64    `json:"avgWhenMiss"`
	Boost        *float64    `json:"boost"`
	GamesHit     int         `json:"gamesHit"`
	GamesMiss    int         `json:"gamesMiss"`
	HitRate      HitRateStat `json:"hitRateWhenAnchorHits"`
}
