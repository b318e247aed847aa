package models

import "time"

// RawOdds represents one outcome price from a vendor before it is stored
type RawOdds struct {
	EventID          string
	SportKey         string
	MarketKey        string
	BookKey          string
	OutcomeName      string   // "Over" / "Under" for props
	PlayerName       string   // vendor outcome description, empty for mainlines
	Price            int      // American odds
	Point            *float64 // Line for props, spreads and totals
	Link             *string
	VendorLastUpdate time.Time
	ReceivedAt       time.Time
}

// Event represents a sporting event
type Event struct {
	EventID      string
	SportKey     string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	EventStatus  string // upcoming, live, completed, cancelled
}

// BookOdds is one sportsbook's price for a single line
type BookOdds struct {
	Book      string  `json:"book"`
	Price     int     `json:"price"` // American odds
	URL       *string `json:"url"`
	MobileURL *string `json:"mobileUrl"`
	IsSharp   bool    `json:"isSharp,omitempty"`
}

// AlternateLine is a quoted line for a player/market with every book's price at it
type AlternateLine struct {
	Line float64    `json:"line"`
	Side string     `json:"side"` // "over" or "under"
	Odds []BookOdds `json:"odds"`
}

// FetchEventOddsOptions contains parameters for fetching event-specific odds (props)
type FetchEventOddsOptions struct {
	Sport   string
	EventID string
	Regions []string
	Markets []string
}

// FetchResult contains both events and odds from a fetch operation
type FetchResult struct {
	Events []Event
	Odds   []RawOdds
}

// RateLimits contains rate limiting information
type RateLimits struct {
	RequestsRemaining int
	RequestsUsed      int
	ResetTime         time.Time
}
