package contracts

import (
	"context"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// VendorAdapter fetches player prop odds from an external vendor
type VendorAdapter interface {
	// FetchEventOdds retrieves prop odds for one event, including book deep links
	FetchEventOdds(ctx context.Context, opts *models.FetchEventOddsOptions) (*models.FetchResult, error)

	// FetchEvents retrieves upcoming events without odds (for discovery)
	FetchEvents(ctx context.Context, sport string) ([]models.Event, error)

	// SupportsMarket checks if this adapter supports a given market
	SupportsMarket(market string) bool

	// GetRateLimits returns current rate limit information
	GetRateLimits() *models.RateLimits
}
