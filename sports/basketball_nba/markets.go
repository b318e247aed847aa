package basketball_nba

import (
	"strings"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// PropsMarkets returns the player prop markets polled and analyzed for NBA
func PropsMarkets() []models.Market {
	return models.Markets()
}

// MapVendorMarketKey translates vendor market keys to internal markets.
// Alternate-line markets share the mainline market's stat.
func MapVendorMarketKey(vendorKey string) (models.Market, error) {
	return models.ParseMarket(strings.TrimSuffix(vendorKey, "_alternate"))
}

// IsPropsMarket returns true if the market is a supported player prop
func IsPropsMarket(marketKey string) bool {
	_, err := MapVendorMarketKey(marketKey)
	return err == nil
}
