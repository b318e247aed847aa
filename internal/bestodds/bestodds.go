// Package bestodds picks the best price for a line across sportsbooks
package bestodds

import (
	"fmt"
	"sort"

	"github.com/XavierBriggs/Athena/pkg/models"
)

// Selection is the best price for one line and every book offering it
type Selection struct {
	Price int               `json:"price"`
	Books []models.BookOdds `json:"books"`
}

// Primary returns the first-listed best book, the deep-link target
func (s Selection) Primary() models.BookOdds {
	return s.Books[0]
}

// Tied reports whether more than one book shares the best price
func (s Selection) Tied() bool {
	return len(s.Books) > 1
}

// ImpliedProbability converts the best price to implied probability
func (s Selection) ImpliedProbability() (float64, error) {
	return AmericanToImpliedProbability(s.Price)
}

// Rank returns odds ordered by price descending. Equal prices keep input order.
func Rank(odds []models.BookOdds) []models.BookOdds {
	ranked := make([]models.BookOdds, len(odds))
	copy(ranked, odds)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price > ranked[j].Price
	})
	return ranked
}

// Best returns the highest price and all books tied at it, in input order
func Best(odds []models.BookOdds) (Selection, bool) {
	if len(odds) == 0 {
		return Selection{}, false
	}

	ranked := Rank(odds)
	sel := Selection{Price: ranked[0].Price}
	for _, o := range ranked {
		if o.Price != sel.Price {
			break
		}
		sel.Books = append(sel.Books, o)
	}
	return sel, true
}

// AmericanToImpliedProbability converts American odds to implied probability
// American +150 → 0.40
// American -150 → 0.60
func AmericanToImpliedProbability(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}

	a := float64(-american)
	return a / (a + 100.0), nil
}
