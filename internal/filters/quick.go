package filters

import (
	"github.com/XavierBriggs/Athena/pkg/models"
)

// opposites lists the filters evicted when a key is activated
var opposites = map[models.QuickFilter][]models.QuickFilter{
	models.QuickHome:     {models.QuickAway},
	models.QuickAway:     {models.QuickHome},
	models.QuickWin:      {models.QuickLoss, models.QuickLostBy10},
	models.QuickLoss:     {models.QuickWin, models.QuickWonBy10},
	models.QuickWonBy10:  {models.QuickLoss, models.QuickLostBy10},
	models.QuickLostBy10: {models.QuickWin, models.QuickWonBy10},
}

const marginThreshold = 10

// QuickSet is an ordered set of active quick filters. Methods never mutate the receiver.
type QuickSet []models.QuickFilter

// NewQuickSet builds a set from filters, resolving conflicts in order
func NewQuickSet(filters ...models.QuickFilter) QuickSet {
	set := QuickSet{}
	for _, f := range filters {
		if !set.Has(f) {
			set = set.Toggle(f)
		}
	}
	return set
}

// Has reports whether f is active
func (s QuickSet) Has(f models.QuickFilter) bool {
	for _, active := range s {
		if active == f {
			return true
		}
	}
	return false
}

// Toggle deactivates f if active. Otherwise it evicts f's opposites and activates f.
func (s QuickSet) Toggle(f models.QuickFilter) QuickSet {
	if s.Has(f) {
		return s.without(f)
	}

	next := s
	for _, opp := range opposites[f] {
		next = next.without(opp)
	}

	out := make(QuickSet, 0, len(next)+1)
	out = append(out, next...)
	return append(out, f)
}

func (s QuickSet) without(f models.QuickFilter) QuickSet {
	out := make(QuickSet, 0, len(s))
	for _, active := range s {
		if active != f {
			out = append(out, active)
		}
	}
	return out
}

// Match reports whether a game satisfies every active quick filter
func (s QuickSet) Match(e models.GameLogEntry) bool {
	for _, f := range s {
		if !matchQuick(f, e) {
			return false
		}
	}
	return true
}

func matchQuick(f models.QuickFilter, e models.GameLogEntry) bool {
	switch f {
	case models.QuickHome:
		return e.HomeAway == models.Home
	case models.QuickAway:
		return e.HomeAway == models.Away
	case models.QuickWin:
		return e.Result == models.Win
	case models.QuickLoss:
		return e.Result == models.Loss
	case models.QuickWonBy10:
		return e.Result == models.Win && e.Margin >= marginThreshold
	case models.QuickLostBy10:
		return e.Result == models.Loss && e.Margin <= -marginThreshold
	case models.QuickPrimetime:
		return e.NationalTV
	default:
		// Unknown filters constrain nothing
		return true
	}
}

// ValidQuick reports whether f is a known quick filter
func ValidQuick(f models.QuickFilter) bool {
	if f == models.QuickPrimetime {
		return true
	}
	_, ok := opposites[f]
	return ok
}
