package filters

import (
	"fmt"
	"testing"

	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seasonLog builds n games most-recent-first. Even indexes are wins.
func seasonLog(n int) []models.GameLogEntry {
	games := make([]models.GameLogEntry, n)
	for i := range games {
		result, margin := models.Win, 6.0
		if i%2 == 1 {
			result, margin = models.Loss, -6.0
		}
		homeAway := models.Home
		if i%3 == 0 {
			homeAway = models.Away
		}
		games[i] = models.GameLogEntry{
			GameID:       fmt.Sprintf("g%02d", i),
			OpponentAbbr: []string{"BOS", "NYK", "MIA"}[i%3],
			HomeAway:     homeAway,
			Result:       result,
			Margin:       margin,
			Minutes:      float64(20 + i),
			Pts:          float64(10 + 2*i),
		}
	}
	return games
}

func gameIDs(games []models.GameLogEntry) []string {
	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.GameID
	}
	return ids
}

func modePtr(mode models.InjuryMode) *models.InjuryMode { return &mode }

func TestApply_LimitRunsAfterQuickFilters(t *testing.T) {
	games := seasonLog(12)
	state := models.FilterState{QuickFilters: []models.QuickFilter{models.QuickWin}, GameWindow: 5}

	got := Apply(games, state, nil)

	// The five most recent wins, not the wins among the five most recent games
	assert.Equal(t, []string{"g00", "g02", "g04", "g06", "g08"}, gameIDs(got))

	limitedFirst := Apply(Limit(games, 5, ""), models.FilterState{QuickFilters: state.QuickFilters}, nil)
	assert.Len(t, limitedFirst, 3)
	assert.NotEqual(t, len(got), len(limitedFirst))
}

func TestApply_LimitRunsAfterRangeFilters(t *testing.T) {
	games := seasonLog(12)
	ranges := []models.RangeFilter{{Field: models.RangeMinutes, Min: 25, Max: 40}}

	got := Apply(games, models.FilterState{RangeFilters: ranges, GameWindow: 5}, nil)
	assert.Equal(t, []string{"g05", "g06", "g07", "g08", "g09"}, gameIDs(got))

	reversed := Apply(Limit(games, 5, ""), models.FilterState{RangeFilters: ranges}, nil)
	assert.Empty(t, reversed)
}

func TestApply_RangeBoundsInclusive(t *testing.T) {
	games := []models.GameLogEntry{{GameID: "a", Pts: 20}, {GameID: "b", Pts: 30}, {GameID: "c", Pts: 31}}
	state := models.FilterState{RangeFilters: []models.RangeFilter{{Field: models.RangePoints, Min: 20, Max: 30}}}

	assert.Equal(t, []string{"a", "b"}, gameIDs(Apply(games, state, nil)))
}

func TestApply_MultipleRangesAllMustMatch(t *testing.T) {
	games := []models.GameLogEntry{
		{GameID: "a", Minutes: 35, UsagePct: 30},
		{GameID: "b", Minutes: 35, UsagePct: 18},
		{GameID: "c", Minutes: 15, UsagePct: 30},
	}
	state := models.FilterState{RangeFilters: []models.RangeFilter{
		{Field: models.RangeMinutes, Min: 30, Max: 48},
		{Field: models.RangeUsage, Min: 25, Max: 100},
	}}

	assert.Equal(t, []string{"a"}, gameIDs(Apply(games, state, nil)))
}

func TestApply_InjuryFilters(t *testing.T) {
	games := []models.GameLogEntry{{GameID: "g1"}, {GameID: "g2"}, {GameID: "g3"}}
	out := models.TeammatesOut{
		"g1": {23: true},
		"g2": {11: true},
	}

	tests := []struct {
		name    string
		filters []models.InjuryFilter
		want    []string
	}{
		{"with teammate", []models.InjuryFilter{{PlayerID: 23, Mode: modePtr(models.InjuryWith)}}, []string{"g2", "g3"}},
		{"without teammate", []models.InjuryFilter{{PlayerID: 23, Mode: modePtr(models.InjuryWithout)}}, []string{"g1"}},
		{"inactive mode", []models.InjuryFilter{{PlayerID: 23}}, []string{"g1", "g2", "g3"}},
		{"unknown teammate with", []models.InjuryFilter{{PlayerID: 99, Mode: modePtr(models.InjuryWith)}}, []string{"g1", "g2", "g3"}},
		{"unknown teammate without", []models.InjuryFilter{{PlayerID: 99, Mode: modePtr(models.InjuryWithout)}}, []string{}},
		{"combined", []models.InjuryFilter{
			{PlayerID: 23, Mode: modePtr(models.InjuryWith)},
			{PlayerID: 11, Mode: modePtr(models.InjuryWithout)},
		}, []string{"g2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(games, models.FilterState{InjuryFilters: tt.filters}, out)
			assert.Equal(t, tt.want, gameIDs(got))
		})
	}
}

func TestApply_HeadToHeadSkipsWindow(t *testing.T) {
	games := seasonLog(12)

	got := Apply(games, models.FilterState{GameWindow: 5, H2HOpponent: "bos"}, nil)

	assert.Equal(t, []string{"g00", "g03", "g06", "g09"}, gameIDs(got))
}

func TestApply_SeasonKeepsEverything(t *testing.T) {
	games := seasonLog(12)

	assert.Len(t, Apply(games, models.FilterState{}, nil), 12)
	assert.Len(t, Apply(games, models.FilterState{GameWindow: 20}, nil), 12)
}

func TestApply_DoesNotMutateInputAndIsRepeatable(t *testing.T) {
	games := seasonLog(12)
	snapshot := append([]models.GameLogEntry(nil), games...)
	state := models.FilterState{
		QuickFilters: []models.QuickFilter{models.QuickHome},
		GameWindow:   5,
	}

	first := Apply(games, state, nil)
	second := Apply(games, state, nil)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, games)

	require.NotEmpty(t, first)
	first[0].Pts = -1
	assert.Equal(t, snapshot, games)
}

func TestValidWindow(t *testing.T) {
	for _, w := range []int{0, 5, 10, 20} {
		assert.True(t, ValidWindow(w), "window %d", w)
	}
	for _, w := range []int{-1, 3, 15, 82} {
		assert.False(t, ValidWindow(w), "window %d", w)
	}
}
