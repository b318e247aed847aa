package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, opts ...Option) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, opts...), mock
}

func floatPtr(v float64) *float64 { return &v }

var gameLogCols = []string{
	"game_id", "player_id", "team_id", "game_date", "opponent_abbr", "home_away", "result", "margin",
	"minutes", "usage_pct", "national_tv",
	"pts", "reb", "ast", "fg3m", "stl", "blk", "tov", "pra", "pr", "pa", "ra", "bs",
	"plus_minus", "fg_pct", "fg3_pct", "ft_pct",
}

func TestGetGameLogs(t *testing.T) {
	s, mock := newMockStore(t)
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(gameLogCols).
		AddRow("g2", 23, 1610612747, date, "BOS", "H", "W", 12.0,
			36.5, 28.1, true,
			27.0, 8.0, 9.0, 2.0, 1.0, 1.0, 4.0, 44.0, 35.0, 36.0, 17.0, 2.0,
			10.0, 0.52, 0.4, 0.8).
		AddRow("g1", 23, 1610612747, date.AddDate(0, 0, -2), "NYK", "A", "L", -4.0,
			34.0, 30.0, false,
			22.0, 6.0, 7.0, 1.0, 0.0, 2.0, 3.0, 35.0, 28.0, 29.0, 13.0, 2.0,
			-6.0, 0.45, 0.25, 0.75)

	mock.ExpectQuery(`SELECT .* FROM player_game_logs`).
		WithArgs(23, "2024-25").
		WillReturnRows(rows)

	logs, err := s.GetGameLogs(context.Background(), 23, "2024-25")
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, "g2", logs[0].GameID)
	assert.Equal(t, 27.0, logs[0].Pts)
	assert.Equal(t, 44.0, logs[0].Pra)
	assert.True(t, logs[0].NationalTV)
	assert.Equal(t, "A", logs[1].HomeAway)
	assert.Equal(t, -4.0, logs[1].Margin)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGameLogs_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM player_game_logs`).
		WillReturnError(errors.New("connection refused"))

	_, err := s.GetGameLogs(context.Background(), 23, "2024-25")
	assert.ErrorContains(t, err, "query game logs")
}

func TestGetTeammatesOut(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"game_id", "player_id"}).
		AddRow("g1", 3).
		AddRow("g1", 7).
		AddRow("g3", 3)

	mock.ExpectQuery(`SELECT game_id, player_id FROM game_availability`).
		WithArgs(10, sqlmock.AnyArg()).
		WillReturnRows(rows)

	out, err := s.GetTeammatesOut(context.Background(), 10, []string{"g1", "g2", "g3"})
	require.NoError(t, err)

	assert.True(t, out.IsOut("g1", 3))
	assert.True(t, out.IsOut("g1", 7))
	assert.True(t, out.IsOut("g3", 3))
	assert.False(t, out.IsOut("g2", 3))
	assert.False(t, out.IsOut("g3", 7))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTeammatesOut_NoGamesSkipsQuery(t *testing.T) {
	s, mock := newMockStore(t)

	out, err := s.GetTeammatesOut(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoster(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"player_id", "player_name", "team_id", "position"}).
		AddRow(3, "Anthony Davis", 10, "F").
		AddRow(23, "LeBron James", 10, "")

	mock.ExpectQuery(`FROM players`).WithArgs(10).WillReturnRows(rows)

	roster, err := s.GetRoster(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Anthony Davis", roster[0].PlayerName)
	assert.Equal(t, 23, roster[1].PlayerID)
}

func TestGetBookOdds_MarksSharpBooks(t *testing.T) {
	s, mock := newMockStore(t, WithSharpBooks(map[string]bool{"pinnacle": true}))

	rows := sqlmock.NewRows([]string{"book_key", "point", "price", "link", "market_key"}).
		AddRow("draftkings", 25.5, -110, "https://dk.example/bet", "player_points").
		AddRow("fanduel", 25.5, 105, nil, "player_points").
		AddRow("pinnacle", 25.5, -102, "", "player_points")

	mock.ExpectQuery(`SELECT DISTINCT ON \(book_key, point\) book_key, point, price, link, market_key FROM odds_raw`).
		WithArgs("evt1", sqlmock.AnyArg(), "LeBron James", "over", 25.5, "player_points").
		WillReturnRows(rows)

	odds, err := s.GetBookOdds(context.Background(), contracts.OddsQuery{
		EventID:    "evt1",
		Market:     models.MarketPoints,
		PlayerName: "LeBron James",
		Line:       floatPtr(25.5),
	})
	require.NoError(t, err)
	require.Len(t, odds, 3)

	require.NotNil(t, odds[0].URL)
	assert.Equal(t, "https://dk.example/bet", *odds[0].URL)
	assert.Nil(t, odds[1].URL)
	assert.Nil(t, odds[2].URL)
	assert.False(t, odds[0].IsSharp)
	assert.True(t, odds[2].IsSharp)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookOdds_OneQuotePerBookPreferringMain(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"book_key", "point", "price", "link", "market_key"}).
		AddRow("draftkings", 25.5, -105, nil, "player_points_alternate").
		AddRow("draftkings", 25.5, -115, nil, "player_points").
		AddRow("fanduel", 25.5, -110, nil, "player_points").
		AddRow("fanduel", 25.5, 100, nil, "player_points_alternate")

	mock.ExpectQuery(`FROM odds_raw`).
		WithArgs("evt1", sqlmock.AnyArg(), "LeBron James", "over", 25.5, "player_points").
		WillReturnRows(rows)

	odds, err := s.GetBookOdds(context.Background(), contracts.OddsQuery{
		EventID:    "evt1",
		Market:     models.MarketPoints,
		PlayerName: "LeBron James",
		Line:       floatPtr(25.5),
	})
	require.NoError(t, err)

	assert.Equal(t, []models.BookOdds{
		{Book: "draftkings", Price: -115},
		{Book: "fanduel", Price: -110},
	}, odds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAlternateLines_GroupsByLineAndSide(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"point", "side", "book_key", "price", "link", "market_key"}).
		AddRow(24.5, "over", "draftkings", -150, nil, "player_points_alternate").
		AddRow(24.5, "over", "fanduel", -145, nil, "player_points_alternate").
		AddRow(24.5, "under", "fanduel", 120, nil, "player_points_alternate").
		AddRow(26.5, "over", "draftkings", 110, nil, "player_points")

	mock.ExpectQuery(`SELECT DISTINCT ON \(point, LOWER\(outcome_name\), book_key\) point, LOWER\(outcome_name\), book_key, price, link, market_key FROM odds_raw`).
		WithArgs("evt1", sqlmock.AnyArg(), "LeBron James", "", "player_points").
		WillReturnRows(rows)

	lines, err := s.GetAlternateLines(context.Background(), contracts.OddsQuery{
		EventID:    "evt1",
		Market:     models.MarketPoints,
		PlayerName: "LeBron James",
	})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, 24.5, lines[0].Line)
	assert.Equal(t, "over", lines[0].Side)
	assert.Len(t, lines[0].Odds, 2)
	assert.Equal(t, "under", lines[1].Side)
	assert.Equal(t, 26.5, lines[2].Line)
	assert.Len(t, lines[2].Odds, 1)
}

func TestGetAlternateLines_OneQuotePerBookPreferringMain(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"point", "side", "book_key", "price", "link", "market_key"}).
		AddRow(24.5, "over", "draftkings", -120, nil, "player_points_alternate").
		AddRow(24.5, "over", "draftkings", -110, nil, "player_points").
		AddRow(24.5, "over", "fanduel", -115, nil, "player_points").
		AddRow(28.5, "over", "draftkings", 150, nil, "player_points_alternate").
		AddRow(28.5, "over", "draftkings", 160, nil, "player_points_alternate")

	mock.ExpectQuery(`FROM odds_raw`).
		WithArgs("evt1", sqlmock.AnyArg(), "LeBron James", "over", "player_points").
		WillReturnRows(rows)

	lines, err := s.GetAlternateLines(context.Background(), contracts.OddsQuery{
		EventID:    "evt1",
		Market:     models.MarketPoints,
		PlayerName: "LeBron James",
		Side:       "Over",
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, []models.BookOdds{
		{Book: "draftkings", Price: -110},
		{Book: "fanduel", Price: -115},
	}, lines[0].Odds)
	assert.Equal(t, []models.BookOdds{{Book: "draftkings", Price: 150}}, lines[1].Odds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func testOdds(now time.Time) []models.RawOdds {
	return []models.RawOdds{
		{
			EventID: "evt1", SportKey: "basketball_nba", MarketKey: "player_points",
			BookKey: "fanduel", OutcomeName: "Over", PlayerName: "LeBron James",
			Price: -115, Point: floatPtr(25.5), VendorLastUpdate: now, ReceivedAt: now,
		},
		{
			EventID: "evt1", SportKey: "basketball_nba", MarketKey: "player_points",
			BookKey: "fanduel", OutcomeName: "Under", PlayerName: "LeBron James",
			Price: -105, Point: floatPtr(25.5), VendorLastUpdate: now, ReceivedAt: now,
		},
	}
}

func TestUpsertOdds_WritesAndPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s, mock := newMockStore(t, WithPublisher(client))
	now := time.Now().UTC()
	events := []models.Event{{EventID: "evt1", SportKey: "basketball_nba", HomeTeam: "LAL", AwayTeam: "BOS", CommenceTime: now.Add(time.Hour)}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO events`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO books`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE odds_raw`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO odds_raw`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := s.UpsertOdds(context.Background(), events, testOdds(now))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	n, err := client.XLen(context.Background(), "odds.props.basketball_nba").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUpsertOdds_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO books`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE odds_raw`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := s.UpsertOdds(context.Background(), nil, testOdds(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update previous odds")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOdds_EmptyIsNoop(t *testing.T) {
	s, mock := newMockStore(t)

	require.NoError(t, s.UpsertOdds(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Draftkings", displayName("draftkings"))
	assert.Equal(t, "", displayName(""))
}

func TestUpdateEventStatuses(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("SET event_status = 'live'").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("SET event_status = 'completed'").WillReturnResult(sqlmock.NewResult(0, 1))

	counts, err := s.UpdateEventStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EventStatusCounts{Live: 2, Completed: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEventStatuses_Error(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("SET event_status = 'live'").WillReturnError(errors.New("connection reset"))

	_, err := s.UpdateEventStatuses(context.Background())
	assert.ErrorContains(t, err, "update to live")
	assert.NoError(t, mock.ExpectationsWereMet())
}
