package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/XavierBriggs/Athena/internal/drilldown"
	"github.com/XavierBriggs/Athena/internal/prefs"
	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/XavierBriggs/Athena/sports/basketball_nba"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSources implements every source the drilldown service reads
type MockSources struct {
	logs        map[int][]models.GameLogEntry
	roster      []models.RosterEntry
	bookOdds    []models.BookOdds
	alternates  []models.AlternateLine
	shouldError bool
}

func (m *MockSources) GetGameLogs(ctx context.Context, playerID int, season string) ([]models.GameLogEntry, error) {
	if m.shouldError {
		return nil, context.DeadlineExceeded
	}
	return m.logs[playerID], nil
}

func (m *MockSources) GetTeammatesOut(ctx context.Context, teamID int, gameIDs []string) (models.TeammatesOut, error) {
	return models.TeammatesOut{}, nil
}

func (m *MockSources) GetRoster(ctx context.Context, teamID int) ([]models.RosterEntry, error) {
	return m.roster, nil
}

func (m *MockSources) GetBookOdds(ctx context.Context, q contracts.OddsQuery) ([]models.BookOdds, error) {
	if m.shouldError {
		return nil, context.DeadlineExceeded
	}
	return m.bookOdds, nil
}

func (m *MockSources) GetAlternateLines(ctx context.Context, q contracts.OddsQuery) ([]models.AlternateLine, error) {
	return m.alternates, nil
}

func entry(id string, playerID int, ha string, pts, reb float64) models.GameLogEntry {
	return models.GameLogEntry{
		GameID: id, PlayerID: playerID, TeamID: 10, OpponentAbbr: "BOS",
		HomeAway: ha, Result: models.Win, Minutes: 30, Pts: pts, Reb: reb,
	}
}

func newMockSources() *MockSources {
	return &MockSources{
		logs: map[int][]models.GameLogEntry{
			23: {
				entry("g4", 23, "H", 30, 8),
				entry("g3", 23, "A", 20, 7),
				entry("g2", 23, "H", 26, 9),
				entry("g1", 23, "A", 18, 5),
			},
			3: {
				entry("g4", 3, "H", 10, 12),
				entry("g3", 3, "A", 10, 6),
				entry("g2", 3, "H", 10, 10),
				entry("g1", 3, "A", 10, 8),
			},
		},
		roster: []models.RosterEntry{
			{PlayerID: 3, PlayerName: "Anthony Davis", TeamID: 10},
			{PlayerID: 23, PlayerName: "LeBron James", TeamID: 10},
		},
		bookOdds: []models.BookOdds{
			{Book: "draftkings", Price: -110},
			{Book: "fanduel", Price: 100},
			{Book: "betmgm", Price: 100},
		},
		alternates: []models.AlternateLine{
			{Line: 27.5, Side: "over", Odds: []models.BookOdds{{Book: "fanduel", Price: 180}}},
			{Line: 19.5, Side: "over", Odds: []models.BookOdds{{Book: "fanduel", Price: -300}}},
		},
	}
}

type testServer struct {
	router  http.Handler
	sources *MockSources
	redis   *redis.Client
}

func newTestServer(t *testing.T, checks map[string]CheckFunc) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sources := newMockSources()
	logger, _ := test.NewNullLogger()
	svc := drilldown.NewService(sources, sources, sources, basketball_nba.NewModule(), "2024-25", logger.WithField("component", "test"))
	h := NewHandler(svc, prefs.NewRedisStore(client, 0), prefs.NewStreamPublisher(client), checks, logger.WithField("component", "test"))

	return &testServer{
		router:  NewRouter(h, logger, []string{"http://localhost:3000"}),
		sources: sources,
		redis:   client,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, map[string]CheckFunc{
		"redis": func(ctx context.Context) error { return nil },
	})
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]interface{}](t, rec)["status"])

	s = newTestServer(t, map[string]CheckFunc{
		"alexandria": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	rec = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "alexandria unhealthy", decode[ErrorResponse](t, rec).Message)
}

func TestGetDrilldown(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/players/23/drilldown?market=player_points&line=24.5&market=player_rebounds&line=7.5&quick=home", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[drilldown.DrilldownResponse](t, rec)
	assert.Equal(t, 4, resp.SeasonGames)
	assert.Len(t, resp.Games, 2)
	require.Len(t, resp.Markets, 2)

	pts := resp.Markets[0]
	assert.Equal(t, 2, pts.HitRate.TimesHit)
	assert.Equal(t, 100, *pts.HitRate.Pct)

	reb := resp.Markets[1]
	assert.Equal(t, models.MarketRebounds, reb.Market)
	assert.Equal(t, 2, reb.HitRate.TimesHit)
}

func TestGetDrilldown_CustomLine(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/players/23/drilldown?market=player_points&line=24.5&custom_line=19", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[drilldown.DrilldownResponse](t, rec)
	assert.Equal(t, 19.0, *resp.Markets[0].Line)
	assert.Equal(t, 3, resp.Markets[0].HitRate.TimesHit)

	// A rejected custom line keeps the quoted one
	rec = s.do(t, http.MethodGet, "/api/v1/players/23/drilldown?market=player_points&line=24.5&custom_line=-3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[drilldown.DrilldownResponse](t, rec)
	assert.Equal(t, 24.5, *resp.Markets[0].Line)
}

func TestGetDrilldown_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		path string
	}{
		{"bad player id", "/api/v1/players/abc/drilldown?market=player_points"},
		{"missing market", "/api/v1/players/23/drilldown"},
		{"unknown market", "/api/v1/players/23/drilldown?market=player_dunks"},
		{"bad line", "/api/v1/players/23/drilldown?market=player_points&line=lots"},
		{"nan line", "/api/v1/players/23/drilldown?market=player_points&line=NaN"},
		{"infinite line", "/api/v1/players/23/drilldown?market=player_points&line=Inf"},
		{"with and without same player", "/api/v1/players/23/drilldown?market=player_points&with=3&without=3"},
		{"bad window", "/api/v1/players/23/drilldown?market=player_points&window=7"},
		{"bad quick", "/api/v1/players/23/drilldown?market=player_points&quick=overtime"},
		{"bad team", "/api/v1/players/23/drilldown?market=player_points&team_id=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			errResp := decode[ErrorResponse](t, rec)
			assert.Equal(t, "Bad Request", errResp.Error)
			assert.NotEmpty(t, errResp.Message)
		})
	}
}

func TestGetDrilldown_FetchFailure(t *testing.T) {
	s := newTestServer(t, nil)
	s.sources.shouldError = true

	rec := s.do(t, http.MethodGet, "/api/v1/players/23/drilldown?market=player_points", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "failed to load", decode[ErrorResponse](t, rec).Message)
}

func TestGetDrilldown_NoGames(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/players/99/drilldown?market=player_points&line=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[drilldown.DrilldownResponse](t, rec)
	assert.Empty(t, resp.Games)
	assert.Nil(t, resp.Markets[0].HitRate.Pct)
}

func TestGetAlternateLines(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/players/23/alternate-lines?market=player_points&event_id=evt1&player=LeBron+James", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[drilldown.AlternateLinesResponse](t, rec)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, 19.5, resp.Lines[0].Line)
	assert.Equal(t, 3, resp.Lines[0].HitRate.TimesHit)
	assert.Equal(t, 27.5, resp.Lines[1].Line)
	assert.Equal(t, 1, resp.Lines[1].HitRate.TimesHit)
	assert.Equal(t, 180, resp.Lines[1].Best.Price)

	rec = s.do(t, http.MethodGet, "/api/v1/players/23/alternate-lines?market=player_points", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCorrelations(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/players/23/correlations?market=player_points&line=24.5&teammate_market=player_rebounds", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[drilldown.CorrelationsResponse](t, rec)
	require.Len(t, resp.Teammates, 1)
	ad := resp.Teammates[0]
	assert.Equal(t, 3, ad.TeammateID)
	assert.InDelta(t, 11.0, *ad.AvgWhenHit, 1e-9)
	assert.InDelta(t, 7.0, *ad.AvgWhenMiss, 1e-9)
	assert.InDelta(t, 4.0, *ad.Boost, 1e-9)

	rec = s.do(t, http.MethodGet, "/api/v1/players/23/correlations?market=player_points&teammate_market=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCorrelations_NonFiniteLines(t *testing.T) {
	s := newTestServer(t, nil)

	for _, q := range []string{"line=Inf", "line=-Inf", "line=NaN", "teammate_line=Inf"} {
		t.Run(q, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/v1/players/23/correlations?market=player_points&"+q, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Bad Request", decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestGetBestOdds(t *testing.T) {
	s := newTestServer(t, nil)

	q := url.Values{"event_id": {"evt1"}, "market": {"player_points"}, "player": {"LeBron James"}, "line": {"25.5"}}
	rec := s.do(t, http.MethodGet, "/api/v1/odds/best?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[drilldown.BestOddsResponse](t, rec)
	require.NotNil(t, resp.Best)
	assert.Equal(t, 100, resp.Best.Price)
	assert.Equal(t, "fanduel", resp.Best.Primary.Book)
	assert.Len(t, resp.Best.Books, 2)
	assert.Equal(t, "draftkings", resp.Odds[2].Book)

	rec = s.do(t, http.MethodGet, "/api/v1/odds/best?market=player_dunks&event_id=evt1&player=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	noLine := url.Values{"event_id": {"evt1"}, "market": {"player_points"}, "player": {"LeBron James"}}
	rec = s.do(t, http.MethodGet, "/api/v1/odds/best?"+noLine.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "line is required", decode[ErrorResponse](t, rec).Message)

	s.sources.shouldError = true
	rec = s.do(t, http.MethodGet, "/api/v1/odds/best?"+q.Encode(), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/users/u1/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.Preferences](t, rec).StarredPlayers)

	rec = s.do(t, http.MethodPost, "/api/v1/users/u1/stars/23", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{23}, decode[models.Preferences](t, rec).StarredPlayers)

	rec = s.do(t, http.MethodPost, "/api/v1/users/u1/filters", []byte(`{"quickFilters":["home","away"],"gameWindow":10}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[models.Preferences](t, rec)
	assert.Equal(t, []models.QuickFilter{models.QuickAway}, p.Filters.QuickFilters)
	assert.Equal(t, 10, p.Filters.GameWindow)

	// Persisted across requests
	rec = s.do(t, http.MethodGet, "/api/v1/users/u1/preferences", nil)
	p = decode[models.Preferences](t, rec)
	assert.Equal(t, []int{23}, p.StarredPlayers)
	assert.Equal(t, 10, p.Filters.GameWindow)

	n, err := s.redis.XLen(context.Background(), prefs.FilterStreamKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPreferences_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/users/u1/filters", []byte(`{"gameWindow":7}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/users/u1/filters", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/users/u1/stars/zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
