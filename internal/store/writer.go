package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const streamKeyFormat = "odds.props.%s" // odds.props.basketball_nba

// StreamMessage is published for every prop price written
type StreamMessage struct {
	EventID          string    `json:"event_id"`
	SportKey         string    `json:"sport_key"`
	MarketKey        string    `json:"market_key"`
	BookKey          string    `json:"book_key"`
	OutcomeName      string    `json:"outcome_name"`
	PlayerName       string    `json:"player_name"`
	Price            int       `json:"price"`
	Point            *float64  `json:"point,omitempty"`
	VendorLastUpdate time.Time `json:"vendor_last_update"`
	ReceivedAt       time.Time `json:"received_at"`
}

// UpsertOdds writes events and a fresh odds snapshot in one transaction.
// Previous rows for the same outcome lose is_latest before the new rows land.
func (s *Store) UpsertOdds(ctx context.Context, events []models.Event, odds []models.RawOdds) error {
	if len(events) == 0 && len(odds) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(events) > 0 {
		if err := upsertEvents(ctx, tx, events); err != nil {
			return fmt.Errorf("upsert events: %w", err)
		}
	}

	if len(odds) > 0 {
		if err := upsertBooks(ctx, tx, odds); err != nil {
			return fmt.Errorf("upsert books: %w", err)
		}
		if err := updatePreviousOdds(ctx, tx, odds); err != nil {
			return fmt.Errorf("update previous odds: %w", err)
		}
		if err := insertNewOdds(ctx, tx, odds); err != nil {
			return fmt.Errorf("insert new odds: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// The database is the source of truth; a failed publish is only logged
	if err := s.publish(ctx, odds); err != nil {
		s.log.WithError(err).Warn("publish odds to stream failed")
	}

	return nil
}

func upsertEvents(ctx context.Context, tx *sql.Tx, events []models.Event) error {
	query := `
		INSERT INTO events (
			event_id, sport_key, home_team, away_team, commence_time, event_status
		)
		SELECT UNNEST($1::text[]), UNNEST($2::text[]), UNNEST($3::text[]),
		       UNNEST($4::text[]), UNNEST($5::timestamptz[]), UNNEST($6::text[])
		ON CONFLICT (event_id)
		DO UPDATE SET
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			commence_time = EXCLUDED.commence_time,
			event_status = EXCLUDED.event_status
	`

	eventIDs := make([]string, len(events))
	sportKeys := make([]string, len(events))
	homeTeams := make([]string, len(events))
	awayTeams := make([]string, len(events))
	commenceTimes := make([]time.Time, len(events))
	statuses := make([]string, len(events))

	for i, evt := range events {
		eventIDs[i] = evt.EventID
		sportKeys[i] = evt.SportKey
		homeTeams[i] = evt.HomeTeam
		awayTeams[i] = evt.AwayTeam
		commenceTimes[i] = evt.CommenceTime
		statuses[i] = evt.EventStatus
		if statuses[i] == "" {
			statuses[i] = "upcoming"
		}
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(sportKeys), pq.Array(homeTeams),
		pq.Array(awayTeams), pq.Array(commenceTimes), pq.Array(statuses),
	)
	return err
}

// upsertBooks registers unseen books with minimal info; seed data supplies the rest
func upsertBooks(ctx context.Context, tx *sql.Tx, odds []models.RawOdds) error {
	seen := make(map[string]bool)
	var bookKeys, displayNames []string
	for _, odd := range odds {
		if seen[odd.BookKey] {
			continue
		}
		seen[odd.BookKey] = true
		bookKeys = append(bookKeys, odd.BookKey)
	}
	sort.Strings(bookKeys)
	for _, key := range bookKeys {
		displayNames = append(displayNames, displayName(key))
	}

	query := `
		INSERT INTO books (book_key, display_name, book_type, active)
		SELECT UNNEST($1::text[]), UNNEST($2::text[]), 'soft', true
		ON CONFLICT (book_key) DO NOTHING
	`

	_, err := tx.ExecContext(ctx, query, pq.Array(bookKeys), pq.Array(displayNames))
	return err
}

func updatePreviousOdds(ctx context.Context, tx *sql.Tx, odds []models.RawOdds) error {
	query := `
		UPDATE odds_raw
		SET is_latest = false
		WHERE is_latest = true
		  AND (event_id, market_key, book_key, outcome_name, player_name, point) IN (
			SELECT UNNEST($1::text[]), UNNEST($2::text[]), UNNEST($3::text[]),
			       UNNEST($4::text[]), UNNEST($5::text[]), UNNEST($6::decimal[])
		  )
	`

	eventIDs := make([]string, len(odds))
	marketKeys := make([]string, len(odds))
	bookKeys := make([]string, len(odds))
	outcomeNames := make([]string, len(odds))
	playerNames := make([]string, len(odds))
	points := make([]*float64, len(odds))

	for i, odd := range odds {
		eventIDs[i] = odd.EventID
		marketKeys[i] = odd.MarketKey
		bookKeys[i] = odd.BookKey
		outcomeNames[i] = odd.OutcomeName
		playerNames[i] = odd.PlayerName
		points[i] = odd.Point
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(marketKeys), pq.Array(bookKeys),
		pq.Array(outcomeNames), pq.Array(playerNames), pq.Array(points),
	)
	return err
}

func insertNewOdds(ctx context.Context, tx *sql.Tx, odds []models.RawOdds) error {
	query := `
		INSERT INTO odds_raw (
			event_id, sport_key, market_key, book_key, outcome_name, player_name,
			price, point, link, vendor_last_update, received_at, is_latest
		)
		SELECT *, true FROM UNNEST(
			$1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[],
			$7::int[], $8::decimal[], $9::text[], $10::timestamptz[], $11::timestamptz[]
		)
	`

	eventIDs := make([]string, len(odds))
	sportKeys := make([]string, len(odds))
	marketKeys := make([]string, len(odds))
	bookKeys := make([]string, len(odds))
	outcomeNames := make([]string, len(odds))
	playerNames := make([]string, len(odds))
	prices := make([]int, len(odds))
	points := make([]*float64, len(odds))
	links := make([]*string, len(odds))
	vendorUpdates := make([]time.Time, len(odds))
	receivedAts := make([]time.Time, len(odds))

	for i, odd := range odds {
		eventIDs[i] = odd.EventID
		sportKeys[i] = odd.SportKey
		marketKeys[i] = odd.MarketKey
		bookKeys[i] = odd.BookKey
		outcomeNames[i] = odd.OutcomeName
		playerNames[i] = odd.PlayerName
		prices[i] = odd.Price
		points[i] = odd.Point
		links[i] = odd.Link
		vendorUpdates[i] = odd.VendorLastUpdate
		receivedAts[i] = odd.ReceivedAt
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(sportKeys), pq.Array(marketKeys), pq.Array(bookKeys),
		pq.Array(outcomeNames), pq.Array(playerNames), pq.Array(prices), pq.Array(points),
		pq.Array(links), pq.Array(vendorUpdates), pq.Array(receivedAts),
	)
	return err
}

// publish appends written odds to one stream per sport
func (s *Store) publish(ctx context.Context, odds []models.RawOdds) error {
	if s.redis == nil || len(odds) == 0 {
		return nil
	}

	pipe := s.redis.Pipeline()
	for _, odd := range odds {
		msg, err := json.Marshal(StreamMessage{
			EventID:          odd.EventID,
			SportKey:         odd.SportKey,
			MarketKey:        odd.MarketKey,
			BookKey:          odd.BookKey,
			OutcomeName:      odd.OutcomeName,
			PlayerName:       odd.PlayerName,
			Price:            odd.Price,
			Point:            odd.Point,
			VendorLastUpdate: odd.VendorLastUpdate,
			ReceivedAt:       odd.ReceivedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal stream message: %w", err)
		}

		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: fmt.Sprintf(streamKeyFormat, odd.SportKey),
			Values: map[string]interface{}{"data": msg},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec for stream: %w", err)
	}
	return nil
}

// displayName turns a vendor book key into a readable name: "draftkings" -> "Draftkings"
func displayName(bookKey string) string {
	if bookKey == "" {
		return bookKey
	}
	return strings.ToUpper(bookKey[:1]) + bookKey[1:]
}
