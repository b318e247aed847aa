package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/lib/pq"
)

// GetBookOdds returns every book's latest price for one player/market/side,
// optionally pinned to a line, in book order. A book quoting the same line
// under both the main and alternate keys is returned once, with the main price.
func (s *Store) GetBookOdds(ctx context.Context, q contracts.OddsQuery) ([]models.BookOdds, error) {
	query := `
		SELECT DISTINCT ON (book_key, point) book_key, point, price, link, market_key
		FROM odds_raw
		WHERE is_latest = true
		  AND event_id = $1
		  AND market_key = ANY($2::text[])
		  AND player_name = $3
		  AND LOWER(outcome_name) = $4
		  AND ($5::decimal IS NULL OR point = $5::decimal)
		ORDER BY book_key ASC, point ASC, (market_key = $6) DESC
	`

	rows, err := s.db.QueryContext(ctx, query,
		q.EventID, pq.Array(marketKeys(q.Market)), q.PlayerName, side(q.Side), q.Line, string(q.Market),
	)
	if err != nil {
		return nil, fmt.Errorf("query book odds: %w", err)
	}
	defer rows.Close()

	books := newBookSet()
	for rows.Next() {
		var (
			book   string
			point  sql.NullFloat64
			price  int
			link   sql.NullString
			market string
		)
		if err := rows.Scan(&book, &point, &price, &link, &market); err != nil {
			return nil, fmt.Errorf("scan book odds: %w", err)
		}
		books.add(bookKey(book, point), market == string(q.Market), models.BookOdds{
			Book:    book,
			Price:   price,
			URL:     nullString(link),
			IsSharp: s.isSharp(book),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book odds: %w", err)
	}

	return books.odds, nil
}

// GetAlternateLines returns every quoted line for a player and market, grouped
// by (line, side) and ordered by line ascending. An empty Side returns both sides.
// Each book appears once per group, with its main-market price when it has one.
func (s *Store) GetAlternateLines(ctx context.Context, q contracts.OddsQuery) ([]models.AlternateLine, error) {
	query := `
		SELECT DISTINCT ON (point, LOWER(outcome_name), book_key)
		       point, LOWER(outcome_name), book_key, price, link, market_key
		FROM odds_raw
		WHERE is_latest = true
		  AND event_id = $1
		  AND market_key = ANY($2::text[])
		  AND player_name = $3
		  AND point IS NOT NULL
		  AND ($4 = '' OR LOWER(outcome_name) = $4)
		ORDER BY point ASC, LOWER(outcome_name) ASC, book_key ASC, (market_key = $5) DESC
	`

	rows, err := s.db.QueryContext(ctx, query,
		q.EventID, pq.Array(marketKeys(q.Market)), q.PlayerName, strings.ToLower(q.Side), string(q.Market),
	)
	if err != nil {
		return nil, fmt.Errorf("query alternate lines: %w", err)
	}
	defer rows.Close()

	var (
		lines []models.AlternateLine
		books *bookSet
	)
	for rows.Next() {
		var (
			point  float64
			sd     string
			book   string
			price  int
			link   sql.NullString
			market string
		)
		if err := rows.Scan(&point, &sd, &book, &price, &link, &market); err != nil {
			return nil, fmt.Errorf("scan alternate line: %w", err)
		}

		// Rows arrive ordered, so a new (line, side) pair starts a new group
		if n := len(lines); n == 0 || lines[n-1].Line != point || lines[n-1].Side != sd {
			if books != nil {
				lines[n-1].Odds = books.odds
			}
			lines = append(lines, models.AlternateLine{Line: point, Side: sd})
			books = newBookSet()
		}
		books.add(book, market == string(q.Market), models.BookOdds{
			Book:    book,
			Price:   price,
			URL:     nullString(link),
			IsSharp: s.isSharp(book),
		})
	}
	if books != nil {
		lines[len(lines)-1].Odds = books.odds
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alternate lines: %w", err)
	}

	return lines, nil
}

// bookSet keeps one quote per key in arrival order. A main-market quote
// replaces an alternate one for the same key, never the other way round.
type bookSet struct {
	index map[string]int
	main  []bool
	odds  []models.BookOdds
}

func newBookSet() *bookSet {
	return &bookSet{index: make(map[string]int)}
}

func (b *bookSet) add(key string, main bool, o models.BookOdds) {
	if i, ok := b.index[key]; ok {
		if main && !b.main[i] {
			b.odds[i] = o
			b.main[i] = true
		}
		return
	}
	b.index[key] = len(b.odds)
	b.main = append(b.main, main)
	b.odds = append(b.odds, o)
}

func bookKey(book string, point sql.NullFloat64) string {
	if !point.Valid {
		return book
	}
	return book + "@" + strconv.FormatFloat(point.Float64, 'f', -1, 64)
}

// marketKeys returns the vendor keys a market is stored under
func marketKeys(m models.Market) []string {
	return []string{string(m), string(m) + "_alternate"}
}

func side(s string) string {
	if s == "" {
		return "over"
	}
	return strings.ToLower(s)
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	v := ns.String
	return &v
}
