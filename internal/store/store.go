// Package store reads and writes Alexandria, the Postgres database behind
// Athena: materialized game logs, teammate availability, rosters and the
// latest prop odds snapshot per book.
package store

import (
	"database/sql"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Store implements the game log, injury and odds sources on top of Postgres.
// The Redis client is optional and only used to publish written odds.
type Store struct {
	db         *sql.DB
	redis      *redis.Client
	sharpBooks map[string]bool
	log        *logrus.Entry
}

// Option configures a Store
type Option func(*Store)

// WithPublisher publishes every odds write to the sport's Redis stream
func WithPublisher(client *redis.Client) Option {
	return func(s *Store) {
		s.redis = client
	}
}

// WithSharpBooks marks odds from these books as sharp reference prices
func WithSharpBooks(books map[string]bool) Option {
	return func(s *Store) {
		s.sharpBooks = books
	}
}

// WithLogger sets the store's log entry
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Store) {
		s.log = entry
	}
}

// New creates a store over an open Alexandria connection
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		sharpBooks: map[string]bool{},
		log:        logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) isSharp(book string) bool {
	return s.sharpBooks[strings.ToLower(book)]
}
