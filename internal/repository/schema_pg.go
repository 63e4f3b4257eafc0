package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS artists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		bio TEXT NOT NULL DEFAULT '',
		genres TEXT[] NOT NULL DEFAULT '{}',
		discography JSONB NOT NULL DEFAULT '[]',
		social_media JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS artists_genres_idx ON artists USING GIN (genres)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		artist_id TEXT NOT NULL,
		venue JSONB NOT NULL,
		venue_city TEXT NOT NULL DEFAULT '',
		venue_lng DOUBLE PRECISION NOT NULL DEFAULT 0,
		venue_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		ticket_types JSONB NOT NULL DEFAULT '[]',
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS events_date_idx ON events (date)`,
	`CREATE INDEX IF NOT EXISTS events_artist_idx ON events (artist_id)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		event_id TEXT NOT NULL,
		tickets JSONB NOT NULL,
		total_amount_cents BIGINT NOT NULL,
		payment_status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id)`,
	`CREATE INDEX IF NOT EXISTS bookings_event_idx ON bookings (event_id)`,
	`CREATE INDEX IF NOT EXISTS bookings_created_idx ON bookings (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS news (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL,
		artist_id TEXT NOT NULL,
		publish_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		featured_image TEXT NOT NULL DEFAULT '',
		share_twitter INT NOT NULL DEFAULT 0,
		share_facebook INT NOT NULL DEFAULT 0,
		share_instagram INT NOT NULL DEFAULT 0,
		tags TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS news_artist_idx ON news (artist_id)`,
	`CREATE INDEX IF NOT EXISTS news_category_idx ON news (category)`,
	`CREATE INDEX IF NOT EXISTS news_publish_idx ON news (publish_date DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		preferences JSONB NOT NULL DEFAULT '{}',
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// MigratePostgres creates the tables and indexes if they do not exist.
func MigratePostgres(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range pgSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func NewPostgresSet(db *pgxpool.Pool) *Set {
	return &Set{
		Events:   NewEventRepository(db),
		Bookings: NewBookingRepository(db),
		Artists:  NewArtistRepository(db),
		News:     NewNewsRepository(db),
		Users:    NewUserRepository(db),
	}
}

func pgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
