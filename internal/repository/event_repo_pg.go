package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

const eventColumns = `id, name, date, artist_id, venue, ticket_types, version, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		e                    domain.Event
		venueRaw, ticketsRaw []byte
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Date, &e.ArtistID, &venueRaw, &ticketsRaw, &e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(venueRaw, &e.Venue); err != nil {
		return nil, fmt.Errorf("decode venue: %w", err)
	}
	if err := json.Unmarshal(ticketsRaw, &e.TicketTypes); err != nil {
		return nil, fmt.Errorf("decode ticket types: %w", err)
	}
	return &e, nil
}

func (r *PGEventRepository) queryEvents(ctx context.Context, sql string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *PGEventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.ArtistID != "" {
		args = append(args, filter.ArtistID)
		where = append(where, fmt.Sprintf("artist_id = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		where = append(where, fmt.Sprintf("lower(venue_city) = lower($%d)", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	q := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date`
	return r.queryEvents(ctx, q, args...)
}

func (r *PGEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
	if err != nil {
		return nil, pgError(err)
	}
	return e, nil
}

func (r *PGEventRepository) Create(ctx context.Context, e *domain.Event) error {
	venue, err := json.Marshal(e.Venue)
	if err != nil {
		return err
	}
	tickets, err := json.Marshal(e.TicketTypes)
	if err != nil {
		return err
	}
	if e.Version == 0 {
		e.Version = 1
	}
	err = r.db.QueryRow(ctx, `INSERT INTO events (id, name, date, artist_id, venue, venue_city, venue_lng, venue_lat, ticket_types, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		e.ID, e.Name, e.Date, e.ArtistID, venue, e.Venue.City, e.Venue.Location.Lng(), e.Venue.Location.Lat(), tickets, e.Version).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	return pgError(err)
}

func (r *PGEventRepository) UpdateDetails(ctx context.Context, e *domain.Event) error {
	venue, err := json.Marshal(e.Venue)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `UPDATE events
		SET name=$1, date=$2, artist_id=$3, venue=$4, venue_city=$5, venue_lng=$6, venue_lat=$7, version=version+1, updated_at=now()
		WHERE id=$8 AND version=$9
		RETURNING version, updated_at`,
		e.Name, e.Date, e.ArtistID, venue, e.Venue.City, e.Venue.Location.Lng(), e.Venue.Location.Lat(), e.ID, e.Version).
		Scan(&e.Version, &e.UpdatedAt)
	if err != nil {
		return r.missOrConflict(ctx, e.ID, err)
	}
	return nil
}

func (r *PGEventRepository) UpdateInventory(ctx context.Context, id string, expectedVersion int64, categories []domain.TicketCategory) (int64, error) {
	tickets, err := json.Marshal(categories)
	if err != nil {
		return 0, err
	}
	var version int64
	err = r.db.QueryRow(ctx, `UPDATE events SET ticket_types=$1, version=version+1, updated_at=now()
		WHERE id=$2 AND version=$3 RETURNING version`, tickets, id, expectedVersion).Scan(&version)
	if err != nil {
		return 0, r.missOrConflict(ctx, id, err)
	}
	return version, nil
}

// missOrConflict tells a vanished row apart from a stale version after a
// conditional update matched nothing.
func (r *PGEventRepository) missOrConflict(ctx context.Context, id string, err error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	var exists bool
	if qerr := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id=$1)`, id).Scan(&exists); qerr != nil {
		return qerr
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *PGEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGEventRepository) Nearby(ctx context.Context, lng, lat, maxMeters float64) ([]domain.Event, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM (
			SELECT *, 6371000 * acos(least(1.0,
				cos(radians($2)) * cos(radians(venue_lat)) * cos(radians(venue_lng) - radians($1)) +
				sin(radians($2)) * sin(radians(venue_lat)))) AS distance
			FROM events
		) e
		WHERE distance <= $3
		ORDER BY distance`, lng, lat, maxMeters)
}

var _ EventRepository = (*PGEventRepository)(nil)
