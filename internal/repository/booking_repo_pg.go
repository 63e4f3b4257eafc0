package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, email, event_id, tickets, total_amount_cents, payment_status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b          domain.Booking
		ticketsRaw []byte
	)
	if err := row.Scan(&b.ID, &b.PurchaserID, &b.PurchaserEmail, &b.EventID, &ticketsRaw, &b.TotalAmountCents, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ticketsRaw, &b.Tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	tickets, err := json.Marshal(b.Tickets)
	if err != nil {
		return err
	}
	// a reinstated booking keeps its original created_at
	var createdAt *time.Time
	if !b.CreatedAt.IsZero() {
		createdAt = &b.CreatedAt
	}
	err = r.db.QueryRow(ctx, `INSERT INTO bookings (id, user_id, email, event_id, tickets, total_amount_cents, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8::timestamptz, now()))
		RETURNING created_at, updated_at`,
		b.ID, b.PurchaserID, b.PurchaserEmail, b.EventID, tickets, b.TotalAmountCents, b.PaymentStatus, createdAt).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	return pgError(err)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, pgError(err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByPurchaser(ctx context.Context, purchaserID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, purchaserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) BookedQuantities(ctx context.Context, eventID string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT t->>'ticket_type', SUM((t->>'quantity')::int)
		FROM bookings, jsonb_array_elements(tickets) AS t
		WHERE event_id=$1
		GROUP BY 1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	booked := make(map[string]int)
	for rows.Next() {
		var (
			category string
			qty      int
		)
		if err := rows.Scan(&category, &qty); err != nil {
			return nil, err
		}
		booked[category] = qty
	}
	return booked, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
