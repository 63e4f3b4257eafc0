package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, name, email, password, location, preferences, role, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u        domain.User
		prefsRaw []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Location, &prefsRaw, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(prefsRaw, &u.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, u *domain.User) error {
	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `INSERT INTO users (id, name, email, password, location, preferences, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, u.Location, prefs, u.Role).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	return pgError(err)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, pgError(err)
	}
	return u, nil
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, strings.ToLower(email)))
	if err != nil {
		return nil, pgError(err)
	}
	return u, nil
}

func (r *PGUserRepository) UpdatePreferences(ctx context.Context, id string, prefs domain.Preferences) (*domain.User, error) {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.db.QueryRow(ctx, `UPDATE users SET preferences=$1, updated_at=now() WHERE id=$2 RETURNING `+userColumns, raw, id))
	if err != nil {
		return nil, pgError(err)
	}
	return u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
