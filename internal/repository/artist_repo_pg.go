package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGArtistRepository struct {
	db *pgxpool.Pool
}

func NewArtistRepository(db *pgxpool.Pool) ArtistRepository {
	return &PGArtistRepository{db: db}
}

const artistColumns = `id, name, bio, genres, discography, social_media, created_at, updated_at`

func scanArtist(row pgx.Row) (*domain.Artist, error) {
	var (
		a                  domain.Artist
		discRaw, socialRaw []byte
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.Genres, &discRaw, &socialRaw, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(discRaw, &a.Discography); err != nil {
		return nil, fmt.Errorf("decode discography: %w", err)
	}
	if err := json.Unmarshal(socialRaw, &a.SocialMedia); err != nil {
		return nil, fmt.Errorf("decode social media: %w", err)
	}
	return &a, nil
}

func (r *PGArtistRepository) List(ctx context.Context) ([]domain.Artist, error) {
	rows, err := r.db.Query(ctx, `SELECT `+artistColumns+` FROM artists ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artists := make([]domain.Artist, 0)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, *a)
	}
	return artists, rows.Err()
}

func (r *PGArtistRepository) GetByID(ctx context.Context, id string) (*domain.Artist, error) {
	a, err := scanArtist(r.db.QueryRow(ctx, `SELECT `+artistColumns+` FROM artists WHERE id=$1`, id))
	if err != nil {
		return nil, pgError(err)
	}
	return a, nil
}

func (r *PGArtistRepository) Create(ctx context.Context, a *domain.Artist) error {
	disc, social, err := encodeArtist(a)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `INSERT INTO artists (id, name, bio, genres, discography, social_media)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		a.ID, a.Name, a.Bio, a.Genres, disc, social).Scan(&a.CreatedAt, &a.UpdatedAt)
	return pgError(err)
}

func (r *PGArtistRepository) Update(ctx context.Context, a *domain.Artist) error {
	disc, social, err := encodeArtist(a)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `UPDATE artists SET name=$1, bio=$2, genres=$3, discography=$4, social_media=$5, updated_at=now()
		WHERE id=$6 RETURNING created_at, updated_at`,
		a.Name, a.Bio, a.Genres, disc, social, a.ID).Scan(&a.CreatedAt, &a.UpdatedAt)
	return pgError(err)
}

func (r *PGArtistRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM artists WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeArtist(a *domain.Artist) ([]byte, []byte, error) {
	if a.Genres == nil {
		a.Genres = []string{}
	}
	if a.Discography == nil {
		a.Discography = []domain.Album{}
	}
	disc, err := json.Marshal(a.Discography)
	if err != nil {
		return nil, nil, err
	}
	social, err := json.Marshal(a.SocialMedia)
	if err != nil {
		return nil, nil, err
	}
	return disc, social, nil
}

var _ ArtistRepository = (*PGArtistRepository)(nil)
