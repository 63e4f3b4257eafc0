package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGNewsRepository struct {
	db *pgxpool.Pool
}

func NewNewsRepository(db *pgxpool.Pool) NewsRepository {
	return &PGNewsRepository{db: db}
}

const newsColumns = `id, title, content, category, artist_id, publish_date, featured_image, share_twitter, share_facebook, share_instagram, tags`

func scanNews(row pgx.Row) (*domain.News, error) {
	var n domain.News
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &n.ArtistID, &n.PublishDate, &n.FeaturedImage,
		&n.SocialShares.Twitter, &n.SocialShares.Facebook, &n.SocialShares.Instagram, &n.Tags)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PGNewsRepository) List(ctx context.Context, filter NewsFilter) ([]domain.News, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.ArtistIDs != nil {
		args = append(args, filter.ArtistIDs)
		where = append(where, fmt.Sprintf("artist_id = ANY($%d)", len(args)))
	}
	q := `SELECT ` + newsColumns + ` FROM news`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY publish_date DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.News, 0)
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

func (r *PGNewsRepository) GetByID(ctx context.Context, id string) (*domain.News, error) {
	n, err := scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id=$1`, id))
	if err != nil {
		return nil, pgError(err)
	}
	return n, nil
}

func (r *PGNewsRepository) Create(ctx context.Context, n *domain.News) error {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	_, err := r.db.Exec(ctx, `INSERT INTO news (id, title, content, category, artist_id, publish_date, featured_image, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Title, n.Content, string(n.Category), n.ArtistID, n.PublishDate, n.FeaturedImage, n.Tags)
	return pgError(err)
}

func (r *PGNewsRepository) IncrementShare(ctx context.Context, id, platform string) (*domain.News, error) {
	if !SharePlatforms[platform] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	column := "share_" + platform
	n, err := scanNews(r.db.QueryRow(ctx, `UPDATE news SET `+column+` = `+column+` + 1 WHERE id=$1 RETURNING `+newsColumns, id))
	if err != nil {
		return nil, pgError(err)
	}
	return n, nil
}

var _ NewsRepository = (*PGNewsRepository)(nil)
