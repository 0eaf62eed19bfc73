package repository

import (
	"context"

	"aironix-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createNewsTable = `
CREATE TABLE IF NOT EXISTS news (
    id           BIGSERIAL   PRIMARY KEY,
    title        TEXT        NOT NULL UNIQUE,
    description  TEXT        NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL,
    link         TEXT        NOT NULL DEFAULT '',
    image_url    TEXT        NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_news_published_at
    ON news (published_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewsRepository owns the news collection. The UNIQUE constraint on title is
// what makes insert-if-absent a single atomic statement.
type NewsRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewNewsRepository(pool PgxPool, tracer trace.Tracer) *NewsRepository {
	return &NewsRepository{pool: pool, tracer: tracer}
}

func (r *NewsRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "news-repo.run-migrations")
	defer span.End()

	if _, err := r.pool.Exec(ctx, createNewsTable); err != nil {
		return domain.NewStoreError("news.migrate", err)
	}
	return nil
}

// InsertIfAbsent inserts the item unless a row with the same title already
// exists. Reports whether a row was actually inserted.
func (r *NewsRepository) InsertIfAbsent(ctx context.Context, item domain.NewsItem) (bool, error) {
	_, span := r.tracer.Start(ctx, "news-repo.insert-if-absent")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO news (title, description, published_at, link, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (title) DO NOTHING`,
		item.Title, item.Description, item.PublishedAt.UTC(), item.Link, item.ImageURL,
	)
	if err != nil {
		return false, domain.NewStoreError("news.insert", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TrimToCap deletes every row not among the cap most recent by publication
// date. Publication-date ties survive newest-insertion-first, so the oldest
// insertion is evicted first.
func (r *NewsRepository) TrimToCap(ctx context.Context, cap int) error {
	_, span := r.tracer.Start(ctx, "news-repo.trim-to-cap")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`DELETE FROM news
		 WHERE id NOT IN (
		     SELECT id FROM news
		     ORDER BY published_at DESC, id DESC
		     LIMIT $1
		 )`,
		cap,
	)
	if err != nil {
		return domain.NewStoreError("news.trim", err)
	}
	return nil
}

func (r *NewsRepository) ListLatest(ctx context.Context, limit int) ([]domain.NewsItem, error) {
	_, span := r.tracer.Start(ctx, "news-repo.list-latest")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, published_at, link, image_url
		 FROM news
		 ORDER BY published_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, domain.NewStoreError("news.list", err)
	}
	defer rows.Close()

	items := make([]domain.NewsItem, 0, limit)
	for rows.Next() {
		var item domain.NewsItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.PublishedAt, &item.Link, &item.ImageURL); err != nil {
			return nil, domain.NewStoreError("news.list", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("news.list", err)
	}
	return items, nil
}
