package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"strategyboard/app/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postsSchema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id         BIGSERIAL PRIMARY KEY,
		title      VARCHAR(200)  NOT NULL,
		content    VARCHAR(5000) NOT NULL,
		author     VARCHAR(50)   NOT NULL,
		created_at TIMESTAMPTZ   NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS posts_created_at_id_idx ON posts (created_at DESC, id DESC)`,
}

const postColumns = `id, title, content, author, created_at`

// NewPostgresPool creates a connection pool and verifies it can reach the
// server.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 20
	// Reduce planning overhead by caching prepared statements per connection.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 64

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// PostgresPostRepository implements PostRepository on a posts table.
type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// EnsureSchema creates the posts table and its ordering index if missing.
func (r *PostgresPostRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range postsSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create posts schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.BeforeCreate()
	// TIMESTAMPTZ keeps microseconds.
	post.CreatedAt = post.CreatedAt.Truncate(time.Microsecond)
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO posts (title, content, author, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		post.Title, post.Content, post.Author, post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	post, err := pgx.CollectOneRow(rows, scanPost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostgresPostRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return r.list(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *PostgresPostRepository) ListLatest(ctx context.Context, limit int) ([]*models.Post, error) {
	return r.list(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY id DESC LIMIT $1`,
		limit)
}

// ListBefore is a keyset query on the primary key.
func (r *PostgresPostRepository) ListBefore(ctx context.Context, cursor int64, limit int) ([]*models.Post, error) {
	return r.list(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id < $1 ORDER BY id DESC LIMIT $2`,
		cursor, limit)
}

func (r *PostgresPostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresPostRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	posts, err := pgx.CollectRows(rows, scanPost)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func scanPost(row pgx.CollectableRow) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
