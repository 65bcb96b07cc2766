package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/ports"
)

// PostgresPostRepository implements the PostRepository interface over the posts table.
type PostgresPostRepository struct {
	db *sqlx.DB
}

// NewPostgresPostRepository creates a new post repository
func NewPostgresPostRepository(db *sqlx.DB) ports.PostRepository {
	return &PostgresPostRepository{db: db}
}

const selectPosts = `SELECT id, author, title, content, likes FROM posts`

// Load returns posts in insertion order, tracked by the position column.
func (r *PostgresPostRepository) Load(ctx context.Context) ([]entities.Post, error) {
	posts := []entities.Post{}
	if err := r.db.SelectContext(ctx, &posts, selectPosts+` ORDER BY position, id`); err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	return posts, nil
}

// Save replaces the table contents with posts inside a single transaction.
// The slice order is kept as the position order.
func (r *PostgresPostRepository) Save(ctx context.Context, posts []entities.Post) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
			return fmt.Errorf("clear posts: %w", err)
		}
		for i, p := range posts {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO posts (id, author, title, content, likes, position) VALUES ($1, $2, $3, $4, $5, $6)`,
				p.ID, p.Author, p.Title, p.Content, p.Likes, i+1,
			)
			if err != nil {
				return fmt.Errorf("insert post %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, id int) (*entities.Post, error) {
	var post entities.Post
	err := r.db.GetContext(ctx, &post, selectPosts+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return &post, nil
}

// Create locks the table so the max(id)+1 assignment cannot collide with a concurrent insert.
func (r *PostgresPostRepository) Create(ctx context.Context, post *entities.Post) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE posts IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock posts: %w", err)
		}

		query := `
			INSERT INTO posts (id, author, title, content, likes, position)
			SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, 0, COALESCE(MAX(position), 0) + 1 FROM posts
			RETURNING id`

		if err := tx.QueryRowxContext(ctx, query, post.Author, post.Title, post.Content).Scan(&post.ID); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		post.Likes = 0
		return nil
	})
}

func (r *PostgresPostRepository) Like(ctx context.Context, id int) (*entities.Post, error) {
	query := `
		UPDATE posts SET likes = likes + 1
		WHERE id = $1
		RETURNING id, author, title, content, likes`

	var post entities.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrPostNotFound
		}
		return nil, fmt.Errorf("like post: %w", err)
	}
	return &post, nil
}

func (r *PostgresPostRepository) Update(ctx context.Context, post *entities.Post) error {
	query := `
		UPDATE posts SET author = $2, title = $3, content = $4
		WHERE id = $1
		RETURNING likes`

	err := r.db.QueryRowxContext(ctx, query, post.ID, post.Author, post.Title, post.Content).Scan(&post.Likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrPostNotFound
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresPostRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresPostRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
