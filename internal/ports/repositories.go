package ports

import (
	"context"

	"github.com/masterblog/core/internal/domain/entities"
)

// PostRepository defines the interface for post data operations.
// Every mutating call persists the full collection before returning.
type PostRepository interface {
	// Load reads the entire persisted collection in display order.
	Load(ctx context.Context) ([]entities.Post, error)
	// Save overwrites the persisted collection with posts.
	Save(ctx context.Context, posts []entities.Post) error
	GetByID(ctx context.Context, id int) (*entities.Post, error)
	// Create assigns post.ID (max existing ID + 1) and appends it.
	Create(ctx context.Context, post *entities.Post) error
	Like(ctx context.Context, id int) (*entities.Post, error)
	// Update overwrites author, title and content of the post with post.ID.
	Update(ctx context.Context, post *entities.Post) error
	// Delete removes the post with id; deleting an unknown id is not an error.
	Delete(ctx context.Context, id int) error
	Ping(ctx context.Context) error
	Close() error
}
