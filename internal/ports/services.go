package ports

import (
	"context"

	"github.com/masterblog/core/internal/domain/entities"
)

// PostService interface for blog post operations
type PostService interface {
	ListPosts(ctx context.Context) ([]entities.Post, error)
	GetPost(ctx context.Context, id int) (*entities.Post, error)
	CreatePost(ctx context.Context, req CreatePostRequest) (*entities.Post, error)
	LikePost(ctx context.Context, id int) (*entities.Post, error)
	UpdatePost(ctx context.Context, id int, req UpdatePostRequest) (*entities.Post, error)
	DeletePost(ctx context.Context, id int) error
}

// BookService interface for the books API
type BookService interface {
	ListBooks() []entities.Book
	EchoBook(book any) any
}

// Request types
type CreatePostRequest struct {
	Author  string `json:"author" form:"author" validate:"required,max=200"`
	Title   string `json:"title" form:"title" validate:"required,max=300"`
	Content string `json:"content" form:"content" validate:"required"`
}

type UpdatePostRequest struct {
	Author  string `json:"author" form:"author" validate:"required,max=200"`
	Title   string `json:"title" form:"title" validate:"required,max=300"`
	Content string `json:"content" form:"content" validate:"required"`
}
