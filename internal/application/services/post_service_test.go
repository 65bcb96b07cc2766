package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/masterblog/core/internal/adapters/repository"
	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/infrastructure/logger"
	"github.com/masterblog/core/internal/infrastructure/metrics"
	"github.com/masterblog/core/internal/ports"
)

func newTestPostService(t *testing.T) (*PostService, *repository.MockPostRepository) {
	t.Helper()
	repo := new(repository.MockPostRepository)
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return NewPostService(repo, logger.NewNop(), metrics.New()), repo
}

func TestPostService_ListPosts(t *testing.T) {
	svc, repo := newTestPostService(t)
	posts := []entities.Post{{ID: 1, Author: "A", Title: "T", Content: "C"}}
	repo.On("Load", mock.Anything).Return(posts, nil)

	got, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, posts, got)
}

func TestPostService_ListPosts_StorageError(t *testing.T) {
	svc, repo := newTestPostService(t)
	storageErr := &entities.StorageError{Op: "load", Path: "posts.json", Err: errors.New("no such file")}
	repo.On("Load", mock.Anything).Return(nil, storageErr)

	_, err := svc.ListPosts(context.Background())

	var target *entities.StorageError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "load", target.Op)
}

func TestPostService_CreatePost(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *entities.Post) bool {
		return p.Author == "Ada" && p.Title == "Hello" && p.Content == "World" && p.Likes == 0
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Post).ID = 3
	}).Return(nil)

	post, err := svc.CreatePost(context.Background(), ports.CreatePostRequest{
		Author:  "Ada",
		Title:   "Hello",
		Content: "World",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, post.ID)
	assert.Equal(t, 0, post.Likes)
}

func TestPostService_CreatePost_Error(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	post, err := svc.CreatePost(context.Background(), ports.CreatePostRequest{Author: "A", Title: "T", Content: "C"})
	assert.Nil(t, post)
	assert.ErrorContains(t, err, "failed to create post: disk full")
}

func TestPostService_LikePost(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("Like", mock.Anything, 1).Return(&entities.Post{ID: 1, Likes: 2}, nil)

	post, err := svc.LikePost(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, post.Likes)
}

func TestPostService_LikePost_NotFound(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("Like", mock.Anything, 42).Return(nil, entities.ErrPostNotFound)

	post, err := svc.LikePost(context.Background(), 42)
	assert.Nil(t, post)
	assert.ErrorIs(t, err, entities.ErrPostNotFound)
}

func TestPostService_UpdatePost(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("Update", mock.Anything, &entities.Post{ID: 2, Author: "B", Title: "U", Content: "D"}).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Post).Likes = 5
		}).Return(nil)

	post, err := svc.UpdatePost(context.Background(), 2, ports.UpdatePostRequest{Author: "B", Title: "U", Content: "D"})
	require.NoError(t, err)
	assert.Equal(t, entities.Post{ID: 2, Author: "B", Title: "U", Content: "D", Likes: 5}, *post)
}

func TestPostService_UpdatePost_NotFound(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("Update", mock.Anything, mock.Anything).Return(entities.ErrPostNotFound)

	_, err := svc.UpdatePost(context.Background(), 9, ports.UpdatePostRequest{Author: "B", Title: "U", Content: "D"})
	assert.ErrorIs(t, err, entities.ErrPostNotFound)
}

func TestPostService_GetPost(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("GetByID", mock.Anything, 7).Return(nil, entities.ErrPostNotFound)

	_, err := svc.GetPost(context.Background(), 7)
	assert.ErrorIs(t, err, entities.ErrPostNotFound)
}

func TestPostService_DeletePost(t *testing.T) {
	svc, repo := newTestPostService(t)
	repo.On("Delete", mock.Anything, 4).Return(nil)

	assert.NoError(t, svc.DeletePost(context.Background(), 4))
}

func TestPostService_NilMetrics(t *testing.T) {
	repo := new(repository.MockPostRepository)
	repo.On("Delete", mock.Anything, 1).Return(nil)

	svc := NewPostService(repo, logger.NewNop(), nil)
	assert.NoError(t, svc.DeletePost(context.Background(), 1))
	repo.AssertExpectations(t)
}

func TestBookService(t *testing.T) {
	svc := NewBookService()

	books := svc.ListBooks()
	require.Len(t, books, 2)
	assert.Equal(t, "The Great Gatsby", books[0].Title)
	assert.Equal(t, "George Orwell", books[1].Author)

	books[0].Title = "changed"
	assert.Equal(t, "The Great Gatsby", svc.ListBooks()[0].Title)

	body := map[string]interface{}{"title": "Dune"}
	assert.Equal(t, body, svc.EchoBook(body))
}
