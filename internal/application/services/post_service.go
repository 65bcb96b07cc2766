package services

import (
	"context"
	"fmt"

	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/infrastructure/logger"
	"github.com/masterblog/core/internal/infrastructure/metrics"
	"github.com/masterblog/core/internal/ports"
)

// PostService handles blog post operations
type PostService struct {
	postRepo ports.PostRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewPostService creates a new post service. m may be nil when metrics are disabled.
func NewPostService(postRepo ports.PostRepository, logger *logger.Logger, m *metrics.Metrics) *PostService {
	return &PostService{
		postRepo: postRepo,
		logger:   logger.WithComponent("post_service"),
		metrics:  m,
	}
}

// ListPosts returns every post in stored order
func (s *PostService) ListPosts(ctx context.Context) ([]entities.Post, error) {
	posts, err := s.postRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id int) (*entities.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return post, nil
}

// CreatePost appends a new post with zero likes
func (s *PostService) CreatePost(ctx context.Context, req ports.CreatePostRequest) (*entities.Post, error) {
	post := &entities.Post{
		Author:  req.Author,
		Title:   req.Title,
		Content: req.Content,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.PostCreated()
	s.logger.LogPostAction("create", post.ID, map[string]interface{}{
		"title":  post.Title,
		"author": post.Author,
	})

	return post, nil
}

// LikePost increments a post's like counter
func (s *PostService) LikePost(ctx context.Context, id int) (*entities.Post, error) {
	post, err := s.postRepo.Like(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to like post %d: %w", id, err)
	}

	s.metrics.PostLiked()
	s.logger.LogPostAction("like", post.ID, map[string]interface{}{"likes": post.Likes})

	return post, nil
}

// UpdatePost replaces author, title and content of an existing post
func (s *PostService) UpdatePost(ctx context.Context, id int, req ports.UpdatePostRequest) (*entities.Post, error) {
	post := &entities.Post{
		ID:      id,
		Author:  req.Author,
		Title:   req.Title,
		Content: req.Content,
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}

	s.metrics.PostUpdated()
	s.logger.LogPostAction("update", post.ID, map[string]interface{}{"title": post.Title})

	return post, nil
}

// DeletePost removes a post; unknown IDs are ignored
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}

	s.metrics.PostDeleted()
	s.logger.LogPostAction("delete", id, nil)

	return nil
}

var _ ports.PostService = (*PostService)(nil)
