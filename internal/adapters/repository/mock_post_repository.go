package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/masterblog/core/internal/domain/entities"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Load(ctx context.Context) ([]entities.Post, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]entities.Post)
	return posts, args.Error(1)
}

func (m *MockPostRepository) Save(ctx context.Context, posts []entities.Post) error {
	args := m.Called(ctx, posts)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int) (*entities.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*entities.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post *entities.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Like(ctx context.Context, id int) (*entities.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*entities.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *entities.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPostRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
