package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterblog/core/internal/domain/entities"
)

var postColumns = []string{"id", "author", "title", "content", "likes"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostgresPostRepository_Load(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, author, title, content, likes FROM posts ORDER BY position, id`)).
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(1, "A", "T", "C", 0).
			AddRow(2, "B", "U", "D", 3))

	posts, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entities.Post{
		{ID: 1, Author: "A", Title: "T", Content: "C"},
		{ID: 2, Author: "B", Title: "U", Content: "D", Likes: 3},
	}, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`LOCK TABLE posts`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO posts (id, author, title, content, likes, position)`)).
		WithArgs("A", "T", "C").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	post := &entities.Post{Author: "A", Title: "T", Content: "C"}
	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, 4, post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_Create_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`LOCK TABLE posts`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO posts`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &entities.Post{Author: "A", Title: "T", Content: "C"})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_Like(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE posts SET likes = likes + 1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(1, "A", "T", "C", 1))

	post, err := repo.Like(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, post.Likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_Like_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE posts SET likes = likes + 1`)).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(postColumns))

	post, err := repo.Like(context.Background(), 9)
	assert.Nil(t, post)
	assert.ErrorIs(t, err, entities.ErrPostNotFound)
}

func TestPostgresPostRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE posts SET author = $2, title = $3, content = $4`)).
		WithArgs(2, "B", "U", "D").
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(6))

	post := &entities.Post{ID: 2, Author: "B", Title: "U", Content: "D"}
	require.NoError(t, repo.Update(context.Background(), post))
	assert.Equal(t, 6, post.Likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE posts SET author`)).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}))

	err := repo.Update(context.Background(), &entities.Post{ID: 2, Author: "B", Title: "U", Content: "D"})
	assert.ErrorIs(t, err, entities.ErrPostNotFound)
}

func TestPostgresPostRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, author, title, content, likes FROM posts WHERE id = $1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(postColumns))

	post, err := repo.GetByID(context.Background(), 5)
	assert.Nil(t, post)
	assert.ErrorIs(t, err, entities.ErrPostNotFound)
}

func TestPostgresPostRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts`)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO posts`)).
		WithArgs(1, "A", "T", "C", 0, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO posts`)).
		WithArgs(2, "B", "U", "D", 3, 2).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), []entities.Post{
		{ID: 1, Author: "A", Title: "T", Content: "C"},
		{ID: 2, Author: "B", Title: "U", Content: "D", Likes: 3},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_Save_KeepsSliceOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO posts`)).
		WithArgs(7, "A", "T", "C", 0, 1).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO posts`)).
		WithArgs(3, "B", "U", "D", 0, 2).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), []entities.Post{
		{ID: 7, Author: "A", Title: "T", Content: "C"},
		{ID: 3, Author: "B", Title: "U", Content: "D"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepository_WithTx_RollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPostRepository{db: db}

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = repo.withTx(context.Background(), func(*sqlx.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
