package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/ports"
)

var _ ports.PostRepository = (*JSONPostRepository)(nil)

// JSONPostRepository keeps the whole post collection in a single JSON document.
// Every operation reads the document from disk and every mutation rewrites it in full.
// mu serializes the read-modify-write cycle within this process only; separate
// processes sharing the file still race, and the last write wins.
type JSONPostRepository struct {
	path string
	perm fs.FileMode
	mu   sync.Mutex
}

// NewJSONPostRepository creates a post repository backed by the document at path.
func NewJSONPostRepository(path string) *JSONPostRepository {
	return &JSONPostRepository{path: path, perm: 0o644}
}

// Path returns the location of the backing document.
func (r *JSONPostRepository) Path() string {
	return r.path
}

// Init writes an empty collection when the document does not exist yet.
func (r *JSONPostRepository) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := os.Stat(r.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &entities.StorageError{Op: "stat", Path: r.path, Err: err}
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &entities.StorageError{Op: "init", Path: r.path, Err: err}
		}
	}
	return r.write(nil, nil)
}

func (r *JSONPostRepository) Load(ctx context.Context) ([]entities.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	posts, _, err := r.read()
	return posts, err
}

func (r *JSONPostRepository) Save(ctx context.Context, posts []entities.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Posts already in the document keep their layout. An unreadable
	// document is simply replaced.
	_, doc, err := r.read()
	if err != nil {
		doc = nil
	}
	return r.write(posts, doc)
}

func (r *JSONPostRepository) GetByID(ctx context.Context, id int) (*entities.Post, error) {
	posts, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	i := entities.FindPost(posts, id)
	if i < 0 {
		return nil, entities.ErrPostNotFound
	}
	post := posts[i]
	return &post, nil
}

func (r *JSONPostRepository) Create(ctx context.Context, post *entities.Post) error {
	return r.mutate(ctx, func(posts []entities.Post) ([]entities.Post, error) {
		post.ID = entities.NextPostID(posts)
		return append(posts, *post), nil
	})
}

func (r *JSONPostRepository) Like(ctx context.Context, id int) (*entities.Post, error) {
	var liked entities.Post
	err := r.mutate(ctx, func(posts []entities.Post) ([]entities.Post, error) {
		i := entities.FindPost(posts, id)
		if i < 0 {
			return nil, entities.ErrPostNotFound
		}
		posts[i].Like()
		liked = posts[i]
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	return &liked, nil
}

func (r *JSONPostRepository) Update(ctx context.Context, post *entities.Post) error {
	return r.mutate(ctx, func(posts []entities.Post) ([]entities.Post, error) {
		i := entities.FindPost(posts, post.ID)
		if i < 0 {
			return nil, entities.ErrPostNotFound
		}
		posts[i].Edit(post.Author, post.Title, post.Content)
		*post = posts[i]
		return posts, nil
	})
}

func (r *JSONPostRepository) Delete(ctx context.Context, id int) error {
	return r.mutate(ctx, func(posts []entities.Post) ([]entities.Post, error) {
		return entities.RemovePost(posts, id), nil
	})
}

// Ping reports whether the document can currently be read and decoded.
func (r *JSONPostRepository) Ping(ctx context.Context) error {
	_, err := r.Load(ctx)
	return err
}

func (r *JSONPostRepository) Close() error {
	return nil
}

// mutate runs one load-modify-save cycle under the repository lock.
// When fn fails nothing is written.
func (r *JSONPostRepository) mutate(ctx context.Context, fn func([]entities.Post) ([]entities.Post, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	posts, doc, err := r.read()
	if err != nil {
		return err
	}

	posts, err = fn(posts)
	if err != nil {
		return err
	}

	return r.write(posts, doc)
}

// read must be called with r.mu held.
func (r *JSONPostRepository) read() ([]entities.Post, document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, nil, &entities.StorageError{Op: "load", Path: r.path, Err: err}
	}

	posts, doc, err := decodeDocument(data)
	if err != nil {
		return nil, nil, &entities.StorageError{Op: "load", Path: r.path, Err: fmt.Errorf("decode document: %w", err)}
	}
	return posts, doc, nil
}

// write replaces the document through a temp file and rename so readers never
// observe a partially written collection. Must be called with r.mu held.
func (r *JSONPostRepository) write(posts []entities.Post, doc document) error {
	data, err := encodeDocument(posts, doc)
	if err != nil {
		return &entities.StorageError{Op: "save", Path: r.path, Err: fmt.Errorf("encode document: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return &entities.StorageError{Op: "save", Path: r.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &entities.StorageError{Op: "save", Path: r.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &entities.StorageError{Op: "save", Path: r.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "save", Path: r.path, Err: err}
	}
	if err := os.Chmod(tmpName, r.perm); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "save", Path: r.path, Err: err}
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "save", Path: r.path, Err: err}
	}

	return nil
}
