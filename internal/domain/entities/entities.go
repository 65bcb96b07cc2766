package entities

import (
	"errors"
	"fmt"
)

// ErrPostNotFound is returned when no post carries the requested ID.
var ErrPostNotFound = errors.New("post not found")

// StorageError reports a failure to read or write the persisted post collection.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Post represents a single blog entry
type Post struct {
	ID      int    `json:"id" db:"id"`
	Author  string `json:"author" db:"author"`
	Title   string `json:"title" db:"title"`
	Content string `json:"content" db:"content"`
	Likes   int    `json:"likes" db:"likes"`
}

// Book represents an entry served by the books API
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Like increments the post's like counter.
func (p *Post) Like() {
	p.Likes++
}

// Edit overwrites the text fields, leaving ID and Likes untouched.
func (p *Post) Edit(author, title, content string) {
	p.Author = author
	p.Title = title
	p.Content = content
}

// NextPostID returns one greater than the highest ID in posts, or 1 when posts is empty.
func NextPostID(posts []Post) int {
	maxID := 0
	for _, p := range posts {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

// FindPost returns the index of the post with the given ID, or -1.
func FindPost(posts []Post, id int) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

// RemovePost returns posts without the entry matching id, preserving order.
func RemovePost(posts []Post, id int) []Post {
	kept := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return kept
}
