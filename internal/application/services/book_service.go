package services

import (
	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/ports"
)

var defaultBooks = []entities.Book{
	{ID: 1, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald"},
	{ID: 2, Title: "1984", Author: "George Orwell"},
}

// BookService serves the static books catalogue
type BookService struct{}

func NewBookService() *BookService {
	return &BookService{}
}

// ListBooks returns a copy of the catalogue so callers cannot mutate it
func (s *BookService) ListBooks() []entities.Book {
	books := make([]entities.Book, len(defaultBooks))
	copy(books, defaultBooks)
	return books
}

// EchoBook returns the submitted book untouched. Nothing is stored.
func (s *BookService) EchoBook(book any) any {
	return book
}

var _ ports.BookService = (*BookService)(nil)
