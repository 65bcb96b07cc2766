package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/masterblog/core/internal/infrastructure/logger"
	"github.com/masterblog/core/internal/ports"
)

// BookHandler serves the JSON books API
type BookHandler struct {
	bookService ports.BookService
	logger      *logger.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService ports.BookService, logger *logger.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger.WithComponent("book_handler"),
	}
}

// ListBooks godoc
// @Summary List books
// @Description Returns the fixed books catalogue
// @Tags books
// @Produce json
// @Success 200 {array} entities.Book
// @Router /api/books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.bookService.ListBooks())
}

// CreateBook godoc
// @Summary Echo a book
// @Description Returns the posted JSON document unchanged, including a bare null. Nothing is stored.
// @Tags books
// @Accept json
// @Produce json
// @Param book body object true "Any JSON document"
// @Success 201 {object} object
// @Failure 400 {object} ErrorResponse
// @Router /api/books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	// Bind leaves raw empty when there is no body at all, which is
	// distinct from a body holding the JSON literal null.
	var raw json.RawMessage
	if err := c.Bind(&raw); err != nil {
		h.logger.Debugw("Rejected book payload", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}
	if len(raw) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}

	var book interface{}
	if err := json.Unmarshal(raw, &book); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}

	return c.JSON(http.StatusCreated, h.bookService.EchoBook(book))
}
