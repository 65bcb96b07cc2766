package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/infrastructure/logger"
	"github.com/masterblog/core/internal/ports"
)

// PostHandler serves the HTML blog pages
type PostHandler struct {
	postService ports.PostService
	logger      *logger.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService ports.PostService, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger.WithComponent("post_handler"),
	}
}

// Index renders every post in stored order
func (h *PostHandler) Index(c echo.Context) error {
	posts, err := h.postService.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "index.html", &HTMLData{
		Title: "Masterblog",
		Posts: posts,
	})
}

// AddForm renders the empty new-post form
func (h *PostHandler) AddForm(c echo.Context) error {
	return c.Render(http.StatusOK, "add.html", &HTMLData{Title: "Add post"})
}

// Add creates a post from the submitted form and redirects to the index
func (h *PostHandler) Add(c echo.Context) error {
	var req ports.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}

	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "add.html", &HTMLData{
			Title:     "Add post",
			FormError: formErrorMessage(err),
			Form:      PostForm{Author: req.Author, Title: req.Title, Content: req.Content},
		})
	}

	if _, err := h.postService.CreatePost(c.Request().Context(), req); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// Like increments the like counter of a post
func (h *PostHandler) Like(c echo.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	if _, err := h.postService.LikePost(c.Request().Context(), id); err != nil {
		if errors.Is(err, entities.ErrPostNotFound) {
			return postNotFound(err)
		}
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}

// UpdateForm renders the edit form pre-filled with the current post
func (h *PostHandler) UpdateForm(c echo.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, entities.ErrPostNotFound) {
			return postNotFound(err)
		}
		return err
	}

	return c.Render(http.StatusOK, "update.html", &HTMLData{
		Title: "Update post",
		Post:  post,
		Form:  PostForm{Author: post.Author, Title: post.Title, Content: post.Content},
	})
}

// Update applies the submitted form to an existing post
func (h *PostHandler) Update(c echo.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	// An unknown id is a 404 regardless of what was submitted.
	post, err := h.postService.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrPostNotFound) {
			return postNotFound(err)
		}
		return err
	}

	var req ports.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}

	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "update.html", &HTMLData{
			Title:     "Update post",
			FormError: formErrorMessage(err),
			Post:      post,
			Form:      PostForm{Author: req.Author, Title: req.Title, Content: req.Content},
		})
	}

	if _, err := h.postService.UpdatePost(ctx, id, req); err != nil {
		if errors.Is(err, entities.ErrPostNotFound) {
			return postNotFound(err)
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// Delete removes a post. Unknown ids still redirect.
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	if err := h.postService.DeletePost(c.Request().Context(), id); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}
