package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/ports"
)

func TestParsePostID(t *testing.T) {
	tests := []struct {
		param  string
		wantID int
		ok     bool
	}{
		{"7", 7, true},
		{"0", 0, true},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	e := echo.New()
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tt.param)

		id, err := parsePostID(c)
		if !tt.ok {
			var he *echo.HTTPError
			require.True(t, errors.As(err, &he), tt.param)
			assert.Equal(t, http.StatusNotFound, he.Code)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.wantID, id)
	}
}

func TestPostNotFoundKeepsCause(t *testing.T) {
	err := postNotFound(entities.ErrPostNotFound)

	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "Post not found", he.Message)
	assert.ErrorIs(t, he.Internal, entities.ErrPostNotFound)
}

func TestFormErrorMessage(t *testing.T) {
	v := validator.New()

	err := v.Struct(&ports.CreatePostRequest{Author: "A"})
	assert.Equal(t, "title is required; content is required", formErrorMessage(err))

	assert.Equal(t, "Invalid form submission", formErrorMessage(errors.New("boom")))
}

func TestTemplateRenderer_Embedded(t *testing.T) {
	r, err := NewTemplateRenderer("")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, "index.html", &HTMLData{
		Title: "Masterblog",
		Posts: []entities.Post{{ID: 2, Author: "A", Title: "Hello", Content: "C", Likes: 1}},
	}, nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "<title>Masterblog</title>")
	assert.Contains(t, buf.String(), "1 like<")
	assert.Contains(t, buf.String(), `href="/like/2"`)
}

func TestTemplateRenderer_UnknownPage(t *testing.T) {
	r, err := NewTemplateRenderer("")
	require.NoError(t, err)

	err = r.Render(&bytes.Buffer{}, "missing.html", nil, nil)
	assert.ErrorContains(t, err, "template missing.html not found")
}

func TestTemplateRenderer_DirOverride(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"base.layout.html": `{{define "base"}}custom:{{template "content" .}}{{end}}`,
		"index.html":       `{{define "content"}}{{len .Posts}} posts{{end}}`,
		"add.html":         `{{define "content"}}add{{end}}`,
		"update.html":      `{{define "content"}}update{{end}}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	r, err := NewTemplateRenderer(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "index.html", &HTMLData{Posts: make([]entities.Post, 3)}, nil))
	assert.Equal(t, "custom:3 posts", buf.String())
}

func TestTemplateRenderer_DirMissingPage(t *testing.T) {
	_, err := NewTemplateRenderer(t.TempDir())
	assert.ErrorContains(t, err, "failed to parse template index.html")
}
