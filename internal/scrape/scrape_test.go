package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Big Story | Example News</title></head>
<body>
  <article>
    <p>First paragraph of the article body with enough words to count.</p>
    <p>Accept cookies to continue reading our site.</p>
    <p>Second real paragraph carrying more detail about the story itself.</p>
    <p>Third real paragraph wrapping up the reporting with a conclusion.</p>
  </article>
</body>
</html>`

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	art, err := Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Big Story | Example News", art.Title)
	require.Contains(t, art.Content, "First paragraph")
	require.Contains(t, art.Content, "Third real paragraph")
	require.NotContains(t, art.Content, "Accept cookies")
}

func TestExtractNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("no paragraphs here"))
	}))
	defer srv.Close()

	_, err := Extract(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestExtractHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Extract(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestIsBoilerplate(t *testing.T) {
	require.True(t, isBoilerplate("Please accept cookies before reading"))
	require.True(t, isBoilerplate("Subscribe to our newsletter"))
	require.False(t, isBoilerplate("The spacecraft landed on schedule"))
	require.False(t, isBoilerplate(strings.Repeat("word ", 30)))
}
