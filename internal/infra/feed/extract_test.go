package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPrefersArticle(t *testing.T) {
	html := `<html><body>
		<nav><p>menu item</p></nav>
		<article><p>Lead paragraph.</p><p>Second paragraph.</p></article>
		<footer><p>copyright</p></footer>
	</body></html>`

	text, err := ExtractText([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Lead paragraph.\n\nSecond paragraph.", text)
}

func TestExtractTextFallsBackToAllParagraphs(t *testing.T) {
	html := `<html><body>
		<div><p>Only paragraph on the page.</p></div>
	</body></html>`

	text, err := ExtractText([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Only paragraph on the page.", text)
}

func TestExtractTextStripsScripts(t *testing.T) {
	html := `<html><body>
		<script>var x = 1;</script>
		<p>Visible.</p>
	</body></html>`

	text, err := ExtractText([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Visible.", text)
}

func TestExtractorFetchesPage(t *testing.T) {
	page := `<html><body><article><p>Hello from the page.</p></article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	e := NewExtractor(5*time.Second, "")
	text, raw, err := e.ExtractBody(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Hello from the page.", text)
	assert.Equal(t, page, string(raw))
}

func TestExtractorBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewExtractor(5*time.Second, "")
	_, _, err := e.ExtractBody(context.Background(), srv.URL)
	assert.Error(t, err)
}
