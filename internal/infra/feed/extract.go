package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxBodyBytes caps how much of a page we will read.
const maxBodyBytes = 4 << 20

// Extractor fetches article pages and pulls out their main text. It
// satisfies media.BodyExtractor.
type Extractor struct {
	client    *http.Client
	userAgent string
}

func NewExtractor(timeout time.Duration, userAgent string) *Extractor {
	if userAgent == "" {
		userAgent = "mediamon/1.0"
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// ExtractBody downloads the page and returns its extracted text plus the raw
// HTML for archiving.
func (e *Extractor) ExtractBody(ctx context.Context, pageURL string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read page body: %w", err)
	}

	text, err := ExtractText(raw)
	if err != nil {
		return "", raw, err
	}
	return text, raw, nil
}

// ExtractText pulls readable paragraphs from an HTML document. Paragraphs
// inside <article> containers are preferred; when a page has none, every
// paragraph on the page is used.
func ExtractText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()

	var paragraphs []string
	collect := func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	}

	doc.Find("article p").Each(collect)
	if len(paragraphs) == 0 {
		doc.Find("p").Each(collect)
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
