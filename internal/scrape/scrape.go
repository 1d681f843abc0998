// Package scrape pulls readable article text out of a news page so the chat
// assistant has more than a 220-character summary to work with.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Article is the extracted page content.
type Article struct {
	Title   string
	Content string
	URL     string
}

// maxContentBytes keeps the extracted text small enough for a prompt.
const maxContentBytes = 1800

var client = &http.Client{Timeout: 15 * time.Second}

// Extract downloads the page and pulls out its main text. Best-effort: any
// page it cannot read comes back as an error and the caller falls back to
// the feed summary.
func Extract(ctx context.Context, url string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	content := extractParagraphs(doc)
	if content == "" {
		return nil, fmt.Errorf("no readable content")
	}

	return &Article{
		Title:   extractTitle(doc),
		Content: clip(content),
		URL:     url,
	}, nil
}

// extractParagraphs walks common article containers from most to least
// specific and stops once a selector yields a few real paragraphs.
func extractParagraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article-body p",
		".post-content p",
		".entry-content p",
		".content p",
		"main p",
		"p",
	}

	var paragraphs []string
	for i, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 && !isBoilerplate(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		// A few real paragraphs is good enough; the last selector keeps
		// whatever it found.
		if len(paragraphs) >= 3 || i == len(selectors)-1 {
			break
		}
		paragraphs = paragraphs[:0]
	}
	if len(paragraphs) == 0 {
		return ""
	}
	return strings.Join(paragraphs, "\n\n")
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range []string{"cookie", "subscribe", "newsletter", "sign up", "advertis", "privacy policy"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func extractTitle(doc *goquery.Document) string {
	for _, selector := range []string{"h1", ".article-title", ".headline", "title"} {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return ""
}

// clip cuts the text at a paragraph boundary under the byte budget.
func clip(content string) string {
	if len(content) <= maxContentBytes {
		return content
	}
	paragraphs := strings.Split(content, "\n\n")
	var kept []string
	total := 0
	for _, p := range paragraphs {
		if total+len(p) > maxContentBytes {
			break
		}
		kept = append(kept, p)
		total += len(p) + 2
	}
	if len(kept) == 0 {
		return content[:maxContentBytes]
	}
	return strings.Join(kept, "\n\n")
}
