// Package chat backs the "explain this news" assistant. It either forwards
// the request body verbatim to a configured upstream chat service and relays
// whatever comes back, or answers directly with Gemini when only an API key
// is configured.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsweb/internal/logger"
	"github.com/deusflow/newsweb/internal/scrape"
)

// Request is the body the web client sends.
type Request struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context,omitempty"`
}

// ContextItem is one news card the client attached for grounding.
type ContextItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// Response is what the direct-answer mode returns.
type Response struct {
	Answer string `json:"answer"`
}

// Relay carries an upstream reply back unchanged.
type Relay struct {
	Status      int
	ContentType string
	Body        []byte
}

// Service routes chat requests to the upstream proxy or the Gemini client,
// whichever is configured. Upstream wins when both are set.
type Service struct {
	upstreamURL   string
	gemini        *Gemini
	scrapeEnabled bool
	client        *http.Client
}

func NewService(upstreamURL string, gemini *Gemini, scrapeEnabled bool) *Service {
	return &Service{
		upstreamURL:   strings.TrimSuffix(upstreamURL, "/"),
		gemini:        gemini,
		scrapeEnabled: scrapeEnabled,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether any backend is configured at all.
func (s *Service) Enabled() bool {
	return s.upstreamURL != "" || s.gemini != nil
}

// HasUpstream reports whether requests should be proxied.
func (s *Service) HasUpstream() bool {
	return s.upstreamURL != ""
}

// Forward posts the raw body to the upstream chat endpoint and returns its
// reply as-is: status, content type and body all pass through untouched.
func (s *Service) Forward(ctx context.Context, body []byte) (*Relay, error) {
	url := s.upstreamURL + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	return &Relay{Status: resp.StatusCode, ContentType: contentType, Body: respBody}, nil
}

// Answer asks Gemini directly. When scraping is enabled and the first
// context item carries a URL, the full article text is pulled in as extra
// grounding; scrape failures just fall back to the card description.
func (s *Service) Answer(ctx context.Context, req Request) (string, error) {
	if s.gemini == nil {
		return "", fmt.Errorf("no chat backend configured")
	}

	items := decodeContext(req.Context)

	var article string
	if s.scrapeEnabled && len(items) > 0 && items[0].URL != "" {
		scrapeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if a, err := scrape.Extract(scrapeCtx, items[0].URL); err != nil {
			logger.Debug("article scrape failed", "url", items[0].URL, "err", err)
		} else {
			article = a.Content
		}
	}

	return s.gemini.Explain(ctx, req.Message, items, article)
}

// decodeContext accepts both shapes the clients send: a list of cards or a
// single card object. Anything else is treated as no context.
func decodeContext(raw json.RawMessage) []ContextItem {
	if len(raw) == 0 {
		return nil
	}
	var items []ContextItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}
	var single ContextItem
	if err := json.Unmarshal(raw, &single); err == nil && (single.Title != "" || single.URL != "") {
		return []ContextItem{single}
	}
	return nil
}
