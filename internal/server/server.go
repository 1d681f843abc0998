// Package server exposes the aggregation pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/deusflow/newsweb/internal/chat"
	"github.com/deusflow/newsweb/internal/feeds"
	"github.com/deusflow/newsweb/internal/logger"
	"github.com/deusflow/newsweb/internal/metrics"
	"github.com/deusflow/newsweb/internal/news"
	"github.com/deusflow/newsweb/internal/overrides"
	"github.com/deusflow/newsweb/internal/topics"
)

// FetchFunc fetches all sources. Swappable in tests.
type FetchFunc func(ctx context.Context, sources []feeds.Source) []feeds.Result

// Server holds the static configuration and collaborators of one instance.
type Server struct {
	sources []feeds.Source
	catalog []topics.Topic
	store   *overrides.Store
	chat    *chat.Service
	timeout time.Duration
	fetch   FetchFunc
}

func New(sources []feeds.Source, catalog []topics.Topic, store *overrides.Store, chatSvc *chat.Service, timeout time.Duration) *Server {
	return &Server{
		sources: sources,
		catalog: catalog,
		store:   store,
		chat:    chatSvc,
		timeout: timeout,
		fetch:   feeds.FetchAll,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/news", s.handleNews)
	r.Get("/api/topics", s.handleTopics)
	r.Get("/api/overrides", s.handleGetOverrides)
	r.Put("/api/overrides", s.handlePutOverrides)
	r.Post("/api/chat", s.handleChat)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	return r
}

type newsMeta struct {
	FetchedAt string `json:"fetchedAt"`
	Total     int    `json:"total"`
	Query     string `json:"query,omitempty"`
	Topic     string `json:"topic"`
	Error     string `json:"error,omitempty"`
}

type newsResponse struct {
	Items  []news.Item    `json:"items"`
	Topics []topics.Topic `json:"topics"`
	Meta   newsMeta       `json:"meta"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleNews runs the full pipeline: fetch every source, normalize, filter by
// topic and query, rank, truncate. Per-source failures only shrink the item
// set; when every source fails the response keeps its shape but carries an
// error marker in meta and goes out as a 500, which is what the web client
// expects.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	metrics.Global.IncrementRequestsServed()

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	topicID := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topicID == "" {
		topicID = topics.AllTopicID
	}
	limit := parseLimit(r.URL.Query().Get("limit"))

	// Merged per request, never persisted.
	merged := topics.ApplyOverrides(s.catalog, s.store.Load())
	topic, ok := topics.Find(merged, topicID)
	if !ok {
		// Unknown topic ids fall back to the catch-all bucket.
		topic = topics.Topic{ID: topics.AllTopicID}
	}

	start := time.Now()
	results := s.fetch(ctx, s.sources)
	metrics.Global.RecordFetchTime(time.Since(start))

	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
		}
	}
	metrics.Global.AddSourceFailures(failures)

	resp := newsResponse{
		Items:  []news.Item{},
		Topics: merged,
		Meta: newsMeta{
			FetchedAt: time.Now().UTC().Format(time.RFC3339),
			Query:     query,
			Topic:     topicID,
		},
	}

	if len(results) > 0 && failures == len(results) {
		resp.Meta.Error = "all feed sources failed"
		metrics.Global.SetError(resp.Meta.Error)
		logger.Error("aggregation degraded", "sources", len(results))
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	items := news.Collect(results)
	metrics.Global.AddItemsCollected(len(items))
	metrics.Global.SetLastRun()

	resp.Items = news.Run(items, topic, query, limit)
	resp.Meta.Total = len(resp.Items)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	merged := topics.ApplyOverrides(s.catalog, s.store.Load())
	writeJSON(w, http.StatusOK, map[string][]topics.Topic{"topics": merged})
}

func (s *Server) handleGetOverrides(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Load())
}

// handlePutOverrides replaces the whole override map. Load-merge-save across
// concurrent writers is last-write-wins, matching the browser-tab behavior
// this replaces.
func (s *Server) handlePutOverrides(w http.ResponseWriter, r *http.Request) {
	var m map[string]topics.Override
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid override payload"})
		return
	}
	if err := s.store.Save(m); err != nil {
		logger.Error("save overrides", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save overrides"})
		return
	}
	writeJSON(w, http.StatusOK, s.store.Load())
}

// handleChat forwards to the upstream chat service when one is configured,
// relaying its reply unchanged (JSON or not). Without an upstream it answers
// directly via Gemini.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	metrics.Global.IncrementChatRequests()

	if !s.chat.Enabled() {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "no chat backend configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}

	if s.chat.HasUpstream() {
		relay, err := s.chat.Forward(r.Context(), body)
		if err != nil {
			logger.Error("chat upstream", "err", err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "chat upstream unavailable"})
			return
		}
		w.Header().Set("Content-Type", relay.ContentType)
		w.WriteHeader(relay.Status)
		_, _ = w.Write(relay.Body)
		return
	}

	var req chat.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid chat payload"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	answer, err := s.chat.Answer(r.Context(), req)
	if err != nil {
		logger.Error("chat answer", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to answer"})
		return
	}
	writeJSON(w, http.StatusOK, chat.Response{Answer: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := http.StatusOK
	payload := map[string]interface{}{
		"status":     "ok",
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		payload["status"] = "error"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, payload)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

// parseLimit defaults non-numeric input and clamps numeric input into the
// allowed range.
func parseLimit(raw string) int {
	if raw == "" {
		return news.DefaultLimit
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return news.DefaultLimit
	}
	return news.ClampLimit(value)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("write response", "err", err)
	}
}
