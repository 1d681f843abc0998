package metrics

import (
	"sync"
	"time"
)

// Metrics tracks aggregation activity for /health and /metrics.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	RequestsServed     int64
	ItemsCollected     int64
	SourceFailures     int64
	DuplicatesFiltered int64
	ChatRequests       int64

	// Timings
	LastFetchTime    time.Duration
	TotalFetchTime   time.Duration
	FetchCount       int64
	AverageFetchTime time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementRequestsServed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestsServed++
}

func (m *Metrics) AddItemsCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsCollected += int64(n)
}

func (m *Metrics) AddSourceFailures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFailures += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementChatRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatRequests++
}

func (m *Metrics) RecordFetchTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastFetchTime = duration
	m.TotalFetchTime += duration
	m.FetchCount++

	if m.FetchCount > 0 {
		m.AverageFetchTime = m.TotalFetchTime / time.Duration(m.FetchCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"requests_served":       m.RequestsServed,
		"items_collected":       m.ItemsCollected,
		"source_failures":       m.SourceFailures,
		"duplicates_filtered":   m.DuplicatesFiltered,
		"chat_requests":         m.ChatRequests,
		"last_fetch_time_ms":    m.LastFetchTime.Milliseconds(),
		"average_fetch_time_ms": m.AverageFetchTime.Milliseconds(),
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
