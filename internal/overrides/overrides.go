// Package overrides persists the per-topic keyword overrides as a single
// serialized blob under a fixed storage key, the same shape the web client
// keeps in browser storage. The KV indirection lets a non-browser deployment
// substitute an in-memory or file-backed store without touching the merge
// logic.
package overrides

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/deusflow/newsweb/internal/textutil"
	"github.com/deusflow/newsweb/internal/topics"
)

// StorageKey matches the key the web client uses in localStorage.
const StorageKey = "topicKeywordsOverrides:v2"

// KV is the minimal key/value surface the store needs.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// MemoryKV is a process-local KV for tests and stateless deployments.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// FileKV keeps all keys in one JSON file, written whole on every Set.
// Concurrent writers are last-write-wins, same as multiple browser tabs
// racing on localStorage.
type FileKV struct {
	path string
	mu   sync.Mutex
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		// Unreadable file gets replaced rather than blocking the write.
		data = make(map[string]json.RawMessage)
	}
	data[key] = append(json.RawMessage(nil), value...)

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal kv file: %w", err)
	}
	if err := os.WriteFile(f.path, out, 0644); err != nil {
		return fmt.Errorf("failed to write kv file: %w", err)
	}
	return nil
}

func (f *FileKV) read() (map[string]json.RawMessage, error) {
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kv file: %w", err)
	}
	if len(raw) == 0 {
		return make(map[string]json.RawMessage), nil
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kv file: %w", err)
	}
	return data, nil
}

// Store reads and writes the override map through a KV.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns the stored override map. Overrides are best-effort: a missing
// blob, a broken KV or a malformed payload all come back as an empty map,
// never as an error.
func (s *Store) Load() map[string]topics.Override {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil || !ok || len(raw) == 0 {
		return map[string]topics.Override{}
	}
	var m map[string]topics.Override
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]topics.Override{}
	}
	return m
}

// Save normalizes every added/removed keyword and writes the whole map back
// under the fixed key.
func (s *Store) Save(m map[string]topics.Override) error {
	clean := make(map[string]topics.Override, len(m))
	for id, ov := range m {
		clean[id] = topics.Override{
			Added:   normalizeList(ov.Added),
			Removed: normalizeList(ov.Removed),
		}
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("failed to marshal overrides: %w", err)
	}
	return s.kv.Set(StorageKey, raw)
}

// normalizeList flattens each entry through the keyword parser, so a single
// "ai, llm" entry from a text input becomes two keywords, then dedupes.
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, entry := range in {
		for _, n := range textutil.ParseKeywords(entry) {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
