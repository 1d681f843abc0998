package topics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsweb/internal/topics"
)

func TestEffectiveKeywordsNoOverride(t *testing.T) {
	topic := topics.Topic{ID: "ai", Title: "AI", Keywords: []string{"AI", " OpenAI ", "llm"}}
	got := topics.EffectiveKeywords(topic, topics.Override{})
	require.Equal(t, []string{"ai", "openai", "llm"}, got)
}

func TestEffectiveKeywordsRemoved(t *testing.T) {
	topic := topics.Topic{ID: "tech", Keywords: []string{"tech", "cloud", "mobile"}}
	got := topics.EffectiveKeywords(topic, topics.Override{Removed: []string{"Cloud"}})
	require.Equal(t, []string{"tech", "mobile"}, got)
}

func TestEffectiveKeywordsReAdded(t *testing.T) {
	topic := topics.Topic{ID: "tech", Keywords: []string{"tech", "cloud"}}
	ov := topics.Override{Added: []string{"cloud"}, Removed: []string{"cloud"}}
	got := topics.EffectiveKeywords(topic, ov)
	require.Equal(t, []string{"tech", "cloud"}, got)
}

func TestEffectiveKeywordsNoDuplicates(t *testing.T) {
	topic := topics.Topic{ID: "x", Keywords: []string{"go", "GO", "rust"}}
	ov := topics.Override{Added: []string{"Rust", "zig", "zig"}}
	got := topics.EffectiveKeywords(topic, ov)
	require.Equal(t, []string{"go", "rust", "zig"}, got)

	seen := map[string]bool{}
	for _, k := range got {
		require.False(t, seen[k], "duplicate keyword %q", k)
		seen[k] = true
	}
}

func TestApplyOverridesDoesNotMutate(t *testing.T) {
	catalog := []topics.Topic{{ID: "ai", Keywords: []string{"AI"}}}
	merged := topics.ApplyOverrides(catalog, map[string]topics.Override{
		"ai": {Added: []string{"llm"}},
	})

	require.Equal(t, []string{"ai", "llm"}, merged[0].Keywords)
	require.Equal(t, []string{"AI"}, catalog[0].Keywords)
}

func TestFind(t *testing.T) {
	catalog := topics.Default()

	all, ok := topics.Find(catalog, "all")
	require.True(t, ok)
	require.Equal(t, topics.AllTopicID, all.ID)

	_, ok = topics.Find(catalog, "nope")
	require.False(t, ok)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	body := `topics:
  - id: all
    title: All
    keywords: []
  - id: science
    title: Science
    keywords: [research, nasa]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	catalog, err := topics.Load(path)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	require.Equal(t, "science", catalog[1].ID)
	require.Equal(t, []string{"research", "nasa"}, catalog[1].Keywords)

	_, err = topics.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
