// Package topics holds the topic catalog and the keyword override merge logic.
package topics

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsweb/internal/textutil"
)

// AllTopicID is the reserved catch-all topic. It matches every item no matter
// what its keyword list says.
const AllTopicID = "all"

// Topic is a named filter bucket defined by a keyword list.
type Topic struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Override is a user-local adjustment layered on top of a topic's base
// keyword list.
type Override struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// CatalogConfig is the YAML config structure
// topics:
//   - id: ai
//     title: AI
//     keywords: [ai, llm]
type CatalogConfig struct {
	Topics []Topic `yaml:"topics"`
}

// Default returns the built-in catalog used when no topics file is configured.
func Default() []Topic {
	return []Topic{
		{ID: AllTopicID, Title: "All", Keywords: []string{}},
		{ID: "ai", Title: "AI", Keywords: []string{"ai", "artificial intelligence", "openai", "chatgpt", "llm", "machine learning"}},
		{ID: "tech", Title: "Technology", Keywords: []string{"tech", "software", "startup", "mobile", "cloud", "security", "cyber"}},
		{ID: "world", Title: "World", Keywords: []string{"world", "global", "europe", "ukraine", "war", "sanctions"}},
	}
}

// Load reads the topic catalog from a YAML file.
func Load(path string) ([]Topic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg CatalogConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Topics, nil
}

// Find returns the topic with the given id, or false when the catalog does
// not know it.
func Find(catalog []Topic, id string) (Topic, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// EffectiveKeywords computes (base - removed) + added, normalized and
// deduplicated. Base order is preserved, added keywords follow in their own
// order. A keyword listed in removed comes back if it is also in added.
func EffectiveKeywords(t Topic, ov Override) []string {
	removed := make(map[string]struct{}, len(ov.Removed))
	for _, k := range ov.Removed {
		if n := textutil.Normalize(k); n != "" {
			removed[n] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(t.Keywords)+len(ov.Added))
	for _, k := range t.Keywords {
		n := textutil.Normalize(k)
		if n == "" {
			continue
		}
		if _, drop := removed[n]; drop {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	for _, k := range ov.Added {
		n := textutil.Normalize(k)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ApplyOverrides returns a copy of the catalog with every topic's keyword
// list replaced by its effective keywords. The input catalog is not mutated.
func ApplyOverrides(catalog []Topic, ovs map[string]Override) []Topic {
	out := make([]Topic, 0, len(catalog))
	for _, t := range catalog {
		merged := t
		merged.Keywords = EffectiveKeywords(t, ovs[t.ID])
		out = append(out, merged)
	}
	return out
}
