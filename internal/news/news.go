// Package news turns raw feed entries into canonical news items and runs the
// topic/query filter pipeline over them.
package news

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsweb/internal/feeds"
	"github.com/deusflow/newsweb/internal/metrics"
	"github.com/deusflow/newsweb/internal/textutil"
	"github.com/deusflow/newsweb/internal/topics"
)

const (
	// DefaultLimit is used when the caller supplies no limit at all.
	DefaultLimit = 30
	// MaxLimit caps any caller-supplied limit.
	MaxLimit = 100

	// maxFieldRunes bounds derived ids and summaries so they stay usable as
	// keys and card text.
	maxFieldRunes = 220

	// perFeedLimit caps how many entries a single feed may contribute to one
	// aggregation run.
	perFeedLimit = 6
)

// Item is a canonical news item, built fresh on every aggregation request.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"publishedAt"`
	Topic       string `json:"topic,omitempty"`
}

// FromFeedItem maps one raw feed entry to a canonical item. Returns nil when
// the entry has neither title nor link; such entries carry nothing worth
// showing.
func FromFeedItem(entry *gofeed.Item, src feeds.Source) *Item {
	if entry == nil {
		return nil
	}

	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" && link == "" {
		return nil
	}

	basis := entry.GUID
	if basis == "" {
		basis = link
	}
	if basis == "" {
		basis = title
	}
	if basis == "" {
		basis = uuid.NewString()
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}
	summary = textutil.Truncate(textutil.CleanSummary(textutil.StripHTML(summary)), maxFieldRunes)

	published := ""
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC().Format(time.RFC3339)
	} else if entry.UpdatedParsed != nil {
		published = entry.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	return &Item{
		ID:          textutil.Truncate(fmt.Sprintf("%s-%s", src.ID, basis), maxFieldRunes),
		Title:       title,
		Link:        link,
		Source:      src.Title,
		Summary:     summary,
		PublishedAt: published,
	}
}

// Collect normalizes every fetched feed into items, capping each feed's
// contribution and dropping duplicate links (first occurrence wins). Failed
// sources are already empty in their Result and simply contribute nothing.
func Collect(results []feeds.Result) []Item {
	seenLinks := make(map[string]struct{})
	var items []Item

	for _, r := range results {
		if r.Err != nil || r.Feed == nil {
			continue
		}
		count := 0
		for _, entry := range r.Feed.Items {
			if count >= perFeedLimit {
				break
			}
			item := FromFeedItem(entry, r.Source)
			if item == nil {
				continue
			}
			if item.Link != "" {
				if _, dup := seenLinks[item.Link]; dup {
					metrics.Global.IncrementDuplicatesFiltered()
					continue
				}
				seenLinks[item.Link] = struct{}{}
			}
			items = append(items, *item)
			count++
		}
	}
	return items
}

// MatchesTopic reports whether the item falls into the topic's bucket. The
// reserved "all" topic and topics with no effective keywords match
// everything. Matching is plain substring containment over the normalized
// title+summary+source text; short keywords can false-positive ("ai" matches
// "said") and that behavior is kept on purpose.
func MatchesTopic(item Item, topic topics.Topic) bool {
	if topic.ID == topics.AllTopicID || len(topic.Keywords) == 0 {
		return true
	}
	hay := haystack(item)
	for _, k := range topic.Keywords {
		n := textutil.Normalize(k)
		if n == "" {
			continue
		}
		if strings.Contains(hay, n) {
			return true
		}
	}
	return false
}

// MatchesQuery applies the same substring rule to a free-text query. An empty
// query matches everything.
func MatchesQuery(item Item, query string) bool {
	q := textutil.Normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(haystack(item), q)
}

func haystack(item Item) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{item.Title, item.Summary, item.Source} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return textutil.Normalize(strings.Join(parts, " "))
}

// publishedTime parses the item timestamp for ranking. Missing or
// unparseable timestamps rank as epoch zero, i.e. last in a newest-first
// sort.
func publishedTime(item Item) time.Time {
	if item.PublishedAt == "" {
		return time.Unix(0, 0)
	}
	ts, err := time.Parse(time.RFC3339, item.PublishedAt)
	if err != nil {
		return time.Unix(0, 0)
	}
	return ts
}

// Rank sorts newest first. The sort is stable, so equal timestamps keep
// their input order.
func Rank(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return publishedTime(items[i]).After(publishedTime(items[j]))
	})
}

// ClampLimit forces any caller-supplied limit into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Run applies topic and query matching, ranks newest first and truncates to
// the clamped limit. Pure over its inputs: identical inputs give identical
// output.
func Run(items []Item, topic topics.Topic, query string, limit int) []Item {
	limit = ClampLimit(limit)

	matched := make([]Item, 0, len(items))
	for _, item := range items {
		if !MatchesTopic(item, topic) {
			continue
		}
		if !MatchesQuery(item, query) {
			continue
		}
		matched = append(matched, item)
	}

	Rank(matched)

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
