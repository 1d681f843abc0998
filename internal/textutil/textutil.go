// Package textutil contains the plain-text normalization helpers shared by the
// filter pipeline and the item normalizer.
package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	scriptRe      = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe       = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	brRe          = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)
	closePRe      = regexp.MustCompile(`(?i)</p\s*>`)
	newlineRun    = regexp.MustCompile(`\n{3,}`)
	spaceRun      = regexp.MustCompile(`[ \t]{2,}`)
	trailingWS    = regexp.MustCompile(`[ \t]+\n`)
	keywordSplit  = regexp.MustCompile(`[,;\n]`)
)

// Fixed entity set; anything else stays as-is.
var entities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

// Normalize lowercases, decodes the fixed entity set, collapses whitespace runs
// to a single space and trims. Total function: empty input gives empty output.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = entities.Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripHTML removes script/style blocks wholesale, turns <br> and </p> into
// newlines, deletes the remaining tags, decodes entities and tidies the
// whitespace. Keeps paragraph breaks (max two consecutive newlines).
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = scriptRe.ReplaceAllString(s, "")
	s = styleRe.ReplaceAllString(s, "")
	s = brRe.ReplaceAllString(s, "\n")
	s = closePRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = entities.Replace(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = trailingWS.ReplaceAllString(s, "\n")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanSummary flattens an HTML snippet into a single line: tags become
// spaces, entities are decoded, whitespace collapses. Case is preserved.
func CleanSummary(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, " ")
	s = entities.Replace(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseKeywords splits user input on commas, semicolons and newlines and
// normalizes every part, dropping empties.
func ParseKeywords(s string) []string {
	parts := keywordSplit.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := Normalize(p); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
