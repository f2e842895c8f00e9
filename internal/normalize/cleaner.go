// Package normalize canonicalizes raw article text and derives the stable
// keyword-signature fingerprint used for content-addressed deduplication.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// DefaultKeywordLimit is the number of ranked keywords kept in the signature.
const DefaultKeywordLimit = 25

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "to": {}, "of": {}, "in": {},
	"on": {}, "for": {}, "with": {}, "from": {}, "by": {}, "at": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "that": {},
	"this": {}, "it": {}, "as": {}, "its": {}, "into": {}, "about": {}, "after": {},
	"before": {}, "over": {}, "under": {}, "than": {}, "then": {}, "but": {},
	"if": {}, "not": {}, "no": {}, "yes": {}, "you": {}, "your": {}, "we": {},
	"our": {}, "they": {}, "their": {}, "he": {}, "she": {}, "his": {}, "her": {},
	"them": {}, "us": {}, "i": {},
}

var boilerplateWords = map[string]struct{}{
	"subscribe": {}, "newsletter": {}, "cookies": {}, "privacy": {},
	"advertisement": {}, "sponsored": {}, "click": {}, "read": {}, "more": {},
	"share": {}, "login": {}, "sign": {}, "policy": {}, "terms": {},
}

var (
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	nonAlnumPattern = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	wsPattern       = regexp.MustCompile(`\s+`)
)

// CleanedContent is the result of normalizing one article's text.
type CleanedContent struct {
	CleanedText string // space-joined keyword signature
	ContentHash string // sha256 hex of the signature
}

// Cleaner normalizes raw text into a keyword signature and dedupe fingerprint.
type Cleaner struct {
	keywordLimit int
}

// NewCleaner creates a cleaner keeping the top keywordLimit ranked tokens.
// A non-positive limit falls back to DefaultKeywordLimit.
func NewCleaner(keywordLimit int) *Cleaner {
	if keywordLimit <= 0 {
		keywordLimit = DefaultKeywordLimit
	}
	return &Cleaner{keywordLimit: keywordLimit}
}

// CleanForKeywords normalizes text and builds its keyword signature.
// It never fails: empty input yields an empty signature with a well-defined
// hash, and malformed HTML degrades to treating the input as plain text.
func (c *Cleaner) CleanForKeywords(text string) CleanedContent {
	if text == "" {
		return CleanedContent{CleanedText: "", ContentHash: HashText("")}
	}

	normalized := normalizeText(text)
	counts := make(map[string]int)
	for _, token := range strings.Split(normalized, " ") {
		if token == "" || len(token) <= 2 {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		if _, ok := boilerplateWords[token]; ok {
			continue
		}
		counts[token]++
	}

	ranked := make([]string, 0, len(counts))
	for token := range counts {
		ranked = append(ranked, token)
	}
	// Rank by descending frequency; ties break on the token itself so the
	// signature is deterministic across runs.
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > c.keywordLimit {
		ranked = ranked[:c.keywordLimit]
	}

	cleaned := strings.Join(ranked, " ")
	return CleanedContent{CleanedText: cleaned, ContentHash: HashText(cleaned)}
}

// HashText returns the sha256 hex digest of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// normalizeText runs the canonicalization pipeline: entity unescape and tag
// stripping via the HTML parser, then URL removal, non-alphanumeric removal,
// whitespace collapsing, and lowercasing.
func normalizeText(text string) string {
	stripped := stripMarkup(text)
	stripped = urlPattern.ReplaceAllString(stripped, " ")
	stripped = nonAlnumPattern.ReplaceAllString(stripped, " ")
	stripped = wsPattern.ReplaceAllString(stripped, " ")
	return strings.ToLower(strings.TrimSpace(stripped))
}

// stripMarkup extracts visible text, skipping script/style/noscript/iframe.
// The parser also resolves HTML entities in text nodes. Plain text passes
// through unchanged apart from whitespace joining.
func stripMarkup(text string) string {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				buf.WriteString(trimmed)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}
