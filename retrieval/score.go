package retrieval

import (
	"sort"
	"strings"

	"github.com/fabfab/portfolio-agent/knowledge"
)

type scoredDocument struct {
	doc   knowledge.Document
	score int
}

// collapseWhitespace replaces every whitespace run with a single space and
// trims both ends.
func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func normalizeText(value string) string {
	return strings.ToLower(collapseWhitespace(value))
}

// Tokenize lower-cases the query and splits it on whitespace.
func Tokenize(query string) []string {
	normalized := normalizeText(query)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// CountOccurrences counts non-overlapping occurrences of token in haystack,
// resuming each search right after the previous match.
func CountOccurrences(haystack, token string) int {
	if token == "" {
		return 0
	}

	count := 0
	for from := 0; ; {
		idx := strings.Index(haystack[from:], token)
		if idx < 0 {
			return count
		}
		count++
		from += idx + len(token)
	}
}

// ScoreDocument sums the occurrence counts of every token over the document's
// title, relative path and content.
func ScoreDocument(doc knowledge.Document, tokens []string) int {
	haystack := normalizeText(doc.Title + "\n" + doc.RelativePath + "\n" + doc.Content)

	score := 0
	for _, token := range tokens {
		score += CountOccurrences(haystack, token)
	}
	return score
}

// rank scores docs, drops those without hits and returns at most limit of the
// rest by descending score. Ties keep their input order.
func rank(docs []knowledge.Document, tokens []string, limit int) []scoredDocument {
	scored := make([]scoredDocument, 0, len(docs))
	for _, doc := range docs {
		if score := ScoreDocument(doc, tokens); score > 0 {
			scored = append(scored, scoredDocument{doc: doc, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
