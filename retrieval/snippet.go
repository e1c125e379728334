package retrieval

import (
	"strings"
	"unicode/utf8"
)

// BuildSnippet cuts a window of radius characters on each side of the
// earliest token hit in content. Without any hit it returns the first
// 2*radius characters. A negative radius is treated as zero.
func BuildSnippet(content string, tokens []string, radius int) string {
	if radius < 0 {
		radius = 0
	}
	normalized := collapseWhitespace(content)
	lower := strings.ToLower(normalized)

	// strings.ToLower maps rune for rune, so rune offsets in lower are valid
	// offsets in normalized.
	firstHit := -1
	for _, token := range tokens {
		if token == "" {
			continue
		}
		idx := strings.Index(lower, token)
		if idx < 0 {
			continue
		}
		pos := utf8.RuneCountInString(lower[:idx])
		if firstHit < 0 || pos < firstHit {
			firstHit = pos
		}
	}

	runes := []rune(normalized)
	if firstHit < 0 {
		return string(runes[:min(len(runes), radius*2)])
	}

	start := max(0, firstHit-radius)
	end := min(len(runes), firstHit+radius)

	var sb strings.Builder
	if start > 0 {
		sb.WriteString(Ellipsis)
	}
	sb.WriteString(string(runes[start:end]))
	if end < len(runes) {
		sb.WriteString(Ellipsis)
	}
	return sb.String()
}
