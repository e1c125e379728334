// Package knowledge reads the markdown knowledge base that backs the portfolio studio.
package knowledge

import (
	"path/filepath"
	"strings"
)

// DocumentFormat enumerates document payload formats found in the knowledge base.
type DocumentFormat string

const (
	// FormatUnknown represents an unsupported or undetected format.
	FormatUnknown DocumentFormat = ""
	// FormatMarkdown represents Markdown documents.
	FormatMarkdown DocumentFormat = "markdown"
)

// DetectFormat infers a document format from the provided path's extension.
// Only lower-case ".md" files are part of the knowledge base.
func DetectFormat(path string) DocumentFormat {
	if filepath.Ext(path) == ".md" {
		return FormatMarkdown
	}
	return FormatUnknown
}

// ExtractTitle returns the text of the first level-one heading, or fallback
// when the document has none or the heading is blank.
func ExtractTitle(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "# ") {
			continue
		}
		if title := strings.TrimSpace(trimmed[2:]); title != "" {
			return title
		}
		return fallback
	}
	return fallback
}

// DocID derives the stable document identifier from a relative path.
func DocID(relativePath string) string {
	return filepath.ToSlash(relativePath)
}
