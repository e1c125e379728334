package cmd

import (
	"fmt"
	"strings"

	"github.com/fabfab/portfolio-agent/chat"
	"github.com/fabfab/portfolio-agent/knowledge"
	"github.com/fabfab/portfolio-agent/retrieval"
)

func formatMatches(query string, matches []retrieval.Match) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No documents matched %q.\n", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Results for %q (%d)\n\n", query, len(matches))
	for i, m := range matches {
		fmt.Fprintf(&sb, "### %d. %s (`%s`), score %d\n\n", i+1, m.Title, m.RelativePath, m.Score)
		fmt.Fprintf(&sb, "%s\n\n", m.Snippet)
	}
	return sb.String()
}

func formatAnswer(resp chat.Response) string {
	var sb strings.Builder
	sb.WriteString(resp.Answer)
	sb.WriteString("\n")

	if len(resp.Results) > 0 {
		sb.WriteString("\n**Sources**\n\n")
		for i, m := range resp.Results {
			fmt.Fprintf(&sb, "%d. %s (`%s`)\n", i+1, m.Title, m.RelativePath)
		}
	}
	if resp.Generated() {
		fmt.Fprintf(&sb, "\n_%s / %s_\n", resp.Provider.DisplayName(), resp.Model)
	}
	return sb.String()
}

func formatDocuments(docs []knowledge.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Knowledge base (%d documents)\n\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(&sb, "- **%s** (`%s`)\n", d.Title, d.RelativePath)
	}
	return sb.String()
}
