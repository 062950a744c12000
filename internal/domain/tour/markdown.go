package tour

import (
	"strconv"
	"strings"
)

// Markdown digest literals.
const (
	MarkdownHeading     = "## Tours matching your interest"
	EmptyDocumentText   = "(empty document)"
	NoQueryProvidedText = "(no query provided)"
	markdownRule        = "---"
)

// RenderMarkdown renders a numbered digest of the documents' text, with a horizontal
// rule between entries and none after the last. An empty input renders the heading
// and the no-query placeholder.
func RenderMarkdown(docs []Document) string {
	if len(docs) == 0 {
		return MarkdownHeading + "\n\n" + NoQueryProvidedText + "\n"
	}

	lines := make([]string, 0, 2+len(docs)*4)
	lines = append(lines, MarkdownHeading, "")

	for i := range docs {
		content := strings.TrimSpace(docs[i].Content)
		if content == "" {
			content = EmptyDocumentText
		}
		lines = append(lines, strconv.Itoa(i+1)+". "+content, "")
		if i != len(docs)-1 {
			lines = append(lines, markdownRule, "")
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
