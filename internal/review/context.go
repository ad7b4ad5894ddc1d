package review

import (
	"strings"

	"draftdesk/internal/models"
)

// KnowledgeContext serializes the knowledge store for inclusion in review
// prompts. Documents appear in store order, one delimited block each, so the
// model sees a stable corpus across the stages of a single run.
func KnowledgeContext(docs []models.Document) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("--- SOURCE ---\n")
		b.WriteString("Name: " + d.Name + "\n")
		b.WriteString("Author: " + d.Author + "\n")
		b.WriteString("Year: " + d.Year + "\n")
		b.WriteString("Summary: " + d.Summary + "\n")
	}
	return b.String()
}
