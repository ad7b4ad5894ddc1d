// Package biblio derives a reference list from a draft by scanning for the
// literal in-text citation token of each known document. Scanning is exact
// substring matching, so a source is listed only when the draft actually
// carries its "(Author, Year)" marker.
package biblio

import (
	"sort"
	"strings"

	"draftdesk/internal/models"
)

// Entry is one bibliography line.
type Entry struct {
	Author string `json:"author"`
	Year   string `json:"year"`
	Title  string `json:"title"`
}

// Extract scans draft for each document's citation token and returns one
// entry per cited document, sorted ascending by author. A document cited
// more than once still yields a single entry.
func Extract(draft string, docs []models.Document) []Entry {
	seen := make(map[string]bool, len(docs))
	var entries []Entry
	for _, d := range docs {
		if seen[d.Name] {
			continue
		}
		if !strings.Contains(draft, d.CitationToken()) {
			continue
		}
		seen[d.Name] = true
		entries = append(entries, Entry{
			Author: d.Author,
			Year:   d.Year,
			Title:  title(d.Name),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Author < entries[j].Author })
	return entries
}

// Render formats entries one per line in "Author. (Year). Title." form.
func Render(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Author+". ("+e.Year+"). "+e.Title+".")
	}
	return strings.Join(lines, "\n")
}

func title(name string) string {
	for _, ext := range []string{".txt", ".pdf", ".md"} {
		if len(name) > len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
