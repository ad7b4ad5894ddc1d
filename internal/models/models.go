package models

import "time"

// Document is one ingested source. Once stored it is immutable; the store
// refuses a second document with the same name.
type Document struct {
	Name      string    `json:"name"`
	Author    string    `json:"author"`
	Year      string    `json:"year"`
	Summary   string    `json:"summary"`
	Entities  []string  `json:"entities"`
	Text      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CitationToken is the literal APA in-text marker for this document, both
// instructed in prompts and scanned for during bibliography extraction.
func (d Document) CitationToken() string {
	return "(" + d.Author + ", " + d.Year + ")"
}

type DraftVersion struct {
	Index     int       `json:"index"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type DraftVersionView struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Text   string `json:"text"`
	Active bool   `json:"active"`
}
