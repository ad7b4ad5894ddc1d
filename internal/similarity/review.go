package similarity

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Annotation marks the byte range [Start, End) of a flagged sentence inside
// the review's current text.
type Annotation struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Match Match  `json:"match"`
}

// Review holds the draft text decorated with similarity annotations. The
// text is the single source of truth; accepting a rewrite edits it in place
// and shifts every later annotation so the remaining ranges stay valid.
type Review struct {
	mu          sync.Mutex
	text        string
	annotations []Annotation
}

// NewReview anchors each match at the first literal occurrence of its
// original sentence in draft. Matches whose sentence is absent, or whose
// range would overlap an earlier annotation, are skipped silently.
func NewReview(draft string, matches []Match) *Review {
	r := &Review{text: draft}
	for _, m := range matches {
		start := strings.Index(draft, m.OriginalSentence)
		if start < 0 || m.OriginalSentence == "" {
			continue
		}
		end := start + len(m.OriginalSentence)
		if r.overlaps(start, end) {
			continue
		}
		r.annotations = append(r.annotations, Annotation{
			ID:    uuid.NewString(),
			Start: start,
			End:   end,
			Match: m,
		})
	}
	sort.Slice(r.annotations, func(i, j int) bool { return r.annotations[i].Start < r.annotations[j].Start })
	return r
}

func (r *Review) overlaps(start, end int) bool {
	for _, a := range r.annotations {
		if start < a.End && a.Start < end {
			return true
		}
	}
	return false
}

func (r *Review) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}

func (r *Review) Annotations() []Annotation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Annotation(nil), r.annotations...)
}

// Accept replaces the annotated range with the match's rewrite, removes the
// annotation, and shifts every annotation after it by the length delta.
func (r *Review) Accept(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.annotations {
		if a.ID != id {
			continue
		}
		rewrite := a.Match.Rewrite
		r.text = r.text[:a.Start] + rewrite + r.text[a.End:]
		delta := len(rewrite) - (a.End - a.Start)
		r.annotations = append(r.annotations[:i], r.annotations[i+1:]...)
		for j := range r.annotations {
			if r.annotations[j].Start >= a.End {
				r.annotations[j].Start += delta
				r.annotations[j].End += delta
			}
		}
		return r.text, nil
	}
	return r.text, fmt.Errorf("no open annotation with id %s", id)
}

// Dismiss removes the annotation and leaves the text alone.
func (r *Review) Dismiss(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.annotations {
		if a.ID == id {
			r.annotations = append(r.annotations[:i], r.annotations[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no open annotation with id %s", id)
}

func (r *Review) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.annotations)
}
