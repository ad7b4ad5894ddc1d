package proofread

import (
	"fmt"
	"sync"

	"draftdesk/internal/util"
)

// Set is the working set of open suggestions for the current draft. Each
// proofreading run replaces it wholesale; accept and reject both remove the
// suggestion they act on.
type Set struct {
	mu          sync.Mutex
	suggestions []Suggestion
}

func NewSet() *Set {
	return &Set{}
}

// Replace swaps in the suggestions from a fresh run, dropping any previous
// working set.
func (s *Set) Replace(suggestions []Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = append([]Suggestion(nil), suggestions...)
}

func (s *Set) List() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Suggestion(nil), s.suggestions...)
}

// Accept applies the suggestion with the given ID to draft, replacing the
// first literal occurrence of its issue text, and removes it from the set.
// If the issue text no longer appears in the draft the suggestion is still
// removed and the draft comes back unchanged.
func (s *Set) Accept(id, draft string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sug := range s.suggestions {
		if sug.ID != id {
			continue
		}
		s.suggestions = append(s.suggestions[:i], s.suggestions[i+1:]...)
		return util.ReplaceFirst(draft, sug.Issue, sug.Suggestion), nil
	}
	return draft, fmt.Errorf("no open suggestion with id %s", id)
}

// Reject removes the suggestion without touching the draft.
func (s *Set) Reject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sug := range s.suggestions {
		if sug.ID == id {
			s.suggestions = append(s.suggestions[:i], s.suggestions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no open suggestion with id %s", id)
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.suggestions)
}
