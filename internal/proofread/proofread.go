// Package proofread runs a schema-constrained proofreading pass over a draft
// and tracks the resulting working set of suggestions through accept and
// reject decisions.
package proofread

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"draftdesk/internal/providers"
	"draftdesk/internal/util"
)

// Category classifies a suggestion. The set is closed; a response using any
// other value fails the whole pass.
type Category string

const (
	CategoryGrammar     Category = "grammar"
	CategorySpelling    Category = "spelling"
	CategoryPunctuation Category = "punctuation"
	CategoryStyle       Category = "style"
	CategoryClarity     Category = "clarity"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGrammar, CategorySpelling, CategoryPunctuation, CategoryStyle, CategoryClarity:
		return true
	}
	return false
}

// Suggestion is one actionable finding. Issue is the exact draft excerpt to
// replace and Suggestion the replacement text.
type Suggestion struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Issue       string   `json:"issue"`
	Suggestion  string   `json:"suggestion"`
	Explanation string   `json:"explanation"`
}

const promptTemplate = `Proofread the following draft.

Output STRICT JSON with this schema:
{
  "suggestions": [
    {
      "category": "one of: grammar, spelling, punctuation, style, clarity",
      "issue": "the exact text from the draft that has the problem",
      "suggestion": "the corrected replacement text",
      "explanation": "one sentence on why"
    }
  ]
}

Report only genuine problems; an empty suggestions array is a valid answer.
"issue" must be copied verbatim from the draft. Never omit a field and never
add fields.

Draft:
%s`

type suggestionPayload struct {
	Suggestions *[]struct {
		Category    *string `json:"category"`
		Issue       *string `json:"issue"`
		Suggestion  *string `json:"suggestion"`
		Explanation *string `json:"explanation"`
	} `json:"suggestions"`
}

type Generator interface {
	Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error)
}

// Analyze proofreads draft with one schema-constrained call. Each returned
// suggestion carries a fresh ID for the accept and reject endpoints.
func Analyze(ctx context.Context, g Generator, draft string) ([]Suggestion, error) {
	if strings.TrimSpace(draft) == "" {
		return nil, util.ErrEmptyInput
	}
	resp, _, err := g.Generate(ctx, providers.GenerateRequest{
		Operation: "proofread",
		Prompt:    fmt.Sprintf(promptTemplate, draft),
		JSON:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("proofread: %w", err)
	}

	var payload suggestionPayload
	if err := providers.DecodeJSON(resp.Text, &payload); err != nil {
		return nil, fmt.Errorf("proofread: %w", err)
	}
	if payload.Suggestions == nil {
		return nil, fmt.Errorf("proofread: response violates schema: missing suggestions")
	}
	out := make([]Suggestion, 0, len(*payload.Suggestions))
	for _, s := range *payload.Suggestions {
		if s.Category == nil || s.Issue == nil || s.Suggestion == nil || s.Explanation == nil {
			return nil, fmt.Errorf("proofread: response violates schema: missing required field")
		}
		cat := Category(strings.ToLower(strings.TrimSpace(*s.Category)))
		if !cat.Valid() {
			return nil, fmt.Errorf("proofread: response violates schema: unknown category %q", *s.Category)
		}
		out = append(out, Suggestion{
			ID:          uuid.NewString(),
			Category:    cat,
			Issue:       *s.Issue,
			Suggestion:  *s.Suggestion,
			Explanation: *s.Explanation,
		})
	}
	return out, nil
}
