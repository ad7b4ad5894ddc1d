// Package similarity flags draft sentences that track an ingested source too
// closely and manages the resulting annotations over the draft text.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"draftdesk/internal/models"
	"draftdesk/internal/providers"
	"draftdesk/internal/util"
)

var (
	ErrDraftTooShort = errors.New("draft is below the similarity minimum length")
	ErrNoDocuments   = errors.New("no documents to compare against")
)

// Match is one flagged overlap between the draft and a source document.
type Match struct {
	OriginalSentence string `json:"original_sentence"`
	SimilarPassage   string `json:"similar_passage_from_source"`
	SourceFilename   string `json:"source_filename"`
	Rewrite          string `json:"rewritten_suggestion"`
}

const promptTemplate = `Compare the draft below against the source documents and flag any draft
sentence that closely paraphrases or copies a source passage.

Output STRICT JSON with this schema:
{
  "matches": [
    {
      "original_sentence": "the exact sentence from the draft",
      "similar_passage_from_source": "the passage it resembles",
      "source_filename": "name of the source document",
      "rewritten_suggestion": "a rewritten sentence with the same meaning in different words"
    }
  ]
}

Report only close overlaps; an empty matches array is a valid answer.
"original_sentence" must be copied verbatim from the draft. Never omit a
field and never add fields.

Draft:
%s

Source documents:
%s`

type matchPayload struct {
	Matches *[]struct {
		OriginalSentence *string `json:"original_sentence"`
		SimilarPassage   *string `json:"similar_passage_from_source"`
		SourceFilename   *string `json:"source_filename"`
		Rewrite          *string `json:"rewritten_suggestion"`
	} `json:"matches"`
}

type Generator interface {
	Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error)
}

// Analyze checks draft against the text of every ingested document.
// minRunes guards against running the pass on a trivially short draft;
// maxSourceRunes bounds how much of each source is sent, zero meaning the
// full text.
func Analyze(ctx context.Context, g Generator, draft string, docs []models.Document, minRunes, maxSourceRunes int) ([]Match, error) {
	if len([]rune(strings.TrimSpace(draft))) < minRunes {
		return nil, fmt.Errorf("similarity: %w (%d rune minimum)", ErrDraftTooShort, minRunes)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("similarity: %w", ErrNoDocuments)
	}

	var sources strings.Builder
	for i, d := range docs {
		if i > 0 {
			sources.WriteString("\n")
		}
		sources.WriteString("--- " + d.Name + " ---\n")
		sources.WriteString(util.TrimToRunes(d.Text, maxSourceRunes))
		sources.WriteString("\n")
	}

	resp, _, err := g.Generate(ctx, providers.GenerateRequest{
		Operation: "similarity_check",
		Prompt:    fmt.Sprintf(promptTemplate, draft, sources.String()),
		JSON:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}

	var payload matchPayload
	if err := providers.DecodeJSON(resp.Text, &payload); err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}
	if payload.Matches == nil {
		return nil, fmt.Errorf("similarity: response violates schema: missing matches")
	}
	out := make([]Match, 0, len(*payload.Matches))
	for _, m := range *payload.Matches {
		if m.OriginalSentence == nil || m.SimilarPassage == nil || m.SourceFilename == nil || m.Rewrite == nil {
			return nil, fmt.Errorf("similarity: response violates schema: missing required field")
		}
		out = append(out, Match{
			OriginalSentence: *m.OriginalSentence,
			SimilarPassage:   *m.SimilarPassage,
			SourceFilename:   *m.SourceFilename,
			Rewrite:          *m.Rewrite,
		})
	}
	return out, nil
}
