package ingest

import (
	"context"
	"fmt"
	"strings"

	"draftdesk/internal/providers"
	"draftdesk/internal/util"
)

// Metadata is the schema-constrained extraction result for one document.
// All four fields are required; a response missing any of them is treated
// as a failed call.
type Metadata struct {
	Author   string   `json:"author"`
	Year     string   `json:"year"`
	Summary  string   `json:"summary"`
	Entities []string `json:"entities"`
}

const metadataPromptTemplate = `Read the following document and extract its metadata.

Output STRICT JSON with this schema, all fields required:
{
  "author": "primary author's surname",
  "year": "4-digit publication year",
  "summary": "one-paragraph summary of the document",
  "entities": ["key entity names mentioned, in order of appearance"]
}

If a value cannot be determined from the text, use your best single guess;
never omit a field and never add fields.

Document name: %s

Document text:
%s`

type metadataPayload struct {
	Author   *string   `json:"author"`
	Year     *string   `json:"year"`
	Summary  *string   `json:"summary"`
	Entities *[]string `json:"entities"`
}

// Generator is the single-call surface this package needs from the provider
// layer; *providers.Manager satisfies it.
type Generator interface {
	Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error)
}

// ExtractMetadata runs one schema-constrained call for a document. maxRunes
// bounds how much of the text is sent.
func ExtractMetadata(ctx context.Context, g Generator, name, text string, maxRunes int) (Metadata, error) {
	if strings.TrimSpace(text) == "" {
		return Metadata{}, util.ErrEmptyInput
	}
	prompt := fmt.Sprintf(metadataPromptTemplate, name, util.TrimToRunes(text, maxRunes))
	resp, _, err := g.Generate(ctx, providers.GenerateRequest{
		Operation: "metadata_extract",
		Prompt:    prompt,
		JSON:      true,
	})
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata extraction for %s: %w", name, err)
	}

	var payload metadataPayload
	if err := providers.DecodeJSON(resp.Text, &payload); err != nil {
		return Metadata{}, fmt.Errorf("metadata extraction for %s: %w", name, err)
	}
	if payload.Author == nil || payload.Year == nil || payload.Summary == nil || payload.Entities == nil {
		return Metadata{}, fmt.Errorf("metadata extraction for %s: response violates schema: missing required field", name)
	}
	return Metadata{
		Author:   strings.TrimSpace(*payload.Author),
		Year:     strings.TrimSpace(*payload.Year),
		Summary:  strings.TrimSpace(*payload.Summary),
		Entities: *payload.Entities,
	}, nil
}
