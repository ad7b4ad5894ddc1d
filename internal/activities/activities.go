package activities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"draftdesk/internal/chat"
	"draftdesk/internal/config"
	"draftdesk/internal/ingest"
	"draftdesk/internal/models"
	"draftdesk/internal/providers"
	"draftdesk/internal/review"
	"draftdesk/internal/store"
)

type Activities struct {
	cfg       config.Config
	knowledge *store.Knowledge
	drafts    *store.Drafts
	chat      *chat.Manager
	providers *providers.Manager
}

func New(cfg config.Config, knowledge *store.Knowledge, drafts *store.Drafts, chatMgr *chat.Manager, pm *providers.Manager) *Activities {
	return &Activities{
		cfg:       cfg,
		knowledge: knowledge,
		drafts:    drafts,
		chat:      chatMgr,
		providers: pm,
	}
}

// ExtractTextActivity turns one ingest item into sanitized plain text. Items
// arrive either as a saved file path or as raw pasted text.
func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	_ = ctx
	if in.RawText != "" {
		text := ingest.TextFromRaw(in.RawText)
		if text == "" {
			return ExtractTextOutput{}, fmt.Errorf("extract %s: pasted text is empty after sanitizing", in.Name)
		}
		return ExtractTextOutput{Text: text}, nil
	}
	var (
		text string
		err  error
	)
	if ingest.IsPDF(in.Name) {
		text, err = ingest.TextFromPDF(in.Path)
	} else {
		text, err = ingest.TextFromFile(in.Path)
	}
	if err != nil {
		return ExtractTextOutput{}, fmt.Errorf("extract %s: %w", in.Name, err)
	}
	return ExtractTextOutput{Text: text}, nil
}

func (a *Activities) ExtractMetadataActivity(ctx context.Context, in ExtractMetadataInput) (ExtractMetadataOutput, error) {
	md, err := ingest.ExtractMetadata(ctx, a.providers, in.Name, in.Text, a.cfg.MetadataMaxRunes)
	if err != nil {
		return ExtractMetadataOutput{}, err
	}
	return ExtractMetadataOutput{Metadata: md}, nil
}

func (a *Activities) HasDocumentActivity(ctx context.Context, in HasDocumentInput) (HasDocumentOutput, error) {
	_ = ctx
	return HasDocumentOutput{Exists: a.knowledge.Has(in.Name)}, nil
}

func (a *Activities) AddDocumentActivity(ctx context.Context, in AddDocumentInput) (AddDocumentOutput, error) {
	_ = ctx
	added := a.knowledge.Add(models.Document{
		Name:      in.Name,
		Author:    in.Metadata.Author,
		Year:      in.Metadata.Year,
		Summary:   in.Metadata.Summary,
		Entities:  in.Metadata.Entities,
		Text:      in.Text,
		CreatedAt: time.Now().UTC(),
	})
	return AddDocumentOutput{Added: added}, nil
}

func (a *Activities) InvalidateChatActivity(ctx context.Context) error {
	_ = ctx
	a.chat.Invalidate()
	return nil
}

func (a *Activities) BuildKnowledgeContextActivity(ctx context.Context) (BuildKnowledgeContextOutput, error) {
	_ = ctx
	docs := a.knowledge.List()
	return BuildKnowledgeContextOutput{
		Context: review.KnowledgeContext(docs),
		Count:   len(docs),
	}, nil
}

// GenerateActivity runs one prose-producing call. An empty answer is a
// failure so a review stage never appends a blank draft version.
func (a *Activities) GenerateActivity(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	resp, info, err := a.providers.Generate(ctx, providers.GenerateRequest{
		Operation: in.Operation,
		Prompt:    in.Prompt,
	})
	if err != nil {
		return GenerateOutput{}, err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return GenerateOutput{}, fmt.Errorf("%s: provider returned empty text", in.Operation)
	}
	return GenerateOutput{Text: text, Provider: info.Name}, nil
}

func (a *Activities) GenerateOutlineActivity(ctx context.Context, in GenerateOutlineInput) (GenerateOutlineOutput, error) {
	resp, _, err := a.providers.Generate(ctx, providers.GenerateRequest{
		Operation: "review_outline",
		Prompt:    review.OutlinePrompt(in.Topic, in.Context),
		JSON:      true,
	})
	if err != nil {
		return GenerateOutlineOutput{}, err
	}
	plan, err := review.DecodeOutline(resp.Text)
	if err != nil {
		return GenerateOutlineOutput{}, fmt.Errorf("review_outline: %w", err)
	}
	return GenerateOutlineOutput{Plan: plan}, nil
}

func (a *Activities) ResetDraftsActivity(ctx context.Context) error {
	_ = ctx
	a.drafts.Reset()
	return nil
}

func (a *Activities) AppendDraftActivity(ctx context.Context, in AppendDraftInput) (AppendDraftOutput, error) {
	_ = ctx
	return AppendDraftOutput{Index: a.drafts.Append(in.Text)}, nil
}
