package activities

import (
	"draftdesk/internal/ingest"
	"draftdesk/internal/review"
)

type ExtractTextInput struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	RawText string `json:"raw_text"`
}

type ExtractTextOutput struct {
	Text string `json:"text"`
}

type ExtractMetadataInput struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type ExtractMetadataOutput struct {
	Metadata ingest.Metadata `json:"metadata"`
}

type HasDocumentInput struct {
	Name string `json:"name"`
}

type HasDocumentOutput struct {
	Exists bool `json:"exists"`
}

type AddDocumentInput struct {
	Name     string          `json:"name"`
	Text     string          `json:"text"`
	Metadata ingest.Metadata `json:"metadata"`
}

type AddDocumentOutput struct {
	Added bool `json:"added"`
}

type BuildKnowledgeContextOutput struct {
	Context string `json:"context"`
	Count   int    `json:"count"`
}

type GenerateInput struct {
	Operation string `json:"operation"`
	Prompt    string `json:"prompt"`
}

type GenerateOutput struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

type GenerateOutlineInput struct {
	Topic   string `json:"topic"`
	Context string `json:"context"`
}

type GenerateOutlineOutput struct {
	Plan review.OutlinePlan `json:"plan"`
}

type AppendDraftInput struct {
	Text string `json:"text"`
}

type AppendDraftOutput struct {
	Index int `json:"index"`
}
