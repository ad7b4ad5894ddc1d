package providers

import (
	"context"
	"strings"
)

// MockProvider produces deterministic output so the service runs end to end
// without any API keys. Structured operations return minimal valid payloads.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) info() ProviderInfo {
	return ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	op := strings.ToLower(req.Operation)
	text := "Mock response."
	switch {
	case strings.Contains(op, "metadata"):
		text = `{"author":"Mockley","year":"2024","summary":"A deterministic placeholder summary of the ingested document.","entities":["Mock Entity"]}`
	case strings.Contains(op, "outline"):
		text = `{"introduction_plan":"Introduce the topic and the sources.","themes":[{"title":"First mock theme","plan":"Compare the sources."},{"title":"Second mock theme","plan":"Contrast the findings."}],"conclusion_plan":"Summarize agreements and gaps."}`
	case strings.Contains(op, "proofread"):
		text = `{"suggestions":[]}`
	case strings.Contains(op, "similarity"):
		text = `{"matches":[]}`
	case strings.Contains(op, "review"):
		text = "Deterministic mock prose comparing the sources (Mockley, 2024)."
	}
	return GenerateResponse{Text: text}, m.info(), nil
}

func (m *MockProvider) Chat(ctx context.Context, req ChatRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	return GenerateResponse{Text: "Deterministic mock answer grounded in the knowledge base."}, m.info(), nil
}
