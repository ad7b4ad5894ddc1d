package providers

import (
	"context"
	"fmt"
	"strings"

	"draftdesk/internal/config"
)

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

type Manager struct {
	llmProviders []NamedLLMProvider
}

func NewManager(cfg config.Config) (*Manager, error) {
	refs := ParseProviderList(cfg.LLMProviders)
	m := &Manager{}
	for _, ref := range refs {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		m.llmProviders = append(m.llmProviders, NamedLLMProvider{Ref: ref, Provider: p})
	}
	if len(m.llmProviders) == 0 {
		m.llmProviders = []NamedLLMProvider{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	return m, nil
}

func (m *Manager) Count() int {
	return len(m.llmProviders)
}

func (m *Manager) ByIndex(i int) (LLMProvider, ProviderRef) {
	if len(m.llmProviders) == 0 {
		return NewMockProvider(), ProviderRef{Raw: "mock", Name: "mock"}
	}
	if i < 0 || i >= len(m.llmProviders) {
		i = 0
	}
	return m.llmProviders[i].Provider, m.llmProviders[i].Ref
}

// PreferredOrder lists provider indexes with real providers before the mock.
func (m *Manager) PreferredOrder() []int {
	n := len(m.llmProviders)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if strings.ToLower(m.llmProviders[i].Ref.Name) != "mock" {
			out = append(out, i)
		}
	}
	for i := 0; i < n; i++ {
		if strings.ToLower(m.llmProviders[i].Ref.Name) == "mock" {
			out = append(out, i)
		}
	}
	return out
}

// Generate walks the preferred order once, at most one attempt per provider.
// Failures are never retried; the last error is returned when every provider
// declines.
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	var (
		resp GenerateResponse
		info ProviderInfo
		err  error
	)
	for _, idx := range m.PreferredOrder() {
		p, _ := m.ByIndex(idx)
		resp, info, err = p.Generate(ctx, req)
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return resp, info, nil
		}
		if err == nil {
			err = fmt.Errorf("provider returned empty output")
		}
	}
	if err == nil {
		err = fmt.Errorf("no llm providers configured")
	}
	return GenerateResponse{}, info, err
}

func (m *Manager) Chat(ctx context.Context, req ChatRequest) (GenerateResponse, ProviderInfo, error) {
	var (
		resp GenerateResponse
		info ProviderInfo
		err  error
	)
	for _, idx := range m.PreferredOrder() {
		p, _ := m.ByIndex(idx)
		resp, info, err = p.Chat(ctx, req)
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return resp, info, nil
		}
		if err == nil {
			err = fmt.Errorf("provider returned empty output")
		}
	}
	if err == nil {
		err = fmt.Errorf("no llm providers configured")
	}
	return GenerateResponse{}, info, err
}

func buildProvider(ref ProviderRef) (LLMProvider, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
