package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// GroqProvider supports LLM generation via Groq's OpenAI-compatible API.
type GroqProvider struct {
	keyName string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGroqProvider(keyName string) *GroqProvider {
	model := os.Getenv("DRAFTDESK_GROQ_MODEL")
	if strings.TrimSpace(model) == "" {
		model = "llama-3.1-8b-instant"
	}
	return &GroqProvider{
		keyName: keyName,
		apiKey:  resolveGroqKey(keyName),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *GroqProvider) info() ProviderInfo {
	return ProviderInfo{Name: "groq", Key: g.keyName, Model: g.model}
}

func (g *GroqProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	if g.apiKey == "" {
		return GenerateResponse{}, g.info(), fmt.Errorf("groq key missing for alias %q", g.keyName)
	}
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nContext:\n" + strings.Join(req.Context, "\n\n")
	}
	messages := []map[string]string{
		{"role": "system", "content": writingSystemMessage},
		{"role": "user", "content": prompt},
	}
	text, err := g.complete(ctx, messages, req.JSON)
	if err != nil {
		return GenerateResponse{}, g.info(), err
	}
	return GenerateResponse{Text: text}, g.info(), nil
}

func (g *GroqProvider) Chat(ctx context.Context, req ChatRequest) (GenerateResponse, ProviderInfo, error) {
	if g.apiKey == "" {
		return GenerateResponse{}, g.info(), fmt.Errorf("groq key missing for alias %q", g.keyName)
	}
	text, err := g.complete(ctx, chatMessages(req), false)
	if err != nil {
		return GenerateResponse{}, g.info(), err
	}
	return GenerateResponse{Text: text}, g.info(), nil
}

func (g *GroqProvider) complete(ctx context.Context, messages []map[string]string, jsonMode bool) (string, error) {
	body := map[string]any{
		"model":    g.model,
		"messages": messages,
	}
	if jsonMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	payload, _ := json.Marshal(body)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.groq.com/openai/v1/chat/completions", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("groq generate request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("groq generate error %d: %s", resp.StatusCode, string(raw))
	}
	return firstChoiceContent(raw, "groq")
}

func resolveGroqKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("DRAFTDESK_GROQ_KEY_" + strings.ToUpper(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("GROQ_API_KEY")
}
