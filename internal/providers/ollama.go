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

// OllamaProvider supports local, free generation via Ollama.
type OllamaProvider struct {
	alias   string
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(alias string) *OllamaProvider {
	baseURL := strings.TrimSpace(os.Getenv("DRAFTDESK_OLLAMA_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := strings.TrimSpace(os.Getenv("DRAFTDESK_OLLAMA_MODEL"))
	if model == "" {
		if alias != "" && alias != "default" {
			// Allow direct model in provider list, e.g. ollama:llama3.1
			model = alias
		} else {
			model = "llama3.1"
		}
	}
	return &OllamaProvider{
		alias:   alias,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OllamaProvider) info() ProviderInfo {
	return ProviderInfo{Name: "ollama", Model: o.model, Key: o.alias}
}

func (o *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nContext:\n" + strings.Join(req.Context, "\n\n")
	}
	messages := []map[string]string{
		{"role": "system", "content": writingSystemMessage},
		{"role": "user", "content": prompt},
	}
	text, err := o.complete(ctx, messages, req.JSON)
	if err != nil {
		return GenerateResponse{}, o.info(), err
	}
	return GenerateResponse{Text: text}, o.info(), nil
}

func (o *OllamaProvider) Chat(ctx context.Context, req ChatRequest) (GenerateResponse, ProviderInfo, error) {
	text, err := o.complete(ctx, chatMessages(req), false)
	if err != nil {
		return GenerateResponse{}, o.info(), err
	}
	return GenerateResponse{Text: text}, o.info(), nil
}

func (o *OllamaProvider) complete(ctx context.Context, messages []map[string]string, jsonMode bool) (string, error) {
	body := map[string]any{
		"model":    o.model,
		"messages": messages,
		"stream":   false,
	}
	if jsonMode {
		body["format"] = "json"
	}
	payload, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(raw))
	}
	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if strings.TrimSpace(parsed.Message.Content) == "" {
		return "", fmt.Errorf("ollama returned empty content")
	}
	return parsed.Message.Content, nil
}
