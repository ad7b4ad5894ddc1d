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

const writingSystemMessage = "You are a research-writing assistant. Ground every claim in the provided sources and follow output format instructions exactly."

// OpenAIProvider uses standard OpenAI REST APIs when keys are configured.
type OpenAIProvider struct {
	keyName string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	model := os.Getenv("DRAFTDESK_OPENAI_MODEL")
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		keyName: keyName,
		apiKey:  resolveOpenAIKey(keyName),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *OpenAIProvider) info() ProviderInfo {
	return ProviderInfo{Name: "openai", Key: o.keyName, Model: o.model}
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	if o.apiKey == "" {
		return GenerateResponse{}, o.info(), fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
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

func (o *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (GenerateResponse, ProviderInfo, error) {
	if o.apiKey == "" {
		return GenerateResponse{}, o.info(), fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	text, err := o.complete(ctx, chatMessages(req), false)
	if err != nil {
		return GenerateResponse{}, o.info(), err
	}
	return GenerateResponse{Text: text}, o.info(), nil
}

func (o *OpenAIProvider) complete(ctx context.Context, messages []map[string]string, jsonMode bool) (string, error) {
	body := map[string]any{
		"model":    o.model,
		"messages": messages,
	}
	if jsonMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	payload, _ := json.Marshal(body)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai generate request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai generate error %d: %s", resp.StatusCode, string(raw))
	}
	return firstChoiceContent(raw, "openai")
}

// chatMessages flattens a standing instruction plus accumulated turns into
// an OpenAI-style message list.
func chatMessages(req ChatRequest) []map[string]string {
	messages := make([]map[string]string, 0, 2*len(req.History)+2)
	messages = append(messages, map[string]string{"role": "system", "content": req.Instruction})
	for _, turn := range req.History {
		messages = append(messages, map[string]string{"role": "user", "content": turn.Question})
		messages = append(messages, map[string]string{"role": "assistant", "content": turn.Answer})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Question})
	return messages
}

func firstChoiceContent(raw []byte, providerName string) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode %s response: %w", providerName, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s returned empty choices", providerName)
	}
	return parsed.Choices[0].Message.Content, nil
}

func resolveOpenAIKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("DRAFTDESK_OPENAI_KEY_" + strings.ToUpper(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
