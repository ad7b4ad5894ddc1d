package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type GenerateRequest struct {
	Operation string   `json:"operation"`
	Prompt    string   `json:"prompt"`
	Context   []string `json:"context"`
	// JSON asks the provider for a JSON-object response. The prompt still
	// carries the schema; callers decode and validate the result and treat
	// any parse failure as a call failure.
	JSON bool `json:"json"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ChatRequest struct {
	Operation   string     `json:"operation"`
	Instruction string     `json:"instruction"`
	History     []ChatTurn `json:"history"`
	Question    string     `json:"question"`
}

type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
	Chat(ctx context.Context, req ChatRequest) (GenerateResponse, ProviderInfo, error)
}
