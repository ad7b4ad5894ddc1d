package providers

import "strings"

// ProviderRef is one entry of DRAFTDESK_LLM_PROVIDERS. The alias after the
// colon selects a key env var for groq/openai and the model for ollama.
type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

// ParseProviderList splits a "groq:research|ollama:llama3.1|mock" value into
// refs, in failover order. An empty or all-blank value yields the mock
// provider so the service always starts.
func ParseProviderList(raw string) []ProviderRef {
	out := make([]ProviderRef, 0, 4)
	for _, entry := range strings.Split(raw, "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		out = append(out, parseRef(entry))
	}
	if len(out) == 0 {
		out = append(out, ProviderRef{Raw: "mock", Name: "mock"})
	}
	return out
}

func parseRef(entry string) ProviderRef {
	ref := ProviderRef{Raw: entry}
	name, alias, hasAlias := strings.Cut(entry, ":")
	ref.Name = strings.TrimSpace(name)
	if hasAlias {
		ref.KeyAlias = strings.TrimSpace(alias)
	}
	return ref
}
