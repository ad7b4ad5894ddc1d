// Package chat keeps one conversation session grounded in the current
// knowledge store. The session's standing instruction is built lazily from
// document summaries on the first question and thrown away whenever the
// store changes, so stale grounding never leaks into an answer.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"draftdesk/internal/models"
	"draftdesk/internal/providers"
)

const instructionPreamble = `You are a research assistant. Answer questions using the uploaded source
documents summarized below. When a question goes beyond them, say so rather
than invent sources.`

type Chatter interface {
	Chat(ctx context.Context, req providers.ChatRequest) (providers.GenerateResponse, providers.ProviderInfo, error)
}

// DocumentLister is the view of the knowledge store the session grounds on;
// *store.Knowledge satisfies it.
type DocumentLister interface {
	List() []models.Document
}

type session struct {
	instruction string
	turns       []providers.ChatTurn
}

// Manager owns the single active session.
type Manager struct {
	mu      sync.Mutex
	llm     Chatter
	docs    DocumentLister
	current *session
}

func NewManager(llm Chatter, docs DocumentLister) *Manager {
	return &Manager{llm: llm, docs: docs}
}

// Ask answers one question in the active session, starting a fresh session
// from the current document summaries if none is open. The turn is recorded
// only when the call succeeds.
func (m *Manager) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("chat: empty question")
	}

	m.mu.Lock()
	if m.current == nil {
		m.current = &session{instruction: buildInstruction(m.docs.List())}
	}
	s := m.current
	history := append([]providers.ChatTurn(nil), s.turns...)
	instruction := s.instruction
	m.mu.Unlock()

	resp, _, err := m.llm.Chat(ctx, providers.ChatRequest{
		Operation:   "chat",
		Instruction: instruction,
		History:     history,
		Question:    question,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	m.mu.Lock()
	if m.current == s {
		s.turns = append(s.turns, providers.ChatTurn{Question: question, Answer: resp.Text})
	}
	m.mu.Unlock()
	return resp.Text, nil
}

// Invalidate drops the active session. Ingest calls this after every
// successful document add.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// Turns reports the recorded history of the active session.
func (m *Manager) Turns() []providers.ChatTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return append([]providers.ChatTurn(nil), m.current.turns...)
}

func buildInstruction(docs []models.Document) string {
	var b strings.Builder
	b.WriteString(instructionPreamble)
	if len(docs) == 0 {
		b.WriteString("\n\nNo documents have been uploaded yet.")
		return b.String()
	}
	b.WriteString("\n\nDocuments:")
	for _, d := range docs {
		fmt.Fprintf(&b, "\n- %s (%s, %s): %s", d.Name, d.Author, d.Year, d.Summary)
	}
	return b.String()
}
