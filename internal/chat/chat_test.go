package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"draftdesk/internal/models"
	"draftdesk/internal/providers"
)

type fakeChatter struct {
	answer string
	err    error
	last   providers.ChatRequest
	calls  int
}

func (f *fakeChatter) Chat(_ context.Context, req providers.ChatRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	f.last = req
	f.calls++
	return providers.GenerateResponse{Text: f.answer}, providers.ProviderInfo{Name: "fake"}, f.err
}

type fakeLister struct {
	docs []models.Document
}

func (f *fakeLister) List() []models.Document { return f.docs }

func TestAskBuildsInstructionFromSummaries(t *testing.T) {
	llm := &fakeChatter{answer: "hello"}
	docs := &fakeLister{docs: []models.Document{{Name: "a.pdf", Author: "Adams", Year: "2019", Summary: "about graphs"}}}
	m := NewManager(llm, docs)

	if _, err := m.Ask(context.Background(), "what is this about?"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(llm.last.Instruction, "a.pdf") || !strings.Contains(llm.last.Instruction, "about graphs") {
		t.Fatalf("instruction missing document summary:\n%s", llm.last.Instruction)
	}
}

func TestAskAccumulatesHistory(t *testing.T) {
	llm := &fakeChatter{answer: "answer"}
	m := NewManager(llm, &fakeLister{})

	if _, err := m.Ask(context.Background(), "first"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if _, err := m.Ask(context.Background(), "second"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if len(llm.last.History) != 1 || llm.last.History[0].Question != "first" {
		t.Fatalf("second ask should carry the first turn, got %+v", llm.last.History)
	}
	if len(m.Turns()) != 2 {
		t.Fatalf("expected 2 recorded turns, got %d", len(m.Turns()))
	}
}

func TestAskFailureRecordsNothing(t *testing.T) {
	llm := &fakeChatter{err: errors.New("provider down")}
	m := NewManager(llm, &fakeLister{})

	if _, err := m.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error from failing provider")
	}
	if len(m.Turns()) != 0 {
		t.Fatal("failed ask must not record a turn")
	}
}

func TestInvalidateStartsFreshSession(t *testing.T) {
	llm := &fakeChatter{answer: "a"}
	docs := &fakeLister{}
	m := NewManager(llm, docs)

	if _, err := m.Ask(context.Background(), "q1"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	docs.docs = []models.Document{{Name: "new.pdf", Author: "Nye", Year: "2024", Summary: "fresh"}}
	m.Invalidate()

	if _, err := m.Ask(context.Background(), "q2"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if len(llm.last.History) != 0 {
		t.Fatal("history should be empty after invalidation")
	}
	if !strings.Contains(llm.last.Instruction, "new.pdf") {
		t.Fatal("instruction should be rebuilt from the updated store")
	}
}

func TestAskEmptyQuestionRejected(t *testing.T) {
	llm := &fakeChatter{answer: "a"}
	m := NewManager(llm, &fakeLister{})
	if _, err := m.Ask(context.Background(), "  "); err == nil {
		t.Fatal("empty question should be rejected")
	}
	if llm.calls != 0 {
		t.Fatal("no call should be made for an empty question")
	}
}
