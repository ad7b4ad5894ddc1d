package similarity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"draftdesk/internal/models"
	"draftdesk/internal/providers"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	f.prompt = req.Prompt
	return providers.GenerateResponse{Text: f.text}, providers.ProviderInfo{Name: "fake"}, f.err
}

func longDraft() string {
	return strings.Repeat("The study of attention mechanisms has grown. ", 5)
}

func TestAnalyzeParsesMatches(t *testing.T) {
	raw := `{"matches":[{"original_sentence":"The study of attention mechanisms has grown.","similar_passage_from_source":"attention mechanisms grew","source_filename":"a.pdf","rewritten_suggestion":"Interest in attention has expanded."}]}`
	g := &fakeGenerator{text: raw}
	docs := []models.Document{{Name: "a.pdf", Text: "attention mechanisms grew over the decade"}}
	got, err := Analyze(context.Background(), g, longDraft(), docs, 100, 1000)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(got) != 1 || got[0].SourceFilename != "a.pdf" {
		t.Fatalf("unexpected matches: %+v", got)
	}
	if !strings.Contains(g.prompt, "--- a.pdf ---") {
		t.Fatal("prompt should carry the source text block")
	}
}

func TestAnalyzeShortDraftRejectedLocally(t *testing.T) {
	g := &fakeGenerator{text: `{"matches":[]}`}
	docs := []models.Document{{Name: "a.pdf", Text: "x"}}
	_, err := Analyze(context.Background(), g, "short", docs, 100, 1000)
	if !errors.Is(err, ErrDraftTooShort) {
		t.Fatalf("expected ErrDraftTooShort, got %v", err)
	}
	if g.prompt != "" {
		t.Fatal("no call should be made for a short draft")
	}
	_, err = Analyze(context.Background(), g, longDraft(), nil, 100, 1000)
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestAnalyzeMissingFieldFails(t *testing.T) {
	raw := `{"matches":[{"original_sentence":"x","similar_passage_from_source":"y","source_filename":"a.pdf"}]}`
	docs := []models.Document{{Name: "a.pdf", Text: "x"}}
	if _, err := Analyze(context.Background(), &fakeGenerator{text: raw}, longDraft(), docs, 100, 1000); err == nil {
		t.Fatal("missing rewritten_suggestion should fail the pass")
	}
}

func TestNewReviewAnchorsAndSkips(t *testing.T) {
	draft := "One sentence here. Another sentence there."
	matches := []Match{
		{OriginalSentence: "Another sentence there.", Rewrite: "A different closer."},
		{OriginalSentence: "not present anywhere", Rewrite: "x"},
		{OriginalSentence: "sentence there.", Rewrite: "y"},
	}
	r := NewReview(draft, matches)
	if r.Len() != 1 {
		t.Fatalf("expected 1 annotation after skipping absent and overlapping, got %d", r.Len())
	}
	a := r.Annotations()[0]
	if draft[a.Start:a.End] != "Another sentence there." {
		t.Fatalf("annotation anchored wrongly: %q", draft[a.Start:a.End])
	}
}

func TestReviewAcceptShiftsLaterAnnotations(t *testing.T) {
	draft := "First flagged part. Middle text. Second flagged part."
	r := NewReview(draft, []Match{
		{OriginalSentence: "First flagged part.", Rewrite: "Short."},
		{OriginalSentence: "Second flagged part.", Rewrite: "Also rewritten."},
	})
	if r.Len() != 2 {
		t.Fatalf("expected 2 annotations, got %d", r.Len())
	}
	first := r.Annotations()[0]
	text, err := r.Accept(first.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if text != "Short. Middle text. Second flagged part." {
		t.Fatalf("unexpected text: %q", text)
	}
	rest := r.Annotations()
	if len(rest) != 1 {
		t.Fatalf("expected 1 remaining annotation, got %d", len(rest))
	}
	if got := text[rest[0].Start:rest[0].End]; got != "Second flagged part." {
		t.Fatalf("remaining annotation drifted: %q", got)
	}
}

func TestReviewDismissLeavesTextAlone(t *testing.T) {
	draft := "Flagged sentence stays."
	r := NewReview(draft, []Match{{OriginalSentence: "Flagged sentence stays.", Rewrite: "x"}})
	id := r.Annotations()[0].ID
	if err := r.Dismiss(id); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if r.Text() != draft {
		t.Fatalf("dismiss must not edit text, got %q", r.Text())
	}
	if err := r.Dismiss(id); err == nil {
		t.Fatal("dismissing twice should fail")
	}
}
