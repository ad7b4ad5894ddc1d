package proofread

import (
	"context"
	"errors"
	"testing"

	"draftdesk/internal/providers"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) Generate(_ context.Context, _ providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	return providers.GenerateResponse{Text: f.text}, providers.ProviderInfo{Name: "fake"}, f.err
}

func TestAnalyzeParsesSuggestions(t *testing.T) {
	raw := `{"suggestions":[{"category":"Spelling","issue":"teh","suggestion":"the","explanation":"typo"}]}`
	got, err := Analyze(context.Background(), fakeGenerator{text: raw}, "teh draft")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(got) != 1 || got[0].Category != CategorySpelling || got[0].ID == "" {
		t.Fatalf("unexpected suggestions: %+v", got)
	}
}

func TestAnalyzeEmptyArrayIsValid(t *testing.T) {
	got, err := Analyze(context.Background(), fakeGenerator{text: `{"suggestions":[]}`}, "clean draft")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no suggestions, got %+v", got)
	}
}

func TestAnalyzeRejectsUnknownCategory(t *testing.T) {
	raw := `{"suggestions":[{"category":"tone","issue":"x","suggestion":"y","explanation":"z"}]}`
	if _, err := Analyze(context.Background(), fakeGenerator{text: raw}, "draft"); err == nil {
		t.Fatal("unknown category should fail the pass")
	}
}

func TestAnalyzeRejectsMissingField(t *testing.T) {
	raw := `{"suggestions":[{"category":"grammar","issue":"x","suggestion":"y"}]}`
	if _, err := Analyze(context.Background(), fakeGenerator{text: raw}, "draft"); err == nil {
		t.Fatal("missing explanation should fail the pass")
	}
}

func TestAnalyzeEmptyDraftRejectedLocally(t *testing.T) {
	g := fakeGenerator{err: errors.New("should not be called")}
	if _, err := Analyze(context.Background(), g, "   "); err == nil {
		t.Fatal("empty draft should be rejected before any call")
	}
}

func TestSetAcceptAppliesFirstOccurrence(t *testing.T) {
	set := NewSet()
	set.Replace([]Suggestion{{ID: "s1", Category: CategorySpelling, Issue: "teh", Suggestion: "the"}})
	draft, err := set.Accept("s1", "teh cat saw teh dog")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if draft != "the cat saw teh dog" {
		t.Fatalf("unexpected draft: %q", draft)
	}
	if set.Len() != 0 {
		t.Fatal("accepted suggestion should leave the set")
	}
}

func TestSetAcceptStaleIssueRemovesWithoutEdit(t *testing.T) {
	set := NewSet()
	set.Replace([]Suggestion{{ID: "s1", Issue: "gone", Suggestion: "x"}})
	draft, err := set.Accept("s1", "nothing matches here")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if draft != "nothing matches here" {
		t.Fatalf("draft should be unchanged, got %q", draft)
	}
	if set.Len() != 0 {
		t.Fatal("stale suggestion should still be removed")
	}
}

func TestSetRejectRemovesOnly(t *testing.T) {
	set := NewSet()
	set.Replace([]Suggestion{{ID: "s1"}, {ID: "s2"}})
	if err := set.Reject("s1"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", set.Len())
	}
	if err := set.Reject("s1"); err == nil {
		t.Fatal("rejecting a removed suggestion should fail")
	}
}
