package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"draftdesk/internal/chat"
	"draftdesk/internal/config"
	"draftdesk/internal/models"
	"draftdesk/internal/proofread"
	"draftdesk/internal/providers"
	"draftdesk/internal/similarity"
	"draftdesk/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{LLMProviders: "mock", SimilarityMinRunes: 100, SimilaritySourceRunes: 24000, MetadataMaxRunes: 16000}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	knowledge := store.NewKnowledge()
	drafts := store.NewDrafts()
	chatMgr := chat.NewManager(pm, knowledge)
	return NewServer(cfg, knowledge, drafts, chatMgr, pm, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s.Routes(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestDraftRoundTripClearsWorkingSets(t *testing.T) {
	s := testServer(t)
	h := s.Routes()

	rec := doJSON(t, h, http.MethodPut, "/draft", map[string]string{"text": "working text"})
	if rec.Code != http.StatusOK {
		t.Fatalf("put draft: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/draft", nil)
	var got struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Text != "working text" {
		t.Fatalf("unexpected draft %q", got.Text)
	}
}

func TestBibliographyUsesWorkingDraft(t *testing.T) {
	s := testServer(t)
	s.knowledge.Add(models.Document{Name: "paper.pdf", Author: "Lopez", Year: "2020", CreatedAt: time.Now()})
	h := s.Routes()

	doJSON(t, h, http.MethodPut, "/draft", map[string]string{"text": "As shown in (Lopez, 2020)."})
	rec := doJSON(t, h, http.MethodGet, "/bibliography", nil)
	var got struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Rendered != "Lopez. (2020). paper." {
		t.Fatalf("unexpected bibliography %q", got.Rendered)
	}
}

func TestReviewRequiresTopicAndDocuments(t *testing.T) {
	s := testServer(t)
	h := s.Routes()

	rec := doJSON(t, h, http.MethodPost, "/review", map[string]string{"mode": "concise"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing topic: status %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/review", map[string]string{"mode": "concise", "topic": "attention"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty store: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestProofreadEmptyDraftRejected(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s.Routes(), http.MethodPost, "/proofread", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSimilarityShortDraftRejected(t *testing.T) {
	s := testServer(t)
	s.knowledge.Add(models.Document{Name: "a.pdf", Author: "A", Year: "2020", Text: "source"})
	h := s.Routes()
	doJSON(t, h, http.MethodPut, "/draft", map[string]string{"text": "too short"})
	rec := doJSON(t, h, http.MethodPost, "/similarity", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestProofreadAcceptInvalidatesSimilarityReview(t *testing.T) {
	s := testServer(t)
	h := s.Routes()
	draft := "The cat sat on teh mat. Focus drives the outcome here."
	doJSON(t, h, http.MethodPut, "/draft", map[string]string{"text": draft})

	s.suggestions.Replace([]proofread.Suggestion{{
		ID:         "fix-1",
		Category:   proofread.CategorySpelling,
		Issue:      "teh",
		Suggestion: "the",
	}})
	s.mu.Lock()
	s.simReview = similarity.NewReview(draft, []similarity.Match{{
		OriginalSentence: "Focus drives the outcome here.",
		Rewrite:          "Here, focus determines the outcome.",
	}})
	annID := s.simReview.Annotations()[0].ID
	s.mu.Unlock()

	rec := doJSON(t, h, http.MethodPost, "/proofread/fix-1/accept", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("proofread accept: status %d body %s", rec.Code, rec.Body.String())
	}

	// The annotations were anchored on the pre-fix text, so the check must
	// be rerun rather than applied on top of the edited draft.
	rec = doJSON(t, h, http.MethodPost, "/similarity/"+annID+"/accept", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stale similarity accept should 404, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/draft", nil)
	var got struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Text != "The cat sat on the mat. Focus drives the outcome here." {
		t.Fatalf("proofread edit was lost: %q", got.Text)
	}
}

func TestBusyGateRejectsSecondOperation(t *testing.T) {
	s := testServer(t)
	if !s.acquire() {
		t.Fatal("first acquire should succeed")
	}
	rec := doJSON(t, s.Routes(), http.MethodPost, "/proofread", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while busy, got %d", rec.Code)
	}
	s.release()
}

func TestToAPIErrorClassifiesProviderFailures(t *testing.T) {
	if got := toAPIError(http.StatusBadGateway, errors.New("429 rate limited")).Code; got != "DD-LLM-5021" {
		t.Fatalf("rate limit code %q", got)
	}
	if got := toAPIError(http.StatusBadGateway, errors.New("response violates schema")).Code; got != "DD-LLM-5022" {
		t.Fatalf("schema code %q", got)
	}
	if got := toAPIError(http.StatusConflict, errors.New("busy")).Code; got != "DD-API-4009" {
		t.Fatalf("conflict code %q", got)
	}
}

func TestToAPIErrorRecognizesSentinels(t *testing.T) {
	wrapped := fmt.Errorf("similarity: %w (100 rune minimum)", similarity.ErrDraftTooShort)
	if got := toAPIError(http.StatusBadRequest, wrapped).Message; got != "The working draft is too short for a similarity check." {
		t.Fatalf("short-draft message %q", got)
	}
	wrapped = fmt.Errorf("similarity: %w", similarity.ErrNoDocuments)
	if got := toAPIError(http.StatusBadRequest, wrapped).Message; got != "Upload at least one document first." {
		t.Fatalf("no-documents message %q", got)
	}
}
