package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"

	"draftdesk/internal/biblio"
	"draftdesk/internal/chat"
	"draftdesk/internal/config"
	"draftdesk/internal/proofread"
	"draftdesk/internal/providers"
	"draftdesk/internal/similarity"
	"draftdesk/internal/store"
	"draftdesk/internal/util"
	"draftdesk/internal/workflows"
)

// Server hosts the HTTP API. All document and draft state lives in process,
// so exactly one long operation may run at a time; the busy flag turns a
// second attempt into a 409 instead of letting it interleave.
type Server struct {
	cfg       config.Config
	knowledge *store.Knowledge
	drafts    *store.Drafts
	chat      *chat.Manager
	providers *providers.Manager
	temporal  tclient.Client

	busy atomic.Bool

	mu           sync.Mutex
	editor       string
	suggestions  *proofread.Set
	simReview    *similarity.Review
	lastIngestID string
	lastReviewID string
}

func NewServer(cfg config.Config, knowledge *store.Knowledge, drafts *store.Drafts, chatMgr *chat.Manager, pm *providers.Manager, tc tclient.Client) *Server {
	return &Server{
		cfg:         cfg,
		knowledge:   knowledge,
		drafts:      drafts,
		chat:        chatMgr,
		providers:   pm,
		temporal:    tc,
		suggestions: proofread.NewSet(),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/documents/", s.handleDocumentsScoped)
	mux.HandleFunc("/review", s.handleReview)
	mux.HandleFunc("/review/progress", s.handleReviewProgress)
	mux.HandleFunc("/drafts", s.handleDrafts)
	mux.HandleFunc("/drafts/", s.handleDraftsScoped)
	mux.HandleFunc("/draft", s.handleDraft)
	mux.HandleFunc("/bibliography", s.handleBibliography)
	mux.HandleFunc("/proofread", s.handleProofread)
	mux.HandleFunc("/proofread/", s.handleProofreadScoped)
	mux.HandleFunc("/similarity", s.handleSimilarity)
	mux.HandleFunc("/similarity/", s.handleSimilarityScoped)
	mux.HandleFunc("/ask", s.handleAsk)
	return withCORS(mux)
}

// acquire claims the single-operation slot. The caller must release() when
// it got true.
func (s *Server) acquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *Server) release() {
	s.busy.Store(false)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "documents": s.knowledge.Len()})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.knowledge.List()})
}

func (s *Server) handleDocumentsScoped(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/documents/") {
	case "upload":
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handleUpload(w, r)
	case "paste":
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handlePaste(w, r)
	case "progress":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handleIngestProgress(w, r)
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.acquire() {
		writeErr(w, http.StatusConflict, fmt.Errorf("an operation is already running"))
		return
	}
	defer s.release()

	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}
	if err := util.EnsureDir(s.cfg.DataInRoot); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	items := make([]workflows.IngestItem, 0, len(files))
	for _, fh := range files {
		path, err := saveUploadedFile(s.cfg.DataInRoot, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		items = append(items, workflows.IngestItem{
			Name: filepath.Base(path),
			Path: path,
			Kind: "upload",
		})
	}
	s.runIngest(w, r, items)
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	if !s.acquire() {
		writeErr(w, http.StatusConflict, fmt.Errorf("an operation is already running"))
		return
	}
	defer s.release()

	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("text is required"))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "pasted-" + uuid.NewString()[:8] + ".txt"
	}
	s.runIngest(w, r, []workflows.IngestItem{{Name: name, RawText: req.Text, Kind: "paste"}})
}

// runIngest starts the batch workflow and waits for it, so the response
// reflects the final per-item outcome.
func (s *Server) runIngest(w http.ResponseWriter, r *http.Request, items []workflows.IngestItem) {
	workflowID := "ingest-" + uuid.NewString()
	s.mu.Lock()
	s.lastIngestID = workflowID
	s.mu.Unlock()

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.cfg.TemporalTaskQueue,
	}, workflows.IngestBatchWorkflow, workflows.IngestBatchInput{Items: items})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	var result workflows.IngestBatchResult
	if err := we.Get(r.Context(), &result); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workflow_id": workflowID,
		"added":       result.Added,
		"skipped":     result.Skipped,
		"failed":      result.Failed,
	})
}

func (s *Server) handleIngestProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	workflowID := s.lastIngestID
	s.mu.Unlock()
	if workflowID == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("no ingest has been started"))
		return
	}
	resp, err := s.temporal.QueryWorkflow(r.Context(), workflowID, "", workflows.QueryGetIngestProgress)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	var prog workflows.IngestBatchProgress
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   s.workflowStatus(r, workflowID),
		"progress": prog,
	})
}

// workflowStatus reports whether the workflow is still running. Progress
// queries answer for closed workflows too, so callers need this to know
// when to stop polling.
func (s *Server) workflowStatus(r *http.Request, workflowID string) string {
	desc, err := s.temporal.DescribeWorkflowExecution(r.Context(), workflowID, "")
	if err != nil || desc.GetWorkflowExecutionInfo() == nil {
		return "unknown"
	}
	switch desc.GetWorkflowExecutionInfo().GetStatus() {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return "running"
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return "completed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return "failed"
	default:
		return "closed"
	}
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if !s.acquire() {
		writeErr(w, http.StatusConflict, fmt.Errorf("an operation is already running"))
		return
	}
	defer s.release()

	var req struct {
		Mode  string `json:"mode"`
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("topic is required"))
		return
	}
	if req.Mode == "" {
		req.Mode = workflows.ModeConcise
	}
	if req.Mode != workflows.ModeConcise && req.Mode != workflows.ModeDetailed {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("mode must be %q or %q", workflows.ModeConcise, workflows.ModeDetailed))
		return
	}
	if s.knowledge.Len() == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no documents in the knowledge store"))
		return
	}

	workflowID := "review-" + uuid.NewString()
	s.mu.Lock()
	s.lastReviewID = workflowID
	s.mu.Unlock()

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.cfg.TemporalTaskQueue,
	}, workflows.ReviewWorkflow, workflows.ReviewInput{Mode: req.Mode, Topic: req.Topic})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	var result workflows.ReviewResult
	runErr := we.Get(r.Context(), &result)

	// Whatever versions exist, point the working draft at the active one.
	// A failed detailed run still leaves its completed stages behind.
	s.mu.Lock()
	s.suggestions.Replace(nil)
	s.simReview = nil
	if v, ok := s.drafts.Active(); ok {
		s.editor = v.Text
	} else {
		s.editor = ""
	}
	s.mu.Unlock()

	if runErr != nil {
		writeErr(w, http.StatusBadGateway, runErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workflow_id": workflowID,
		"versions":    result.Versions,
	})
}

func (s *Server) handleReviewProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	s.mu.Lock()
	workflowID := s.lastReviewID
	s.mu.Unlock()
	if workflowID == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("no review has been started"))
		return
	}
	resp, err := s.temporal.QueryWorkflow(r.Context(), workflowID, "", workflows.QueryGetReviewProgress)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	var prog workflows.ReviewProgress
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   s.workflowStatus(r, workflowID),
		"progress": prog,
	})
}

func (s *Server) handleDrafts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": s.drafts.List()})
}

func (s *Server) handleDraftsScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/drafts/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "select" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	i, err := strconv.Atoi(parts[0])
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid version index %q", parts[0]))
		return
	}
	if err := s.drafts.Select(i); err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	v, _ := s.drafts.Active()
	s.mu.Lock()
	s.editor = v.Text
	s.suggestions.Replace(nil)
	s.simReview = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"active": i})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		text := s.editor
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"text": text})
	case http.MethodPut:
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
		s.mu.Lock()
		s.editor = req.Text
		s.suggestions.Replace(nil)
		s.simReview = nil
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"text": req.Text})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleBibliography(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	s.mu.Lock()
	draft := s.editor
	s.mu.Unlock()
	if draft == "" {
		if v, ok := s.drafts.Active(); ok {
			draft = v.Text
		}
	}
	entries := biblio.Extract(draft, s.knowledge.List())
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":  entries,
		"rendered": biblio.Render(entries),
	})
}

func (s *Server) handleProofread(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": s.suggestions.List()})
	case http.MethodPost:
		if !s.acquire() {
			writeErr(w, http.StatusConflict, fmt.Errorf("an operation is already running"))
			return
		}
		defer s.release()

		s.mu.Lock()
		draft := s.editor
		s.mu.Unlock()
		if strings.TrimSpace(draft) == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("draft is empty"))
			return
		}
		suggestions, err := proofread.Analyze(r.Context(), s.providers, draft)
		if err != nil {
			writeErr(w, http.StatusBadGateway, err)
			return
		}
		s.suggestions.Replace(suggestions)
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleProofreadScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/proofread/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	id, action := parts[0], parts[1]
	switch action {
	case "accept":
		s.mu.Lock()
		updated, err := s.suggestions.Accept(id, s.editor)
		if err == nil {
			s.editor = updated
			// Open similarity annotations were anchored on the old text.
			s.simReview = nil
		}
		s.mu.Unlock()
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"text": updated})
	case "reject":
		if err := s.suggestions.Reject(id); err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rejected": id})
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		review := s.simReview
		s.mu.Unlock()
		if review == nil {
			writeJSON(w, http.StatusOK, map[string]any{"text": "", "annotations": []similarity.Annotation{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"text":        review.Text(),
			"annotations": review.Annotations(),
		})
	case http.MethodPost:
		if !s.acquire() {
			writeErr(w, http.StatusConflict, fmt.Errorf("an operation is already running"))
			return
		}
		defer s.release()

		s.mu.Lock()
		draft := s.editor
		s.mu.Unlock()
		matches, err := similarity.Analyze(r.Context(), s.providers, draft, s.knowledge.List(), s.cfg.SimilarityMinRunes, s.cfg.SimilaritySourceRunes)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, similarity.ErrDraftTooShort) || errors.Is(err, similarity.ErrNoDocuments) {
				status = http.StatusBadRequest
			}
			writeErr(w, status, err)
			return
		}
		review := similarity.NewReview(draft, matches)
		s.mu.Lock()
		s.simReview = review
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"text":        review.Text(),
			"annotations": review.Annotations(),
		})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleSimilarityScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/similarity/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	id, action := parts[0], parts[1]

	s.mu.Lock()
	review := s.simReview
	s.mu.Unlock()
	if review == nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("no similarity check has been run"))
		return
	}

	switch action {
	case "accept":
		text, err := review.Accept(id)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		s.mu.Lock()
		s.editor = text
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"text": text, "annotations": review.Annotations()})
	case "dismiss":
		if err := review.Dismiss(id); err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dismissed": id, "annotations": review.Annotations()})
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("empty question"))
		return
	}
	answer, err := s.chat.Ask(r.Context(), req.Question)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

func saveUploadedFile(dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	path := util.SafeJoin(dir, fh.Filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save upload %s: %w", fh.Filename, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("save upload %s: %w", fh.Filename, err)
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
