package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/teemow/inboxflow/internal/gmail"
	"github.com/teemow/inboxflow/internal/logging"
	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/prompts"
	"github.com/teemow/inboxflow/internal/store"
)

//go:embed static
var staticFiles embed.FS

const (
	// DefaultWebReadTimeout is the read header timeout for the web server.
	DefaultWebReadTimeout = 10 * time.Second

	// DefaultWebIdleTimeout is the idle timeout for the web server.
	DefaultWebIdleTimeout = 60 * time.Second

	// defaultGmailImportLimit caps one Gmail import batch.
	defaultGmailImportLimit = 50
)

// WebServer serves the browser UI and the JSON API over the local store.
type WebServer struct {
	sc         *ServerContext
	logger     *slog.Logger
	health     *HealthChecker
	httpServer *http.Server
}

// NewWebServer creates a web server around the shared server context.
func NewWebServer(sc *ServerContext, logger *slog.Logger) *WebServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebServer{
		sc:     sc,
		logger: logger,
		health: NewHealthChecker(sc),
	}
}

// Handler builds the full route table. Exposed for tests.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	mux.Handle("GET /", http.FileServer(http.FS(static)))

	mux.HandleFunc("GET /api/emails", s.handleListEmails)
	mux.HandleFunc("GET /api/emails/{id}", s.handleGetEmail)
	mux.HandleFunc("PATCH /api/emails/{id}/category", s.handleSetCategory)
	mux.HandleFunc("POST /api/emails/{id}/process", s.handleProcessEmail)
	mux.HandleFunc("POST /api/emails/{id}/draft", s.handleGenerateDraft)
	mux.HandleFunc("GET /api/search", s.handleSearchEmails)

	mux.HandleFunc("GET /api/actions", s.handleListActions)
	mux.HandleFunc("PATCH /api/actions/{id}", s.handleUpdateAction)

	mux.HandleFunc("GET /api/drafts", s.handleListDrafts)
	mux.HandleFunc("POST /api/drafts", s.handleSaveDraft)
	mux.HandleFunc("GET /api/drafts/{id}", s.handleGetDraft)
	mux.HandleFunc("PUT /api/drafts/{id}", s.handleUpdateDraft)
	mux.HandleFunc("DELETE /api/drafts/{id}", s.handleDeleteDraft)

	mux.HandleFunc("GET /api/prompts", s.handleListPrompts)
	mux.HandleFunc("PUT /api/prompts/{name}", s.handleUpdatePrompt)
	mux.HandleFunc("POST /api/prompts/{name}/test", s.handleTestPrompt)
	mux.HandleFunc("POST /api/prompts/reset", s.handleResetPrompts)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/inbox/load", s.handleLoadInbox)
	mux.HandleFunc("POST /api/inbox/process", s.handleProcessInbox)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	s.health.RegisterHealthEndpoints(mux)

	return s.instrument(mux)
}

// instrument wraps the mux with request logging and HTTP metrics.
func (s *WebServer) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		pattern := r.Pattern
		if pattern == "" {
			pattern = r.URL.Path
		}
		if m := s.sc.Metrics(); m != nil {
			m.RecordHTTPRequest(r.Context(), r.Method, pattern, rec.status, duration)
		}
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", pattern),
			slog.Int("status", rec.status),
			slog.Duration(logging.KeyDuration, duration))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Start runs the web server until Shutdown or failure.
func (s *WebServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultWebReadTimeout,
		IdleTimeout:       DefaultWebIdleTimeout,
	}
	s.logger.Info("starting web server", slog.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response. Store not-found errors map
// to 404.
func writeError(w http.ResponseWriter, status int, err error) {
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *WebServer) handleListEmails(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !mail.IsValidCategory(category) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown category: %s", category))
		return
	}
	emails, err := s.sc.Store().ListEmails(category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if emails == nil {
		emails = []mail.Email{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"emails": emails})
}

func (s *WebServer) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	email, err := s.sc.Store().GetEmail(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	items, err := s.sc.Store().ActionItemsByEmail(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []mail.ActionItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": email, "action_items": items})
}

func (s *WebServer) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !mail.IsValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown category: %s", req.Category))
		return
	}
	if err := s.sc.Store().UpdateCategory(r.PathValue("id"), req.Category); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"category": req.Category})
}

func (s *WebServer) handleProcessEmail(w http.ResponseWriter, r *http.Request) {
	eng, err := s.sc.Engine()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	result, err := eng.ProcessEmail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *WebServer) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	eng, err := s.sc.Engine()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	var req struct {
		Tone string `json:"tone"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	draft, err := eng.GenerateReplyDraft(r.Context(), r.PathValue("id"), req.Tone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (s *WebServer) handleSearchEmails(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("q is required"))
		return
	}
	emails, err := s.sc.Store().SearchEmails(query, r.URL.Query().Get("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if emails == nil {
		emails = []mail.Email{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"emails": emails})
}

func (s *WebServer) handleListActions(w http.ResponseWriter, r *http.Request) {
	items, err := s.sc.Store().ListActionItems(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if items == nil {
		items = []mail.ActionItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"action_items": items})
}

func (s *WebServer) handleUpdateAction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid action item id"))
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.sc.Store().UpdateActionItemStatus(id, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (s *WebServer) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.sc.Store().ListDrafts(r.URL.Query().Get("emailId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if drafts == nil {
		drafts = []mail.Draft{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

func (s *WebServer) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailID string `json:"email_id"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Subject == "" && req.Body == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("subject or body is required"))
		return
	}
	draft := mail.Draft{EmailID: req.EmailID, Subject: req.Subject, Body: req.Body}
	id, err := s.sc.Store().InsertDraft(draft)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	draft.ID = id
	writeJSON(w, http.StatusCreated, draft)
}

func (s *WebServer) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid draft id"))
		return
	}
	draft, err := s.sc.Store().GetDraft(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *WebServer) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid draft id"))
		return
	}
	var req struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.sc.Store().UpdateDraft(id, req.Subject, req.Body); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	draft, err := s.sc.Store().GetDraft(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *WebServer) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid draft id"))
		return
	}
	if err := s.sc.Store().DeleteDraft(id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *WebServer) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	all, err := s.sc.Prompts().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": all})
}

func (s *WebServer) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name := r.PathValue("name")
	if err := s.sc.Prompts().Update(name, req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (s *WebServer) handleTestPrompt(w http.ResponseWriter, r *http.Request) {
	eng, err := s.sc.Engine()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	var req struct {
		Sender  string `json:"sender"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sample := mail.Email{Sender: req.Sender, Subject: req.Subject, Body: req.Body}
	result, err := eng.TestPrompt(r.Context(), r.PathValue("name"), sample)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (s *WebServer) handleResetPrompts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	kinds := prompts.Kinds
	if req.Name != "" {
		kinds = []string{req.Name}
	}
	for _, kind := range kinds {
		if err := s.sc.Prompts().Reset(kind); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reset": kinds})
}

func (s *WebServer) handleChat(w http.ResponseWriter, r *http.Request) {
	eng, err := s.sc.Engine()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	var req struct {
		Query   string `json:"query"`
		EmailID string `json:"email_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return
	}
	response, err := eng.Chat(r.Context(), req.Query, req.EmailID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (s *WebServer) handleLoadInbox(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source  string `json:"source"`
		File    string `json:"file"`
		Account string `json:"account"`
		Max     int64  `json:"max"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.Source == "" {
		req.Source = "sample"
	}

	switch req.Source {
	case "sample", "file":
		var (
			emails []mail.Email
			err    error
		)
		if req.Source == "file" {
			if req.File == "" {
				writeError(w, http.StatusBadRequest, fmt.Errorf("file is required for source=file"))
				return
			}
			emails, err = mail.LoadInboxFile(req.File)
		} else {
			emails, err = mail.SampleInbox()
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		inserted, skipped, err := s.sc.Store().LoadEmails(emails)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted, "skipped": skipped})
	case "gmail":
		account := req.Account
		if account == "" {
			account = "default"
		}
		client, err := gmail.NewClientForAccount(r.Context(), account)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		max := req.Max
		if max <= 0 {
			max = defaultGmailImportLimit
		}
		result, err := gmail.ImportInbox(r.Context(), client, s.sc.Store(), max)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown source: %s (supported: sample, file, gmail)", req.Source))
	}
}

func (s *WebServer) handleProcessInbox(w http.ResponseWriter, r *http.Request) {
	eng, err := s.sc.Engine()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	summary, err := eng.ProcessInbox(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := inboxStats(s.sc.Store())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// inboxStats collects inbox statistics straight from the store so the
// stats endpoint works without a configured LLM provider.
func inboxStats(s *store.Store) (map[string]any, error) {
	total, err := s.CountEmails()
	if err != nil {
		return nil, err
	}
	counts, err := s.CountByCategory()
	if err != nil {
		return nil, err
	}
	pending, err := s.ListActionItems(mail.StatusPending)
	if err != nil {
		return nil, err
	}
	drafts, err := s.ListDrafts("")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_emails":  total,
		"by_category":   counts,
		"pending_tasks": len(pending),
		"drafts":        len(drafts),
	}, nil
}
