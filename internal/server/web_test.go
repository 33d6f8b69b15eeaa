package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxflow/internal/config"
	"github.com/teemow/inboxflow/internal/engine"
	"github.com/teemow/inboxflow/internal/llm"
	"github.com/teemow/inboxflow/internal/mail"
)

type fakeLLM struct {
	responses []string
	err       error
	requests  []llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("no canned response left")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeLLM) Provider() string { return "fake" }

func newTestServer(t *testing.T, client llm.Client) (*WebServer, *ServerContext) {
	t.Helper()
	cfg := config.Settings{DatabasePath: ":memory:", MaxTokens: 500}
	sc, err := NewServerContext(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	if client != nil {
		sc.SetEngine(engine.New(sc.Store(), client, sc.Prompts()))
	}
	return NewWebServer(sc, nil), sc
}

func insertEmail(t *testing.T, sc *ServerContext, e mail.Email) {
	t.Helper()
	if e.Timestamp == "" {
		e.Timestamp = "2026-08-20T10:00:00"
	}
	_, err := sc.Store().InsertEmail(e)
	require.NoError(t, err)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestListEmails(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Hello", Body: "hi", Category: mail.CategoryImportant})
	insertEmail(t, sc, mail.Email{ID: "e2", Sender: "b@example.com", Subject: "News", Body: "weekly", Category: mail.CategoryNewsletter})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/emails", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string][]mail.Email](t, rec)
	assert.Len(t, resp["emails"], 2)

	rec = doJSON(t, h, http.MethodGet, "/api/emails?category=Important", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[map[string][]mail.Email](t, rec)
	require.Len(t, resp["emails"], 1)
	assert.Equal(t, "e1", resp["emails"][0].ID)
}

func TestListEmails_UnknownCategory(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/emails?category=Bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmail(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Hello", Body: "hi"})
	_, err := sc.Store().InsertActionItem(mail.ActionItem{EmailID: "e1", Task: "Reply", Deadline: mail.DeadlineUnspecified, Status: mail.StatusPending})
	require.NoError(t, err)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/emails/e1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Email       mail.Email        `json:"email"`
		ActionItems []mail.ActionItem `json:"action_items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hello", resp.Email.Subject)
	require.Len(t, resp.ActionItems, 1)
	assert.Equal(t, "Reply", resp.ActionItems[0].Task)

	rec = doJSON(t, h, http.MethodGet, "/api/emails/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetCategory(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Hello", Body: "hi"})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPatch, "/api/emails/e1/category", map[string]string{"category": mail.CategoryToDo})
	require.Equal(t, http.StatusOK, rec.Code)

	email, err := sc.Store().GetEmail("e1")
	require.NoError(t, err)
	assert.Equal(t, mail.CategoryToDo, email.Category)

	rec = doJSON(t, h, http.MethodPatch, "/api/emails/e1/category", map[string]string{"category": "Nonsense"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/api/emails/missing/category", map[string]string{"category": mail.CategorySpam})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessEmail_WithoutEngine(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Hello", Body: "hi"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/emails/e1/process", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decode[map[string]string](t, rec)
	assert.Contains(t, resp["error"], "assistant not configured")
}

func TestProcessEmail(t *testing.T) {
	client := &fakeLLM{responses: []string{"Important"}}
	srv, sc := newTestServer(t, client)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Quarterly numbers", Body: "please review"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/emails/e1/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, mail.CategoryImportant, resp["category"])
}

func TestGenerateDraft(t *testing.T) {
	client := &fakeLLM{responses: []string{"Thanks, will do."}}
	srv, sc := newTestServer(t, client)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Status update", Body: "please send"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/emails/e1/draft", map[string]string{"tone": "casual"})
	require.Equal(t, http.StatusCreated, rec.Code)
	draft := decode[mail.Draft](t, rec)
	assert.Equal(t, "Re: Status update", draft.Subject)
	assert.Equal(t, "Thanks, will do.", draft.Body)

	drafts, err := sc.Store().ListDrafts("e1")
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestSearchEmails(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "billing@corp.com", Subject: "Invoice overdue", Body: "pay now"})
	insertEmail(t, sc, mail.Email{ID: "e2", Sender: "news@site.com", Subject: "Weekly digest", Body: "stories"})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/search?q=invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string][]mail.Email](t, rec)
	require.Len(t, resp["emails"], 1)
	assert.Equal(t, "e1", resp["emails"][0].ID)

	rec = doJSON(t, h, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionItems(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Tasks", Body: "do things"})
	id, err := sc.Store().InsertActionItem(mail.ActionItem{EmailID: "e1", Task: "Ship report", Deadline: "Friday", Status: mail.StatusPending})
	require.NoError(t, err)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/actions?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string][]mail.ActionItem](t, rec)
	require.Len(t, resp["action_items"], 1)

	rec = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/api/actions/%d", id), map[string]string{"status": mail.StatusCompleted})
	require.Equal(t, http.StatusOK, rec.Code)

	items, err := sc.Store().ListActionItems(mail.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	rec = doJSON(t, h, http.MethodPatch, "/api/actions/notanumber", map[string]string{"status": mail.StatusCompleted})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDraftCRUD(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/drafts", map[string]string{"subject": "Hello", "body": "text"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[mail.Draft](t, rec)
	require.NotZero(t, created.ID)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/drafts/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/drafts/%d", created.ID), map[string]string{"subject": "Updated", "body": "new text"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[mail.Draft](t, rec)
	assert.Equal(t, "Updated", updated.Subject)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/drafts/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	drafts, err := sc.Store().ListDrafts("")
	require.NoError(t, err)
	assert.Empty(t, drafts)

	rec = doJSON(t, h, http.MethodPost, "/api/drafts", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrompts(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/prompts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Prompts []struct {
			Name string `json:"name"`
		} `json:"prompts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Prompts, 3)

	rec = doJSON(t, h, http.MethodPut, "/api/prompts/categorization", map[string]string{"content": "custom {sender} {subject} {body}"})
	require.Equal(t, http.StatusOK, rec.Code)
	content, err := sc.Prompts().Get("categorization")
	require.NoError(t, err)
	assert.Equal(t, "custom {sender} {subject} {body}", content)

	rec = doJSON(t, h, http.MethodPost, "/api/prompts/reset", map[string]string{"name": "categorization"})
	require.Equal(t, http.StatusOK, rec.Code)
	content, err = sc.Prompts().Get("categorization")
	require.NoError(t, err)
	assert.NotEqual(t, "custom {sender} {subject} {body}", content)

	rec = doJSON(t, h, http.MethodPut, "/api/prompts/bogus", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestPrompt(t *testing.T) {
	client := &fakeLLM{responses: []string{"Spam"}}
	srv, _ := newTestServer(t, client)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/prompts/categorization/test",
		map[string]string{"sender": "x@spam.com", "subject": "You won", "body": "click here"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]string](t, rec)
	assert.Equal(t, mail.CategorySpam, resp["result"])
}

func TestChat(t *testing.T) {
	client := &fakeLLM{responses: []string{"Here is a summary."}}
	srv, sc := newTestServer(t, client)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Hello", Body: "hi"})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/chat", map[string]string{"query": "summarize my inbox"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]string](t, rec)
	assert.Equal(t, "Here is a summary.", resp["response"])

	rec = doJSON(t, h, http.MethodPost, "/api/chat", map[string]string{"query": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadInbox_Sample(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/inbox/load", map[string]string{"source": "sample"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]int](t, rec)
	assert.Greater(t, resp["inserted"], 0)
	assert.Zero(t, resp["skipped"])

	total, err := sc.Store().CountEmails()
	require.NoError(t, err)
	assert.Equal(t, resp["inserted"], total)

	// Loading again skips every duplicate.
	rec = doJSON(t, h, http.MethodPost, "/api/inbox/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[map[string]int](t, rec)
	assert.Zero(t, resp["inserted"])
	assert.Greater(t, resp["skipped"], 0)
}

func TestLoadInbox_UnknownSource(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/inbox/load", map[string]string{"source": "carrier-pigeon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessInbox(t *testing.T) {
	client := &fakeLLM{responses: []string{"Newsletter", "Spam"}}
	srv, sc := newTestServer(t, client)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Digest", Body: "news"})
	insertEmail(t, sc, mail.Email{ID: "e2", Sender: "b@example.com", Subject: "You won", Body: "click"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/inbox/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary engine.InboxSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Total)
	assert.Empty(t, summary.Errors)
}

func TestStats(t *testing.T) {
	srv, sc := newTestServer(t, nil)
	insertEmail(t, sc, mail.Email{ID: "e1", Sender: "a@example.com", Subject: "Hello", Body: "hi", Category: mail.CategoryImportant})
	_, err := sc.Store().InsertActionItem(mail.ActionItem{EmailID: "e1", Task: "Reply", Deadline: mail.DeadlineUnspecified, Status: mail.StatusPending})
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalEmails  int            `json:"total_emails"`
		ByCategory   map[string]int `json:"by_category"`
		PendingTasks int            `json:"pending_tasks"`
		Drafts       int            `json:"drafts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalEmails)
	assert.Equal(t, 1, stats.ByCategory[mail.CategoryImportant])
	assert.Equal(t, 1, stats.PendingTasks)
	assert.Zero(t, stats.Drafts)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", ready.Checks["store"])

	rec = doJSON(t, h, http.MethodGet, "/healthz/detailed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detailed := decode[DetailedHealthResponse](t, rec)
	assert.Equal(t, "not configured", detailed.Assistant)
}

func TestStaticIndex(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Inboxflow")
}
