package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/inboxflow/internal/instrumentation"
	"github.com/teemow/inboxflow/internal/llm"
	"github.com/teemow/inboxflow/internal/logging"
	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/prompts"
	"github.com/teemow/inboxflow/internal/store"
)

// Pipeline temperatures. Categorization and extraction want near
// deterministic output; drafting and chat want some variety.
const (
	categorizeTemperature = 0.3
	extractTemperature    = 0.2
	draftTemperature      = 0.7
	chatTemperature       = 0.7
)

// systemPrompt is sent with every completion request.
const systemPrompt = "You are a helpful email assistant."

// Engine orchestrates the email pipeline: categorization, action item
// extraction, reply drafting, and chat over the stored inbox.
type Engine struct {
	store     *store.Store
	llm       llm.Client
	prompts   *prompts.Service
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	maxTokens int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxTokens bounds the completion length of every LLM call.
func WithMaxTokens(n int) Option {
	return func(e *Engine) { e.maxTokens = n }
}

// New creates an Engine.
func New(s *store.Store, client llm.Client, promptSvc *prompts.Service, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		llm:       client,
		prompts:   promptSvc,
		logger:    slog.Default(),
		metrics:   &instrumentation.Metrics{},
		maxTokens: 500,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// complete runs one instrumented completion call.
func (e *Engine) complete(ctx context.Context, operation string, temperature float64, prompt string) (string, error) {
	ctx, span := instrumentation.StartLLMSpan(ctx, e.llm.Provider(), operation)
	defer span.End()

	start := time.Now()
	response, err := e.llm.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   e.maxTokens,
	})
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	e.metrics.RecordLLMCall(ctx, e.llm.Provider(), operation, status, duration)
	e.logger.Debug("llm call completed",
		logging.Provider(e.llm.Provider()),
		logging.Operation(operation),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err))

	return response, err
}

// CategorizeEmail asks the model for a category, normalizes the answer to
// the canonical set, and persists it. Returns the stored category.
func (e *Engine) CategorizeEmail(ctx context.Context, email mail.Email) (string, error) {
	template, err := e.prompts.Get(prompts.KindCategorization)
	if err != nil {
		return "", fmt.Errorf("categorization prompt: %w", err)
	}

	response, err := e.complete(ctx, instrumentation.OperationCategorize, categorizeTemperature, prompts.Render(template, email))
	if err != nil {
		return "", fmt.Errorf("categorize email %s: %w", email.ID, err)
	}

	category := mail.NormalizeCategory(response)
	if err := e.store.UpdateCategory(email.ID, category); err != nil {
		return "", err
	}

	e.metrics.RecordEmailProcessed(ctx, category)
	e.logger.Info("email categorized",
		logging.EmailID(email.ID),
		logging.Category(category),
		logging.Sender(email.Sender))
	return category, nil
}

// ExtractActionItems asks the model for the email's tasks and persists
// them. An unparseable response yields no items, not an error; existing
// items for the email are replaced so reprocessing does not duplicate.
func (e *Engine) ExtractActionItems(ctx context.Context, email mail.Email) ([]mail.ActionItem, error) {
	template, err := e.prompts.Get(prompts.KindActionItem)
	if err != nil {
		return nil, fmt.Errorf("action_item prompt: %w", err)
	}

	response, err := e.complete(ctx, instrumentation.OperationExtract, extractTemperature, prompts.Render(template, email))
	if err != nil {
		return nil, fmt.Errorf("extract action items for %s: %w", email.ID, err)
	}

	items := parseActionItems(response)
	if items == nil {
		e.logger.Warn("failed to parse action items response",
			logging.EmailID(email.ID),
			slog.Int("response_len", len(response)))
		return nil, nil
	}

	if err := e.store.DeleteActionItemsByEmail(email.ID); err != nil {
		return nil, err
	}

	saved := make([]mail.ActionItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Task) == "" {
			continue
		}
		item.EmailID = email.ID
		item.Status = mail.StatusPending
		if item.Deadline == "" {
			item.Deadline = mail.DeadlineUnspecified
		}
		id, err := e.store.InsertActionItem(item)
		if err != nil {
			return nil, err
		}
		item.ID = id
		saved = append(saved, item)
	}

	e.metrics.RecordActionItemsExtracted(ctx, len(saved))
	return saved, nil
}

// parseActionItems parses a JSON array of {task, deadline} objects,
// tolerating a surrounding markdown code fence. Returns nil when the
// response is not valid JSON.
func parseActionItems(response string) []mail.ActionItem {
	cleaned := stripCodeFence(response)

	var raw []struct {
		Task     string `json:"task"`
		Deadline string `json:"deadline"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil
	}

	items := make([]mail.ActionItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, mail.ActionItem{Task: r.Task, Deadline: r.Deadline})
	}
	return items
}

// stripCodeFence removes a surrounding markdown code fence (``` or
// ```json) from a model response.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) <= 2 {
		return trimmed
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}

// GenerateReplyDraft generates and stores a reply draft for an email.
// The draft subject is "Re: " plus the original subject. A tone other
// than "professional" is appended to the prompt as a hint.
func (e *Engine) GenerateReplyDraft(ctx context.Context, emailID, tone string) (mail.Draft, error) {
	email, err := e.store.GetEmail(emailID)
	if err != nil {
		return mail.Draft{}, err
	}

	template, err := e.prompts.Get(prompts.KindAutoReply)
	if err != nil {
		return mail.Draft{}, fmt.Errorf("auto_reply prompt: %w", err)
	}

	prompt := prompts.Render(template, email)
	if tone != "" && tone != "professional" {
		prompt += "\n\nTone: " + tone
	}

	body, err := e.complete(ctx, instrumentation.OperationDraft, draftTemperature, prompt)
	if err != nil {
		return mail.Draft{}, fmt.Errorf("generate draft for %s: %w", emailID, err)
	}

	draft := mail.Draft{
		EmailID: email.ID,
		Subject: "Re: " + email.Subject,
		Body:    body,
	}
	id, err := e.store.InsertDraft(draft)
	if err != nil {
		return mail.Draft{}, err
	}
	draft.ID = id

	e.metrics.RecordDraftGenerated(ctx)
	e.logger.Info("reply draft generated",
		logging.EmailID(email.ID),
		slog.Int64("draft_id", id))
	return draft, nil
}

// ProcessResult summarizes one processed email.
type ProcessResult struct {
	EmailID     string            `json:"email_id"`
	Category    string            `json:"category"`
	ActionItems []mail.ActionItem `json:"action_items,omitempty"`
}

// ProcessEmail runs the categorize-then-extract pipeline for one email.
// Reprocessing an already categorized email is allowed.
func (e *Engine) ProcessEmail(ctx context.Context, emailID string) (ProcessResult, error) {
	email, err := e.store.GetEmail(emailID)
	if err != nil {
		return ProcessResult{}, err
	}

	category, err := e.CategorizeEmail(ctx, email)
	if err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{EmailID: emailID, Category: category}
	if category == mail.CategoryToDo {
		items, err := e.ExtractActionItems(ctx, email)
		if err != nil {
			return result, err
		}
		result.ActionItems = items
	}
	return result, nil
}

// InboxSummary reports the outcome of a full inbox processing run.
type InboxSummary struct {
	Processed int      `json:"processed"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors,omitempty"`
}

// ProgressFunc reports batch progress: emails handled so far, total, and
// the subject of the email being processed.
type ProgressFunc func(current, total int, subject string)

// ProcessInbox runs the pipeline over every uncategorized email.
// Per-email failures are collected and do not abort the batch. The run
// fails up front when the required prompts are missing.
func (e *Engine) ProcessInbox(ctx context.Context, progress ProgressFunc) (InboxSummary, error) {
	// Fail before the first call rather than midway through the batch.
	if _, err := e.prompts.Get(prompts.KindCategorization); err != nil {
		return InboxSummary{}, fmt.Errorf("prompts not loaded: %w", err)
	}
	if _, err := e.prompts.Get(prompts.KindActionItem); err != nil {
		return InboxSummary{}, fmt.Errorf("prompts not loaded: %w", err)
	}

	uncategorized, err := e.store.ListEmails(mail.CategoryUncategorized)
	if err != nil {
		return InboxSummary{}, err
	}

	summary := InboxSummary{Total: len(uncategorized)}
	for _, email := range uncategorized {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++
		if progress != nil {
			progress(summary.Processed, summary.Total, mail.Truncate(email.Subject, 50))
		}

		if _, err := e.ProcessEmail(ctx, email.ID); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("error processing email %s: %v", email.ID, err))
			e.logger.Warn("email processing failed",
				logging.EmailID(email.ID),
				logging.Err(err))
		}
	}

	e.logger.Info("inbox processed",
		slog.Int("processed", summary.Processed),
		slog.Int("total", summary.Total),
		slog.Int("errors", len(summary.Errors)))
	return summary, nil
}

// TestPrompt runs one prompt kind against a caller-supplied sample email
// without touching the store. It returns the raw pipeline output.
func (e *Engine) TestPrompt(ctx context.Context, kind string, sample mail.Email) (string, error) {
	template, err := e.prompts.Get(kind)
	if err != nil {
		return "", err
	}
	prompt := prompts.Render(template, sample)

	switch kind {
	case prompts.KindCategorization:
		response, err := e.complete(ctx, instrumentation.OperationTest, categorizeTemperature, prompt)
		if err != nil {
			return "", err
		}
		return mail.NormalizeCategory(response), nil
	case prompts.KindActionItem:
		response, err := e.complete(ctx, instrumentation.OperationTest, extractTemperature, prompt)
		if err != nil {
			return "", err
		}
		items := parseActionItems(response)
		if items == nil {
			return response, nil
		}
		out, err := json.Marshal(items)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case prompts.KindAutoReply:
		return e.complete(ctx, instrumentation.OperationTest, draftTemperature, prompt)
	default:
		return "", fmt.Errorf("unknown prompt kind: %s", kind)
	}
}
