package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/teemow/inboxflow/internal/instrumentation"
	"github.com/teemow/inboxflow/internal/llm"
	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/prompts"
	"github.com/teemow/inboxflow/internal/store"
)

// importantEmailLimit caps how many important emails a chat answer lists.
const importantEmailLimit = 10

// recentSubjectLimit caps how many recent subjects the inbox summary
// context includes.
const recentSubjectLimit = 5

// Chat answers a question about the stored inbox. Task and urgency
// questions are answered straight from the store; draft requests go
// through the drafting pipeline; everything else is sent to the model
// with either the selected email or an inbox summary as context.
// emailID is optional and scopes the question to one email.
func (e *Engine) Chat(ctx context.Context, query, emailID string) (string, error) {
	lower := strings.ToLower(query)

	switch {
	case strings.Contains(lower, "task") || strings.Contains(lower, "to-do") || strings.Contains(lower, "action"):
		return e.answerTasks()
	case strings.Contains(lower, "urgent") || strings.Contains(lower, "important"):
		return e.answerImportant()
	case strings.Contains(lower, "draft") || strings.Contains(lower, "reply"):
		return e.answerDraft(ctx, emailID)
	}

	contextText, err := e.chatContext(emailID)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s\n\nProvide a helpful response.", contextText, query)
	response, err := e.complete(ctx, instrumentation.OperationChat, chatTemperature, prompt)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return response, nil
}

// answerTasks lists the pending action items.
func (e *Engine) answerTasks() (string, error) {
	items, err := e.store.ListActionItems(mail.StatusPending)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "You have no pending tasks. Your inbox is all caught up!", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d pending task(s):\n", len(items))
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (deadline: %s)\n", i+1, item.Task, item.Deadline)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// answerImportant lists the most recent important emails.
func (e *Engine) answerImportant() (string, error) {
	emails, err := e.store.ListEmails(mail.CategoryImportant)
	if err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return "No emails are currently marked as important.", nil
	}
	if len(emails) > importantEmailLimit {
		emails = emails[:importantEmailLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d important email(s):\n", len(emails))
	for i, email := range emails {
		fmt.Fprintf(&b, "%d. %s (from %s)\n", i+1, email.Subject, email.Sender)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// answerDraft generates a reply draft when an email is selected.
func (e *Engine) answerDraft(ctx context.Context, emailID string) (string, error) {
	if emailID == "" {
		return "Please select an email first, then ask me to draft a reply.", nil
	}
	draft, err := e.GenerateReplyDraft(ctx, emailID, "professional")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Here's a draft reply:\n\nSubject: %s\n\n%s", draft.Subject, draft.Body), nil
}

// chatContext builds the model context: the selected email's content, or
// an inbox summary when no email is selected.
func (e *Engine) chatContext(emailID string) (string, error) {
	if emailID != "" {
		email, err := e.store.GetEmail(emailID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Email from %s\nSubject: %s\n\nBody:\n%s",
			email.Sender, email.Subject, email.Body), nil
	}
	return e.inboxSummaryContext()
}

// inboxSummaryContext describes the inbox: total count, per-category
// counts, and the most recent subjects.
func (e *Engine) inboxSummaryContext() (string, error) {
	total, err := e.store.CountEmails()
	if err != nil {
		return "", err
	}
	counts, err := e.store.CountByCategory()
	if err != nil {
		return "", err
	}
	recent, err := e.store.ListEmails("")
	if err != nil {
		return "", err
	}
	if len(recent) > recentSubjectLimit {
		recent = recent[:recentSubjectLimit]
	}

	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "Inbox summary: %d emails total.\n", total)
	b.WriteString("By category:\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "- %s: %d\n", category, counts[category])
	}
	b.WriteString("Recent emails:\n")
	for _, email := range recent {
		fmt.Fprintf(&b, "- %s (from %s)\n", email.Subject, email.Sender)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Stats reports inbox counts for the stats endpoints and resources.
type Stats struct {
	TotalEmails  int            `json:"total_emails"`
	ByCategory   map[string]int `json:"by_category"`
	PendingTasks int            `json:"pending_tasks"`
	Drafts       int            `json:"drafts"`
}

// InboxStats collects the current inbox statistics from the store.
func (e *Engine) InboxStats() (Stats, error) {
	total, err := e.store.CountEmails()
	if err != nil {
		return Stats{}, err
	}
	counts, err := e.store.CountByCategory()
	if err != nil {
		return Stats{}, err
	}
	pending, err := e.store.ListActionItems(mail.StatusPending)
	if err != nil {
		return Stats{}, err
	}
	drafts, err := e.store.ListDrafts("")
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalEmails:  total,
		ByCategory:   counts,
		PendingTasks: len(pending),
		Drafts:       len(drafts),
	}, nil
}

// Store exposes the underlying store for handlers that serve raw data.
func (e *Engine) Store() *store.Store {
	return e.store
}

// LLM exposes the configured provider client.
func (e *Engine) LLM() llm.Client {
	return e.llm
}

// PromptService exposes the prompt service.
func (e *Engine) PromptService() *prompts.Service {
	return e.prompts
}
