package store

import (
	"errors"
	"testing"

	"github.com/teemow/inboxflow/internal/mail"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testEmail(id string) mail.Email {
	return mail.Email{
		ID:        id,
		Sender:    "sarah.chen@example.com",
		Subject:   "Q3 budget review",
		Body:      "Please review the attached budget before Friday.",
		Timestamp: "2025-06-02T09:14:00Z",
	}
}

func TestInsertEmailDuplicate(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.InsertEmail(testEmail("email_001"))
	if err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}
	if !inserted {
		t.Error("InsertEmail() inserted = false on first insert")
	}

	// Same id again: skipped, not an error.
	inserted, err = s.InsertEmail(testEmail("email_001"))
	if err != nil {
		t.Fatalf("InsertEmail() duplicate error = %v", err)
	}
	if inserted {
		t.Error("InsertEmail() inserted = true on duplicate insert")
	}

	n, err := s.CountEmails()
	if err != nil {
		t.Fatalf("CountEmails() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountEmails() = %d, want 1", n)
	}
}

func TestEmailDefaultsToUncategorized(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertEmail(testEmail("email_001")); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}
	e, err := s.GetEmail("email_001")
	if err != nil {
		t.Fatalf("GetEmail() error = %v", err)
	}
	if e.Category != mail.CategoryUncategorized {
		t.Errorf("Category = %q, want %q", e.Category, mail.CategoryUncategorized)
	}
}

func TestListEmailsOrderAndFilter(t *testing.T) {
	s := newTestStore(t)

	older := testEmail("email_old")
	older.Timestamp = "2025-06-01T08:00:00Z"
	newer := testEmail("email_new")
	newer.Timestamp = "2025-06-03T08:00:00Z"
	newer.Category = mail.CategoryImportant

	for _, e := range []mail.Email{older, newer} {
		if _, err := s.InsertEmail(e); err != nil {
			t.Fatalf("InsertEmail(%s) error = %v", e.ID, err)
		}
	}

	all, err := s.ListEmails("")
	if err != nil {
		t.Fatalf("ListEmails() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListEmails() returned %d emails, want 2", len(all))
	}
	if all[0].ID != "email_new" {
		t.Errorf("ListEmails() first = %q, want newest first", all[0].ID)
	}

	important, err := s.ListEmails(mail.CategoryImportant)
	if err != nil {
		t.Fatalf("ListEmails(Important) error = %v", err)
	}
	if len(important) != 1 || important[0].ID != "email_new" {
		t.Errorf("ListEmails(Important) = %v, want only email_new", important)
	}
}

func TestUpdateCategory(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertEmail(testEmail("email_001")); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}

	if err := s.UpdateCategory("email_001", mail.CategoryToDo); err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}
	e, err := s.GetEmail("email_001")
	if err != nil {
		t.Fatalf("GetEmail() error = %v", err)
	}
	if e.Category != mail.CategoryToDo {
		t.Errorf("Category = %q, want %q", e.Category, mail.CategoryToDo)
	}

	err = s.UpdateCategory("missing", mail.CategorySpam)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCategory(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCountByCategory(t *testing.T) {
	s := newTestStore(t)
	a := testEmail("a")
	a.Category = mail.CategorySpam
	b := testEmail("b")
	b.Category = mail.CategorySpam
	c := testEmail("c")
	for _, e := range []mail.Email{a, b, c} {
		if _, err := s.InsertEmail(e); err != nil {
			t.Fatalf("InsertEmail(%s) error = %v", e.ID, err)
		}
	}

	counts, err := s.CountByCategory()
	if err != nil {
		t.Fatalf("CountByCategory() error = %v", err)
	}
	if counts[mail.CategorySpam] != 2 {
		t.Errorf("counts[Spam] = %d, want 2", counts[mail.CategorySpam])
	}
	if counts[mail.CategoryUncategorized] != 1 {
		t.Errorf("counts[Uncategorized] = %d, want 1", counts[mail.CategoryUncategorized])
	}
}

func TestSearchEmails(t *testing.T) {
	s := newTestStore(t)
	e := testEmail("email_001")
	if _, err := s.InsertEmail(e); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}

	tests := []struct {
		name  string
		query string
		field string
		want  int
	}{
		{"body match any field", "budget", "", 1},
		{"subject match", "Q3", "subject", 1},
		{"sender match", "sarah", "sender", 1},
		{"no match", "unicorn", "", 0},
		{"field restricted miss", "sarah", "body", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchEmails(tt.query, tt.field)
			if err != nil {
				t.Fatalf("SearchEmails() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchEmails(%q, %q) returned %d, want %d", tt.query, tt.field, len(got), tt.want)
			}
		})
	}

	if _, err := s.SearchEmails("x", "nope"); err == nil {
		t.Error("SearchEmails() with unknown field should error")
	}
}

func TestActionItems(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertEmail(testEmail("email_001")); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}

	id, err := s.InsertActionItem(mail.ActionItem{
		EmailID: "email_001",
		Task:    "Review the budget spreadsheet",
	})
	if err != nil {
		t.Fatalf("InsertActionItem() error = %v", err)
	}
	if id == 0 {
		t.Error("InsertActionItem() returned id 0")
	}

	items, err := s.ActionItemsByEmail("email_001")
	if err != nil {
		t.Fatalf("ActionItemsByEmail() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ActionItemsByEmail() returned %d items, want 1", len(items))
	}
	if items[0].Deadline != mail.DeadlineUnspecified {
		t.Errorf("Deadline = %q, want %q", items[0].Deadline, mail.DeadlineUnspecified)
	}
	if items[0].Status != mail.StatusPending {
		t.Errorf("Status = %q, want %q", items[0].Status, mail.StatusPending)
	}

	if err := s.UpdateActionItemStatus(id, mail.StatusCompleted); err != nil {
		t.Fatalf("UpdateActionItemStatus() error = %v", err)
	}
	pending, err := s.ListActionItems(mail.StatusPending)
	if err != nil {
		t.Fatalf("ListActionItems(pending) error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("ListActionItems(pending) returned %d items, want 0", len(pending))
	}

	if err := s.UpdateActionItemStatus(id, "done"); err == nil {
		t.Error("UpdateActionItemStatus() with invalid status should error")
	}
	if err := s.UpdateActionItemStatus(9999, mail.StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateActionItemStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteActionItemsByEmail(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertEmail(testEmail("email_001")); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}
	if _, err := s.InsertActionItem(mail.ActionItem{EmailID: "email_001", Task: "a"}); err != nil {
		t.Fatalf("InsertActionItem() error = %v", err)
	}
	if err := s.DeleteActionItemsByEmail("email_001"); err != nil {
		t.Fatalf("DeleteActionItemsByEmail() error = %v", err)
	}
	items, err := s.ActionItemsByEmail("email_001")
	if err != nil {
		t.Fatalf("ActionItemsByEmail() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items remaining after delete: %d", len(items))
	}
}

func TestPrompts(t *testing.T) {
	s := newTestStore(t)

	seeded, err := s.SeedPrompt("categorization", "Categorize: {subject}")
	if err != nil {
		t.Fatalf("SeedPrompt() error = %v", err)
	}
	if !seeded {
		t.Error("SeedPrompt() seeded = false on empty table")
	}

	// Seeding again must not overwrite.
	seeded, err = s.SeedPrompt("categorization", "different")
	if err != nil {
		t.Fatalf("SeedPrompt() second error = %v", err)
	}
	if seeded {
		t.Error("SeedPrompt() seeded = true for existing prompt")
	}

	p, err := s.GetPrompt("categorization")
	if err != nil {
		t.Fatalf("GetPrompt() error = %v", err)
	}
	if p.Content != "Categorize: {subject}" {
		t.Errorf("Content = %q, want original seed content", p.Content)
	}

	if err := s.UpdatePrompt("categorization", "New content {body}"); err != nil {
		t.Fatalf("UpdatePrompt() error = %v", err)
	}
	p, err = s.GetPrompt("categorization")
	if err != nil {
		t.Fatalf("GetPrompt() after update error = %v", err)
	}
	if p.Content != "New content {body}" {
		t.Errorf("Content = %q after update", p.Content)
	}

	if err := s.UpsertPrompt("auto_reply", "Reply to {sender}"); err != nil {
		t.Fatalf("UpsertPrompt() error = %v", err)
	}
	prompts, err := s.ListPrompts()
	if err != nil {
		t.Fatalf("ListPrompts() error = %v", err)
	}
	if len(prompts) != 2 {
		t.Errorf("ListPrompts() returned %d, want 2", len(prompts))
	}

	if _, err := s.GetPrompt("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPrompt(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.UpdatePrompt("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePrompt(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDrafts(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertEmail(testEmail("email_001")); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}

	id, err := s.InsertDraft(mail.Draft{
		EmailID: "email_001",
		Subject: "Re: Q3 budget review",
		Body:    "Thanks, I'll review it today.",
	})
	if err != nil {
		t.Fatalf("InsertDraft() error = %v", err)
	}

	d, err := s.GetDraft(id)
	if err != nil {
		t.Fatalf("GetDraft() error = %v", err)
	}
	if d.Subject != "Re: Q3 budget review" {
		t.Errorf("Subject = %q", d.Subject)
	}
	if d.EmailID != "email_001" {
		t.Errorf("EmailID = %q, want email_001", d.EmailID)
	}

	if err := s.UpdateDraft(id, "Re: budget", "Updated body"); err != nil {
		t.Fatalf("UpdateDraft() error = %v", err)
	}
	d, _ = s.GetDraft(id)
	if d.Body != "Updated body" {
		t.Errorf("Body = %q after update", d.Body)
	}

	// Standalone draft with no email reference.
	if _, err := s.InsertDraft(mail.Draft{Subject: "Note", Body: "standalone"}); err != nil {
		t.Fatalf("InsertDraft(standalone) error = %v", err)
	}
	all, err := s.ListDrafts("")
	if err != nil {
		t.Fatalf("ListDrafts() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListDrafts() returned %d, want 2", len(all))
	}
	linked, err := s.ListDrafts("email_001")
	if err != nil {
		t.Fatalf("ListDrafts(email_001) error = %v", err)
	}
	if len(linked) != 1 {
		t.Errorf("ListDrafts(email_001) returned %d, want 1", len(linked))
	}

	if err := s.DeleteDraft(id); err != nil {
		t.Fatalf("DeleteDraft() error = %v", err)
	}
	if _, err := s.GetDraft(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDraft(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteDraft(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteDraft(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestClearEmails(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InsertEmail(testEmail("email_001")); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}
	if _, err := s.InsertActionItem(mail.ActionItem{EmailID: "email_001", Task: "t"}); err != nil {
		t.Fatalf("InsertActionItem() error = %v", err)
	}
	if _, err := s.InsertDraft(mail.Draft{EmailID: "email_001", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("InsertDraft() error = %v", err)
	}
	if _, err := s.SeedPrompt("categorization", "c"); err != nil {
		t.Fatalf("SeedPrompt() error = %v", err)
	}

	if err := s.ClearEmails(); err != nil {
		t.Fatalf("ClearEmails() error = %v", err)
	}

	n, err := s.CountEmails()
	if err != nil {
		t.Fatalf("CountEmails() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountEmails() = %d after clear, want 0", n)
	}
	items, _ := s.ListActionItems("")
	if len(items) != 0 {
		t.Errorf("action items remaining after clear: %d", len(items))
	}
	drafts, _ := s.ListDrafts("")
	if len(drafts) != 0 {
		t.Errorf("drafts remaining after clear: %d", len(drafts))
	}

	// Prompts survive a clear.
	if _, err := s.GetPrompt("categorization"); err != nil {
		t.Errorf("GetPrompt() after clear error = %v", err)
	}
}
