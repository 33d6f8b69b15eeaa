package gmail

import (
	"context"
	"encoding/base64"
	"testing"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/store"
)

func encodeBody(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestMessageToEmail(t *testing.T) {
	m := &gmail.Message{
		Id:      "18f0a",
		Snippet: "snippet text",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "alice@example.com"},
				{Name: "Subject", Value: "Quarterly numbers"},
				{Name: "Date", Value: "Mon, 24 Aug 2026 09:30:00 +0200"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain; charset=UTF-8",
					Body:     &gmail.MessagePartBody{Data: encodeBody("Please find the numbers attached.")},
				},
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: encodeBody("<p>html version</p>")},
				},
			},
		},
	}

	email := MessageToEmail(m)

	if email.ID != "gmail_18f0a" {
		t.Errorf("ID = %q, want gmail_18f0a", email.ID)
	}
	if email.Sender != "alice@example.com" {
		t.Errorf("Sender = %q", email.Sender)
	}
	if email.Subject != "Quarterly numbers" {
		t.Errorf("Subject = %q", email.Subject)
	}
	if email.Timestamp != "2026-08-24T07:30:00" {
		t.Errorf("Timestamp = %q", email.Timestamp)
	}
	if email.Body != "Please find the numbers attached." {
		t.Errorf("Body = %q", email.Body)
	}
}

func TestMessageToEmail_NoPlainTextFallsBackToSnippet(t *testing.T) {
	m := &gmail.Message{
		Id:      "abc",
		Snippet: "only the snippet",
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "bob@example.com"},
			},
			Body: &gmail.MessagePartBody{Data: encodeBody("<p>html</p>")},
		},
	}

	email := MessageToEmail(m)
	if email.Body != "only the snippet" {
		t.Errorf("Body = %q, want snippet fallback", email.Body)
	}
}

type fakeSource struct {
	emails []mail.Email
}

func (f *fakeSource) ListInboxMessages(_ context.Context, _ int64) ([]mail.Email, error) {
	return f.emails, nil
}

func TestImportInbox_SkipsDuplicates(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	src := &fakeSource{emails: []mail.Email{
		{ID: "gmail_1", Sender: "a@b.com", Subject: "One", Body: "first"},
		{ID: "gmail_2", Sender: "c@d.com", Subject: "Two", Body: "second"},
	}}

	result, err := ImportInbox(context.Background(), src, s, 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Inserted != 2 || result.Skipped != 0 {
		t.Errorf("first import = %+v, want 2 inserted", result)
	}

	result, err = ImportInbox(context.Background(), src, s, 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Inserted != 0 || result.Skipped != 2 {
		t.Errorf("second import = %+v, want 2 skipped", result)
	}
}
