package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	netmail "net/mail"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxflow/internal/google"
	"github.com/teemow/inboxflow/internal/mail"
)

// Client wraps the Gmail Users service for the read-only inbox import.
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return google.HasToken()
}

// NewClientForAccount creates a new Gmail client with OAuth2
// authentication for a specific account
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
	}, nil
}

// NewClient creates a new Gmail client for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListInboxMessages fetches up to maxResults inbox messages and converts
// them to local emails. IDs are prefixed with "gmail_" so imports never
// collide with the sample inbox.
func (c *Client) ListInboxMessages(ctx context.Context, maxResults int64) ([]mail.Email, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	var emails []mail.Email
	pageToken := ""
	for int64(len(emails)) < maxResults {
		req := c.svc.Messages.List("me").Q("in:inbox").MaxResults(maxResults - int64(len(emails)))
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		res, err := req.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list inbox messages: %w", err)
		}

		for _, m := range res.Messages {
			full, err := c.svc.Messages.Get("me", m.Id).Format("full").Context(ctx).Do()
			if err != nil {
				return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
			}
			emails = append(emails, MessageToEmail(full))
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(emails)) > maxResults {
		emails = emails[:maxResults]
	}
	return emails, nil
}

// MessageToEmail converts a Gmail API message to a local email.
func MessageToEmail(m *gmail.Message) mail.Email {
	email := mail.Email{
		ID:      "gmail_" + m.Id,
		RawData: m.Snippet,
	}
	if m.Payload == nil {
		return email
	}

	for _, h := range m.Payload.Headers {
		switch h.Name {
		case "From":
			email.Sender = h.Value
		case "Subject":
			email.Subject = h.Value
		case "Date":
			if t, err := netmail.ParseDate(h.Value); err == nil {
				email.Timestamp = t.UTC().Format("2006-01-02T15:04:05")
			}
		}
	}

	email.Body = extractBody(m.Payload)
	if email.Body == "" {
		email.Body = m.Snippet
	}
	return email
}

// extractBody walks the MIME tree and returns the first text/plain part,
// base64url decoded.
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if strings.HasPrefix(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(part.Body.Data, "="))
		if err != nil {
			return ""
		}
		return string(data)
	}
	for _, p := range part.Parts {
		if body := extractBody(p); body != "" {
			return body
		}
	}
	return ""
}
