package gmail

import (
	"context"
	"fmt"

	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/store"
)

// ImportResult summarizes an inbox import.
type ImportResult struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// EmailSource fetches messages for import. Satisfied by Client; a fake
// stands in for tests.
type EmailSource interface {
	ListInboxMessages(ctx context.Context, maxResults int64) ([]mail.Email, error)
}

// ImportInbox copies inbox messages into the local store. Messages
// already present (by id) are skipped, so repeated imports are safe.
func ImportInbox(ctx context.Context, src EmailSource, s *store.Store, maxResults int64) (ImportResult, error) {
	emails, err := src.ListInboxMessages(ctx, maxResults)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Fetched: len(emails)}
	for _, email := range emails {
		inserted, err := s.InsertEmail(email)
		if err != nil {
			return result, fmt.Errorf("failed to store message %s: %w", email.ID, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}
