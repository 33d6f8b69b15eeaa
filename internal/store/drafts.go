package store

import (
	"database/sql"
	"fmt"

	"github.com/teemow/inboxflow/internal/mail"
)

// InsertDraft stores a reply draft and returns its id. EmailID may be
// empty for standalone drafts.
func (s *Store) InsertDraft(d mail.Draft) (int64, error) {
	var emailID any
	if d.EmailID != "" {
		emailID = d.EmailID
	}
	res, err := s.db.Exec(`
		INSERT INTO drafts (email_id, subject, body, metadata)
		VALUES (?, ?, ?, ?)`,
		emailID, d.Subject, d.Body, d.Metadata)
	if err != nil {
		return 0, fmt.Errorf("insert draft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert draft: %w", err)
	}
	return id, nil
}

// ListDrafts returns stored drafts, newest first. A non-empty emailID
// restricts the listing to drafts replying to that email.
func (s *Store) ListDrafts(emailID string) ([]mail.Draft, error) {
	query := `
		SELECT id, COALESCE(email_id, ''), subject, body, COALESCE(metadata, ''), created_at
		FROM drafts`
	args := []any{}
	if emailID != "" {
		query += " WHERE email_id = ?"
		args = append(args, emailID)
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []mail.Draft
	for rows.Next() {
		var d mail.Draft
		if err := rows.Scan(&d.ID, &d.EmailID, &d.Subject, &d.Body, &d.Metadata, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// GetDraft returns a single draft by id.
func (s *Store) GetDraft(id int64) (mail.Draft, error) {
	var d mail.Draft
	err := s.db.QueryRow(`
		SELECT id, COALESCE(email_id, ''), subject, body, COALESCE(metadata, ''), created_at
		FROM drafts WHERE id = ?`, id).
		Scan(&d.ID, &d.EmailID, &d.Subject, &d.Body, &d.Metadata, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return mail.Draft{}, fmt.Errorf("draft %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return mail.Draft{}, fmt.Errorf("get draft %d: %w", id, err)
	}
	return d, nil
}

// UpdateDraft replaces the subject and body of an existing draft.
func (s *Store) UpdateDraft(id int64, subject, body string) error {
	res, err := s.db.Exec("UPDATE drafts SET subject = ?, body = ? WHERE id = ?", subject, body, id)
	if err != nil {
		return fmt.Errorf("update draft %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update draft %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("draft %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteDraft removes a draft.
func (s *Store) DeleteDraft(id int64) error {
	res, err := s.db.Exec("DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete draft %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete draft %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("draft %d: %w", id, ErrNotFound)
	}
	return nil
}
