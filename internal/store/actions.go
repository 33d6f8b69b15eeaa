package store

import (
	"database/sql"
	"fmt"

	"github.com/teemow/inboxflow/internal/mail"
)

// InsertActionItem stores an action item extracted from an email and
// returns its id.
func (s *Store) InsertActionItem(item mail.ActionItem) (int64, error) {
	deadline := item.Deadline
	if deadline == "" {
		deadline = mail.DeadlineUnspecified
	}
	status := item.Status
	if status == "" {
		status = mail.StatusPending
	}
	res, err := s.db.Exec(`
		INSERT INTO action_items (email_id, task, deadline, status)
		VALUES (?, ?, ?, ?)`,
		item.EmailID, item.Task, deadline, status)
	if err != nil {
		return 0, fmt.Errorf("insert action item for %s: %w", item.EmailID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert action item for %s: %w", item.EmailID, err)
	}
	return id, nil
}

// ActionItemsByEmail returns all action items extracted from one email.
func (s *Store) ActionItemsByEmail(emailID string) ([]mail.ActionItem, error) {
	rows, err := s.db.Query(`
		SELECT id, email_id, task, deadline, status, created_at
		FROM action_items WHERE email_id = ? ORDER BY id`, emailID)
	if err != nil {
		return nil, fmt.Errorf("action items for %s: %w", emailID, err)
	}
	defer rows.Close()
	return scanActionItems(rows)
}

// ListActionItems returns action items, optionally filtered by status
// (pending or completed).
func (s *Store) ListActionItems(status string) ([]mail.ActionItem, error) {
	query := `
		SELECT id, email_id, task, deadline, status, created_at
		FROM action_items`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list action items: %w", err)
	}
	defer rows.Close()
	return scanActionItems(rows)
}

// UpdateActionItemStatus marks an action item pending or completed.
func (s *Store) UpdateActionItemStatus(id int64, status string) error {
	if status != mail.StatusPending && status != mail.StatusCompleted {
		return fmt.Errorf("invalid action item status: %s", status)
	}
	res, err := s.db.Exec("UPDATE action_items SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update action item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update action item %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("action item %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteActionItemsByEmail removes the action items of one email. Used
// when an email is reprocessed so items are not duplicated.
func (s *Store) DeleteActionItemsByEmail(emailID string) error {
	if _, err := s.db.Exec("DELETE FROM action_items WHERE email_id = ?", emailID); err != nil {
		return fmt.Errorf("delete action items for %s: %w", emailID, err)
	}
	return nil
}

func scanActionItems(rows *sql.Rows) ([]mail.ActionItem, error) {
	var items []mail.ActionItem
	for rows.Next() {
		var it mail.ActionItem
		if err := rows.Scan(&it.ID, &it.EmailID, &it.Task, &it.Deadline, &it.Status, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
