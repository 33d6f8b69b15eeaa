package store

import (
	"database/sql"
	"fmt"

	"github.com/teemow/inboxflow/internal/mail"
)

// InsertEmail stores an email. If an email with the same id already exists
// the insert is skipped and inserted is false.
func (s *Store) InsertEmail(e mail.Email) (inserted bool, err error) {
	category := e.Category
	if category == "" {
		category = mail.CategoryUncategorized
	}
	res, err := s.db.Exec(`
		INSERT INTO emails (id, sender, subject, body, timestamp, category, raw_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		e.ID, e.Sender, e.Subject, e.Body, e.Timestamp, category, e.RawData)
	if err != nil {
		return false, fmt.Errorf("insert email %s: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert email %s: %w", e.ID, err)
	}
	return n > 0, nil
}

// LoadEmails inserts a batch of emails, skipping ids already present.
func (s *Store) LoadEmails(emails []mail.Email) (inserted, skipped int, err error) {
	for _, e := range emails {
		ok, err := s.InsertEmail(e)
		if err != nil {
			return inserted, skipped, err
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}

// ListEmails returns stored emails, newest first. An empty category returns
// all emails.
func (s *Store) ListEmails(category string) ([]mail.Email, error) {
	query := `
		SELECT id, sender, subject, body, timestamp, category, COALESCE(raw_data, ''), created_at
		FROM emails`
	args := []any{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()
	return scanEmails(rows)
}

// GetEmail returns a single email by id.
func (s *Store) GetEmail(id string) (mail.Email, error) {
	var e mail.Email
	err := s.db.QueryRow(`
		SELECT id, sender, subject, body, timestamp, category, COALESCE(raw_data, ''), created_at
		FROM emails WHERE id = ?`, id).
		Scan(&e.ID, &e.Sender, &e.Subject, &e.Body, &e.Timestamp, &e.Category, &e.RawData, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return mail.Email{}, fmt.Errorf("email %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return mail.Email{}, fmt.Errorf("get email %s: %w", id, err)
	}
	return e, nil
}

// UpdateCategory sets the category of an email.
func (s *Store) UpdateCategory(id, category string) error {
	res, err := s.db.Exec("UPDATE emails SET category = ? WHERE id = ?", category, id)
	if err != nil {
		return fmt.Errorf("update category for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category for %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("email %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountByCategory returns the number of stored emails per category.
func (s *Store) CountByCategory() (map[string]int, error) {
	rows, err := s.db.Query("SELECT category, COUNT(*) FROM emails GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("count by category: %w", err)
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// CountEmails returns the total number of stored emails.
func (s *Store) CountEmails() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM emails").Scan(&n); err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}
	return n, nil
}

// SearchEmails returns emails whose sender, subject, or body contains the
// query string. A non-empty field restricts the search to that column
// (sender, subject, or body).
func (s *Store) SearchEmails(query, field string) ([]mail.Email, error) {
	base := `
		SELECT id, sender, subject, body, timestamp, category, COALESCE(raw_data, ''), created_at
		FROM emails WHERE `
	pattern := "%" + query + "%"
	var (
		where string
		args  []any
	)
	switch field {
	case "sender":
		where = "sender LIKE ?"
		args = []any{pattern}
	case "subject":
		where = "subject LIKE ?"
		args = []any{pattern}
	case "body":
		where = "body LIKE ?"
		args = []any{pattern}
	case "":
		where = "(sender LIKE ? OR subject LIKE ? OR body LIKE ?)"
		args = []any{pattern, pattern, pattern}
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	rows, err := s.db.Query(base+where+" ORDER BY timestamp DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("search emails: %w", err)
	}
	defer rows.Close()
	return scanEmails(rows)
}

func scanEmails(rows *sql.Rows) ([]mail.Email, error) {
	var emails []mail.Email
	for rows.Next() {
		var e mail.Email
		if err := rows.Scan(&e.ID, &e.Sender, &e.Subject, &e.Body, &e.Timestamp, &e.Category, &e.RawData, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
