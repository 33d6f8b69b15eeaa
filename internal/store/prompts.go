package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Prompt is a stored prompt template. Content may contain {sender},
// {subject}, and {body} placeholders filled in at render time.
type Prompt struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// UpsertPrompt inserts a prompt or replaces the content of an existing
// prompt with the same name.
func (s *Store) UpsertPrompt(name, content string) error {
	_, err := s.db.Exec(`
		INSERT INTO prompts (name, content, is_active, created_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET content = excluded.content`,
		name, content, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert prompt %s: %w", name, err)
	}
	return nil
}

// SeedPrompt inserts a prompt only when no prompt with that name exists.
// Returns true when the prompt was inserted.
func (s *Store) SeedPrompt(name, content string) (bool, error) {
	res, err := s.db.Exec(`
		INSERT INTO prompts (name, content, is_active, created_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO NOTHING`,
		name, content, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("seed prompt %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed prompt %s: %w", name, err)
	}
	return n > 0, nil
}

// GetPrompt returns the active prompt with the given name.
func (s *Store) GetPrompt(name string) (Prompt, error) {
	var p Prompt
	err := s.db.QueryRow(`
		SELECT id, name, content, is_active, created_at
		FROM prompts WHERE name = ? AND is_active = 1`, name).
		Scan(&p.ID, &p.Name, &p.Content, &p.IsActive, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return Prompt{}, fmt.Errorf("prompt %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Prompt{}, fmt.Errorf("get prompt %s: %w", name, err)
	}
	return p, nil
}

// ListPrompts returns all stored prompts.
func (s *Store) ListPrompts() ([]Prompt, error) {
	rows, err := s.db.Query(`
		SELECT id, name, content, is_active, created_at
		FROM prompts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Name, &p.Content, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// UpdatePrompt replaces the content of an existing prompt.
func (s *Store) UpdatePrompt(name, content string) error {
	res, err := s.db.Exec("UPDATE prompts SET content = ? WHERE name = ?", content, name)
	if err != nil {
		return fmt.Errorf("update prompt %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update prompt %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("prompt %s: %w", name, ErrNotFound)
	}
	return nil
}
