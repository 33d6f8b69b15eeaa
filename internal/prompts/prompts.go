package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/store"
)

// Prompt kinds. These are the names under which prompts are stored.
const (
	KindCategorization = "categorization"
	KindActionItem     = "action_item"
	KindAutoReply      = "auto_reply"
)

// Kinds lists all known prompt kinds.
var Kinds = []string{KindCategorization, KindActionItem, KindAutoReply}

//go:embed default_prompts.json
var defaultPromptsJSON []byte

type defaultPrompt struct {
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Defaults returns the embedded default prompt content by kind.
func Defaults() (map[string]string, error) {
	var raw map[string]defaultPrompt
	if err := json.Unmarshal(defaultPromptsJSON, &raw); err != nil {
		return nil, fmt.Errorf("parse embedded default prompts: %w", err)
	}
	defaults := make(map[string]string, len(raw))
	for kind, p := range raw {
		defaults[kind] = p.Content
	}
	return defaults, nil
}

// IsValidKind reports whether kind names a known prompt.
func IsValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Service manages prompt templates backed by the store.
type Service struct {
	store *store.Store
}

// NewService creates a prompt service.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// EnsureLoaded seeds the embedded defaults for any prompt kind missing
// from the store. Existing prompts, including user edits, are untouched.
func (s *Service) EnsureLoaded() error {
	defaults, err := Defaults()
	if err != nil {
		return err
	}
	for _, kind := range Kinds {
		content, ok := defaults[kind]
		if !ok {
			return fmt.Errorf("no embedded default for prompt %s", kind)
		}
		if _, err := s.store.SeedPrompt(kind, content); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the active prompt content for a kind.
func (s *Service) Get(kind string) (string, error) {
	p, err := s.store.GetPrompt(kind)
	if err != nil {
		return "", err
	}
	return p.Content, nil
}

// Update replaces the stored content of a prompt.
func (s *Service) Update(kind, content string) error {
	if !IsValidKind(kind) {
		return fmt.Errorf("unknown prompt kind: %s", kind)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("prompt content must not be empty")
	}
	return s.store.UpdatePrompt(kind, content)
}

// Reset restores a prompt to its embedded default.
func (s *Service) Reset(kind string) error {
	defaults, err := Defaults()
	if err != nil {
		return err
	}
	content, ok := defaults[kind]
	if !ok {
		return fmt.Errorf("unknown prompt kind: %s", kind)
	}
	return s.store.UpsertPrompt(kind, content)
}

// All returns all stored prompts.
func (s *Service) All() ([]store.Prompt, error) {
	return s.store.ListPrompts()
}

// Render fills the {sender}, {subject}, and {body} placeholders of a
// prompt template with the email's fields.
func Render(template string, e mail.Email) string {
	r := strings.NewReplacer(
		"{sender}", e.Sender,
		"{subject}", e.Subject,
		"{body}", e.Body,
	)
	return r.Replace(template)
}
