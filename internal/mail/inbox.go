package mail

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed sample_inbox.json
var sampleInbox []byte

// SampleInbox returns the embedded sample emails used to seed a fresh store.
func SampleInbox() ([]Email, error) {
	var emails []Email
	if err := json.Unmarshal(sampleInbox, &emails); err != nil {
		return nil, fmt.Errorf("failed to parse embedded sample inbox: %w", err)
	}
	return emails, nil
}

// LoadInboxFile reads emails from a JSON file on disk. This allows users to
// bring their own mock inbox instead of the embedded sample data.
func LoadInboxFile(path string) ([]Email, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox file %s: %w", path, err)
	}
	var emails []Email
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, fmt.Errorf("failed to parse inbox file %s: %w", path, err)
	}
	return emails, nil
}
