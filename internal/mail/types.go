package mail

import (
	"encoding/json"
	"time"
)

// Email is a message stored in the local inbox.
type Email struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	RawData   string `json:"raw_data,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ActionItem is a task extracted from an email.
type ActionItem struct {
	ID        int64  `json:"id"`
	EmailID   string `json:"email_id"`
	Task      string `json:"task"`
	Deadline  string `json:"deadline"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Draft is a locally saved reply or new message. Drafts are never sent
// automatically; the user copies them into their own mail client.
type Draft struct {
	ID        int64  `json:"id"`
	EmailID   string `json:"email_id,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Metadata  string `json:"metadata,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Action item status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// DeadlineUnspecified is stored when the model reports no deadline.
const DeadlineUnspecified = "Not specified"

// RawJSON returns the email serialized as JSON for the raw_data column.
func (e *Email) RawJSON() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}

// ParsedTimestamp returns the email timestamp as time.Time.
// Falls back to the zero time if the timestamp cannot be parsed.
func (e *Email) ParsedTimestamp() time.Time {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
