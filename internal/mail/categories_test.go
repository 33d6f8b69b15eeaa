package mail

import "testing"

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"exact match", "Important", CategoryImportant},
		{"lowercase", "important", CategoryImportant},
		{"with prose", "This email is a Newsletter.", CategoryNewsletter},
		{"todo hyphenated", "to-do", CategoryToDo},
		{"spam uppercase", "SPAM", CategorySpam},
		{"garbage", "I cannot determine the category", CategoryUncategorized},
		{"empty", "", CategoryUncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCategory(tt.response); got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.response, got, tt.want)
			}
		})
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !IsValidCategory(c) {
			t.Errorf("IsValidCategory(%q) = false, want true", c)
		}
	}
	if IsValidCategory("Urgent") {
		t.Error("IsValidCategory(\"Urgent\") = true, want false")
	}
}

func TestSampleInbox(t *testing.T) {
	emails, err := SampleInbox()
	if err != nil {
		t.Fatalf("SampleInbox() error = %v", err)
	}
	if len(emails) == 0 {
		t.Fatal("SampleInbox() returned no emails")
	}
	seen := make(map[string]bool)
	for _, e := range emails {
		if e.ID == "" || e.Sender == "" || e.Subject == "" || e.Body == "" {
			t.Errorf("sample email %q has empty required fields", e.ID)
		}
		if seen[e.ID] {
			t.Errorf("duplicate sample email id %q", e.ID)
		}
		seen[e.ID] = true
		if e.ParsedTimestamp().IsZero() {
			t.Errorf("sample email %q has unparseable timestamp %q", e.ID, e.Timestamp)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate() = %q, want %q", got, "hello")
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate() = %q, want %q", got, "hello...")
	}
}

func TestFormatTimestamp(t *testing.T) {
	got := FormatTimestamp("2025-06-02T09:14:00Z")
	if got != "Jun 02, 2025 09:14 AM" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
	// Unparseable input passes through untouched.
	if got := FormatTimestamp("not-a-date"); got != "not-a-date" {
		t.Errorf("FormatTimestamp() = %q, want passthrough", got)
	}
}
