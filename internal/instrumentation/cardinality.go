package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with free-form values.

// knownCategories is the canonical category set used as metric labels.
var knownCategories = map[string]bool{
	"Important":     true,
	"To-Do":         true,
	"Newsletter":    true,
	"Spam":          true,
	"Uncategorized": true,
}

// SanitizeCategory collapses anything outside the canonical category set
// to "other" so a misbehaving model cannot explode label cardinality.
//
// Example:
//
//	SanitizeCategory("Important")        // "Important"
//	SanitizeCategory("definitely spam")  // "other"
//	SanitizeCategory("")                 // "other"
func SanitizeCategory(category string) string {
	if knownCategories[category] {
		return category
	}
	return "other"
}

// ExtractSenderDomain extracts the domain part from an email address.
// This reduces cardinality by using the domain instead of the full address.
//
// Example:
//
//	ExtractSenderDomain("jane@example.com")  // "example.com"
//	ExtractSenderDomain("invalid")           // "unknown"
//	ExtractSenderDomain("")                  // "unknown"
func ExtractSenderDomain(address string) string {
	if address == "" {
		return "unknown"
	}

	parts := strings.Split(address, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Common pipeline operation names for LLM metrics.
// Status constants are defined in config.go.
const (
	OperationCategorize = "categorize"
	OperationExtract    = "extract"
	OperationDraft      = "draft"
	OperationChat       = "chat"
	OperationTest       = "test"
)
