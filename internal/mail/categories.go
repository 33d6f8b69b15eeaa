package mail

import "strings"

// Canonical email categories.
const (
	CategoryImportant     = "Important"
	CategoryToDo          = "To-Do"
	CategoryNewsletter    = "Newsletter"
	CategorySpam          = "Spam"
	CategoryUncategorized = "Uncategorized"
)

// Categories lists all canonical categories, in display order.
var Categories = []string{
	CategoryImportant,
	CategoryToDo,
	CategoryNewsletter,
	CategorySpam,
	CategoryUncategorized,
}

// assignableCategories are the categories the model may assign.
// Uncategorized is the fallback, never a model answer.
var assignableCategories = []string{
	CategoryImportant,
	CategoryNewsletter,
	CategorySpam,
	CategoryToDo,
}

// IsValidCategory reports whether name is one of the canonical categories.
func IsValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizeCategory maps a free-text model response to a canonical category.
// The model is asked to answer with a single category name, but responses
// sometimes carry extra prose, so a case-insensitive substring match is used.
// Anything that doesn't match falls back to Uncategorized.
func NormalizeCategory(response string) string {
	lower := strings.ToLower(response)
	for _, c := range assignableCategories {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return CategoryUncategorized
}
