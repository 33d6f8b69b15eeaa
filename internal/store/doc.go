// Package store persists emails, action items, prompts, and drafts in a
// local SQLite database.
//
// The driver is modernc.org/sqlite (pure Go, no cgo) accessed through
// database/sql, so the binary stays a single static executable. All data
// lives in one file on disk; tests open ":memory:".
package store
