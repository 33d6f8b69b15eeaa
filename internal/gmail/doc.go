// Package gmail implements the optional Gmail inbox import. Messages
// are fetched read-only via the Gmail API and copied into the local
// store; all processing afterwards happens locally.
package gmail
