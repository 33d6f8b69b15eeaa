// Package batch lets MCP tools accept a single id or a list of ids for the
// same parameter and report per-id outcomes when some of them fail.
//
// Tools like inbox_process and tasks_complete use it to apply an operation
// to several emails or action items in one call without aborting the whole
// batch on the first error.
package batch
