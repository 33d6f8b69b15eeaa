// Package resources provides MCP resources exposing inbox state.
// Resources are read-only data sources MCP clients can fetch, such as
// inbox statistics, pending action items, and the prompt templates.
package resources
