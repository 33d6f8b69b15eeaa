// Package server hosts the shared runtime for the web and MCP servers.
//
// ServerContext owns the SQLite store, the prompt service, and the
// processing engine, and hands them to whichever frontend is running.
// The engine is only built when an LLM provider is configured; without
// one the stored data stays browsable and assistant operations report
// a configuration error.
//
// WebServer serves the embedded browser UI and the JSON API. The MCP
// tools in internal/tools register against the same ServerContext, so
// both frontends see the same inbox.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, and
// HealthChecker provides the liveness and readiness endpoints.
package server
