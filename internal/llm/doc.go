// Package llm provides completion clients for the supported model
// providers: OpenAI, Anthropic, Google Gemini, and xAI Grok.
//
// OpenAI and Grok share one client speaking the chat completions
// protocol (Grok exposes an OpenAI-compatible API). Anthropic uses the
// messages API. Gemini goes through the official google.golang.org/genai
// SDK. All clients retry rate-limited and transient server errors with
// exponential backoff and throttle back-to-back requests.
package llm
