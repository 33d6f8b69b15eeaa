// Package engine implements the email processing pipeline. It wires the
// store, the prompt service, and an LLM client together to categorize
// emails, extract action items, generate reply drafts, and answer chat
// questions about the inbox.
package engine
