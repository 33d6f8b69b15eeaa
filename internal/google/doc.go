// Package google provides OAuth2 authentication and token management
// for the optional Gmail import.
//
// Tokens are cached on disk per account. The TokenProvider interface
// allows alternative token sources to be plugged in; the file-based
// provider is the default for CLI usage.
package google
