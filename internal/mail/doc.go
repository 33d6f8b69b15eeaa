// Package mail defines the domain types for the local inbox: emails,
// action items, drafts, and the canonical category set.
//
// It also carries the embedded sample inbox used to seed a fresh store,
// mirroring the mock data the assistant is demonstrated with.
package mail
