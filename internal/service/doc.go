// Package service implements business logic for the HackMaster Pi dashboard.
//
// This package sits between the HTTP handlers and the repository layer.
//
// # Services
//
// WordlistService writes candidate password lists to the wordlist directory,
// records every run, and serves previews, history, downloads and deletes.
// Runs targeting the same file are serialized; runs on different files
// proceed concurrently.
//
// # Event System
//
// Services publish events via EventBus for real-time updates to connected
// clients via Server-Sent Events (SSE).
package service
