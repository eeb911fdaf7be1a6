// Package client contains the client-side building blocks for authdesk.
//
// # Overview
//
// The package provides:
//  1. The Authentication API contract (see the Client interface): login,
//     registration, profile self-service, the admin user endpoints and Ping.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) whose transport is
//     a bearer interceptor. The session activates and deactivates the
//     credential on it; WithCredential overrides it for a single call.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Every non-2xx response is an
// *APIError carrying the server's detail; 401/403 and 404 additionally match
// ErrUnauthorized and ErrNotFound with errors.Is.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; the per-request timeout comes from
// WithTimeout.
package client
