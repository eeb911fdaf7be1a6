// Package cli provides the interactive authdesk command-line client.
//
// It wires configuration, the local credential store, the API client and the
// session and admin services, then serves a REPL. Typical flow: restore the
// previous session (the prompt shows "loading" until that finishes), start a
// background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout, with the session persisted across restarts
//   - Profile display and editing, password change
//   - Admin user list, edit and delete for admin accounts
//   - Client-side form validation before any request is made
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
