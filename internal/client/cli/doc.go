// Package cli provides the interactive userdesk terminal client.
//
// It wires configuration, the local SQLite store, the API client, the
// session manager and the view controllers behind a small REPL. Typical
// flow: restore the saved session, show the profile (or prompt for
// credentials), then execute user commands.
//
// Key features:
//   - Login / Logout, with the session and cookies kept across restarts
//   - Users and Items: paginated list, add, edit, delete
//   - Profile: view, upload or delete the profile image
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
