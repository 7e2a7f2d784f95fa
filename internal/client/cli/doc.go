// Package cli provides the interactive admin-console command-line client.
//
// It wires configuration, the local state database, the authenticated API
// client, the session manager, and the lockout timer into an interactive REPL.
// Typical flow: silent session bootstrap, a background heartbeat, then user
// commands gated by the current session's role.
//
// Key features:
//   - Login / Logout with client-side lockout countdown
//   - Dashboard, airlock, triage, registry, exam and seat-policy operations
//   - Administrator account management (superadmin only)
//   - Audit trail listing
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL, and the per-command files for details.
package cli
