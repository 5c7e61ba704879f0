// Package cli provides the interactive address book command-line client.
//
// It wires configuration, the local session store, the REST API client and
// an interactive REPL. On start the saved session (if any) is resumed and a
// background watcher tracks whether the server is reachable.
//
// Key features:
//   - Register / verify / login / logout / password reset
//   - Current account and avatar upload
//   - Contact list, search, add, show, edit, delete
//   - Upcoming birthdays
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
