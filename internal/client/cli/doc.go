// Package cli provides the interactive Videoflix command-line client.
//
// It wires configuration, local storage, the REST client, the session
// manager and the router, then runs a REPL whose commands play the role of
// the web front-end's forms and views. On start the stored token is
// revalidated; a valid one lands on the home view, otherwise the login view
// is shown.
//
// Key features:
//   - Login (with remember-me), guest login, logout
//   - Registration, email activation, password reset
//   - Profile display and update, account deletion
//   - Video lists by visibility
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
