// Package cli provides the interactive dashboard command-line client.
//
// It wires configuration, the local session record, the session store and
// its cookie mirror, the refresh coordinator and request gateway, and an
// interactive REPL over the user-management API.
//
// Every command that maps to a protected page is first checked by the
// perimeter guard against the mirrored access cookie, after the persisted
// session has been hydrated. A redirect to login runs the login flow and
// then resumes the command that was asked for.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
