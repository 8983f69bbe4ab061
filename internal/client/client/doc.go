// Package client is the dashboard's authenticated transport.
//
// # Overview
//
//  1. Gateway wraps every outgoing API call. It attaches the session's
//     access credential and recovers from a 401 by refreshing once and
//     resending once. UnaryInterceptor does the same for gRPC calls.
//  2. Coordinator makes sure only one refresh is in flight; every request
//     that fails while it runs waits for and shares its result.
//  3. HTTPRefresher performs the refresh round trip against /auth/refresh.
//  4. InitDatabase bootstraps the local SQLite file the session is
//     persisted in.
//
// # Error Handling
//
// Callers match outcomes with errors.Is against ErrUnauthorized,
// ErrUnavailable, ErrRefreshRejected, ErrNoRefreshCredential and
// ErrSessionChanged, and use errors.As to get the *StatusError of a failed
// API call.
//
// # Concurrency
//
// Gateway and Coordinator are safe for concurrent use. A refresh is never
// cancelled by the caller that started it; callers may stop waiting.
package client
