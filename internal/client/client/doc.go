// Package client contains the client-side building blocks that talk to the
// Videoflix backend.
//
// # Overview
//
//  1. Client, the REST contract (login, logout, current user, account
//     deletion, registration, activation, password reset, video listing),
//     and HTTPClient, its net/http implementation.
//  2. AuthTransport, an http.RoundTripper that attaches the stored token as
//     "Authorization: Token <t>" and turns a 401 into session invalidation
//     plus a redirect to the login view.
//  3. InitDatabase and RunMigrations, which open the local SQLite store and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns an *Error whose Kind is one of ErrInvalidCredentials,
// ErrUnauthorized, ErrValidation, ErrInvalidOrExpiredToken, ErrNetwork or
// ErrUnexpectedStatus; match them with errors.Is. Server field messages are
// available through FieldsOf.
//
// All operations take a context.Context and honor its cancellation.
package client
