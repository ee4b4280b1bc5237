// Package common contains constants and small helpers shared by the
// Videoflix client packages.
package common

const (
	// AuthTokenType is the scheme the backend expects in the Authorization
	// header: "Authorization: Token <token>".
	AuthTokenType = "Token"

	// RequestIDHeader carries a per-request id that also appears in client logs.
	RequestIDHeader = "X-Request-ID"
)

// Keys of the durable client storage.
const (
	StorageKeyToken    = "token"
	StorageKeyUsername = "username"
	StorageKeyPassword = "password"
)
