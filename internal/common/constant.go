// Package common contains shared constants and sentinel errors used across
// authdesk components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer credential.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the credential in AuthorizationHeaderName.
	BearerScheme = "Bearer"

	// RequestIDHeaderName tags every outbound API request.
	RequestIDHeaderName = "X-Request-ID"

	// CredentialKey is the durable storage key of the session credential.
	CredentialKey = "access_token"

	// MinPasswordLength is enforced client-side before register and password change.
	MinPasswordLength = 6
)
