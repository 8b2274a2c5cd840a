package model

// TokenCodec issues and verifies capability tokens binding one resource
// locator to the process-wide secret. Both operations are pure functions:
// Verify never errors, it only reports whether the token matches.
type TokenCodec interface {
	Issue(resource string) string
	Verify(token, resource string) bool
}

// SessionManager generates and validates login session tokens.
type SessionManager interface {
	GenerateAccessToken(userID string) (string, error)
	ParseAccessToken(token string) (string, error)
}
