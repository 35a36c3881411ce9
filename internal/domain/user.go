package domain

// AuthenticatedUser is the result of a successful bearer-token verification.
// It lives for the duration of a single request.
type AuthenticatedUser struct {
	UserID string
	Token  string
}
