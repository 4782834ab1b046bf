// ABOUTME: Error types surfaced by session operations
// ABOUTME: Separates local validation failures from remote authentication failures

package session

// ValidationError reports a local precondition failure. No network call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError reports that the service rejected a login or signup, or could not be reached
type AuthError struct {
	Op          string
	Message     string
	Unreachable bool
	Err         error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
