package pipeline

// ValidationError means the inbound request is malformed. Terminal, no side
// effects, no notification.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ConfigurationError means the business unit has no usable vendor account.
// Terminal; a failure notification is still sent.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// AuthenticationError means the vendor rejected the login. Terminal, never
// retried; a failure notification is still sent.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return "vendor authentication failed: " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
