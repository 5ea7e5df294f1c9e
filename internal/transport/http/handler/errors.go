package handler

const (
	errInternalServer     = "Internal server error"
	errUserNotFound       = "User not found"
	errDuplicateEmail     = "An account with this email already exists"
	errTokenInvalid       = "The confirmation link is invalid or has expired. Please request a new one."
	errInvalidCredentials = "Invalid email or password"
	errEmailNotVerified   = "Please confirm your email address before signing in"

	msgConfirmed       = "Your email has been confirmed. You can now sign in."
	msgAlreadyVerified = "Your email was already confirmed. You can sign in."
	msgResendAck       = "If an unverified account exists for that address, a fresh confirmation link is on its way. Please check your inbox and spam folder."
)
