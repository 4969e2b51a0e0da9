package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	ErrTestUnavailable        ErrCode = "TEST_UNAVAILABLE"
	ErrAttemptAlreadyStarted  ErrCode = "ATTEMPT_ALREADY_STARTED"
	ErrAttemptNotActive       ErrCode = "ATTEMPT_NOT_ACTIVE"
	ErrAttemptNotPaused       ErrCode = "ATTEMPT_NOT_PAUSED"
	ErrAttemptNotCompleted    ErrCode = "ATTEMPT_NOT_COMPLETED"
	ErrAttemptNotSubmittable  ErrCode = "ATTEMPT_NOT_SUBMITTABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."

	case ErrTestUnavailable:
		return "Unable to load this test right now."
	case ErrAttemptAlreadyStarted:
		return "This attempt has already been started."
	case ErrAttemptNotActive:
		return "The attempt is not running."
	case ErrAttemptNotPaused:
		return "The attempt is not paused."
	case ErrAttemptNotCompleted:
		return "The attempt has not been completed yet."
	case ErrAttemptNotSubmittable:
		return "The attempt cannot be submitted in its current state."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
