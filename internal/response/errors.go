package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Flow prerequisites ────────────────────────────────────────────
	ErrMissingIdentity ErrCode = "MISSING_IDENTITY"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"

	// ─── Test-window outcomes ──────────────────────────────────────────
	ErrTestNotStarted   ErrCode = "TEST_NOT_STARTED"
	ErrTestExpired      ErrCode = "TEST_EXPIRED"
	ErrTestEndedByAdmin ErrCode = "TEST_ENDED_BY_ADMIN"
	ErrAccessDenied     ErrCode = "ACCESS_DENIED"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrInvalidServerResponse ErrCode = "INVALID_SERVER_RESPONSE"
	ErrTransportUnavailable  ErrCode = "TRANSPORT_UNAVAILABLE"
	ErrSubmissionFailed      ErrCode = "SUBMISSION_FAILED"

	// ─── Submission lifecycle ──────────────────────────────────────────
	ErrSubmissionInFlight ErrCode = "SUBMISSION_IN_FLIGHT"
	ErrAlreadySubmitted   ErrCode = "ALREADY_SUBMITTED"
	ErrNoBackup           ErrCode = "NO_BACKUP"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidIndex   ErrCode = "INVALID_INDEX"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrMissingIdentity:
		return "No requester identifier was supplied. Open the test link you were given."
	case ErrSessionNotFound:
		return "No active test session was found. Enter your test code first."
	case ErrTestNotStarted:
		return "This test has not opened yet."
	case ErrTestExpired:
		return "The test window has already closed."
	case ErrTestEndedByAdmin:
		return "The administrator has ended this test."
	case ErrAccessDenied:
		return "Access to this test was denied."
	case ErrInvalidServerResponse:
		return "The test service returned an unusable response. Try the code again."
	case ErrTransportUnavailable:
		return "Could not reach the test service. Check your connection and retry."
	case ErrSubmissionFailed:
		return "Submission failed. Your answers are preserved locally, try again."
	case ErrSubmissionInFlight:
		return "A submission is already in progress."
	case ErrAlreadySubmitted:
		return "This test has already been submitted."
	case ErrNoBackup:
		return "There is no locally backed up submission to resend."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrInvalidIndex:
		return "The question index is out of range."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
