package response

// NoticeKind mirrors the severity levels the presentation layer renders.
type NoticeKind string

const (
	KindError   NoticeKind = "error"
	KindWarning NoticeKind = "warning"
	KindInfo    NoticeKind = "info"
	KindSuccess NoticeKind = "success"
)

// Notice is a structured, dismissible user-facing message. Every failure a
// stage operation can produce resolves to one of these; raw errors never
// reach the client.
type Notice struct {
	Kind    NoticeKind        `json:"kind"`
	Code    ErrCode           `json:"code"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewNotice builds a notice for a code with an optional dynamic detail and
// optional field-level validation messages.
func NewNotice(code ErrCode, detail string, fields map[string]string) *Notice {
	kind, title := noticeMeta(code)
	return &Notice{
		Kind:    kind,
		Code:    code,
		Title:   title,
		Message: GetMessage(code),
		Detail:  detail,
		Fields:  fields,
	}
}

// noticeMeta maps an error code to its severity and short title.
// TEST_NOT_STARTED is a warning: the taker can simply come back later or
// enter a different code. Everything else that blocks progress is an error.
func noticeMeta(code ErrCode) (NoticeKind, string) {
	switch code {
	case ErrTestNotStarted:
		return KindWarning, "Test not open yet"
	case ErrTestExpired:
		return KindError, "Test window closed"
	case ErrTestEndedByAdmin:
		return KindError, "Test ended"
	case ErrAccessDenied:
		return KindError, "Access denied"
	case ErrMissingIdentity:
		return KindError, "Missing identifier"
	case ErrSessionNotFound:
		return KindError, "No session"
	case ErrInvalidServerResponse:
		return KindError, "Service error"
	case ErrTransportUnavailable:
		return KindError, "Connection problem"
	case ErrSubmissionFailed:
		return KindError, "Submission failed"
	case ErrSubmissionInFlight:
		return KindInfo, "Please wait"
	case ErrAlreadySubmitted:
		return KindInfo, "Already submitted"
	case ErrNoBackup:
		return KindInfo, "Nothing to resend"
	case ErrValidation, ErrInvalidPayload, ErrInvalidIndex:
		return KindError, "Check your input"
	default:
		return KindError, "Something went wrong"
	}
}
