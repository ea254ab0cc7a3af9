package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrLoginActive        ErrCode = "LOGIN_ALREADY_ACTIVE"
	ErrLoginInvalidated   ErrCode = "LOGIN_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrStudentOnly     ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminOnly       ErrCode = "ADMIN_ACCESS_ONLY"
	ErrNotSessionOwner ErrCode = "NOT_SESSION_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Test sessions ─────────────────────────────────────────────────
	ErrTestNotAvailable ErrCode = "TEST_NOT_AVAILABLE"
	ErrWrongBatch       ErrCode = "WRONG_BATCH"
	ErrSessionNotFound  ErrCode = "SESSION_NOT_FOUND"
	ErrDeviceDenied     ErrCode = "DEVICE_DENIED"
	ErrDevicePending    ErrCode = "DEVICE_REQUEST_PENDING"
	ErrDeviceNotGranted ErrCode = "DEVICE_NOT_GRANTED"
	ErrSessionNotReady  ErrCode = "SESSION_NOT_READY"
	ErrSessionNotActive ErrCode = "SESSION_NOT_ACTIVE"
	ErrSessionEnded     ErrCode = "SESSION_ENDED"
	ErrNoResult         ErrCode = "NO_RESULT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrLoginActive:
		return "You are already logged in on another device."
	case ErrLoginInvalidated:
		return "Your login has expired. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentOnly:
		return "This resource is restricted to students."
	case ErrAdminOnly:
		return "This resource is restricted to administrators."
	case ErrNotSessionOwner:
		return "This session belongs to another user."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Test sessions ─────────────────────────────────────────────────
	case ErrTestNotAvailable:
		return "This test is not currently available."
	case ErrWrongBatch:
		return "This test is not assigned to your batch."
	case ErrSessionNotFound:
		return "No live session with this ID."
	case ErrDeviceDenied:
		return "Camera and microphone access was denied. Grant access and retry."
	case ErrDevicePending:
		return "A device request is already in progress."
	case ErrDeviceNotGranted:
		return "Camera and microphone access is required before starting."
	case ErrSessionNotReady:
		return "The session is not ready to start."
	case ErrSessionNotActive:
		return "The session is not in its active phase."
	case ErrSessionEnded:
		return "This session has already ended."
	case ErrNoResult:
		return "No result recorded for this test."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
