package domain

import "errors"

// Sentinel errors shared across services and adapters.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")

	// Identity subsystem rejections. These indicate a correct refusal,
	// not an unavailability, and must never trigger the fallback path.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAlreadyRegistered  = errors.New("user already registered")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrPasswordTooShort   = errors.New("password should be at least 8 characters")
	ErrInvalidEmail       = errors.New("unable to validate email address")
	ErrSignupDisabled     = errors.New("signup is disabled")

	// Upload validation failures. Synchronous; they never reach the network.
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// IsAuthRejection reports whether err is one of the identity subsystem's
// domain rejections that must propagate to the caller unchanged.
func IsAuthRejection(err error) bool {
	for _, rejection := range []error{
		ErrInvalidCredentials,
		ErrAlreadyRegistered,
		ErrEmailNotConfirmed,
		ErrPasswordTooShort,
		ErrInvalidEmail,
		ErrSignupDisabled,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}
	return false
}
