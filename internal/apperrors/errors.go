// Package apperrors defines the error taxonomy shared by services and
// handlers. Handlers map these onto HTTP status codes; nothing in the
// service layer retries automatically.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel kinds, matched with errors.Is.
var (
	// ErrValidation marks bad user input or a malformed import file.
	// Non-fatal, surfaced inline.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a lookup miss (event id, user, stored document).
	ErrNotFound = errors.New("not found")

	// ErrGateway marks an AI gateway call that failed or timed out. The
	// triggering operation is abandoned; prior state stays intact.
	ErrGateway = errors.New("gateway error")

	// ErrStorage marks an inaccessible persistent store. Fatal to the
	// operation only, never to the session.
	ErrStorage = errors.New("storage unavailable")
)

// Validationf wraps a formatted message as a validation error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps a formatted message as a not-found error.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Gatewayf wraps a formatted message as a gateway error.
func Gatewayf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrGateway}, args...)...)
}

// Storagef wraps a formatted message as a storage error.
func Storagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrStorage}, args...)...)
}

// PartialGatewayFailure reports a batch where some gateway calls failed.
// The batch itself succeeds; failed items keep their prior state. It is
// only surfaced to the user when every item failed.
type PartialGatewayFailure struct {
	Total  int
	Failed int
}

func (e *PartialGatewayFailure) Error() string {
	return fmt.Sprintf("%d of %d gateway calls failed", e.Failed, e.Total)
}

// AllFailed reports whether nothing in the batch succeeded.
func (e *PartialGatewayFailure) AllFailed() bool {
	return e.Total > 0 && e.Failed == e.Total
}
