package countries

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when the upstream answered but holds no matching entity.
var ErrNotFound = errors.New("not found")

// TransportError is returned when the upstream could not be reached or answered with a non-2xx status.
type TransportError struct {
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream transport error (status %d): %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("upstream transport error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ReportedError is returned when the upstream GraphQL endpoint reported errors inline.
type ReportedError struct {
	// Details holds the raw errors member, relayed to clients as-is.
	Details json.RawMessage
}

func (e *ReportedError) Error() string {
	return fmt.Sprintf("upstream reported errors: %s", e.Details)
}
