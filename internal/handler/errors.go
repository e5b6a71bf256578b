package handler

import "fmt"

// UnauthenticatedError is returned when a signed flow receives a missing or invalid signature.
type UnauthenticatedError struct{}

func (m *UnauthenticatedError) Error() string {
	return "missing or invalid signature"
}

// NotFoundError is returned when the upstream holds no entity for the requested code.
type NotFoundError struct {
	// Kind is the capitalised entity name, e.g. "Country".
	Kind string
	Code string
}

func (m *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", m.Kind, m.Code)
}
