package validation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	// ErrMethodNotAllowed is returned for any request that is not a POST.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrMalformedBody is returned when the request body is not valid JSON.
	ErrMalformedBody = errors.New("malformed JSON body")
)

// codeRules restricts codes to two ASCII letters: the code is forwarded verbatim as a GraphQL variable.
const codeRules = "required,len=2,alpha"

var validate = validator.New(validator.WithRequiredStructEnabled())

// InvalidFieldError reports a missing, mistyped or malformed code field.
type InvalidFieldError struct {
	Field string
	Cause error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %q field: %v", e.Field, e.Cause)
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Cause
}

// ValidateRequest checks the method, parses the JSON body and returns the normalised
// two-letter code found under field.
func ValidateRequest(method string, body []byte, field string) (string, error) {
	if method != http.MethodPost {
		return "", ErrMethodNotAllowed
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.Wrap(ErrMalformedBody, err.Error())
	}

	object, ok := payload.(map[string]any)
	if !ok {
		return "", &InvalidFieldError{Field: field, Cause: errors.Errorf("expected a JSON object, got %T", payload)}
	}

	raw, found := object[field]
	if !found {
		return "", &InvalidFieldError{Field: field, Cause: errors.New("missing")}
	}
	value, ok := raw.(string)
	if !ok {
		return "", &InvalidFieldError{Field: field, Cause: errors.Errorf("expected a string, got %T", raw)}
	}

	code := NormaliseCode(value)
	if err := validate.Var(code, codeRules); err != nil {
		return "", &InvalidFieldError{Field: field, Cause: err}
	}
	return code, nil
}

// NormaliseCode trims surrounding whitespace and upper-cases the code.
func NormaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
