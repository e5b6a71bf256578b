package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/isometry/country-gateway/internal/controllers/countries"
	"github.com/isometry/country-gateway/internal/models"
	"github.com/isometry/country-gateway/internal/validation"
	"github.com/pkg/errors"
)

const (
	headerAllowOrigin = "Access-Control-Allow-Origin"
	headerContentType = "Content-Type"
)

type errorEnvelope struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

type successEnvelope struct {
	Countries []countries.Country `json:"countries"`
}

// responseFor maps a pipeline failure onto its status code and envelope.
func responseFor(err error) models.Response {
	var (
		unauthenticated *UnauthenticatedError
		fieldErr        *validation.InvalidFieldError
		reported        *countries.ReportedError
		notFound        *NotFoundError
	)
	switch {
	case errors.Is(err, validation.ErrMethodNotAllowed):
		return errorResponse(http.StatusMethodNotAllowed, "Use POST with JSON body", nil)
	case errors.As(err, &unauthenticated):
		return forbiddenResponse()
	case errors.Is(err, validation.ErrMalformedBody):
		return errorResponse(http.StatusBadRequest, "Invalid JSON", nil)
	case errors.As(err, &fieldErr):
		return errorResponse(http.StatusUnprocessableEntity, fmt.Sprintf("Body must contain a 2-letter %q code", fieldErr.Field), nil)
	case errors.As(err, &reported):
		return errorResponse(http.StatusBadGateway, "Upstream API error", reported.Details)
	case errors.As(err, &notFound):
		return errorResponse(http.StatusNotFound, notFound.Error(), nil)
	default:
		// transport failures and anything unclassified
		return errorResponse(http.StatusBadGateway, "Upstream API failure", nil)
	}
}

func errorResponse(status int, message string, details json.RawMessage) models.Response {
	body, err := json.Marshal(errorEnvelope{Error: message, Details: details})
	if err != nil {
		// details were not valid JSON; relay the message alone
		body, _ = json.Marshal(errorEnvelope{Error: message})
	}
	return models.Response{
		StatusCode: status,
		Headers:    map[string]string{headerAllowOrigin: "*"},
		Body:       string(body),
	}
}

func successResponse(result []countries.Country) models.Response {
	if result == nil {
		result = []countries.Country{}
	}
	body, _ := json.Marshal(successEnvelope{Countries: result})
	return models.Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			headerAllowOrigin: "*",
			headerContentType: "application/json",
		},
		Body: string(body),
	}
}

// forbiddenResponse carries neither the CORS header nor the JSON envelope.
func forbiddenResponse() models.Response {
	return models.Response{
		StatusCode: http.StatusForbidden,
		Headers:    map[string]string{headerContentType: "text/plain; charset=utf-8"},
		Body:       http.StatusText(http.StatusForbidden),
	}
}
