package helpers

import (
	"net/http"
	"strings"

	"github.com/isometry/country-gateway/internal/models"
)

// RespondHTTP writes the response headers, status code and body to rw.
// A zero status code is written as 200.
func RespondHTTP(response models.Response, rw http.ResponseWriter) {
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write([]byte(response.Body))
}

// LowercaseHeaders flattens h into a map keyed by lower-cased header name.
func LowercaseHeaders[V string | []string](h map[string]V) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		switch vt := any(v).(type) {
		case string:
			headers[strings.ToLower(k)] = vt
		case []string:
			// XXX: duplicated headers are dropped
			if len(vt) > 0 {
				headers[strings.ToLower(k)] = vt[0]
			}
		}
	}
	return headers
}
