// Package models provides the core data structures for handling lookup requests and responses.
package models

import "net/url"

// Request represents an incoming client request, normalised from whichever runtime received it.
type Request struct {
	// RequestID correlates logs and archived bodies; it may be empty.
	RequestID string
	Method    string
	Query     url.Values
	Body      []byte
	Headers   map[string]string // lowercase keys
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
}
