// Package validation provides functionality for verifying partner query signatures and validating lookup requests.
package validation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"slices"
	"strings"
)

// SignatureParam is the query parameter carrying the partner signature.
const SignatureParam = "signature"

// Secret represents the pre-shared key used to sign partner query strings.
type Secret string

// NewSecret creates a new Secret instance from the provided secret string and returns its address.
func NewSecret(secret string) *Secret {
	s := Secret(secret)
	return &s
}

// Canonicalize builds the signable message from the query parameters.
// Repeated keys are joined with "," in wire order, keys are sorted ordinally and
// the key=value pairs are concatenated without any separator.
func Canonicalize(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == SignatureParam {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(values[k], ","))
	}
	return sb.String()
}

// Sign returns the lowercase hex HMAC-SHA256 of the canonical form of values.
func (s *Secret) Sign(values url.Values) string {
	mac := hmac.New(sha256.New, []byte(*s))
	mac.Write([]byte(Canonicalize(values)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyQuery reports whether values carry a signature matching the one computed with the secret.
// The supplied signature is compared case-insensitively.
func (s *Secret) VerifyQuery(values url.Values) bool {
	if s == nil || *s == "" {
		return false
	}
	signature := values.Get(SignatureParam)
	if signature == "" {
		return false
	}

	expected := s.Sign(values)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// VerifyRawQuery parses a raw query string and verifies it. Unparsable query strings never verify.
func (s *Secret) VerifyRawQuery(rawQuery string) bool {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return false
	}
	return s.VerifyQuery(values)
}
