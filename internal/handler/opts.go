package handler

import (
	"log/slog"

	"github.com/isometry/country-gateway/internal/validation"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithUpstream sets the source of country data.
func WithUpstream(upstream Upstream) Option {
	return func(h *Handler) {
		h.upstream = upstream
	}
}

// WithSigningSecret configures the shared secret used to verify signed query strings.
func WithSigningSecret(secret string) Option {
	return func(h *Handler) {
		h.signingSecret = validation.NewSecret(secret)
	}
}

// WithArchive enables archiving of accepted request bodies to the given bucket.
func WithArchive(archiver Archiver, bucket string) Option {
	return func(h *Handler) {
		h.archiver = archiver
		h.archiveBucket = bucket
	}
}
