// Package handler orchestrates the lookup flows: method check, signature check,
// body validation, upstream call and response mapping.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/isometry/country-gateway/internal/controllers/countries"
	"github.com/isometry/country-gateway/internal/helpers"
	"github.com/isometry/country-gateway/internal/models"
	"github.com/isometry/country-gateway/internal/validation"
	"github.com/pkg/errors"
)

// Flow identifies one of the lookup endpoints.
type Flow string

const (
	// FlowCountry looks up the sibling countries of a country code.
	FlowCountry Flow = "country"
	// FlowContinent looks up the countries of a continent code, for signed requests only.
	FlowContinent Flow = "continent"
)

// Flows lists every supported flow.
var Flows = []Flow{FlowCountry, FlowContinent}

// ParseFlow converts s into a Flow.
func ParseFlow(s string) (Flow, error) {
	for _, f := range Flows {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Errorf("unsupported flow: %q", s)
}

// Upstream is the source of country data.
type Upstream interface {
	ContinentOfCountry(ctx context.Context, code string) ([]countries.Country, error)
	CountriesOfContinent(ctx context.Context, code string) ([]countries.Country, error)
}

// Archiver stores accepted request bodies.
type Archiver interface {
	PutS3Object(ctx context.Context, id string, bucket string, body []byte) error
}

// Option is a functional option for the Handler.
type Option func(*Handler)

// Handler serves the lookup flows. It holds no per-request state and is safe for concurrent use.
type Handler struct {
	logger        *slog.Logger
	upstream      Upstream
	signingSecret *validation.Secret
	archiver      Archiver
	archiveBucket string
}

// NewLookupHandler creates a Handler. Without an upstream, the default countries controller is used.
func NewLookupHandler(options ...Option) *Handler {
	_inst := &Handler{
		logger: helpers.NewNoopLogger(),
	}
	for _, opt := range options {
		opt(_inst)
	}
	if _inst.upstream == nil {
		_inst.upstream = countries.NewController(
			countries.WithLogger(_inst.logger.With("component", "countries-controller")))
	}
	return _inst
}

// HasSigningSecret reports whether the continent flow can ever accept a request.
func (h *Handler) HasSigningSecret() bool {
	return h.signingSecret != nil && *h.signingSecret != ""
}

// Handle dispatches req to the given flow.
func (h *Handler) Handle(ctx context.Context, flow Flow, req models.Request) (models.Response, error) {
	switch flow {
	case FlowCountry:
		return h.Country(ctx, req)
	case FlowContinent:
		return h.Continent(ctx, req)
	default:
		err := errors.Errorf("unsupported flow: %q", flow)
		return models.Response{StatusCode: http.StatusNotFound}, err
	}
}

// Country returns the countries sharing a continent with the requested country, the country itself excluded.
func (h *Handler) Country(ctx context.Context, req models.Request) (models.Response, error) {
	logger := h.requestLogger(FlowCountry, req)

	code, err := validation.ValidateRequest(req.Method, req.Body, string(FlowCountry))
	if err != nil {
		logger.Debug("rejecting request", slog.Any("error", err))
		return responseFor(err), err
	}
	logger = logger.With(slog.String("code", code))

	members, err := h.upstream.ContinentOfCountry(ctx, code)
	if err != nil {
		if errors.Is(err, countries.ErrNotFound) {
			err = &NotFoundError{Kind: "Country", Code: code}
		}
		logger.Warn("lookup failed", slog.Any("error", err))
		return responseFor(err), err
	}

	siblings := make([]countries.Country, 0, len(members))
	for _, c := range members {
		if c.Code == code {
			continue
		}
		siblings = append(siblings, countries.Country{Code: c.Code, Name: c.Name})
	}

	logger.Info("lookup complete", slog.Int("count", len(siblings)))
	return successResponse(siblings), nil
}

// Continent returns the countries of the requested continent.
// The query string must carry a valid partner signature; unsigned requests are rejected
// before the body is looked at.
func (h *Handler) Continent(ctx context.Context, req models.Request) (models.Response, error) {
	logger := h.requestLogger(FlowContinent, req)

	if req.Method != http.MethodPost {
		logger.Debug("rejecting request", slog.String("method", req.Method))
		return responseFor(validation.ErrMethodNotAllowed), validation.ErrMethodNotAllowed
	}

	if !h.signingSecret.VerifyQuery(req.Query) {
		err := &UnauthenticatedError{}
		logger.Warn("validating signature", slog.Any("error", err))
		return responseFor(err), err
	}
	logger.Debug("signature is valid")

	code, err := validation.ValidateRequest(req.Method, req.Body, string(FlowContinent))
	if err != nil {
		logger.Debug("rejecting request", slog.Any("error", err))
		return responseFor(err), err
	}
	logger = logger.With(slog.String("code", code))

	h.archive(ctx, logger, archiveID(FlowContinent, code, req.RequestID), req.Body)

	members, err := h.upstream.CountriesOfContinent(ctx, code)
	if err != nil {
		if errors.Is(err, countries.ErrNotFound) {
			err = &NotFoundError{Kind: "Continent", Code: code}
		}
		logger.Warn("lookup failed", slog.Any("error", err))
		return responseFor(err), err
	}

	logger.Info("lookup complete", slog.Int("count", len(members)))
	return successResponse(members), nil
}

func (h *Handler) requestLogger(flow Flow, req models.Request) *slog.Logger {
	logger := h.logger.With(slog.String("flow", string(flow)))
	if req.RequestID != "" {
		logger = logger.With(slog.String("requestId", req.RequestID))
	}
	return logger
}

func archiveID(flow Flow, code, requestID string) string {
	if requestID == "" {
		return fmt.Sprintf("%s.%s", flow, code)
	}
	return fmt.Sprintf("%s.%s.%s", flow, code, requestID)
}

// archive stores the accepted body when archiving is configured. Failures are logged only.
func (h *Handler) archive(ctx context.Context, logger *slog.Logger, id string, body []byte) {
	if h.archiver == nil || h.archiveBucket == "" {
		return
	}
	if err := h.archiver.PutS3Object(ctx, id, h.archiveBucket, body); err != nil {
		logger.Warn("failed to archive request", slog.Any("error", err))
	}
}
