// Package runtime binds a lookup flow to the HTTP server and AWS Lambda entrypoints.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/isometry/country-gateway/internal/handler"
	"github.com/isometry/country-gateway/internal/helpers"
	"github.com/isometry/country-gateway/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Supported Lambda payload types.
const (
	PayloadAPIGatewayV1 = "api-gateway-v1"
	PayloadAPIGatewayV2 = "api-gateway-v2"
	PayloadLambdaURL    = "lambda-url"
)

// RequestIDHeader carries a caller-supplied correlation ID. Lookups are keyed in lower case.
const RequestIDHeader = "X-Request-ID"

// PayloadTypes lists every supported Lambda payload type.
var PayloadTypes = []string{PayloadAPIGatewayV1, PayloadAPIGatewayV2, PayloadLambdaURL}

// Option is a functional option for the Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithFlow sets the flow served by the runtime.
func WithFlow(flow handler.Flow) Option {
	return func(r *Runtime) {
		r.flow = flow
	}
}

// WithLambdaPayloadType sets the payload type expected by Lambda.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// Runtime serves a single flow of a Handler.
type Runtime struct {
	handler     *handler.Handler
	flow        handler.Flow
	payloadType string
	logger      *slog.Logger
	unsigned    *rate.Sometimes
}

// NewRuntime creates a new runtime instance serving the continent flow unless told otherwise.
func NewRuntime(hdl *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{
		handler:     hdl,
		flow:        handler.FlowContinent,
		payloadType: PayloadAPIGatewayV2,
		unsigned:    helpers.NewOnceAMinute(),
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With(slog.String("flow", string(_inst.flow)))
	return _inst
}

// Flow returns the flow served by the runtime.
func (r *Runtime) Flow() handler.Flow {
	return r.flow
}

// ServeHTTP is the HTTP handler for the runtime.
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.String("method", req.Method), slog.String("path", req.URL.Path))

	body, err := io.ReadAll(req.Body)
	if err != nil {
		r.logger.Warn("failed to read request body", slog.Any("error", err))
		body = nil
	}

	response := r.handle(req.Context(), models.Request{
		Method:  req.Method,
		Query:   r.parseQuery(req.URL.RawQuery),
		Body:    body,
		Headers: helpers.LowercaseHeaders(map[string][]string(req.Header)),
	})
	helpers.RespondHTTP(response, resp)
}

// Lambda is the AWS Lambda handler for the runtime.
// Handled requests never return an error so that the gateway relays the response as-is.
func (r *Runtime) Lambda(ctx context.Context, raw json.RawMessage) (any, error) {
	r.logger.Debug("received lambda request...", slog.String("payloadType", r.payloadType))

	switch r.payloadType {
	case PayloadAPIGatewayV1:
		var event events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal API Gateway v1 request")
		}
		query := url.Values(event.MultiValueQueryStringParameters)
		if len(query) == 0 {
			query = url.Values{}
			for k, v := range event.QueryStringParameters {
				query.Set(k, v)
			}
		}
		response := r.handle(ctx, models.Request{
			Method:  event.HTTPMethod,
			Query:   query,
			Body:    r.decodeBody(event.Body, event.IsBase64Encoded),
			Headers: helpers.LowercaseHeaders(event.Headers),
		})
		return events.APIGatewayProxyResponse{
			StatusCode: response.StatusCode,
			Headers:    response.Headers,
			Body:       response.Body,
		}, nil
	case PayloadAPIGatewayV2:
		var event events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal API Gateway v2 request")
		}
		response := r.handle(ctx, models.Request{
			Method:  event.RequestContext.HTTP.Method,
			Query:   r.parseQuery(event.RawQueryString),
			Body:    r.decodeBody(event.Body, event.IsBase64Encoded),
			Headers: helpers.LowercaseHeaders(event.Headers),
		})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: response.StatusCode,
			Headers:    response.Headers,
			Body:       response.Body,
		}, nil
	case PayloadLambdaURL:
		var event events.LambdaFunctionURLRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal Lambda function URL request")
		}
		response := r.handle(ctx, models.Request{
			Method:  event.RequestContext.HTTP.Method,
			Query:   r.parseQuery(event.RawQueryString),
			Body:    r.decodeBody(event.Body, event.IsBase64Encoded),
			Headers: helpers.LowercaseHeaders(event.Headers),
		})
		return events.LambdaFunctionURLResponse{
			StatusCode: response.StatusCode,
			Headers:    response.Headers,
			Body:       response.Body,
		}, nil
	default:
		return nil, errors.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

func (r *Runtime) handle(ctx context.Context, req models.Request) models.Response {
	if r.flow == handler.FlowContinent && !r.handler.HasSigningSecret() {
		r.unsigned.Do(func() {
			r.logger.Warn("no signing secret configured: every continent request will be rejected")
		})
	}

	req.RequestID = req.Headers[strings.ToLower(RequestIDHeader)]
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	logger := r.logger.With(slog.String("requestId", req.RequestID))

	response, err := r.handler.Handle(ctx, r.flow, req)
	if err != nil {
		logger.Warn("request rejected", slog.Int("status", response.StatusCode), slog.Any("error", err))
		return response
	}
	logger.Info("request handled", slog.Int("status", response.StatusCode))
	return response
}

// parseQuery decodes a raw query string. Unparsable query strings yield no values,
// which in turn fail signature verification.
func (r *Runtime) parseQuery(raw string) url.Values {
	values, err := url.ParseQuery(raw)
	if err != nil {
		r.logger.Debug("discarding unparsable query string", slog.Any("error", err))
		return url.Values{}
	}
	return values
}

func (r *Runtime) decodeBody(body string, isBase64 bool) []byte {
	if !isBase64 {
		return []byte(body)
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		r.logger.Warn("failed to decode base64 request body", slog.Any("error", err))
		return nil
	}
	return decoded
}
