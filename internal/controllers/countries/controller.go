// Package countries provides a Controller for the public countries GraphQL API.
package countries

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/isometry/country-gateway/internal/helpers"
	"github.com/pkg/errors"
)

// DefaultEndpoint is the upstream GraphQL endpoint.
const DefaultEndpoint = "https://countries.trevorblades.com/graphql/"

// Country is the projection of an upstream country served to clients.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// Controller issues GraphQL queries against the countries API.
type Controller struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewController initializes a Controller with customizable options and default configurations if unspecified.
func NewController(opts ...Option) *Controller {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.endpoint == "" {
		_inst.endpoint = DefaultEndpoint
	}
	if _inst.httpClient == nil {
		_inst.httpClient = cleanhttp.DefaultPooledClient()
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("controller", "countries")
	return _inst
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Query posts a GraphQL document and decodes the data member into out.
// Transport failures, non-2xx statuses and undecodable bodies yield a *TransportError;
// a non-empty inline errors member yields a *ReportedError.
func (c *Controller) Query(ctx context.Context, document string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: document, Variables: variables})
	if err != nil {
		return errors.Wrap(err, "failed to encode GraphQL request")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("content-type", "application/json")

	c.logger.Debug("querying upstream...", slog.String("endpoint", c.endpoint), slog.Any("variables", variables))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{StatusCode: resp.StatusCode, Cause: errors.Errorf("received non-2xx status code: %d", resp.StatusCode)}
	}

	var gqlResp graphQLResponse
	if err = json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Cause: errors.Wrap(err, "failed to decode response")}
	}

	if hasErrors(gqlResp.Errors) {
		return &ReportedError{Details: gqlResp.Errors}
	}

	if len(gqlResp.Data) == 0 || out == nil {
		return nil
	}
	if err = json.Unmarshal(gqlResp.Data, out); err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Cause: errors.Wrap(err, "failed to decode data")}
	}
	return nil
}

// hasErrors reports whether the raw errors member holds anything other than null or an empty list.
func hasErrors(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return len(list) > 0
	}
	return true
}
