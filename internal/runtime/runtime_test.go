package runtime_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/country-gateway/internal/controllers/countries"
	"github.com/isometry/country-gateway/internal/handler"
	"github.com/isometry/country-gateway/internal/runtime"
	"github.com/isometry/country-gateway/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "partner-secret"

type stubUpstream struct {
	continentCalls int
}

func (s *stubUpstream) ContinentOfCountry(_ context.Context, _ string) ([]countries.Country, error) {
	return []countries.Country{{Code: "FR", Name: "France"}, {Code: "DE", Name: "Germany"}}, nil
}

func (s *stubUpstream) CountriesOfContinent(_ context.Context, code string) ([]countries.Country, error) {
	s.continentCalls++
	if code != "EU" {
		return nil, countries.ErrNotFound
	}
	return []countries.Country{{Code: "FR", Name: "France"}}, nil
}

func newRuntime(upstream *stubUpstream, opts ...runtime.Option) *runtime.Runtime {
	hdl := handler.NewLookupHandler(
		handler.WithUpstream(upstream),
		handler.WithSigningSecret(testSecret))
	return runtime.NewRuntime(hdl, opts...)
}

func signedRawQuery(values url.Values) string {
	signed := url.Values{}
	for k, v := range values {
		signed[k] = v
	}
	signed.Set(validation.SignatureParam, validation.NewSecret(testSecret).Sign(values))
	return signed.Encode()
}

func TestServeHTTP(t *testing.T) {
	upstream := &stubUpstream{}
	country := newRuntime(upstream, runtime.WithFlow(handler.FlowCountry))
	continent := newRuntime(upstream, runtime.WithFlow(handler.FlowContinent))

	testCases := []struct {
		Name           string
		Runtime        *runtime.Runtime
		Method         string
		Query          string
		Body           string
		ExpectedStatus int
		ExpectedBody   string
		ExpectedCORS   string
	}{
		{
			Name:           "country_success",
			Runtime:        country,
			Method:         http.MethodPost,
			Body:           `{"country":"fr"}`,
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   `{"countries":[{"code":"DE","name":"Germany"}]}`,
			ExpectedCORS:   "*",
		},
		{
			Name:           "country_get",
			Runtime:        country,
			Method:         http.MethodGet,
			ExpectedStatus: http.StatusMethodNotAllowed,
			ExpectedBody:   `{"error":"Use POST with JSON body"}`,
			ExpectedCORS:   "*",
		},
		{
			Name:           "continent_signed",
			Runtime:        continent,
			Method:         http.MethodPost,
			Query:          signedRawQuery(url.Values{"partner": {"acme"}, "ts": {"1700000000"}}),
			Body:           `{"continent":"EU"}`,
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   `{"countries":[{"code":"FR","name":"France"}]}`,
			ExpectedCORS:   "*",
		},
		{
			Name:           "continent_unsigned",
			Runtime:        continent,
			Method:         http.MethodPost,
			Query:          "partner=acme",
			Body:           `{"continent":"EU"}`,
			ExpectedStatus: http.StatusForbidden,
			ExpectedBody:   "Forbidden",
		},
		{
			Name:           "continent_unparsable_query",
			Runtime:        continent,
			Method:         http.MethodPost,
			Query:          "partner=%zz&" + signedRawQuery(url.Values{}),
			Body:           `{"continent":"EU"}`,
			ExpectedStatus: http.StatusForbidden,
			ExpectedBody:   "Forbidden",
		},
		{
			Name:           "continent_not_found",
			Runtime:        continent,
			Method:         http.MethodPost,
			Query:          signedRawQuery(url.Values{"partner": {"acme"}}),
			Body:           `{"continent":"XX"}`,
			ExpectedStatus: http.StatusNotFound,
			ExpectedBody:   `{"error":"Continent \"XX\" not found"}`,
			ExpectedCORS:   "*",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			target := "/"
			if tc.Query != "" {
				target += "?" + tc.Query
			}
			req := httptest.NewRequest(tc.Method, target, strings.NewReader(tc.Body))
			rec := httptest.NewRecorder()

			tc.Runtime.ServeHTTP(rec, req)

			assert.Equal(t, tc.ExpectedStatus, rec.Code)
			assert.Equal(t, tc.ExpectedBody, rec.Body.String())
			assert.Equal(t, tc.ExpectedCORS, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestLambda_PayloadTypes(t *testing.T) {
	query := url.Values{"partner": {"acme"}}
	rawQuery := signedRawQuery(query)
	parsed, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	body := `{"continent":"eu"}`

	testCases := []struct {
		Name        string
		PayloadType string
		Event       any
		Status      func(t *testing.T, out any) (int, string)
	}{
		{
			Name:        "api_gateway_v1",
			PayloadType: runtime.PayloadAPIGatewayV1,
			Event: events.APIGatewayProxyRequest{
				HTTPMethod:                      http.MethodPost,
				MultiValueQueryStringParameters: parsed,
				Body:                            body,
			},
			Status: func(t *testing.T, out any) (int, string) {
				resp, ok := out.(events.APIGatewayProxyResponse)
				require.True(t, ok)
				return resp.StatusCode, resp.Body
			},
		},
		{
			Name:        "api_gateway_v2",
			PayloadType: runtime.PayloadAPIGatewayV2,
			Event: events.APIGatewayV2HTTPRequest{
				RawQueryString: rawQuery,
				RequestContext: events.APIGatewayV2HTTPRequestContext{
					HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodPost},
				},
				Body:            base64.StdEncoding.EncodeToString([]byte(body)),
				IsBase64Encoded: true,
			},
			Status: func(t *testing.T, out any) (int, string) {
				resp, ok := out.(events.APIGatewayV2HTTPResponse)
				require.True(t, ok)
				return resp.StatusCode, resp.Body
			},
		},
		{
			Name:        "lambda_url",
			PayloadType: runtime.PayloadLambdaURL,
			Event: events.LambdaFunctionURLRequest{
				RawQueryString: rawQuery,
				RequestContext: events.LambdaFunctionURLRequestContext{
					HTTP: events.LambdaFunctionURLRequestContextHTTPDescription{Method: http.MethodPost},
				},
				Body: body,
			},
			Status: func(t *testing.T, out any) (int, string) {
				resp, ok := out.(events.LambdaFunctionURLResponse)
				require.True(t, ok)
				return resp.StatusCode, resp.Body
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rt := newRuntime(&stubUpstream{},
				runtime.WithFlow(handler.FlowContinent),
				runtime.WithLambdaPayloadType(tc.PayloadType))

			raw, err := json.Marshal(tc.Event)
			require.NoError(t, err)

			out, err := rt.Lambda(context.Background(), raw)
			require.NoError(t, err)

			status, respBody := tc.Status(t, out)
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `{"countries":[{"code":"FR","name":"France"}]}`, respBody)
		})
	}
}

func TestLambda_APIGatewayV1_SingleValueQuery(t *testing.T) {
	rt := newRuntime(&stubUpstream{},
		runtime.WithLambdaPayloadType(runtime.PayloadAPIGatewayV1))
	query := url.Values{"partner": {"acme"}}

	raw, err := json.Marshal(events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		QueryStringParameters: map[string]string{
			"partner":                 "acme",
			validation.SignatureParam: validation.NewSecret(testSecret).Sign(query),
		},
		Body: `{"continent":"EU"}`,
	})
	require.NoError(t, err)

	out, err := rt.Lambda(context.Background(), raw)
	require.NoError(t, err)
	resp, ok := out.(events.APIGatewayProxyResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestLambda_ForbiddenSkipsUpstream(t *testing.T) {
	upstream := &stubUpstream{}
	rt := newRuntime(upstream, runtime.WithLambdaPayloadType(runtime.PayloadLambdaURL))

	raw, err := json.Marshal(events.LambdaFunctionURLRequest{
		RawQueryString: "partner=acme&signature=deadbeef",
		RequestContext: events.LambdaFunctionURLRequestContext{
			HTTP: events.LambdaFunctionURLRequestContextHTTPDescription{Method: http.MethodPost},
		},
		Body: `{"continent":"EU"}`,
	})
	require.NoError(t, err)

	out, err := rt.Lambda(context.Background(), raw)
	require.NoError(t, err)
	resp, ok := out.(events.LambdaFunctionURLResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Headers["Access-Control-Allow-Origin"])
	assert.Zero(t, upstream.continentCalls)
}

func TestLambda_Errors(t *testing.T) {
	testCases := []struct {
		Name        string
		PayloadType string
		Raw         string
	}{
		{Name: "unsupported_payload_type", PayloadType: "sqs", Raw: `{}`},
		{Name: "malformed_v1", PayloadType: runtime.PayloadAPIGatewayV1, Raw: `[]`},
		{Name: "malformed_v2", PayloadType: runtime.PayloadAPIGatewayV2, Raw: `"event"`},
		{Name: "malformed_lambda_url", PayloadType: runtime.PayloadLambdaURL, Raw: `42`},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rt := newRuntime(&stubUpstream{}, runtime.WithLambdaPayloadType(tc.PayloadType))
			out, err := rt.Lambda(context.Background(), json.RawMessage(tc.Raw))
			assert.Error(t, err)
			assert.Nil(t, out)
		})
	}
}

func TestLambda_InvalidBase64Body(t *testing.T) {
	rt := newRuntime(&stubUpstream{},
		runtime.WithFlow(handler.FlowCountry),
		runtime.WithLambdaPayloadType(runtime.PayloadAPIGatewayV2))

	raw, err := json.Marshal(events.APIGatewayV2HTTPRequest{
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodPost},
		},
		Body:            "!!not-base64!!",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	out, err := rt.Lambda(context.Background(), raw)
	require.NoError(t, err)
	resp, ok := out.(events.APIGatewayV2HTTPResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewRuntime_Defaults(t *testing.T) {
	rt := newRuntime(&stubUpstream{})
	assert.Equal(t, handler.FlowContinent, rt.Flow())
}

type recordingArchiver struct {
	ids []string
}

func (a *recordingArchiver) PutS3Object(_ context.Context, id string, _ string, _ []byte) error {
	a.ids = append(a.ids, id)
	return nil
}

func TestServeHTTP_RequestID(t *testing.T) {
	archiver := &recordingArchiver{}
	hdl := handler.NewLookupHandler(
		handler.WithUpstream(&stubUpstream{}),
		handler.WithSigningSecret(testSecret),
		handler.WithArchive(archiver, "audit"))
	rt := runtime.NewRuntime(hdl)
	query := signedRawQuery(url.Values{"partner": {"acme"}})

	req := httptest.NewRequest(http.MethodPost, "/?"+query, strings.NewReader(`{"continent":"EU"}`))
	req.Header.Set(runtime.RequestIDHeader, "caller-supplied")
	rt.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/?"+query, strings.NewReader(`{"continent":"EU"}`))
	rt.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, archiver.ids, 2)
	assert.Equal(t, "continent.EU.caller-supplied", archiver.ids[0])
	assert.Regexp(t, `^continent\.EU\.[0-9a-f-]{36}$`, archiver.ids[1])
}
