package iban

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prognoshealth/paymentproxy/config"
	"github.com/prognoshealth/paymentproxy/proxy"
)

type fakeUpstream struct {
	*httptest.Server

	calls  int32
	query  url.Values
	header http.Header
}

func newFakeUpstream(t *testing.T, status int, body string) *fakeUpstream {
	u := &fakeUpstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.calls, 1)
		u.query = r.URL.Query()
		u.header = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(u.Close)

	return u
}

func (u *fakeUpstream) Calls() int {
	return int(atomic.LoadInt32(&u.calls))
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRouter(t *testing.T, endpoint, apiKey string) *proxy.Router {
	cfg := config.Default()
	cfg.IBAN.Endpoint = endpoint
	cfg.IBAN.APIKey = apiKey

	router, err := NewRouter(cfg, quietLogger())
	require.NoError(t, err)

	return router
}

func testRequest(method, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: "/api/iban",
		Headers: map[string]string{"content-type": "application/json"},
		Body:    body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: "req-1",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
			},
		},
	}
}

func decodeBody(t *testing.T, response events.APIGatewayProxyResponse) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	return body
}

func assertCORS(t *testing.T, response events.APIGatewayProxyResponse) {
	assert.Equal(t, "*", response.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "POST, OPTIONS", response.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "Content-Type", response.Headers["Access-Control-Allow-Headers"])
}

const validBody = `{"sortCode": "12-34-56", "accountNumber": "12345678"}`

func TestHandler_preflight(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{}`)
	router := testRouter(t, upstream.URL, "key")

	response, err := router.Route(context.Background(), testRequest("OPTIONS", "not even json"))

	assert.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.Empty(t, response.Body)
	assertCORS(t, response)
	assert.Equal(t, 0, upstream.Calls())
}

func TestHandler_methodNotAllowed(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{}`)
	router := testRouter(t, upstream.URL, "key")

	for _, method := range []string{"GET", "PUT", "DELETE", "PATCH", "HEAD"} {
		response, err := router.Route(context.Background(), testRequest(method, validBody))

		assert.NoError(t, err)
		assert.Equal(t, 405, response.StatusCode, method)
		assert.Equal(t, "Method not allowed. Use POST.", decodeBody(t, response)["error"])
		assertCORS(t, response)
	}

	assert.Equal(t, 0, upstream.Calls())
}

func TestHandler_validation(t *testing.T) {
	cases := []struct {
		body             string
		expectedCategory string
	}{
		{`{}`, "Missing required parameters"},
		{``, "Missing required parameters"},
		{`{"sortCode": "12-34-56"}`, "Missing required parameters"},
		{`{"accountNumber": "12345678"}`, "Missing required parameters"},
		{`{"sortCode": "", "accountNumber": "12345678"}`, "Missing required parameters"},
		{`{"sortCode": 123456, "accountNumber": "12345678"}`, "Missing required parameters"},
		{`not json`, "Missing required parameters"},
		{`{"sortCode": "12-34-5", "accountNumber": "12345678"}`, "Invalid sort code format"},
		{`{"sortCode": "12-34-567", "accountNumber": "12345678"}`, "Invalid sort code format"},
		{`{"sortCode": "12-34-56", "accountNumber": "12345"}`, "Invalid account number format"},
		{`{"sortCode": "12-34-56", "accountNumber": "1234567890"}`, "Invalid account number format"},
	}

	upstream := newFakeUpstream(t, 200, `{"iban": "GB00TEST00000000"}`)
	router := testRouter(t, upstream.URL, "key")

	for _, c := range cases {
		response, err := router.Route(context.Background(), testRequest("POST", c.body))

		assert.NoError(t, err)
		assert.Equal(t, 400, response.StatusCode, c.body)

		body := decodeBody(t, response)
		assert.Equal(t, c.expectedCategory, body["error"], c.body)
		assert.NotEmpty(t, body["message"])
		assertCORS(t, response)
	}

	assert.Equal(t, 0, upstream.Calls())
}

func TestHandler_success(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{"iban": "GB00TEST00000000", "bank": "Test Bank"}`)
	router := testRouter(t, upstream.URL, "the-key")

	response, err := router.Route(context.Background(), testRequest("POST", validBody))

	require.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.Equal(t, "application/json", response.Headers["Content-Type"])
	assertCORS(t, response)

	assert.Equal(t, 1, upstream.Calls())
	assert.Equal(t, "the-key", upstream.query.Get("api_key"))
	assert.Equal(t, "json", upstream.query.Get("format"))
	assert.Equal(t, "GB", upstream.query.Get("country"))
	assert.Equal(t, "123456", upstream.query.Get("bankcode"))
	assert.Equal(t, "12345678", upstream.query.Get("account"))
	assert.Equal(t, "application/json", upstream.header.Get("Accept"))
	assert.Equal(t, "Vercel-Function/1.0", upstream.header.Get("User-Agent"))

	assert.Equal(t, map[string]interface{}{
		"success":       true,
		"iban":          "GB00TEST00000000",
		"bank":          "Test Bank",
		"bic":           "N/A",
		"branch":        "N/A",
		"sortCode":      "123456",
		"accountNumber": "12345678",
		"address":       "N/A",
		"city":          "N/A",
		"zip":           "N/A",
		"phone":         "N/A",
		"country":       "GB",
	}, decodeBody(t, response))
}

func TestHandler_success_base64Body(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{"iban": "GB00TEST00000000"}`)
	router := testRouter(t, upstream.URL, "key")

	request := testRequest("POST", base64.StdEncoding.EncodeToString([]byte(validBody)))
	request.IsBase64Encoded = true

	response, err := router.Route(context.Background(), request)

	assert.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.Equal(t, 1, upstream.Calls())
}

func TestHandler_idempotent(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{"iban": "GB00TEST00000000", "bic": "TESTGB2L"}`)
	router := testRouter(t, upstream.URL, "key")

	first, err := router.Route(context.Background(), testRequest("POST", validBody))
	require.NoError(t, err)

	second, err := router.Route(context.Background(), testRequest("POST", validBody))
	require.NoError(t, err)

	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.JSONEq(t, first.Body, second.Body)
	assert.Equal(t, 2, upstream.Calls())
}

func TestHandler_noIBAN(t *testing.T) {
	raw := `{"error": "invalid account", "bank": "Test Bank"}`
	upstream := newFakeUpstream(t, 200, raw)
	router := testRouter(t, upstream.URL, "key")

	response, err := router.Route(context.Background(), testRequest("POST", validBody))

	require.NoError(t, err)
	assert.Equal(t, 422, response.StatusCode)
	assertCORS(t, response)

	body := decodeBody(t, response)
	assert.Equal(t, "IBAN generation failed", body["error"])
	assert.Equal(t, "Invalid sort code or account number", body["message"])

	var expected interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &expected))
	assert.Equal(t, expected, body["details"])
}

func TestHandler_upstreamFailures(t *testing.T) {
	cases := []struct {
		status          int
		body            string
		expectedDetails string
	}{
		{500, `{"iban": "GB00"}`, "IBAN API returned status: 500"},
		{404, `not found`, "IBAN API returned status: 404"},
		{200, `not json`, "failed decoding IBAN API response"},
		{200, `null`, "IBAN API returned an empty response"},
		{200, `["GB00"]`, "failed decoding IBAN API response"},
		{200, `{"error":"x"} trailing`, "failed decoding IBAN API response"},
		{200, `{"iban":"GB00"} junk`, "failed decoding IBAN API response"},
		{200, `{"iban":"GB00"} {}`, "failed decoding IBAN API response"},
	}

	for _, c := range cases {
		upstream := newFakeUpstream(t, c.status, c.body)
		router := testRouter(t, upstream.URL, "key")

		response, err := router.Route(context.Background(), testRequest("POST", validBody))

		require.NoError(t, err)
		assert.Equal(t, 500, response.StatusCode, c.body)
		assertCORS(t, response)

		body := decodeBody(t, response)
		assert.Equal(t, "Internal server error", body["error"])
		assert.Equal(t, "Failed to process IBAN request", body["message"])
		assert.Contains(t, body["details"], c.expectedDetails)
		assert.Equal(t, 1, upstream.Calls())
	}
}

func TestHandler_networkError(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{}`)
	router := testRouter(t, upstream.URL, "secret-key")
	upstream.Close()

	response, err := router.Route(context.Background(), testRequest("POST", validBody))

	require.NoError(t, err)
	assert.Equal(t, 500, response.StatusCode)

	body := decodeBody(t, response)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Contains(t, body["details"], "failed calling IBAN API")
	assert.NotContains(t, body["details"], "secret-key")
}

func TestHandler_missingAPIKey(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{"iban": "GB00"}`)
	router := testRouter(t, upstream.URL, "")

	response, err := router.Route(context.Background(), testRequest("POST", validBody))

	require.NoError(t, err)
	assert.Equal(t, 500, response.StatusCode)
	assert.Equal(t, "Configuration error", decodeBody(t, response)["error"])
	assert.Equal(t, 0, upstream.Calls())
}

func TestClient_URL(t *testing.T) {
	c := &Client{Endpoint: "https://api.example.com/calc?x=1", APIKey: "k", Country: "GB", Format: "json"}

	u, err := c.URL("123456", "12345678")

	assert.NoError(t, err)
	assert.Equal(t, "https://api.example.com/calc?account=12345678&api_key=k&bankcode=123456&country=GB&format=json&x=1", u)
}

func TestClient_URL_error(t *testing.T) {
	c := &Client{Endpoint: "://nope"}

	_, err := c.URL("123456", "12345678")

	assert.Error(t, err)
}

func TestHandler_structuredIBAN(t *testing.T) {
	upstream := newFakeUpstream(t, 200, `{"iban": {"value": "GB00"}}`)
	router := testRouter(t, upstream.URL, "key")

	response, err := router.Route(context.Background(), testRequest("POST", validBody))

	require.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.Equal(t, `{"value":"GB00"}`, decodeBody(t, response)["iban"])
}
