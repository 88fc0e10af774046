package proxy

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RequestIDHeader carries a caller supplied request id into the api gateway
// request context.
const RequestIDHeader = "X-Request-ID"

// HTTPHandler exposes router over net/http. The request is converted to the
// api gateway v2 event the lambda runtime would deliver and the proxy response
// is written back unchanged.
func HTTPHandler(router *Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := NewAPIGatewayRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		response, err := router.Route(r.Context(), request)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := WriteResponse(w, response); err != nil {
			router.logEntry(r.Context(), request).WithError(err).Error("failed writing response")
		}
	}
}

// NewAPIGatewayRequest converts r into an events.APIGatewayV2HTTPRequest.
// Header names are lower cased the way api gateway delivers them. Bodies that
// are not valid utf-8 are base64 encoded.
func NewAPIGatewayRequest(r *http.Request) (events.APIGatewayV2HTTPRequest, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return events.APIGatewayV2HTTPRequest{}, errors.Wrap(err, "failed reading request body")
		}
		body = b
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ",")
	}

	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		query[k] = strings.Join(v, ",")
	}

	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	now := time.Now()
	request := events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              "$default",
		RawPath:               r.URL.Path,
		RawQueryString:        r.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: query,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RouteKey:  "$default",
			RequestID: requestID,
			Time:      now.Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch: now.UnixMilli(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    r.Method,
				Path:      r.URL.Path,
				Protocol:  r.Proto,
				SourceIP:  r.RemoteAddr,
				UserAgent: r.UserAgent(),
			},
		},
	}

	if utf8.Valid(body) {
		request.Body = string(body)
	} else {
		request.Body = base64.StdEncoding.EncodeToString(body)
		request.IsBase64Encoded = true
	}

	return request, nil
}

// WriteResponse writes an api gateway proxy response to w.
func WriteResponse(w http.ResponseWriter, response events.APIGatewayProxyResponse) error {
	for k, v := range response.Headers {
		w.Header().Set(k, v)
	}

	for k, vs := range response.MultiValueHeaders {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	body := []byte(response.Body)
	if response.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(response.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return errors.Wrap(err, "unable to decode response body")
		}
		body = b
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	_, err := w.Write(body)

	return errors.Wrap(err, "failed writing response body")
}
