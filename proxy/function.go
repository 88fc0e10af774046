package proxy

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/paymentproxy/lambdautils"
)

// CORSHeaders are sent on every response of a function router.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

// NewFunctionRouter returns the router shared by every proxy function:
//
//   - OPTIONS on any path answers the CORS preflight with an empty 200.
//   - POST on any path runs handler.
//   - any other method gets a 405 envelope.
//   - an *HTTPError returned by handler is rendered as its envelope.
//   - any other error becomes a 500 envelope carrying failureMessage.
func NewFunctionRouter(handler RouteHandler, failureMessage string, logger *logrus.Logger) (*Router, error) {
	router := &Router{
		DefaultHeaders: copyHeaders(CORSHeaders),
		Logger:         logger,
	}

	router.OPTIONS(".*", preflight)
	router.POST(".*", handler)
	router.AddCatchAllHandler(methodNotAllowed)
	router.AddErrorHandler(errorEnvelope(failureMessage))

	if !router.Valid() {
		return nil, router.BuildErrors()
	}

	return router, nil
}

func preflight(*RouteContext) (events.APIGatewayProxyResponse, error) {
	return Empty(http.StatusOK), nil
}

func methodNotAllowed(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	return ErrorResponse(NewHTTPError(http.StatusMethodNotAllowed, CategoryMethodNotAllowed, "Only POST and OPTIONS requests are supported"))
}

func errorEnvelope(failureMessage string) ErrorHandler {
	return func(ctx context.Context, request events.APIGatewayV2HTTPRequest, err error) (events.APIGatewayProxyResponse, error) {
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			httpErr = NewInternalError(failureMessage, err)
		}

		log := lambdautils.LoggerFromContext(ctx).WithField("category", httpErr.Category)
		if httpErr.Status >= http.StatusInternalServerError {
			log.WithError(err).Error(httpErr.Message)
		} else {
			log.Warn(httpErr.Message)
		}

		response, rerr := ErrorResponse(httpErr)
		if rerr != nil {
			log.WithError(rerr).Error("failed rendering error envelope")
			return ErrorResponse(NewInternalError(failureMessage, rerr))
		}

		return response, nil
	}
}

func copyHeaders(headers map[string]string) map[string]string {
	c := make(map[string]string, len(headers))
	for k, v := range headers {
		c[k] = v
	}

	return c
}
