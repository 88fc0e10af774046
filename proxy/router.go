package proxy

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/paymentproxy/lambdautils"
)

// ErrorHandler defines the function interface the router uses to handle any
// error that occurs while processing routes.
type ErrorHandler func(context.Context, events.APIGatewayV2HTTPRequest, error) (events.APIGatewayProxyResponse, error)

// CatchAllHandler defines the function interface the router uses to handle any
// request that doesn't match a route.
type CatchAllHandler func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error)

// Router will route an incoming events.APIGatewayV2HTTPRequest the appropriate
// route based upon the router configuration and then return the
// events.APIGatewayProxyResponse.
//
// Route matching is a simple process that loops through all routes added in the
// order they were added and checks if a match is present. If so that route gets
// executed, otherwise it moves onto the next route for comparison.
//
// If the CatchAll handler is set any request that doesn't match a route will be
// handled by it.
//
// If the CatchError handler is set any route that returns an error will first
// be passed into the hander for additional processing.
//
// DefaultHeaders are added to every response unless the response already sets
// the same header.
//
// Every request gets a logrus entry, built from Logger, that handlers reach
// through RouteContext.Log.
//
// Example:
//
//	func yoloHandler(ctx *RouteContext) (events.APIGatewayProxyResponse, error) {
//		return proxy.JSON(200, map[string]string{"yolo": "it's true"})
//	}
//
//	func handler(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
//		router := &proxy.Router{}
//		router.POST("/yolo", yoloHandler)
//
//		if !router.Valid() {
//			return events.APIGatewayProxyResponse{}, router.BuildErrors()
//		}
//
//		return router.Route(ctx, request)
//	}
type Router struct {
	Routes         []*Route
	CatchAll       CatchAllHandler
	CatchError     ErrorHandler
	DefaultHeaders map[string]string
	Logger         *logrus.Logger

	errors []error
}

// Valid returns true if the routers' routes have all been built successfully.
// Otherwise false.
func (router *Router) Valid() bool {
	return len(router.errors) == 0
}

// AddRoute appends route to the list of routes used for request matching.
func (router *Router) AddRoute(route *Route) {
	router.Routes = append(router.Routes, route)
}

// AddBuildError appends an error to the list of router errors.
func (router *Router) AddBuildError(err error) {
	router.errors = append(router.errors, err)
}

// BuildErrors returns a single error that encapsulates all the route errors
// found during router construction.
func (router *Router) BuildErrors() error {
	topError := errors.New("failed building router")

	for _, err := range router.errors {
		topError = errors.Wrap(topError, err.Error())
	}

	return topError
}

// AddRouteIfNoError appends the provided route if no error is present.
// Otherwise it adds the error to the build errors.
func (router *Router) AddRouteIfNoError(route *Route, err error) {
	if err != nil {
		router.AddBuildError(err)
	} else {
		router.AddRoute(route)
	}
}

// POST adds a new POST route with the specified pattern match and handler.
func (router *Router) POST(match string, handler RouteHandler) {
	router.AddRouteIfNoError(NewRoute(POST, match, handler))
}

// OPTIONS adds a new OPTIONS route with the specified pattern match and handler.
func (router *Router) OPTIONS(match string, handler RouteHandler) {
	router.AddRouteIfNoError(NewRoute(OPTIONS, match, handler))
}

// AddCatchAllHandler attaches a catchall handler to the router.
func (router *Router) AddCatchAllHandler(handler CatchAllHandler) {
	router.CatchAll = handler
}

// AddErrorHandler attaches a error handler to the router.
func (router *Router) AddErrorHandler(handler ErrorHandler) {
	router.CatchError = handler
}

// routeInternal loops through all routes and checks if the request matches any
// of them.
//
// If there is a match it executes the route's handler.
//
// If the catch all handler is set and no route is matched it gets executed.
//
// If there is no catch all handler and no route is matched an error is returned.
func (router *Router) routeInternal(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	for _, route := range router.Routes {
		matched, groups := route.IsMatch(request)

		if !matched {
			continue
		}

		return route.Follow(ctx, request, groups)
	}

	if router.CatchAll != nil {
		return router.CatchAll(ctx, request)
	}

	return events.APIGatewayProxyResponse{}, fmt.Errorf("'%s %s' not found", request.RequestContext.HTTP.Method, request.RawPath)
}

// Route loops through all routes and checks if the request matches any of them.
//
// If there is a match it executes the route's handler.
//
// If the catch all handler is set and no route is matched it gets executed.
//
// If there is no catch all handler and no route is matched an error is returned.
//
// If there is an error handler set and an error occurs the errors the error
// handler is executed and it's result returned.
func (router *Router) Route(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	log := router.logEntry(ctx, request)
	ctx = lambdautils.WithLogger(ctx, log)

	response, err := router.routeInternal(ctx, request)

	if err != nil && router.CatchError != nil {
		response, err = router.CatchError(ctx, request, err)
	}

	router.addDefaultHeaders(&response)

	if err != nil {
		log.WithError(err).Error("request failed")
	} else {
		log.WithField("status", response.StatusCode).Info("request completed")
	}

	return response, err
}

func (router *Router) logEntry(ctx context.Context, request events.APIGatewayV2HTTPRequest) *logrus.Entry {
	logger := router.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return lambdautils.NewLogEntry(ctx, logger).WithFields(logrus.Fields{
		"method":     request.RequestContext.HTTP.Method,
		"path":       request.RawPath,
		"request_id": request.RequestContext.RequestID,
	})
}

func (router *Router) addDefaultHeaders(response *events.APIGatewayProxyResponse) {
	if len(router.DefaultHeaders) == 0 {
		return
	}

	if response.Headers == nil {
		response.Headers = make(map[string]string, len(router.DefaultHeaders))
	}

	for k, v := range router.DefaultHeaders {
		if _, ok := response.Headers[k]; !ok {
			response.Headers[k] = v
		}
	}
}
