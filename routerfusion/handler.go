// Package routerfusion proxies GraphQL documents to the Router Fusion
// cross-border payments API, adding the bearer credential.
package routerfusion

import (
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/paymentproxy/config"
	"github.com/prognoshealth/paymentproxy/proxy"
)

const (
	CategoryGraphQLErrors = "GraphQL errors"

	failureMessage = "Failed to process Router Fusion request"
	missingQuery   = "GraphQL query is required"
	queryLogLength = 100
)

var validate = validator.New()

// Handler answers GraphQL proxy requests.
type Handler struct {
	Client *Client
}

// NewRouter returns the function router serving Router Fusion requests.
func NewRouter(cfg *config.Config, logger *logrus.Logger) (*proxy.Router, error) {
	h := &Handler{Client: NewClient(cfg.RouterFusion, cfg.HTTP)}
	return proxy.NewFunctionRouter(h.Handle, failureMessage, logger)
}

// Handle validates the query, forwards it once and mirrors the GraphQL
// response. GraphQL errors inside a 2xx response are reported as a 400.
func (h *Handler) Handle(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	var request Request
	if err := ctx.Bind(&request); err != nil {
		ctx.Log().WithError(err).Warn("unreadable request body")
		return events.APIGatewayProxyResponse{}, proxy.NewMissingParametersError(missingQuery)
	}

	if err := validate.Struct(request); err != nil {
		return events.APIGatewayProxyResponse{}, proxy.NewMissingParametersError(missingQuery)
	}

	log := ctx.Log().WithFields(logrus.Fields{
		"query":     truncate(request.Query, queryLogLength),
		"variables": len(request.Variables),
	})
	log.Info("processing GraphQL request")

	if !h.Client.Configured() {
		return events.APIGatewayProxyResponse{}, proxy.NewConfigurationError("Router Fusion API key not configured")
	}

	response, status, err := h.Client.Execute(ctx.Context, request)
	log = log.WithField("upstream_status", status)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "GraphQL request failed")
	}

	log.WithField("graphql_errors", response.HasErrors()).Info("Router Fusion API response received")

	if response.HasErrors() {
		return events.APIGatewayProxyResponse{}, proxy.NewHTTPError(http.StatusBadRequest, CategoryGraphQLErrors, "Router Fusion GraphQL request failed").WithDetails(response.Errors)
	}

	return proxy.JSON(http.StatusOK, Result{
		Success: true,
		Data:    response.Data,
		Errors:  response.ResultErrors(),
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}
