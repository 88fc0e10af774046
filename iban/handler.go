// Package iban proxies UK sort code and account number pairs to an IBAN
// calculation API and normalizes its answer.
package iban

import (
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/paymentproxy/config"
	"github.com/prognoshealth/paymentproxy/proxy"
)

const (
	CategoryGenerationFailed = "IBAN generation failed"

	failureMessage = "Failed to process IBAN request"
)

// Handler answers IBAN calculation requests.
type Handler struct {
	Client *Client
}

// NewRouter returns the function router serving IBAN requests.
func NewRouter(cfg *config.Config, logger *logrus.Logger) (*proxy.Router, error) {
	h := &Handler{Client: NewClient(cfg.IBAN, cfg.HTTP)}
	return proxy.NewFunctionRouter(h.Handle, failureMessage, logger)
}

// Handle validates the account, calls the upstream API once and normalizes
// the result.
func (h *Handler) Handle(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	var account BankAccountIdentifier
	if err := ctx.Bind(&account); err != nil {
		ctx.Log().WithError(err).Warn("unreadable request body")
		return events.APIGatewayProxyResponse{}, proxy.NewMissingParametersError("Both sortCode and accountNumber are required")
	}

	if verr := account.Validate(); verr != nil {
		return events.APIGatewayProxyResponse{}, verr
	}

	if !h.Client.Configured() {
		return events.APIGatewayProxyResponse{}, proxy.NewConfigurationError("IBAN API key not configured")
	}

	sortCode := account.CleanSortCode()
	log := ctx.Log().WithFields(logrus.Fields{
		"sort_code":      sortCode,
		"account_number": account.AccountNumber,
	})
	log.Info("processing IBAN request")

	lookup, status, err := h.Client.Lookup(ctx.Context, sortCode, account.AccountNumber)
	log = log.WithField("upstream_status", status)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "IBAN lookup failed")
	}

	iban := lookup.field("iban")
	log.WithFields(logrus.Fields{
		"iban": iban,
		"bank": lookup.field("bank"),
	}).Info("IBAN API response received")

	if iban == "" {
		return events.APIGatewayProxyResponse{}, proxy.NewHTTPError(http.StatusUnprocessableEntity, CategoryGenerationFailed, "Invalid sort code or account number").WithDetails(lookup.Raw)
	}

	return proxy.JSON(http.StatusOK, lookup.Normalize(sortCode, account.AccountNumber))
}
