package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/paymentproxy/lambdautils"
)

// RouteContext contains all the request information for a route when matched.
type RouteContext struct {
	Context context.Context
	Request events.APIGatewayV2HTTPRequest
	Params  map[string]string
}

// Body returns a string representation of the request body
func (ctx *RouteContext) Body() (string, error) {
	if ctx.Request.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(ctx.Request.Body)
		if err != nil {
			return "", errors.Wrapf(err, "unable to decode request body for request %s", ctx.Request.RequestContext.RequestID)
		}

		return string(b), nil
	}

	return ctx.Request.Body, nil
}

// Bind decodes the JSON request body into v. An empty body decodes as an
// empty object so required-field checks report on the fields themselves.
func (ctx *RouteContext) Bind(v interface{}) error {
	body, err := ctx.Body()
	if err != nil {
		return err
	}

	if strings.TrimSpace(body) == "" {
		body = "{}"
	}

	if err := json.Unmarshal([]byte(body), v); err != nil {
		return errors.Wrap(err, "unable to decode json request body")
	}

	return nil
}

// Log returns the logger attached to the request by the router.
func (ctx *RouteContext) Log() *logrus.Entry {
	return lambdautils.LoggerFromContext(ctx.Context)
}
