package proxy

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// JSON returns a response with v encoded as its body.
func JSON(status int, v interface{}) (events.APIGatewayProxyResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrapf(err, "failed encoding %d response body", status)
	}

	response := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body:            string(b),
		IsBase64Encoded: false,
	}

	return response, nil
}

// Empty returns a response without a body.
func Empty(status int) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{},
	}
}

// ErrorResponse renders err as its JSON envelope.
func ErrorResponse(err *HTTPError) (events.APIGatewayProxyResponse, error) {
	return JSON(err.Status, err.Envelope())
}
