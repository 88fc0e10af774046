package lambdautils

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

// LambdaMetaData stored details about the current lambda context.
type LambdaMetaData struct {
	FunctionName    string
	FunctionVersion string
	LogGroupName    string
	LogStreamName   string
	MemoryLimitInMB int
	Context         *lambdacontext.LambdaContext
}

// GetLambdaMetaData returns MetaData extracted from the current lambda context.
func GetLambdaMetaData(ctx context.Context) LambdaMetaData {
	lm := LambdaMetaData{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
		LogGroupName:    lambdacontext.LogGroupName,
		LogStreamName:   lambdacontext.LogStreamName,
		MemoryLimitInMB: lambdacontext.MemoryLimitInMB,
	}

	lm.Context, _ = lambdacontext.FromContext(ctx)
	return lm
}

// AwsRequestID returns the id of the current invocation, empty outside of
// lambda.
func (lm LambdaMetaData) AwsRequestID() string {
	if lm.Context == nil {
		return ""
	}

	return lm.Context.AwsRequestID
}

// Fields returns the metadata as log fields. Empty values are left out so
// local runs don't log blank lambda details.
func (lm LambdaMetaData) Fields() logrus.Fields {
	fields := logrus.Fields{}

	if lm.FunctionName != "" {
		fields["function"] = lm.FunctionName
	}

	if lm.FunctionVersion != "" {
		fields["function_version"] = lm.FunctionVersion
	}

	if id := lm.AwsRequestID(); id != "" {
		fields["aws_request_id"] = id
	}

	return fields
}
