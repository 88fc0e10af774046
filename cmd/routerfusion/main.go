package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/prognoshealth/paymentproxy/config"
	"github.com/prognoshealth/paymentproxy/lambdautils"
	"github.com/prognoshealth/paymentproxy/proxy"
	"github.com/prognoshealth/paymentproxy/routerfusion"
	"github.com/prognoshealth/paymentproxy/secrets"
)

var router *proxy.Router

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed loading configuration: " + err.Error())
	}

	logger, err := lambdautils.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic("failed creating logger: " + err.Error())
	}

	if err := config.ResolveSecrets(context.Background(), cfg, secrets.NewParameterStore(cfg.AWS.Region)); err != nil {
		logger.WithError(err).Warn("api key parameter unavailable")
	}

	router, err = routerfusion.NewRouter(cfg, logger)
	if err != nil {
		panic("failed building router: " + err.Error())
	}
}

func main() {
	lambda.Start(router.Route)
}
