// Command localserver serves both proxy functions over plain http for local
// development. Variables from a .env file in the working directory are loaded
// before configuration.
package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/paymentproxy/config"
	"github.com/prognoshealth/paymentproxy/iban"
	"github.com/prognoshealth/paymentproxy/lambdautils"
	"github.com/prognoshealth/paymentproxy/proxy"
	"github.com/prognoshealth/paymentproxy/routerfusion"
	"github.com/prognoshealth/paymentproxy/secrets"
)

func newRouter(cfg *config.Config, logger *logrus.Logger) (http.Handler, error) {
	ibanRouter, err := iban.NewRouter(cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed building iban router")
	}

	rfRouter, err := routerfusion.NewRouter(cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed building router fusion router")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/api/iban", proxy.HTTPHandler(ibanRouter))
	r.Handle("/api/routerfusion", proxy.HTTPHandler(rfRouter))

	return r, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed loading configuration")
	}

	logger, err := lambdautils.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("failed creating logger")
	}

	if err := config.ResolveSecrets(context.Background(), cfg, secrets.NewParameterStore(cfg.AWS.Region)); err != nil {
		logger.WithError(err).Warn("api key parameter unavailable")
	}

	handler, err := newRouter(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed building server")
	}

	logger.WithField("addr", cfg.Local.Addr).Info("listening")
	if err := http.ListenAndServe(cfg.Local.Addr, handler); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
