package config

import (
	"context"

	"github.com/pkg/errors"
)

// SecretGetter returns the value of a named secret.
type SecretGetter interface {
	Get(ctx context.Context, name string) (string, error)
}

// ResolveSecrets fills every API key that is unset but names a parameter
// through *_API_KEY_PARAMETER. An explicit key always wins. Every key is
// attempted; the first failure is returned.
func ResolveSecrets(ctx context.Context, cfg *Config, getter SecretGetter) error {
	targets := []struct {
		key       *string
		parameter string
	}{
		{&cfg.IBAN.APIKey, cfg.IBAN.APIKeyParameter},
		{&cfg.RouterFusion.APIKey, cfg.RouterFusion.APIKeyParameter},
	}

	var first error
	for _, t := range targets {
		if *t.key != "" || t.parameter == "" {
			continue
		}

		value, err := getter.Get(ctx, t.parameter)
		if err != nil {
			if first == nil {
				first = errors.Wrap(err, "failed resolving api key")
			}
			continue
		}

		*t.key = value
	}

	return first
}
