// Package config loads the functions' configuration from environment
// variables into a typed, validated Config.
//
// Variables are grouped by prefix: IBAN_*, ROUTER_FUSION_*, HTTP_*, LOG_* and
// LOCAL_* map onto the matching section, e.g. ROUTER_FUSION_API_KEY becomes
// routerfusion.api_key. AWS_REGION maps onto aws.region. Everything else in
// the environment is ignored.
package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config is the root configuration shared by every function.
//
// API keys are optional here. A missing key is reported per request as a
// configuration error.
type Config struct {
	IBAN         IBANConfig         `koanf:"iban"`
	RouterFusion RouterFusionConfig `koanf:"routerfusion"`
	HTTP         HTTPConfig         `koanf:"http"`
	Log          LogConfig          `koanf:"log"`
	Local        LocalConfig        `koanf:"local"`
	AWS          AWSConfig          `koanf:"aws"`
}

// IBANConfig configures the IBAN calculation API.
type IBANConfig struct {
	Endpoint        string `koanf:"endpoint" validate:"required,url"`
	APIKey          string `koanf:"api_key"`
	APIKeyParameter string `koanf:"api_key_parameter"`
	Country         string `koanf:"country" validate:"required,len=2,alpha"`
	Format          string `koanf:"format" validate:"required"`
}

// RouterFusionConfig configures the Router Fusion GraphQL API.
type RouterFusionConfig struct {
	Endpoint        string `koanf:"endpoint" validate:"required,url"`
	APIKey          string `koanf:"api_key"`
	APIKeyParameter string `koanf:"api_key_parameter"`
}

// HTTPConfig configures the outbound http client. A zero Timeout leaves the
// transport defaults in place.
type HTTPConfig struct {
	Timeout   time.Duration `koanf:"timeout" validate:"min=0"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=panic fatal error warn warning info debug trace"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type LocalConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

type AWSConfig struct {
	Region string `koanf:"region"`
}

// Default returns the configuration used for every unset variable.
func Default() *Config {
	return &Config{
		IBAN: IBANConfig{
			Endpoint: "https://api.iban.com/clients/api/calc-api.php",
			Country:  "GB",
			Format:   "json",
		},
		RouterFusion: RouterFusionConfig{
			Endpoint: "https://sandbox.external.routefusion.com/graphql",
		},
		HTTP: HTTPConfig{
			UserAgent: "Vercel-Function/1.0",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Local: LocalConfig{
			Addr: ":8080",
		},
	}
}

var sections = []struct {
	prefix  string
	section string
}{
	{"IBAN_", "iban"},
	{"ROUTER_FUSION_", "routerfusion"},
	{"HTTP_", "http"},
	{"LOG_", "log"},
	{"LOCAL_", "local"},
}

// envKey maps an environment variable name onto its koanf key, or "" when the
// variable is not ours.
func envKey(name string) string {
	if name == "AWS_REGION" {
		return "aws.region"
	}

	for _, s := range sections {
		if strings.HasPrefix(name, s.prefix) {
			return s.section + "." + strings.ToLower(strings.TrimPrefix(name, s.prefix))
		}
	}

	return ""
}

// Load reads the environment on top of Default and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed loading environment")
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed unmarshalling config")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// Client returns the http client used for upstream calls.
func (c HTTPConfig) Client() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}
