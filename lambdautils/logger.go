package lambdautils

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// NewLogger returns a logger writing to stdout, which lambda forwards to
// cloudwatch. format is "json" or "text".
func NewLogger(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level '%s'", level)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(lvl)

	switch format {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("invalid log format '%s'", format)
	}

	return logger, nil
}

// NewLogEntry returns an entry of logger tagged with the lambda metadata of ctx.
func NewLogEntry(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	return logger.WithContext(ctx).WithFields(GetLambdaMetaData(ctx).Fields())
}

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// LoggerFromContext returns the entry stored by WithLogger, or an entry of the
// standard logger when there is none.
func LoggerFromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
			return entry
		}
	}

	return logrus.NewEntry(logrus.StandardLogger())
}
