// logging.go - Client logger and driver log bridge

package kmgo

import (
	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a production zap logger at the configured level.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	return logger.Named("kmgo"), nil
}

// driverLogger routes driver command logs into logger.
func driverLogger(logger *zap.Logger, cfg LoggingConfig) *options.LoggerOptions {
	sink := zapr.NewLogger(logger.Named("driver")).GetSink()
	opts := options.Logger().
		SetSink(sink).
		SetComponentLevel(options.LogComponentCommand, options.LogLevelDebug)
	if cfg.MaxDocumentLength > 0 {
		opts.SetMaxDocumentLength(cfg.MaxDocumentLength)
	}
	return opts
}
