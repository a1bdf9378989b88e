package logger

import (
	"go.uber.org/zap"
)

// LoggerAdapter implements ports.LoggerPort over zap. Production gets JSON
// output, anything else the development console encoder.
type LoggerAdapter struct {
	logger *zap.Logger
}

func NewLoggerAdapter(env string) *LoggerAdapter {
	var logger *zap.Logger
	var err error

	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	return &LoggerAdapter{logger: logger}
}

func (l *LoggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *LoggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *LoggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func (l *LoggerAdapter) Sync() {
	_ = l.logger.Sync()
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		zapFields = append(zapFields, zap.Any(key, value))
	}
	return zapFields
}
