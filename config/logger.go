package config

import (
	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/errors"
)

// NewLogger builds a zap logger for the log section. Development mode uses
// the console encoder.
func (l Log) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, errors.Config("log.level", err)
	}

	var zc zap.Config
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Config("build logger", err)
	}
	return logger, nil
}
