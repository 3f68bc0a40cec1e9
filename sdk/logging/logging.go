// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger writing to stderr and, when configured, to a
// rotated log file.
func NewLogger(config *Config) (*zap.Logger, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	level, err := config.Level.toZapCoreLevel()
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if config.Filename != "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(&config.Logger), level))
	}
	if !config.DisableConsoleOutput {
		var encoder zapcore.Encoder
		if config.JSON {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		} else {
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// New builds an Interface from the config.
func New(config *Config) (Interface, error) {
	logger, err := NewLogger(config)
	if err != nil {
		return nil, err
	}
	return ForZap(logger), nil
}

// Default is the stderr logger at INFO used when a service gets no logger.
func Default() Interface {
	logger, err := NewLogger(&Config{Level: LevelInfo})
	if err != nil {
		return Discard()
	}
	return ForZap(logger)
}
