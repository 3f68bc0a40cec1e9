// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

// Package logging is the structured logger used across the SDK.
package logging

import "go.uber.org/zap"

// Interface is what the services log through. Implementations must be safe
// for concurrent use.
type Interface interface {
	WithField(key string, value any) Interface
	WithError(err error) Interface

	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

// sugared adapts zap's SugaredLogger; printf formatting is left to zap.
type sugared struct {
	s *zap.SugaredLogger
}

func (l sugared) WithField(key string, value any) Interface {
	return sugared{l.s.With(key, value)}
}

func (l sugared) WithError(err error) Interface {
	return sugared{l.s.With(zap.Error(err))}
}

func (l sugared) Debug(msg string) { l.s.Debug(msg) }
func (l sugared) Info(msg string)  { l.s.Info(msg) }
func (l sugared) Warn(msg string)  { l.s.Warn(msg) }
func (l sugared) Error(msg string) { l.s.Error(msg) }

func (l sugared) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l sugared) Infof(format string, args ...any)  { l.s.Infof(format, args...) }

// ForZap wraps logger, reporting the caller of the Interface method.
func ForZap(logger *zap.Logger) Interface {
	return sugared{logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// Discard returns a logger that drops every message.
func Discard() Interface {
	return ForZap(zap.NewNop())
}
