// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the configuration for logging.
type Config struct {
	// Level controls the logging level. Defaults to INFO.
	Level Level `mapstructure:"level"`

	// JSON switches the console encoder to JSON lines.
	JSON bool `mapstructure:"json"`

	// DisableConsoleOutput stops writing to stderr.
	DisableConsoleOutput bool `mapstructure:"disableConsoleOutput"`

	// File rotation; nothing is written to disk when Filename is empty.
	lumberjack.Logger `mapstructure:",squash"`
}

// Option is a configuration option for logging.
type Option func(*Config) error

// Validate ensures the logging Config is valid.
func (c *Config) Validate() error {
	if c.MaxSize < 0 {
		return fmt.Errorf("maxsize must be >= 0, not %d", c.MaxSize)
	}
	if c.MaxBackups < 0 {
		return fmt.Errorf("maxbackups must be >= 0, not %d", c.MaxBackups)
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("maxage days must be >= 0, not %d", c.MaxAge)
	}
	if err := c.Level.Validate(); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	return nil
}

// WithLevel sets the level from its textual form.
func WithLevel(level string) Option {
	return func(c *Config) error {
		l, err := ParseLevel(level)
		if err != nil {
			return err
		}
		c.Level = l
		return nil
	}
}

// WithFile enables rotated file output.
func WithFile(filename string) Option {
	return func(c *Config) error {
		c.Filename = filename
		return nil
	}
}

// Apply takes the supplied options and applies them to the configuration.
func (c *Config) Apply(opts ...Option) error {
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(c); err != nil {
			return err
		}
	}
	return nil
}

// NewConfig creates a new logging config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{Level: LevelInfo}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
