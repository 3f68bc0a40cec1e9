// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultEtagRoot       = "http://210.241.131.253/history/TDCS"
	DefaultVDRoot         = "http://210.241.131.253/history/vd"
	DefaultBufferSize     = 8192
	DefaultTimeZone       = "Asia/Taipei"
	DefaultUserAgent      = "tdcs-mirror-sdk"
	DefaultRequestTimeout = 60 * time.Second
)

// Config is everything handed to the SDK; viper and INI stay on the CLI side.
type Config struct {
	Archive ArchiveConfig
	S3      S3Config
}

// ArchiveConfig describes the remote archive and how to talk to it.
type ArchiveConfig struct {
	EtagRoot          string `validate:"required,url"`
	VDRoot            string `validate:"required,url"`
	UserAgent         string
	Headers           map[string]string
	RequestTimeout    time.Duration `validate:"gte=0"`
	BufferSize        int           `validate:"gte=0"`
	RequestsPerSecond float64       `validate:"gte=0"`
	TimeZone          string

	// CleanupPartial removes the partially written file when a stream fails.
	CleanupPartial bool
}

type S3Config struct {
	AccessKey   string
	SecretKey   string
	AccessToken string
	Region      string
	EndpointURL string `validate:"omitempty,url"`
}

// DefaultConfig returns a config pointing at the public archive.
func DefaultConfig() Config {
	return Config{
		Archive: ArchiveConfig{
			EtagRoot:       DefaultEtagRoot,
			VDRoot:         DefaultVDRoot,
			UserAgent:      DefaultUserAgent,
			RequestTimeout: DefaultRequestTimeout,
			BufferSize:     DefaultBufferSize,
			TimeZone:       DefaultTimeZone,
		},
	}
}

// Validate checks struct constraints and that the time zone resolves.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Archive.Location(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks the S3 settings alone; publishing does not need a valid
// archive section.
func (c S3Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid s3 configuration: %w", err)
	}
	return nil
}

// Location resolves TimeZone, falling back to Asia/Taipei when unset.
func (a ArchiveConfig) Location() (*time.Location, error) {
	tz := a.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", tz, err)
	}
	return loc, nil
}

// EffectiveBufferSize returns BufferSize or the default when unset.
func (a ArchiveConfig) EffectiveBufferSize() int {
	if a.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return a.BufferSize
}
