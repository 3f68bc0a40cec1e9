// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// IniPath is $TDCS_INI_PATH or ~/.tdcsmirror.ini.
func IniPath() string {
	if p := os.Getenv(IniPathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, IniName)
}

// LoadIni reads the profile file. A missing file yields an empty one when
// createOnMissing is set.
func LoadIni(iniPath string, createOnMissing bool) (*ini.File, error) {
	cfg, err := ini.Load(iniPath)
	if err != nil {
		if !createOnMissing {
			return nil, fmt.Errorf("failed to read ini file: %w", err)
		}
		return ini.Empty(), nil
	}
	return cfg, nil
}

func SaveIni(cfg *ini.File, iniPath string) error {
	if err := cfg.SaveTo(iniPath); err != nil {
		return fmt.Errorf("failed to update ini file: %w", err)
	}
	return nil
}

func TranslateFormat(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatShort
	}
}

// ParseHeaders reads "Key=Value,Other=Value" pairs; malformed pairs are skipped.
func ParseHeaders(s string) map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers
}

// HumanBytes formats n with binary units.
func HumanBytes(n int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)
	switch {
	case n >= GB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(GB))
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(MB))
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(KB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
