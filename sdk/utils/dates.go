// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	CompactDateLayout = "20060102"
	DashedLayout      = "2006-01-02 15:04:05"
	ClockLayout       = "1504"
)

var instantLayouts = []string{
	DashedLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	CompactDateLayout,
	"2006-01-02",
}

// FormatCompact formats t as yyyyMMdd in t's own location.
func FormatCompact(t time.Time) string {
	return t.Format(CompactDateLayout)
}

// FormatDashed formats t as yyyy-MM-dd HH:mm:ss.
func FormatDashed(t time.Time) string {
	return t.Format(DashedLayout)
}

// ParseInstant accepts "2006-01-02 15:04:05", "2006-01-02T15:04:05", the
// same without seconds, "20060102" and "2006-01-02", interpreted in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", ErrInvalidRequest, s)
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
