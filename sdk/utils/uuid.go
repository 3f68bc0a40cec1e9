// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"strings"

	"github.com/google/uuid"
)

func UUIDv4NoDash() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewRunID tags the log lines of one facade call.
func NewRunID() string {
	return UUIDv4NoDash()[:12]
}
