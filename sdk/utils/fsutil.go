// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"os"
	"strings"

	"github.com/spf13/afero"
)

// IsValid reports whether s has any non-blank content.
func IsValid(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsDirEmpty reports whether dir is missing or holds no regular file at any
// depth.
func IsDirEmpty(fs afero.Fs, dir string) bool {
	files, err := ListFiles(fs, dir)
	return err != nil || len(files) == 0
}

// ListFiles returns every regular file below dir in lexical order.
func ListFiles(fs afero.Fs, dir string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
