// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid(" \t\n"))
	assert.True(t, IsValid("a"))
}

func TestIsDirEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.True(t, IsDirEmpty(fs, "/missing"))

	require.NoError(t, fs.MkdirAll("/out/a/b", 0o755))
	assert.True(t, IsDirEmpty(fs, "/out"))

	require.NoError(t, afero.WriteFile(fs, "/out/a/b/f.csv", []byte("x"), 0o644))
	assert.False(t, IsDirEmpty(fs, "/out"))
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("s3://mirror/tdcs/")
	require.NoError(t, err)
	assert.Equal(t, "mirror", p.Host)
	assert.Equal(t, "tdcs/", p.Path)
	assert.Equal(t, "tdcs/M03A/a.csv", p.Key("M03A/a.csv"))

	p, err = ParsePath("s3://mirror")
	require.NoError(t, err)
	assert.Equal(t, "a.csv", p.Key("/a.csv"))

	p, err = ParsePath("s3://mirror/tdcs")
	require.NoError(t, err)
	assert.Equal(t, "tdcs/a.csv", p.Key("a.csv"))
	assert.Equal(t, "s3://mirror/tdcs", p.String())

	for _, bad := range []string{"", "http://mirror/x", "s3:///x", "mirror/x"} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrInvalidRequest, bad)
	}
}

func TestParseHeadersAndFormat(t *testing.T) {
	assert.Equal(t, map[string]string{"Accept": "text/html", "X-Token": "a=b"},
		ParseHeaders(" Accept = text/html ,X-Token=a=b,broken,=x"))
	assert.Equal(t, FormatYAML, TranslateFormat("YML"))
	assert.Equal(t, FormatJSON, TranslateFormat("json"))
	assert.Equal(t, FormatShort, TranslateFormat("table"))
	assert.Equal(t, "1.50 KB", HumanBytes(1536))
	assert.Len(t, NewRunID(), 12)
}
