// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
)

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 31 % 251)
	}
	return b
}

func newArchiveServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.bin":
			_, _ = w.Write(body)
		case "/named":
			w.Header().Set("Content-Disposition", `attachment; filename="vd_value5_0835.xml.gz"`)
			_, _ = w.Write(body)
		case "/empty":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadHTTPFileBytesMatchAcrossBufferSizes(t *testing.T) {
	body := payload(70_000)
	srv := newArchiveServer(t, body)
	client := config.NewArchiveHTTP(srv.Client(), config.ArchiveConfig{})

	for _, size := range []int{0, 1, 16, 8192, 1 << 20} {
		fs := afero.NewMemMapFs()
		path, n, err := DownloadHTTPFile(context.Background(), client, fs, srv.URL+"/data.bin", "/out/nested", "data.bin", StreamOptions{BufferSize: size})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/out/nested", "data.bin"), path)
		assert.Equal(t, int64(len(body)), n)

		got, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(body, got), "buffer size %d", size)
	}
}

func TestDownloadHTTPFileUsesAttachmentName(t *testing.T) {
	srv := newArchiveServer(t, payload(10))
	fs := afero.NewMemMapFs()
	var started, done bool
	hook := &config.ProgressHook{
		OnStart: func(string, int64) { started = true },
		OnDone:  func(string, int64, time.Duration) { done = true },
	}

	path, _, err := DownloadHTTPFile(context.Background(), config.NewArchiveHTTP(srv.Client(), config.ArchiveConfig{}), fs,
		srv.URL+"/named", "/out", "", StreamOptions{Hook: hook})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "vd_value5_0835.xml.gz"), path)
	assert.True(t, started)
	assert.True(t, done)
}

func TestDownloadHTTPFileFailures(t *testing.T) {
	srv := newArchiveServer(t, payload(10))
	client := config.NewArchiveHTTP(srv.Client(), config.ArchiveConfig{})

	tests := []struct {
		name     string
		url      string
		fileName string
		want     error
	}{
		{"not found", srv.URL + "/missing", "x", ErrRemoteUnavailable},
		{"no attachment name", srv.URL + "/data.bin", "", ErrMissingFileName},
		{"relative url", "/data.bin", "x", ErrMalformedURL},
		{"ftp scheme", "ftp://example.org/x", "x", ErrMalformedURL},
		{"empty body", srv.URL + "/empty", "x", ErrRemoteUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path, _, err := DownloadHTTPFile(context.Background(), client, fs, tt.url, "/out", tt.fileName, StreamOptions{})
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsAbsence(err))
			assert.Empty(t, path)
			assert.True(t, IsDirEmpty(fs, "/out"))
		})
	}
}

func TestDownloadHTTPFileNotFoundCarriesStatus(t *testing.T) {
	srv := newArchiveServer(t, nil)
	_, _, err := DownloadHTTPFile(context.Background(), config.NewArchiveHTTP(srv.Client(), config.ArchiveConfig{}),
		afero.NewMemMapFs(), srv.URL+"/nope", "/out", "x", StreamOptions{})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusNotFound, remote.StatusCode)
}

func TestDownloadHTTPFileCancelledContext(t *testing.T) {
	srv := newArchiveServer(t, payload(10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := DownloadHTTPFile(ctx, config.NewArchiveHTTP(srv.Client(), config.ArchiveConfig{}),
		afero.NewMemMapFs(), srv.URL+"/data.bin", "/out", "x", StreamOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsAbsence(err))
}

type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestSaveResponseMidStreamFailure(t *testing.T) {
	for _, cleanup := range []bool{false, true} {
		fs := afero.NewMemMapFs()
		resp := &config.Response{
			URL:        "http://example.org/x",
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(&failingReader{}),
		}
		_, _, err := SaveResponse(fs, resp, "/out", "x.gz", StreamOptions{BufferSize: 4, CleanupPartial: cleanup})
		assert.ErrorIs(t, err, ErrIOFailure)

		exists, _ := afero.Exists(fs, "/out/x.gz")
		assert.Equal(t, !cleanup, exists, "cleanup=%v", cleanup)
	}
}
