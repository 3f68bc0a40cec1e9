// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/metrics"
	"github.com/spf13/afero"
)

// StreamOptions tunes a single transfer.
type StreamOptions struct {
	// BufferSize is the chunk size used for both the read buffer and the
	// buffered sink. Zero means config.DefaultBufferSize.
	BufferSize     int
	Hook           *config.ProgressHook
	CleanupPartial bool
}

func (o StreamOptions) bufferSize() int {
	if o.BufferSize <= 0 {
		return config.DefaultBufferSize
	}
	return o.BufferSize
}

// ValidateURL rejects URLs that cannot be requested: unparsable, relative, or
// with a scheme other than http/https.
func ValidateURL(raw string) error {
	if !IsValid(raw) {
		return fmt.Errorf("%w: empty url", ErrMalformedURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrMalformedURL, raw)
	}
	return nil
}

// Fetch performs one GET and classifies the outcome. On success the caller
// owns the returned response and must close it; any other status is closed
// here and reported as a *RemoteError.
func Fetch(ctx context.Context, client config.ArchiveHTTP, rawURL string) (*config.Response, error) {
	if err := ValidateURL(rawURL); err != nil {
		metrics.IncHTTPRequest(metrics.OutcomeMalformed)
		return nil, err
	}
	resp, err := client.Get(ctx, rawURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.IncHTTPRequest(metrics.OutcomeTransport)
		return nil, &RemoteError{URL: rawURL, Cause: err}
	}
	if !resp.OK() {
		_ = resp.Close()
		metrics.IncHTTPRequest(metrics.OutcomeNotOK)
		return nil, &RemoteError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	metrics.IncHTTPRequest(metrics.OutcomeOK)
	return resp, nil
}

// DownloadHTTPFile streams rawURL into destDir/fileName. An empty fileName
// means the Content-Disposition attachment name. It returns the written path
// and its size.
func DownloadHTTPFile(
	ctx context.Context,
	client config.ArchiveHTTP,
	fs afero.Fs,
	rawURL, destDir, fileName string,
	opts StreamOptions,
) (string, int64, error) {
	resp, err := Fetch(ctx, client, rawURL)
	if err != nil {
		return "", 0, err
	}
	defer resp.Close()
	return SaveResponse(fs, resp, destDir, fileName, opts)
}

// SaveResponse writes an already opened 200 response to disk. It does not
// close resp.
func SaveResponse(fs afero.Fs, resp *config.Response, destDir, fileName string, opts StreamOptions) (string, int64, error) {
	name := fileName
	if !IsValid(name) {
		name = resp.SuggestedFileName()
	}
	if !IsValid(name) {
		return "", 0, fmt.Errorf("%w: %s", ErrMissingFileName, resp.URL)
	}

	target := filepath.Join(destDir, name)
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", 0, &StreamError{URL: resp.URL, Path: target, Cause: err}
	}

	out, err := fs.Create(target)
	if err != nil {
		return "", 0, &StreamError{URL: resp.URL, Path: target, Cause: err}
	}

	size := opts.bufferSize()
	opts.Hook.Start(target, resp.ContentLength)
	start := time.Now()

	written, copyErr := copyBuffered(out, resp.Body, size, config.NewProgressWriter(target, resp.ContentLength, opts.Hook))
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	metrics.AddBytesDownloaded(written)

	if copyErr != nil {
		if opts.CleanupPartial {
			_ = fs.Remove(target)
		}
		return "", written, &StreamError{URL: resp.URL, Path: target, Cause: copyErr}
	}
	if written == 0 {
		_ = fs.Remove(target)
		return "", 0, &RemoteError{URL: resp.URL, StatusCode: resp.StatusCode, Cause: errors.New("empty body")}
	}

	opts.Hook.Done(target, written, time.Since(start))
	return target, written, nil
}

// copyBuffered copies src into a buffered view of dst in chunks of size bytes,
// mirroring every chunk into progress, and flushes before returning.
func copyBuffered(dst io.Writer, src io.Reader, size int, progress io.Writer) (int64, error) {
	in := bufio.NewReaderSize(src, size)
	sink := bufio.NewWriterSize(dst, size)
	buf := make([]byte, size)

	var written int64
	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := sink.Write(buf[:n]); err != nil {
				return written, err
			}
			_, _ = progress.Write(buf[:n])
			written += int64(n)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return written, readErr
		}
	}
	return written, sink.Flush()
}
