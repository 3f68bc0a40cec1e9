// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"golang.org/x/time/rate"
)

// ArchiveHTTP issues GET requests against the archive.
type ArchiveHTTP interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Response is an open archive response. Callers must Close it.
type Response struct {
	URL           string
	StatusCode    int
	Status        string
	Header        http.Header
	ContentLength int64
	Body          io.ReadCloser
}

func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Close closes the body; safe on a nil receiver.
func (r *Response) Close() error {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

// SuggestedFileName returns the attachment file name from Content-Disposition,
// or "" when the server did not provide a usable one.
func (r *Response) SuggestedFileName() string {
	cd := r.Header.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return ""
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

type archiveHTTP struct {
	httpClient *http.Client
	archive    ArchiveConfig
	limiter    *rate.Limiter
}

// NewArchiveHTTP wraps httpClient with the archive headers and an optional
// request rate limit. A nil client gets one with the configured timeout.
func NewArchiveHTTP(httpClient *http.Client, archive ArchiveConfig) ArchiveHTTP {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: archive.RequestTimeout}
	}
	var limiter *rate.Limiter
	if archive.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(archive.RequestsPerSecond), 1)
	}
	return &archiveHTTP{httpClient: httpClient, archive: archive, limiter: limiter}
}

func (a *archiveHTTP) Get(ctx context.Context, url string) (*Response, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if ua := a.archive.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	for k, v := range a.archive.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	return &Response{
		URL:           url,
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		Header:        resp.Header,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}
