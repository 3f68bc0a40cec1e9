// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable: the archive answered with a non-200 status or could not be reached.
	ErrRemoteUnavailable = errors.New("remote resource unavailable")
	// ErrMalformedURL: the URL is syntactically invalid or has no scheme/host.
	ErrMalformedURL = errors.New("malformed url")
	// ErrIOFailure: local disk error while writing an artifact.
	ErrIOFailure = errors.New("i/o failure")
	// ErrMissingFileName: no explicit file name and no Content-Disposition attachment name.
	ErrMissingFileName = errors.New("missing file name")
	// ErrEmptyListing: the directory listing has no entry besides the parent link.
	ErrEmptyListing = errors.New("empty listing")
	// ErrNotFound: a retry walker exhausted its window.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidRequest: the caller passed an unusable request.
	ErrInvalidRequest = errors.New("invalid request")
)

// RemoteError describes a failed request against the archive.
type RemoteError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *RemoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("remote %s unavailable: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("remote %s unavailable: HTTP %d", e.URL, e.StatusCode)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// StreamError describes a local write failure while streaming to Path.
type StreamError struct {
	URL   string
	Path  string
	Cause error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("streaming %s to %s: %v", e.URL, e.Path, e.Cause)
}

func (e *StreamError) Is(target error) bool {
	return target == ErrIOFailure
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// IsAbsence reports whether err means "no artifact" rather than a caller mistake.
func IsAbsence(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, ErrMalformedURL) ||
		errors.Is(err, ErrIOFailure) ||
		errors.Is(err, ErrMissingFileName) ||
		errors.Is(err, ErrEmptyListing) ||
		errors.Is(err, ErrNotFound)
}
