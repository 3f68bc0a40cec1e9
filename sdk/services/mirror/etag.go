// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/metrics"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

var categoryPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

func validateEtag(category, destination string) error {
	if !categoryPattern.MatchString(category) {
		return invalid("category %q", category)
	}
	if !utils.IsValid(destination) {
		return invalid("destination is required")
	}
	return nil
}

// MirrorEtagDay downloads the day archive of req.Category and unpacks it
// into Destination/{cat}_{yyyyMMdd}/. When the archive is not served it
// mirrors hours 0..23 into Destination instead.
func (s *MirrorService) MirrorEtagDay(ctx context.Context, req EtagDayRequest) (*Artifact, error) {
	c := s.begin(OpMirrorEtagDay)
	c.log = c.log.WithField("category", req.Category)
	if err := validateEtag(req.Category, req.Destination); err != nil {
		return c.done(nil, err)
	}
	day := utils.StartOfDay(req.Date.In(s.loc))

	archiveURL := s.layout.etagDayArchiveURL(req.Category, day)
	resp, err := utils.Fetch(ctx, s.http, archiveURL)
	if err == nil {
		a, err := s.unpackDay(c, resp, req.Category, day, req.Destination)
		_ = resp.Close()
		if err != nil {
			return c.absent(err)
		}
		return c.done(a, nil)
	}
	if !errors.Is(err, utils.ErrRemoteUnavailable) {
		return c.absent(err)
	}

	c.log.WithError(err).Info("day archive unavailable, mirroring hour by hour")
	var result *multierror.Error
	written := 0
	for hour := 0; hour < 24; hour++ {
		files, err := s.mirrorHour(ctx, c, req.Category, day, hour, req.Destination)
		written += len(files)
		if err != nil {
			if !utils.IsAbsence(err) {
				return c.done(nil, err)
			}
			result = multierror.Append(result, fmt.Errorf("hour %02d: %w", hour, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		c.log.Debugf("hourly fallback: %v", err)
	}
	if written == 0 {
		return c.absent(fmt.Errorf("%w: no hour of %s produced files", utils.ErrNotFound, utils.FormatCompact(day)))
	}
	a, err := s.dirArtifact(req.Destination, s.layout.etagDayIndexURL(req.Category, day))
	if err != nil || a == nil {
		return c.absent(err)
	}
	return c.done(a, nil)
}

func (s *MirrorService) unpackDay(c *call, resp *config.Response, cat string, day time.Time, dest string) (*Artifact, error) {
	archive, _, err := utils.SaveResponse(s.fs, resp, dest, etagArchiveName(cat, day), c.opts)
	if err != nil {
		return nil, err
	}
	dir, err := utils.DecompressTarGz(s.fs, archive, true)
	if err != nil {
		if c.opts.CleanupPartial {
			s.removeAll(c, archive, utils.ArchiveBase(archive))
		}
		return nil, err
	}
	if utils.IsDirEmpty(s.fs, dir) {
		return nil, fmt.Errorf("%w: %s unpacked to nothing", utils.ErrNotFound, filepath.Base(archive))
	}
	return s.dirArtifact(dir, resp.URL)
}

// removeAll drops leftovers of a failed unpack; failures are only logged.
func (s *MirrorService) removeAll(c *call, paths ...string) {
	for _, p := range paths {
		if err := s.fs.RemoveAll(p); err != nil {
			c.log.WithError(err).WithField("path", p).Warn("cleanup failed")
		}
	}
}

// MirrorEtagHour downloads every file listed under the hour directory into
// Destination. An hour whose listing holds only the parent entry fails with
// ErrEmptyListing.
func (s *MirrorService) MirrorEtagHour(ctx context.Context, req EtagHourRequest) (*Artifact, error) {
	c := s.begin(OpMirrorEtagHour)
	c.log = c.log.WithField("category", req.Category).WithField("hour", req.Hour)
	if err := validateEtag(req.Category, req.Destination); err != nil {
		return c.done(nil, err)
	}
	if req.Hour < 0 || req.Hour > 23 {
		return c.done(nil, invalid("hour %d out of range", req.Hour))
	}
	day := utils.StartOfDay(req.Date.In(s.loc))

	files, err := s.mirrorHour(ctx, c, req.Category, day, req.Hour, req.Destination)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyListing) || !utils.IsAbsence(err) {
			return c.done(nil, err)
		}
		if len(files) == 0 {
			return c.absent(err)
		}
		c.log.WithError(err).Warn("some files of the hour failed")
	}
	if len(files) == 0 {
		return c.done(nil, nil)
	}
	a, err := s.dirArtifact(req.Destination, s.layout.etagHourIndexURL(req.Category, day, req.Hour))
	if err != nil || a == nil {
		return c.absent(err)
	}
	return c.done(a, nil)
}

// mirrorHour streams every child of one hour listing into dest and returns
// the written paths. Per-file failures are aggregated; cancellation stops
// the loop.
func (s *MirrorService) mirrorHour(ctx context.Context, c *call, cat string, day time.Time, hour int, dest string) ([]string, error) {
	indexURL := s.layout.etagHourIndexURL(cat, day, hour)
	entries, err := s.list(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	children := utils.SkipParent(entries)
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s", utils.ErrEmptyListing, indexURL)
	}

	var written []string
	var result *multierror.Error
	for _, child := range children {
		a, err := s.fetchNamed(ctx, c, child, dest)
		if err != nil {
			if !utils.IsAbsence(err) {
				return written, err
			}
			result = multierror.Append(result, err)
			continue
		}
		written = append(written, a.Path)
	}
	return written, result.ErrorOrNil()
}

// FetchEtagNearest downloads the first file of the newest non-empty hour
// directory at or before req.Instant, looking back at most 24 hours.
func (s *MirrorService) FetchEtagNearest(ctx context.Context, req EtagNearestRequest) (*Artifact, error) {
	c := s.begin(OpFetchEtagNearest)
	c.log = c.log.WithField("category", req.Category)
	if err := validateEtag(req.Category, req.Destination); err != nil {
		return c.done(nil, err)
	}
	instant := req.Instant
	if instant.IsZero() {
		instant = s.now()
	}
	w := hourWalker(instant.In(s.loc))

	tried := map[string]struct{}{}
	var entries []string
	var found time.Time
	var lastErr error
	ok := false
	for i, cursor := range w.cursors() {
		if i > 0 {
			metrics.IncWalkerStep(w.name)
		}
		indexURL := s.layout.etagHourIndexURL(req.Category, cursor, cursor.Hour())
		if _, seen := tried[indexURL]; seen {
			continue
		}
		tried[indexURL] = struct{}{}

		entries, lastErr = s.list(ctx, indexURL)
		if lastErr == nil {
			found, ok = cursor, true
			break
		}
		if !utils.IsAbsence(lastErr) {
			return c.done(nil, lastErr)
		}
		c.log.WithField("url", indexURL).Debug("hour not served, stepping back")
	}
	if !ok {
		return c.absent(fmt.Errorf("%w: no hour of %s within %s: %w", utils.ErrNotFound, req.Category, w.horizon, lastErr))
	}

	children := utils.SkipParent(entries)
	if len(children) == 0 {
		// the newest hour can be created before its first file lands
		prev := w.step(found)
		indexURL := s.layout.etagHourIndexURL(req.Category, prev, prev.Hour())
		if _, seen := tried[indexURL]; seen || !w.within(prev) {
			return c.absent(fmt.Errorf("%w: %s", utils.ErrEmptyListing, indexURL))
		}
		metrics.IncWalkerStep(w.name)
		entries, err := s.list(ctx, indexURL)
		if err != nil {
			return c.absent(err)
		}
		children = utils.SkipParent(entries)
		if len(children) == 0 {
			return c.absent(fmt.Errorf("%w: %s", utils.ErrEmptyListing, indexURL))
		}
	}

	a, err := s.fetchNamed(ctx, c, children[0], req.Destination)
	if err != nil {
		return c.absent(err)
	}
	return c.done(a, nil)
}
