// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/metrics"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// FetchVD downloads the first artifact of req.Kind listed under today's VD
// directory, falling back to yesterday's when today's listing is not served.
func (s *MirrorService) FetchVD(ctx context.Context, req VDRequest) (*Artifact, error) {
	c := s.begin(OpFetchVD)
	c.log = c.log.WithField("kind", req.Kind.String())
	if !utils.IsValid(req.Destination) {
		return c.done(nil, invalid("destination is required"))
	}

	today := s.now().In(s.loc)
	indexURL := s.layout.vdIndexURL(today)
	entries, err := s.list(ctx, indexURL)
	if err != nil && errors.Is(err, utils.ErrRemoteUnavailable) {
		c.log.WithError(err).Debug("today's listing unavailable, trying yesterday")
		indexURL = s.layout.vdIndexURL(today.AddDate(0, 0, -1))
		entries, err = s.list(ctx, indexURL)
	}
	if err != nil {
		return c.absent(err)
	}

	link, ok := firstMatching(entries, req.Kind.Prefix())
	if !ok {
		return c.absent(fmt.Errorf("%w: no %s entry in %s", utils.ErrNotFound, req.Kind.Prefix(), indexURL))
	}
	a, err := s.fetchNamed(ctx, c, link, req.Destination)
	if err != nil {
		return c.absent(err)
	}
	return c.done(a, nil)
}

// FetchVDForLink infers the VD kind from a data link and runs FetchVD.
func (s *MirrorService) FetchVDForLink(ctx context.Context, link, destination string) (*Artifact, error) {
	return s.FetchVD(ctx, VDRequest{Kind: VDKindFromLink(link), Destination: destination})
}

// FetchVDTemplated expands req.Template at req.Anchor and walks back in time
// until an artifact downloads: one day at a time for the daily info file
// (within 24 hours), otherwise five or one minute at a time within an hour.
func (s *MirrorService) FetchVDTemplated(ctx context.Context, req VDTemplateRequest) (*Artifact, error) {
	c := s.begin(OpFetchVDTemplated)
	if !utils.IsValid(req.Destination) {
		return c.done(nil, invalid("destination is required"))
	}
	if !utils.IsValid(req.Template) {
		return c.done(nil, invalid("template is required"))
	}
	anchor := req.Anchor
	if anchor.IsZero() {
		anchor = s.now()
	}
	anchor = anchor.In(s.loc)

	g := classifyTemplate(req.Template)
	w := minuteWalker(g, anchor)
	tried := map[string]struct{}{}
	var lastErr error

	for i, cursor := range w.cursors() {
		if i > 0 {
			metrics.IncWalkerStep(w.name)
		}
		u := expandVDTemplate(req.Template, cursor, g)
		if _, seen := tried[u]; seen {
			continue
		}
		tried[u] = struct{}{}

		a, err := s.fetchNamed(ctx, c, u, req.Destination)
		if err == nil {
			return c.done(a, nil)
		}
		if !utils.IsAbsence(err) {
			return c.done(nil, err)
		}
		c.log.WithField("url", u).Debug("not available, stepping back")
		lastErr = err
	}
	return c.absent(fmt.Errorf("%w: %s within %s of %s: %w",
		utils.ErrNotFound, req.Template, w.horizon, utils.FormatDashed(anchor), lastErr))
}
