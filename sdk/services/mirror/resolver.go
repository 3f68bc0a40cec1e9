// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"strings"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// list fetches an auto-index page and returns its entries, parent first.
func (s *MirrorService) list(ctx context.Context, indexURL string) ([]string, error) {
	resp, err := utils.Fetch(ctx, s.http, indexURL)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	entries, err := utils.ListChildren(indexURL, resp.Body)
	if err != nil {
		if errors.Is(err, utils.ErrMalformedURL) {
			return nil, err
		}
		return nil, &utils.RemoteError{URL: indexURL, StatusCode: resp.StatusCode, Cause: err}
	}
	return entries, nil
}

// fetchNamed streams rawURL into destDir, naming the file after the
// attachment name or, failing that, the last URL segment.
func (s *MirrorService) fetchNamed(ctx context.Context, c *call, rawURL, destDir string) (*Artifact, error) {
	resp, err := utils.Fetch(ctx, s.http, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	name := resp.SuggestedFileName()
	if name == "" {
		name = utils.LastSegment(rawURL)
	}
	path, size, err := utils.SaveResponse(s.fs, resp, destDir, name, c.opts)
	if err != nil {
		return nil, err
	}
	c.log.WithField("url", rawURL).Debugf("saved %s", utils.HumanBytes(size))
	return fileArtifact(path, size, rawURL), nil
}

// firstMatching returns the first listing child, after the parent entry,
// whose file name contains prefix.
func firstMatching(entries []string, prefix string) (string, bool) {
	for _, e := range utils.SkipParent(entries) {
		if strings.Contains(utils.LastSegment(e), prefix) {
			return e, true
		}
	}
	return "", false
}
