// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// Download streams req.SourceURL into req.Destination. Remote, disk and
// missing-name failures are returned; a malformed URL is logged and yields
// the absent result.
func (s *MirrorService) Download(ctx context.Context, req DownloadRequest) (*Artifact, error) {
	c := s.begin(OpDownload)
	if !utils.IsValid(req.Destination) {
		return c.done(nil, invalid("destination is required"))
	}

	path, size, err := utils.DownloadHTTPFile(ctx, s.http, s.fs, req.SourceURL, req.Destination, req.FileName, c.opts)
	if err != nil {
		if errors.Is(err, utils.ErrMalformedURL) {
			c.log.WithError(err).Error("malformed url")
			return c.done(nil, nil)
		}
		return c.done(nil, err)
	}
	return c.done(fileArtifact(path, size, req.SourceURL), nil)
}

// DownloadToPath streams sourceURL into exactly outputPath.
func (s *MirrorService) DownloadToPath(ctx context.Context, sourceURL, outputPath string) (*Artifact, error) {
	if !utils.IsValid(outputPath) || filepath.Base(outputPath) == string(filepath.Separator) {
		return nil, invalid("output path is required")
	}
	return s.Download(ctx, DownloadRequest{
		SourceURL:   sourceURL,
		Destination: filepath.Dir(outputPath),
		FileName:    filepath.Base(outputPath),
	})
}
