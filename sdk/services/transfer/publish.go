// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// Publish uploads a mirrored file or directory under req.Destination.
// Directory entries keep their relative layout below the prefix.
func (s *TransferService) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	local := req.Path
	if req.Artifact != nil {
		local = req.Artifact.Path
	}
	if !utils.IsValid(local) {
		return nil, fmt.Errorf("%w: nothing to publish", utils.ErrInvalidRequest)
	}
	dest, err := utils.ParsePath(req.Destination)
	if err != nil {
		return nil, err
	}

	log := s.log.WithField("destination", dest.String())
	log.Infof("publishing %s", local)

	files, err := utils.UploadTree(ctx, s.store, s.fs, local, dest, s.hook)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	res := &PublishResult{Destination: dest.String(), Files: files}
	for _, f := range files {
		res.Size += f.Size
		if req.Verbose {
			log.Infof("uploaded %s -> %s (%s)", filepath.Base(f.LocalPath), f.Key, utils.HumanBytes(f.Size))
		}
	}

	if req.Verify {
		if err := s.verify(ctx, dest, files); err != nil {
			return res, err
		}
	}
	log.Infof("published %d files, %s", len(files), utils.HumanBytes(res.Size))
	return res, nil
}

// verify lists the destination prefix and checks every uploaded key with
// its size.
func (s *TransferService) verify(ctx context.Context, dest *utils.ParsedPath, files []utils.UploadedFile) error {
	listed, err := s.store.ListFilesAll(ctx, dest.Host, dest.Path)
	if err != nil {
		return fmt.Errorf("verify listing failed: %w", err)
	}
	sizes := make(map[string]int64, len(listed))
	for _, f := range listed {
		sizes[f.Path] = f.Size
	}
	for _, f := range files {
		size, ok := sizes[f.Key]
		if !ok {
			return fmt.Errorf("verify: %s missing from s3://%s", f.Key, dest.Host)
		}
		if size != f.Size {
			return fmt.Errorf("verify: %s has %d bytes, uploaded %d", f.Key, size, f.Size)
		}
	}
	return nil
}
