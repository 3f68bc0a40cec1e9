// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/logging"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// ObjectStore is the subset of config.S3Client used to publish artifacts.
type ObjectStore interface {
	utils.ObjectUploader
	ListFilesAll(ctx context.Context, bucket string, prefix string) ([]config.S3File, error)
}

type TransferService struct {
	store ObjectStore
	fs    afero.Fs
	log   logging.Interface
	hook  *config.ProgressHook
}

type Option func(*TransferService)

func WithFs(fs afero.Fs) Option {
	return func(s *TransferService) { s.fs = fs }
}

func WithLogger(l logging.Interface) Option {
	return func(s *TransferService) { s.log = l }
}

func WithProgressHook(h *config.ProgressHook) Option {
	return func(s *TransferService) { s.hook = h }
}

// WithObjectStore skips the S3 client construction.
func WithObjectStore(store ObjectStore) Option {
	return func(s *TransferService) { s.store = store }
}

func NewTransferService(ctx context.Context, conf config.Config, opts ...Option) (*TransferService, error) {
	s := &TransferService{}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.log == nil {
		s.log = logging.Default()
	}
	if s.store != nil {
		return s, nil
	}

	if err := conf.S3.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 config: %w", err)
	}
	s3c, err := config.NewS3Client(ctx, conf.S3)
	if err != nil {
		return nil, fmt.Errorf("S3 init failed: %w", err)
	}
	s.store = s3c
	return s, nil
}
