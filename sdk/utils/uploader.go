// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
)

// ObjectUploader is the part of config.S3Client used for publishing.
type ObjectUploader interface {
	UploadWithProgress(ctx context.Context, bucket, key string, body io.ReadSeeker, size int64, hook *config.ProgressHook) error
}

// UploadedFile describes one object written by UploadTree.
type UploadedFile struct {
	LocalPath string `json:"local_path"`
	Key       string `json:"key"`
	Size      int64  `json:"size"`
}

// UploadTree uploads localPath, a file or a directory walked in lexical
// order, under dest. Directory entries keep their path relative to
// localPath; a single file keeps its base name.
func UploadTree(
	ctx context.Context,
	client ObjectUploader,
	fs afero.Fs,
	localPath string,
	dest *ParsedPath,
	hook *config.ProgressHook,
) ([]UploadedFile, error) {
	info, err := fs.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	if !info.IsDir() {
		f, err := uploadOne(ctx, client, fs, localPath, dest.Key(filepath.Base(localPath)), dest.Host, hook)
		if err != nil {
			return nil, err
		}
		return []UploadedFile{f}, nil
	}

	files, err := ListFiles(fs, localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate local directory: %w", err)
	}
	uploaded := make([]UploadedFile, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}
		rel, err := filepath.Rel(localPath, path)
		if err != nil {
			return uploaded, fmt.Errorf("relative path error: %w", err)
		}
		f, err := uploadOne(ctx, client, fs, path, dest.Key(filepath.ToSlash(rel)), dest.Host, hook)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, f)
	}
	return uploaded, nil
}

func uploadOne(
	ctx context.Context,
	client ObjectUploader,
	fs afero.Fs,
	path, key, bucket string,
	hook *config.ProgressHook,
) (UploadedFile, error) {
	file, err := fs.Open(path)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("open file error: %w", err)
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return UploadedFile{}, fmt.Errorf("stat error on %s: %w", path, err)
	}
	if err := client.UploadWithProgress(ctx, bucket, key, file, st.Size(), hook); err != nil {
		return UploadedFile{}, fmt.Errorf("upload error (%s): %w", path, err)
	}
	return UploadedFile{LocalPath: path, Key: key, Size: st.Size()}, nil
}
