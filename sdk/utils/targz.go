// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// ArchiveBase strips .tar.gz or .tgz from a path.
func ArchiveBase(archive string) string {
	for _, ext := range []string{".tar.gz", ".tgz"} {
		if strings.HasSuffix(archive, ext) {
			return strings.TrimSuffix(archive, ext)
		}
	}
	return strings.TrimSuffix(archive, filepath.Ext(archive))
}

// DecompressTarGz extracts archive into a sibling directory named after it
// (M03A_20170706.tar.gz -> M03A_20170706/) and returns that directory. The
// archive is removed afterwards when deleteAfter is set and extraction
// succeeded.
func DecompressTarGz(fs afero.Fs, archive string, deleteAfter bool) (string, error) {
	dir := ArchiveBase(archive)
	if err := extractTarGz(fs, archive, dir); err != nil {
		return "", fmt.Errorf("decompress %s: %w: %w", archive, ErrIOFailure, err)
	}
	if deleteAfter {
		if err := fs.Remove(archive); err != nil {
			return "", fmt.Errorf("remove %s: %w: %w", archive, ErrIOFailure, err)
		}
	}
	return dir, nil
}

func extractTarGz(fs afero.Fs, archive, dir string) error {
	f, err := fs.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gzipReader, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	root := filepath.Clean(dir) + string(os.PathSeparator)

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		target := filepath.Join(dir, header.Name)
		if target != filepath.Clean(dir) && !strings.HasPrefix(target, root) {
			return fmt.Errorf("entry %q escapes %s", header.Name, dir)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeEntry(fs, target, tarReader); err != nil {
				return err
			}
		}
	}
}

func writeEntry(fs afero.Fs, target string, r io.Reader) error {
	out, err := fs.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return out.Close()
}
