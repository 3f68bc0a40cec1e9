// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/logging"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/metrics"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// Operation names used in logs and metrics.
const (
	OpDownload         = "download"
	OpFetchVD          = "fetch_vd"
	OpFetchVDTemplated = "fetch_vd_templated"
	OpMirrorEtagDay    = "mirror_etag_day"
	OpMirrorEtagHour   = "mirror_etag_hour"
	OpFetchEtagNearest = "fetch_etag_nearest"
)

// MirrorService locates, downloads and unpacks TDCS archive artifacts.
// Calls are synchronous and safe for concurrent use.
type MirrorService struct {
	http       config.ArchiveHTTP
	httpClient *http.Client
	fs         afero.Fs
	log        logging.Interface
	now        func() time.Time
	loc        *time.Location
	layout     layout
	hook       *config.ProgressHook
	cleanup    bool
	bufferSize atomic.Int64
	defaultBuf int
}

// Option configures a MirrorService.
type Option func(*MirrorService) error

func WithLogger(l logging.Interface) Option {
	return func(s *MirrorService) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		s.log = l
		return nil
	}
}

func WithFs(fs afero.Fs) Option {
	return func(s *MirrorService) error {
		if fs == nil {
			return errors.New("filesystem cannot be nil")
		}
		s.fs = fs
		return nil
	}
}

// WithClock replaces time.Now; "today" and the default anchors derive from it.
func WithClock(now func() time.Time) Option {
	return func(s *MirrorService) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		s.now = now
		return nil
	}
}

// WithHTTPClient sets the client wrapped by the archive transport.
func WithHTTPClient(c *http.Client) Option {
	return func(s *MirrorService) error {
		s.httpClient = c
		return nil
	}
}

// WithArchiveHTTP replaces the archive transport entirely.
func WithArchiveHTTP(c config.ArchiveHTTP) Option {
	return func(s *MirrorService) error {
		if c == nil {
			return errors.New("archive client cannot be nil")
		}
		s.http = c
		return nil
	}
}

func WithProgressHook(h *config.ProgressHook) Option {
	return func(s *MirrorService) error {
		s.hook = h
		return nil
	}
}

func NewMirrorService(_ context.Context, conf config.Config, opts ...Option) (*MirrorService, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid archive config: %w", err)
	}
	loc, err := conf.Archive.Location()
	if err != nil {
		return nil, err
	}

	s := &MirrorService{
		fs:         afero.NewOsFs(),
		now:        time.Now,
		loc:        loc,
		layout:     newLayout(conf.Archive),
		cleanup:    conf.Archive.CleanupPartial,
		defaultBuf: conf.Archive.EffectiveBufferSize(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(s); err != nil {
			return nil, err
		}
	}
	if s.log == nil {
		s.log = logging.Default()
	}
	if s.http == nil {
		s.http = config.NewArchiveHTTP(s.httpClient, conf.Archive)
	}
	s.bufferSize.Store(int64(s.defaultBuf))
	return s, nil
}

// SetBufferSize changes the streaming chunk size for subsequent calls;
// n <= 0 restores the configured size.
func (s *MirrorService) SetBufferSize(n int) {
	if n <= 0 {
		n = s.defaultBuf
	}
	s.bufferSize.Store(int64(n))
}

func (s *MirrorService) BufferSize() int {
	return int(s.bufferSize.Load())
}

func (s *MirrorService) streamOptions() utils.StreamOptions {
	return utils.StreamOptions{
		BufferSize:     s.BufferSize(),
		Hook:           s.hook,
		CleanupPartial: s.cleanup,
	}
}

// call carries the per-invocation state of a facade method.
type call struct {
	op    string
	log   logging.Interface
	opts  utils.StreamOptions
	start time.Time
}

func (s *MirrorService) begin(op string) *call {
	return &call{
		op:    op,
		log:   s.log.WithField(utils.RunId, utils.NewRunID()).WithField("operation", op),
		opts:  s.streamOptions(),
		start: time.Now(),
	}
}

func (c *call) done(a *Artifact, err error) (*Artifact, error) {
	metrics.ObserveOperationDuration(c.op, time.Since(c.start))
	switch {
	case err != nil:
		c.log.WithError(err).Error("operation failed")
	case a == nil:
		c.log.Info("no artifact produced")
	default:
		metrics.IncArtifact(c.op)
		c.log.WithField("path", a.Path).WithField("size", a.Size).Info("artifact ready")
	}
	return a, err
}

// absent turns taxonomy failures into the absent result; cancellation and
// caller errors are returned as is.
func (c *call) absent(err error) (*Artifact, error) {
	if utils.IsAbsence(err) {
		c.log.WithError(err).Warn("artifact unavailable")
		return c.done(nil, nil)
	}
	return c.done(nil, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", utils.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func fileArtifact(path string, size int64, source string) *Artifact {
	return &Artifact{Path: path, Size: size, SourceURL: source, Files: []string{path}}
}

func (s *MirrorService) dirArtifact(dir, source string) (*Artifact, error) {
	files, err := utils.ListFiles(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrIOFailure, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	a := &Artifact{Path: dir, IsDir: true, SourceURL: source, Files: files}
	for _, f := range files {
		if st, err := s.fs.Stat(f); err == nil {
			a.Size += st.Size()
		}
	}
	return a, nil
}
