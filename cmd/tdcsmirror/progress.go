// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
)

// progressBars draws one byte bar per key on w.
type progressBars struct {
	mu   sync.Mutex
	w    io.Writer
	bars map[string]*progressbar.ProgressBar
}

func newProgressHook(w io.Writer) *config.ProgressHook {
	p := &progressBars{w: w, bars: map[string]*progressbar.ProgressBar{}}
	return &config.ProgressHook{
		OnStart:    p.start,
		OnProgress: p.progress,
		OnDone:     p.done,
	}
}

func (p *progressBars) start(key string, total int64) {
	if total <= 0 {
		total = -1
	}
	description := filepath.Base(key)
	if len(description) > 40 {
		description = description[:37] + "..."
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	p.mu.Lock()
	p.bars[key] = bar
	p.mu.Unlock()
}

func (p *progressBars) progress(key string, written, _ int64) {
	p.mu.Lock()
	bar := p.bars[key]
	p.mu.Unlock()
	if bar != nil {
		_ = bar.Set64(written)
	}
}

func (p *progressBars) done(key string, _ int64, _ time.Duration) {
	p.mu.Lock()
	bar := p.bars[key]
	delete(p.bars, key)
	p.mu.Unlock()
	if bar != nil {
		_ = bar.Finish()
	}
}
