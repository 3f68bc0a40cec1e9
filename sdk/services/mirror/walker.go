// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"strings"
	"time"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/metrics"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

const (
	dailyInfoFile = "vd_info_0000.xml.gz"

	minuteHorizon = 60 * time.Minute
	dayHorizon    = 24 * time.Hour
	hourHorizon   = 24 * time.Hour

	// one-minute artifacts are published with a lag
	publishLag = 5 * time.Minute
)

type granularity int

const (
	granularityOneMinute granularity = iota
	granularityFiveMinute
	granularityDaily
)

// classifyTemplate decides the walk from the template's file name.
func classifyTemplate(template string) granularity {
	tail := utils.LastSegment(template)
	switch {
	case tail == dailyInfoFile:
		return granularityDaily
	case strings.Contains(tail, "value5"):
		return granularityFiveMinute
	default:
		return granularityOneMinute
	}
}

// walker enumerates instants backwards from a start, never further than
// horizon before origin.
type walker struct {
	name    string
	origin  time.Time
	start   time.Time
	horizon time.Duration
	step    func(time.Time) time.Time
}

// cursors lists every instant the walker may visit, newest first.
func (w walker) cursors() []time.Time {
	var out []time.Time
	for c := w.start; w.within(c); c = w.step(c) {
		out = append(out, c)
	}
	return out
}

// minuteWalker is the walk for VD templates anchored at anchor.
func minuteWalker(g granularity, anchor time.Time) walker {
	w := walker{name: metrics.WalkerMinute, origin: anchor}
	minute := anchor.Truncate(time.Minute)
	switch g {
	case granularityDaily:
		w.start = anchor
		w.horizon = dayHorizon
		w.step = func(t time.Time) time.Time { return t.AddDate(0, 0, -1) }
	case granularityFiveMinute:
		w.start = minute.Add(-time.Duration(minute.Minute()%5) * time.Minute)
		w.horizon = minuteHorizon
		w.step = func(t time.Time) time.Time { return t.Add(-5 * time.Minute) }
	default:
		w.start = minute.Add(-publishLag)
		w.horizon = minuteHorizon
		w.step = func(t time.Time) time.Time { return t.Add(-time.Minute) }
	}
	return w
}

// hourWalker steps back one hour at a time from the hour containing instant.
func hourWalker(instant time.Time) walker {
	start := time.Date(instant.Year(), instant.Month(), instant.Day(), instant.Hour(), 0, 0, 0, instant.Location())
	return walker{
		name:    metrics.WalkerHour,
		origin:  start,
		start:   start,
		horizon: hourHorizon,
		step:    func(t time.Time) time.Time { return t.Add(-time.Hour) },
	}
}

// within reports whether t is still inside the walker's window.
func (w walker) within(t time.Time) bool {
	return !t.After(w.origin) && w.origin.Sub(t) <= w.horizon
}
