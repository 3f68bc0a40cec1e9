// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// Area selects which half of the archive a listing reads.
type Area int

const (
	AreaVD Area = iota
	AreaEtag
)

// ListRequest names one archive directory. For AreaEtag a negative Hour
// lists the day directory itself.
type ListRequest struct {
	Area     Area
	Category string
	Date     time.Time
	Hour     int
}

// Entry is one child of an archive directory.
type Entry struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	IsDir bool   `json:"is_dir"`
}

// List returns the children of one archive directory, parent excluded.
// Unlike the fetch operations every failure is returned.
func (s *MirrorService) List(ctx context.Context, req ListRequest) ([]Entry, error) {
	indexURL, err := s.indexURL(req)
	if err != nil {
		return nil, err
	}
	links, err := s.list(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	s.log.WithField("url", indexURL).Debugf("%d entries", len(links))
	return entries(utils.SkipParent(links)), nil
}

// ListEtagDay lists every hour directory of one day and returns the files
// together with the number of hours the archive served.
func (s *MirrorService) ListEtagDay(ctx context.Context, category string, date time.Time) ([]Entry, int, error) {
	var (
		all    []Entry
		served int
	)
	for hour := 0; hour < 24; hour++ {
		found, err := s.List(ctx, ListRequest{Area: AreaEtag, Category: category, Date: date, Hour: hour})
		if err != nil {
			if errors.Is(err, utils.ErrRemoteUnavailable) {
				continue
			}
			return nil, 0, err
		}
		served++
		all = append(all, found...)
	}
	return all, served, nil
}

func (s *MirrorService) indexURL(req ListRequest) (string, error) {
	day := utils.StartOfDay(req.Date.In(s.loc))
	if req.Date.IsZero() {
		day = utils.StartOfDay(s.now().In(s.loc))
	}
	switch req.Area {
	case AreaVD:
		return s.layout.vdIndexURL(day), nil
	case AreaEtag:
		if !categoryPattern.MatchString(req.Category) {
			return "", invalid("category %q", req.Category)
		}
		if req.Hour > 23 {
			return "", invalid("hour %d out of range", req.Hour)
		}
		if req.Hour < 0 {
			return s.layout.etagDayIndexURL(req.Category, day), nil
		}
		return s.layout.etagHourIndexURL(req.Category, day, req.Hour), nil
	default:
		return "", invalid("unknown area %d", req.Area)
	}
}

func entries(links []string) []Entry {
	out := make([]Entry, 0, len(links))
	for _, l := range links {
		out = append(out, Entry{
			Name:  utils.LastSegment(l),
			URL:   l,
			IsDir: strings.HasSuffix(l, "/"),
		})
	}
	return out
}
