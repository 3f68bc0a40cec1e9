// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

const (
	datePlaceholder = "$date"
	timePlaceholder = "$time"
)

// layout knows the URL shapes of the archive below its two roots.
type layout struct {
	etagRoot string
	vdRoot   string
}

func newLayout(a config.ArchiveConfig) layout {
	return layout{
		etagRoot: strings.TrimRight(a.EtagRoot, "/"),
		vdRoot:   strings.TrimRight(a.VDRoot, "/"),
	}
}

// vdIndexURL: R_vd/yyyyMMdd/
func (l layout) vdIndexURL(date time.Time) string {
	return fmt.Sprintf("%s/%s/", l.vdRoot, utils.FormatCompact(date))
}

// etagDayArchiveURL: R_etag/cat/cat_yyyyMMdd.tar.gz
func (l layout) etagDayArchiveURL(cat string, date time.Time) string {
	return fmt.Sprintf("%s/%s/%s", l.etagRoot, cat, etagArchiveName(cat, date))
}

// etagDayIndexURL: R_etag/CAT/yyyyMMdd/
func (l layout) etagDayIndexURL(cat string, date time.Time) string {
	return fmt.Sprintf("%s/%s/%s/", l.etagRoot, strings.ToUpper(cat), utils.FormatCompact(date))
}

// etagHourIndexURL: R_etag/CAT/yyyyMMdd/HH/
func (l layout) etagHourIndexURL(cat string, date time.Time, hour int) string {
	return fmt.Sprintf("%s/%s/%s/%02d/", l.etagRoot, strings.ToUpper(cat), utils.FormatCompact(date), hour)
}

func etagArchiveName(cat string, date time.Time) string {
	return fmt.Sprintf("%s_%s.tar.gz", cat, utils.FormatCompact(date))
}

// expandVDTemplate substitutes $date (yyyyMMdd) and, below daily
// granularity, $time (HHmm).
func expandVDTemplate(template string, instant time.Time, g granularity) string {
	out := strings.ReplaceAll(template, datePlaceholder, utils.FormatCompact(instant))
	if g == granularityDaily {
		return out
	}
	return strings.ReplaceAll(out, timePlaceholder, instant.Format(utils.ClockLayout))
}
