// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
)

func TestLayoutURLs(t *testing.T) {
	l := newLayout(config.DefaultConfig().Archive)
	day := time.Date(2017, 7, 6, 15, 0, 0, 0, taipei(t))

	assert.Equal(t, "http://210.241.131.253/history/vd/20170706/", l.vdIndexURL(day))
	assert.Equal(t, "http://210.241.131.253/history/TDCS/M03A/M03A_20170706.tar.gz", l.etagDayArchiveURL("M03A", day))
	assert.Equal(t, "http://210.241.131.253/history/TDCS/M04A/20170706/05/", l.etagHourIndexURL("m04a", day, 5))
	assert.Equal(t, "http://210.241.131.253/history/TDCS/M04A/20170706/", l.etagDayIndexURL("m04a", day))

	trailing := newLayout(config.ArchiveConfig{EtagRoot: "http://mirror/TDCS/", VDRoot: "http://mirror/vd/"})
	assert.Equal(t, "http://mirror/vd/20170706/", trailing.vdIndexURL(day))
}

func TestExpandVDTemplate(t *testing.T) {
	at := time.Date(2024, 1, 15, 9, 5, 0, 0, taipei(t))

	assert.Equal(t, "http://h/vd/20240115/vd_value_20240115_0905.xml.gz",
		expandVDTemplate("http://h/vd/$date/vd_value_$date_$time.xml.gz", at, granularityOneMinute))
	assert.Equal(t, "http://h/vd/20240115/vd_info_0000.xml.gz",
		expandVDTemplate("http://h/vd/$date/vd_info_0000.xml.gz", at, granularityDaily))
	assert.Equal(t, "http://h/vd/20240115/$time.xml",
		expandVDTemplate("http://h/vd/$date/$time.xml", at, granularityDaily))
}

func TestVDKinds(t *testing.T) {
	assert.Equal(t, VDValue1Min, VDKindFromLink("http://h/vd/20240115/vd_value_0800.xml.gz"))
	assert.Equal(t, VDValue5Min, VDKindFromLink("http://h/vd/20240115/vd_value5_0800.xml.gz"))
	assert.Equal(t, VDInfo, VDKindFromLink("http://h/vd/20240115/vd_info_0000.xml.gz"))
	assert.Equal(t, VDInfo, VDKindFromLink("anything"))

	k, err := ParseVDKind("5")
	assert.NoError(t, err)
	assert.Equal(t, "vd_value5_", k.Prefix())
	_, err = ParseVDKind("hourly")
	assert.Error(t, err)
}
