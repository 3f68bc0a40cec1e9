// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taipei(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	return loc
}

func TestClassifyTemplate(t *testing.T) {
	tests := []struct {
		template string
		want     granularity
	}{
		{"http://h/history/vd/$date/vd_info_0000.xml.gz", granularityDaily},
		{"http://h/history/vd/$date/vd_value5_$time.xml.gz", granularityFiveMinute},
		{"http://h/history/vd/$date/vd_value_$time.xml.gz", granularityOneMinute},
		{"http://h/history/vd/$date/vd_info_$time.xml.gz", granularityOneMinute},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTemplate(tt.template))
		})
	}
}

func TestMinuteWalkerFiveMinute(t *testing.T) {
	anchor := time.Date(2024, 1, 15, 12, 37, 0, 0, taipei(t))
	cursors := minuteWalker(granularityFiveMinute, anchor).cursors()

	require.Len(t, cursors, 12)
	assert.Equal(t, "1235", cursors[0].Format("1504"))
	assert.Equal(t, "1230", cursors[1].Format("1504"))
	assert.Equal(t, "1140", cursors[len(cursors)-1].Format("1504"))
	for _, c := range cursors {
		assert.LessOrEqual(t, anchor.Sub(c), 60*time.Minute)
		assert.Zero(t, c.Minute()%5)
	}
}

func TestMinuteWalkerOneMinute(t *testing.T) {
	anchor := time.Date(2024, 1, 15, 12, 37, 0, 0, taipei(t))
	cursors := minuteWalker(granularityOneMinute, anchor).cursors()

	require.Len(t, cursors, 56)
	assert.Equal(t, "1232", cursors[0].Format("1504"))
	assert.Equal(t, "1231", cursors[1].Format("1504"))
	assert.Equal(t, "1230", cursors[2].Format("1504"))
	assert.Equal(t, "1137", cursors[len(cursors)-1].Format("1504"))
}

func TestMinuteWalkerSecondsNeverCrossHorizon(t *testing.T) {
	anchor := time.Date(2024, 1, 15, 12, 37, 30, 0, taipei(t))
	for _, g := range []granularity{granularityOneMinute, granularityFiveMinute, granularityDaily} {
		for _, c := range minuteWalker(g, anchor).cursors() {
			limit := 60 * time.Minute
			if g == granularityDaily {
				limit = 24 * time.Hour
			}
			assert.LessOrEqual(t, anchor.Sub(c), limit)
		}
	}
}

func TestMinuteWalkerDaily(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 9, 0, 0, 0, taipei(t))
	cursors := minuteWalker(granularityDaily, anchor).cursors()
	require.Len(t, cursors, 2)
	assert.Equal(t, "20240301", cursors[0].Format("20060102"))
	assert.Equal(t, "20240229", cursors[1].Format("20060102"))
}

func TestHourWalkerWrapsToPreviousDay(t *testing.T) {
	instant := time.Date(2017, 4, 6, 0, 10, 0, 0, taipei(t))
	w := hourWalker(instant)
	cursors := w.cursors()

	require.Len(t, cursors, 25)
	assert.Equal(t, "2017-04-06 00", cursors[0].Format("2006-01-02 15"))
	assert.Equal(t, "2017-04-05 23", cursors[1].Format("2006-01-02 15"))
	assert.Equal(t, "2017-04-05 00", cursors[24].Format("2006-01-02 15"))
	assert.False(t, w.within(w.step(cursors[24])))
}
