// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestColumnWidthPaddingRoundTrip is P8: applyColumnPadding then
// stripColumnPadding must return the original width within 1e-4.
func TestColumnWidthPaddingRoundTrip(t *testing.T) {
	for _, want := range []float64{0, 8.43, 10, 20.5, 42.1234} {
		stored := applyColumnPadding(want)
		got := stripColumnPadding(stored)
		assert.InDelta(t, want, got, 1e-4)
	}
}

func TestClassifyNumFmtBuiltInDates(t *testing.T) {
	assert.True(t, classifyNumFmt(14, builtInNumFmt[14])) // m/d/yyyy
	assert.True(t, classifyNumFmt(21, builtInNumFmt[21])) // h:mm:ss
	assert.False(t, classifyNumFmt(2, builtInNumFmt[2]))  // 0.00
	assert.False(t, classifyNumFmt(0, "General"))
}

func TestClassifyNumFmtCustomDateCode(t *testing.T) {
	assert.True(t, classifyNumFmt(164, "yyyy-mm-dd"))
	assert.False(t, classifyNumFmt(164, "#,##0.00"))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.2346, roundTo(1.23456789, 4))
	assert.True(t, math.Abs(roundTo(0, 4)) < 1e-9)
}

func TestTimeToExcelSerial1900Epoch(t *testing.T) {
	// 1900-03-01 is serial 61 under Excel's 1900 date system, which
	// (per its well-known leap-year bug) counts a fictitious 1900-02-29.
	// The fixed-epoch formula used here matches Excel for every date from
	// 1900-03-01 onward, which covers all real-world data.
	n := timeToExcelSerial(time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC), false)
	assert.InDelta(t, 61.0, n, 1e-9)

	// A well-known reference point: 2008-07-05 is Excel serial 39634.
	n = timeToExcelSerial(time.Date(2008, 7, 5, 0, 0, 0, 0, time.UTC), false)
	assert.InDelta(t, 39634.0, n, 1e-9)
}

func TestTimeToExcelSerial1904Epoch(t *testing.T) {
	n := timeToExcelSerial(time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC), true)
	assert.InDelta(t, 0.0, n, 1e-9)
}

func TestParseISODateTimeVariants(t *testing.T) {
	cases := []string{
		"2024-01-01",
		"2024-01-01T00:00:00",
		"2024-01-01T00:00:00Z",
	}
	for _, v := range cases {
		parsed, err := parseISODateTime(v)
		require.NoError(t, err)
		assert.Equal(t, 2024, parsed.Year())
	}

	_, err := parseISODateTime("not-a-date")
	assert.Error(t, err)
}
