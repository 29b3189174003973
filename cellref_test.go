// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellNameToCoordinatesRoundTrip(t *testing.T) {
	cases := []struct {
		ref      string
		col, row int
	}{
		{"A1", 1, 1},
		{"B4", 2, 4},
		{"AA12", 27, 12},
		{"Z1", 26, 1},
		{"AB100", 28, 100},
	}
	for _, c := range cases {
		col, row, err := CellNameToCoordinates(c.ref)
		require.NoError(t, err)
		assert.Equal(t, c.col, col, c.ref)
		assert.Equal(t, c.row, row, c.ref)

		back, err := CoordinatesToCellName(c.col, c.row)
		require.NoError(t, err)
		assert.Equal(t, c.ref, back)
	}
}

func TestCellNameToCoordinatesRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "1A", "A", "A0", "A-1", "$A$1x"} {
		_, _, err := CellNameToCoordinates(bad)
		assert.ErrorIs(t, err, ErrBadCellReference, bad)
	}
}

func TestParseRangeSingleCellAndNormalization(t *testing.T) {
	minCol, minRow, maxCol, maxRow, err := parseRange("$B$2")
	require.NoError(t, err)
	assert.Equal(t, 2, minCol)
	assert.Equal(t, 2, minRow)
	assert.Equal(t, 2, maxCol)
	assert.Equal(t, 2, maxRow)

	minCol, minRow, maxCol, maxRow, err = parseRange("D4:B2")
	require.NoError(t, err)
	assert.Equal(t, 2, minCol)
	assert.Equal(t, 2, minRow)
	assert.Equal(t, 4, maxCol)
	assert.Equal(t, 4, maxRow)
}

func TestFormatRangeCollapsesSingleCell(t *testing.T) {
	assert.Equal(t, "A1", formatRange(1, 1, 1, 1))
	assert.Equal(t, "A1:B2", formatRange(1, 1, 2, 2))
}
