// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"fmt"
	"strconv"
	"strings"
)

// CellNameToCoordinates converts an A1-style reference such as "B4" or
// "AA12" into 1-based (col, row). It rejects malformed references with
// ErrBadCellReference (§6.4).
func CellNameToCoordinates(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && isAlpha(ref[i]) {
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadCellReference, ref)
	}
	colPart, rowPart := ref[:i], ref[i:]
	col, err = columnNameToNumber(colPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadCellReference, ref)
	}
	row, err = strconv.Atoi(rowPart)
	if err != nil || row <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadCellReference, ref)
	}
	return col, row, nil
}

// CoordinatesToCellName is the inverse of CellNameToCoordinates.
func CoordinatesToCellName(col, row int) (string, error) {
	if col <= 0 || row <= 0 {
		return "", fmt.Errorf("%w: coordinates (%d,%d) must be positive", ErrBadCellReference, col, row)
	}
	return columnNumberToName(col) + strconv.Itoa(row), nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func columnNameToNumber(s string) (int, error) {
	s = strings.ToUpper(s)
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return 0, ErrBadCellReference
		}
		n = n*26 + int(s[i]-'A'+1)
	}
	if n == 0 {
		return 0, ErrBadCellReference
	}
	return n, nil
}

func columnNumberToName(n int) string {
	var sb strings.Builder
	letters := make([]byte, 0, 4)
	for n > 0 {
		n--
		letters = append(letters, byte('A'+n%26))
		n /= 26
	}
	for i := len(letters) - 1; i >= 0; i-- {
		sb.WriteByte(letters[i])
	}
	return sb.String()
}

// parseRange splits an A1:B2-style range into 1-based bounds. A single
// cell reference ("A1") is treated as a 1x1 range.
func parseRange(rng string) (minCol, minRow, maxCol, maxRow int, err error) {
	parts := strings.SplitN(rng, ":", 2)
	minCol, minRow, err = CellNameToCoordinates(stripAbs(parts[0]))
	if err != nil {
		return
	}
	if len(parts) == 1 {
		return minCol, minRow, minCol, minRow, nil
	}
	maxCol, maxRow, err = CellNameToCoordinates(stripAbs(parts[1]))
	if err != nil {
		return
	}
	if maxCol < minCol {
		minCol, maxCol = maxCol, minCol
	}
	if maxRow < minRow {
		minRow, maxRow = maxRow, minRow
	}
	return
}

func stripAbs(ref string) string {
	return strings.ReplaceAll(ref, "$", "")
}

func formatRange(minCol, minRow, maxCol, maxRow int) string {
	start, _ := CoordinatesToCellName(minCol, minRow)
	if minCol == maxCol && minRow == maxRow {
		return start
	}
	end, _ := CoordinatesToCellName(maxCol, maxRow)
	return start + ":" + end
}
