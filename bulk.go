// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

// ReadRange materializes every cell in the rectangular A1-style range as a
// dense row-major 2-D slice, bypassing the per-cell lazy Cell proxy. This
// is the bulk counterpart to repeated Sheet.Cell calls, for callers moving
// whole blocks of data (§4.5.5's read_sheet_values).
func (s *Sheet) ReadRange(rangeRef string) ([][]CellValue, error) {
	minCol, minRow, maxCol, maxRow, err := parseRange(rangeRef)
	if err != nil {
		return nil, err
	}
	out := make([][]CellValue, maxRow-minRow+1)
	for r := minRow; r <= maxRow; r++ {
		row := make([]CellValue, maxCol-minCol+1)
		for c := minCol; c <= maxCol; c++ {
			v, _ := s.data.CellGet(r, c)
			row[c-minCol] = v
		}
		out[r-minRow] = row
	}
	return out, nil
}

// WriteRange writes a dense row-major 2-D slice of values starting at the
// top-left cell named origin, preserving each touched cell's existing
// style. Rows/columns may be ragged; shorter rows simply leave the
// remaining columns in that row untouched (§4.5.5's write_sheet_values).
func (s *Sheet) WriteRange(origin string, values [][]CellValue) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	startCol, startRow, err := CellNameToCoordinates(origin)
	if err != nil {
		return err
	}
	for ri, row := range values {
		for ci, v := range row {
			s.data.CellSet(startRow+ri, startCol+ci, v, nil)
		}
	}
	return nil
}
