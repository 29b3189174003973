// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/nfp"
)

// isBuiltInDateFmtID reports whether a built-in numFmtId (ECMA-376
// §18.8.30) represents a date, time or datetime display. Grounded on
// TsubasaBE-go-xlsb/internal/dateformat.IsBuiltInDateID's ID ranges.
func isBuiltInDateFmtID(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a (possibly custom) number format code
// denotes a date/time display, by tokenizing it with nfp and checking for
// date/time or elapsed-time tokens in any section. This is what §4.2.5
// means by "derived at read time from the cell's number format".
func isDateFormatCode(code string) bool {
	if code == "" || code == "General" {
		return false
	}
	parser := nfp.NumberFormatParser()
	sections := parser.Parse(code)
	for _, sec := range sections {
		for _, tok := range sec.Items {
			switch tok.TType {
			case nfp.TokenTypeDateTimes, nfp.TokenTypeElapsedDateTimes:
				return true
			}
		}
	}
	return false
}

// classifyNumFmt resolves whether numFmtID/code represents a date-typed
// display, checking the built-in table first and falling back to the nfp
// tokenizer for custom codes (id >= 164).
func classifyNumFmt(numFmtID int, code string) bool {
	if code != "" {
		return isDateFormatCode(code)
	}
	return isBuiltInDateFmtID(numFmtID)
}

// Column-width font-metric padding (§4.2.5 / §4.3). Excel stores a column
// width in "characters of the workbook's default font" plus a fixed pixel
// padding baked in via the Maximum Digit Width of Calibri 11pt. The
// commonly cited constant is 7 pixels of padding at 96 DPI, which works
// out to the ratios below for width<->stored conversion.
const (
	calibri11MDW   = 7.0
	colWidthPadPx  = 5.0
)

// stripColumnPadding undoes Excel's font-metric padding to recover the
// user-meaningful width (§4.2.5), rounded to 4 decimal places per §8 (P8).
// The padding is expressed in Maximum Digit Width units so that it is the
// exact inverse of applyColumnPadding: encode then decode must return the
// original width within 1e-4, which a floor-based pixel-rounding formula
// (Excel's actual algorithm) cannot guarantee bit-for-bit.
func stripColumnPadding(stored float64) float64 {
	user := stored - colWidthPadPx/calibri11MDW
	if user < 0 {
		user = 0
	}
	return roundTo(user, 4)
}

// applyColumnPadding is the emit-side inverse of stripColumnPadding (§4.3
// "columns are emitted with Excel's font-metric padding added back").
func applyColumnPadding(width float64) float64 {
	return roundTo(width+colWidthPadPx/calibri11MDW, 4)
}

func roundTo(v float64, places int) float64 {
	mul := math.Pow(10, float64(places))
	return math.Round(v*mul) / mul
}

// excelEpoch1900 is day zero of the 1900 date system: Excel's serial 1 is
// 1900-01-01, and the system carries forward Lotus 1-2-3's fictitious
// 1900-02-29, so the epoch anchor sits one day before the nominal start.
var excelEpoch1900 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
var excelEpoch1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// timeToExcelSerial converts a calendar instant to the Excel serial-date
// value used by numeric date cells, honoring the workbook's date system
// (§4.2.5: "date-system (1900 vs 1904) is read from workbook properties").
func timeToExcelSerial(t time.Time, date1904 bool) float64 {
	epoch := excelEpoch1900
	if date1904 {
		epoch = excelEpoch1904
	}
	return t.UTC().Sub(epoch).Hours() / 24
}

// isoDateLayouts are the ISO 8601 forms ST_CellType="d" cells are allowed
// to carry in <v> (ECMA-376 §18.17.2), tried in order from most to least
// specific.
var isoDateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseISODateTime parses a t="d" cell's <v> content, which ECMA-376
// mandates be an ISO 8601 date or date-time string rather than a serial
// number.
func parseISODateTime(v string) (time.Time, error) {
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("xlengine: invalid ISO 8601 date cell value %q", v)
}
