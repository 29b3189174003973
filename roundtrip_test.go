// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveAndReload writes wb to an in-memory buffer and reopens it read-only,
// the in-process equivalent of load(save(W)) used throughout §8.
func saveAndReload(t *testing.T, wb *Workbook) *Workbook {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, wb.SaveTo(&buf))
	reloaded, err := OpenReader(bytes.NewReader(buf.Bytes()), ReadOnly)
	require.NoError(t, err)
	return reloaded
}

// TestRoundTripValues is P1 / scenario S1: every value type round-trips
// through save/load with its type and content intact.
func TestRoundTripValues(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, mustCell(t, sheet, "A1").SetString("Hello"))
	require.NoError(t, mustCell(t, sheet, "A2").SetNumber(3.14))
	require.NoError(t, mustCell(t, sheet, "A3").SetValue(CellValue{Type: CellBool, Bool: true}))
	require.NoError(t, mustCell(t, sheet, "A4").SetFormula("=A2*2"))
	require.NoError(t, mustCell(t, sheet, "A5").SetValue(CellValue{Type: CellError, ErrorCode: "#DIV/0!"}))

	reloaded := saveAndReload(t, wb)
	rs, err := reloaded.Sheet("Sheet1")
	require.NoError(t, err)

	a1 := mustCell(t, rs, "A1").Value()
	assert.Equal(t, CellString, a1.Type)
	assert.Equal(t, "Hello", a1.Str)

	a2 := mustCell(t, rs, "A2").Value()
	assert.Equal(t, CellNumber, a2.Type)
	assert.InDelta(t, 3.14, a2.Num, 1e-9)

	a3 := mustCell(t, rs, "A3").Value()
	assert.Equal(t, CellBool, a3.Type)
	assert.True(t, a3.Bool)

	a4 := mustCell(t, rs, "A4").Value()
	assert.Equal(t, CellFormula, a4.Type)
	assert.Equal(t, "A2*2", a4.Formula)

	a5 := mustCell(t, rs, "A5").Value()
	assert.Equal(t, CellError, a5.Type)
	assert.Equal(t, "#DIV/0!", a5.ErrorCode)
}

// TestRoundTripStyles is P2 / scenario S2: font and fill survive save/load.
func TestRoundTripStyles(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)

	cell := mustCell(t, sheet, "A1")
	require.NoError(t, cell.SetNumber(42))
	require.NoError(t, cell.SetFont(Font{Bold: true, Color: "FF0000"}))
	require.NoError(t, cell.SetFill(Fill{Type: "solid", FgColor: "FFFF00"}))

	reloaded := saveAndReload(t, wb)
	rs, err := reloaded.Sheet("Sheet1")
	require.NoError(t, err)

	style := mustCell(t, rs, "A1").Style()
	assert.True(t, style.Font.Bold)
	assert.Equal(t, "FF0000", style.Font.Color)
	assert.Equal(t, "solid", style.Fill.Type)
	assert.Equal(t, "FFFF00", style.Fill.FgColor)
}

// TestRoundTripDefinedNames is scenario S5: workbook- and sheet-scoped
// defined names round-trip with normalized refers-to strings.
func TestRoundTripDefinedNames(t *testing.T) {
	wb := NewFile()
	require.NoError(t, wb.DefinedName("Total", "Sheet1!$A$1:$A$10", -1))
	require.NoError(t, wb.DefinedName("Local", "Sheet1!$B$2", 0))

	reloaded := saveAndReload(t, wb)
	names := reloaded.DefinedNames()
	require.Len(t, names, 2)

	byName := map[string]DefinedName{}
	for _, n := range names {
		byName[n.Name] = n
	}
	assert.Equal(t, "Sheet1!A1:A10", byName["Total"].RefersTo)
	assert.Equal(t, -1, byName["Total"].SheetScope)
	assert.Equal(t, "Sheet1!B2", byName["Local"].RefersTo)
	assert.Equal(t, 0, byName["Local"].SheetScope)
}

// TestRoundTripConditionalFormat is P7 / scenario S4: a cellIs rule
// referencing an interned dxf round-trips with the same fields.
func TestRoundTripConditionalFormat(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	for i := 1; i <= 10; i++ {
		require.NoError(t, mustCell(t, sheet, cellRef(t, 1, i)).SetNumber(float64(i)))
	}
	require.NoError(t, sheet.AddConditionalFormat("A1:A10", "cellIs", "greaterThan", "5", 1,
		Dxf{Fill: &Fill{Type: "solid", FgColor: "FFFF00"}}))

	reloaded := saveAndReload(t, wb)
	rs, err := reloaded.Sheet("Sheet1")
	require.NoError(t, err)

	rules := rs.ConditionalFormats()
	require.Len(t, rules, 1)
	assert.Equal(t, "cellIs", rules[0].RuleType)
	assert.Equal(t, "greaterThan", rules[0].Operator)
	assert.Equal(t, "5", rules[0].Formula)
	require.NotNil(t, rules[0].Dxf.Fill)
	assert.Equal(t, "FFFF00", rules[0].Dxf.Fill.FgColor)
}

// TestRoundTripHyperlinkClassification is P6: a hyperlink with only
// location is internal, with only r:id is external.
func TestRoundTripHyperlinkClassification(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, mustCell(t, sheet, "A1").SetString("internal"))
	require.NoError(t, sheet.AddHyperlink("A1", "Sheet1!B2", "", "", true))
	require.NoError(t, mustCell(t, sheet, "A2").SetString("external"))
	require.NoError(t, sheet.AddHyperlink("A2", "https://example.com", "", "", false))

	reloaded := saveAndReload(t, wb)
	rs, err := reloaded.Sheet("Sheet1")
	require.NoError(t, err)

	links := map[string]Hyperlink{}
	for _, hl := range rs.Hyperlinks() {
		links[hl.Cell] = hl
	}
	require.Contains(t, links, "A1")
	assert.True(t, links["A1"].IsInternal)
	assert.Equal(t, "Sheet1!B2", links["A1"].Target)

	require.Contains(t, links, "A2")
	assert.False(t, links["A2"].IsInternal)
	assert.Equal(t, "https://example.com", links["A2"].Target)
}

// TestBulkEquivalence is P9: ReadRange over a range equals per-cell reads
// modulo trailing blanks.
func TestBulkEquivalence(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, sheet.WriteRange("A1", [][]CellValue{
		{{Type: CellNumber, Num: 1}, {Type: CellNumber, Num: 2}},
		{{Type: CellNumber, Num: 3}, {Type: CellNumber, Num: 4}},
	}))

	grid, err := sheet.ReadRange("A1:B2")
	require.NoError(t, err)

	var viaIter [][]CellValue
	sheet.IterRows(1, 2, 1, 2, func(row, col int, v CellValue) bool {
		for len(viaIter) < row {
			viaIter = append(viaIter, nil)
		}
		viaIter[row-1] = append(viaIter[row-1], v)
		return true
	})

	assert.Equal(t, grid, viaIter)
}

// TestModifyPreservesUntouchedPartsByteIdentically is P3: a modify-mode
// save that only dirties one sheet must leave every other part's stored
// bytes (and therefore its CRC and compressed length) unchanged.
func TestModifyPreservesUntouchedPartsByteIdentically(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, mustCell(t, sheet, "A1").SetString("original"))

	var source bytes.Buffer
	require.NoError(t, wb.SaveTo(&source))

	entriesBefore := zipEntryMeta(t, source.Bytes())
	require.Contains(t, entriesBefore, "xl/theme/theme1.xml")

	reopened, err := OpenReader(bytes.NewReader(source.Bytes()), Modify)
	require.NoError(t, err)
	rs, err := reopened.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, mustCell(t, rs, "A1").SetString("mutated"))

	var patched bytes.Buffer
	require.NoError(t, reopened.SaveTo(&patched))

	entriesAfter := zipEntryMeta(t, patched.Bytes())

	for name, before := range entriesBefore {
		if name == "xl/worksheets/sheet1.xml" {
			continue
		}
		after, ok := entriesAfter[name]
		require.Truef(t, ok, "part %q missing from patched package", name)
		assert.Equalf(t, before, after, "part %q changed on an untouched save", name)
	}

	// Sanity check the thing that's supposed to differ actually did.
	assert.NotEqual(t, entriesBefore["xl/worksheets/sheet1.xml"], entriesAfter["xl/worksheets/sheet1.xml"])
}

type zipEntryFingerprint struct {
	crc32            uint32
	compressedSize   uint64
	uncompressedSize uint64
	method           uint16
}

func zipEntryMeta(t *testing.T, raw []byte) map[string]zipEntryFingerprint {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	out := make(map[string]zipEntryFingerprint, len(zr.File))
	for _, f := range zr.File {
		out[f.Name] = zipEntryFingerprint{
			crc32:            f.CRC32,
			compressedSize:   f.CompressedSize64,
			uncompressedSize: f.UncompressedSize64,
			method:           f.Method,
		}
	}
	return out
}

func mustCell(t *testing.T, s *Sheet, ref string) *Cell {
	t.Helper()
	c, err := s.Cell(ref)
	require.NoError(t, err)
	return c
}

func cellRef(t *testing.T, col, row int) string {
	t.Helper()
	ref, err := CoordinatesToCellName(col, row)
	require.NoError(t, err)
	return ref
}
