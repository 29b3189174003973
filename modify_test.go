// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPNG is the smallest valid PNG (a 1x1 transparent pixel), used to
// give decodeDrawing's image.DecodeConfig something real to sniff without
// pulling in a test fixture file.
var minimalPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

// buildFixtureWithDrawing hand-assembles a minimal .xlsx package, one
// sheet with a single string cell plus an anchored picture, using the same
// part encoders saveFresh itself uses wherever one exists and a direct
// struct marshal for the handful of parts (worksheet, drawing) that need
// shapes saveFresh doesn't produce from scratch.
func buildFixtureWithDrawing(t *testing.T) (raw []byte, drawingXML []byte) {
	t.Helper()

	m := newWorkbookModel()
	_, err := m.AddSheet("Sheet1")
	require.NoError(t, err)
	s := m.sheets[0]
	s.cells[[2]int{1, 1}] = &cell{value: CellValue{Type: CellString, Str: "old"}}

	sheetPaths := []string{"xl/worksheets/sheet1.xml"}
	sheetRIDs, wbRelsBuf, err := buildWorkbookRels(m, sheetPaths, false, true)
	require.NoError(t, err)
	wbBuf, err := encodeWorkbook(m, sheetRIDs)
	require.NoError(t, err)
	stylesBuf, err := encodeStyles(m.styles)
	require.NoError(t, err)
	themeBuf := encodeDefaultThemeXML(m.theme)
	rootRelsBuf, err := encodeRootRels()
	require.NoError(t, err)

	ws := xlsxWorksheet{SheetData: xlsxSheetData{Row: []xlsxRow{
		{R: 1, C: []xlsxC{{R: "A1", T: "str", V: "old"}}},
	}}}
	wsBuf, err := xml.Marshal(ws)
	require.NoError(t, err)
	wsBuf = append([]byte(xml.Header), wsBuf...)

	wsRelsBuf, err := encodeRels([]xlsxRelationship{
		{ID: "rId1", Type: relTypeDrawing, Target: "../drawings/drawing1.xml"},
	})
	require.NoError(t, err)

	drawing := xlsxDrawing{TwoCellAnchors: []xlsxTwoCellAnchor{{
		From: xlsxAnchorPos{Col: 0, Row: 0},
		Pic:  xlsxPic{BlipFill: xlsxBlipFill{Blip: xlsxBlip{Embed: "rId1"}}},
	}}}
	drawingBuf, err := xml.Marshal(drawing)
	require.NoError(t, err)
	drawingBuf = append([]byte(xml.Header), drawingBuf...)

	drawingRelsBuf, err := encodeRels([]xlsxRelationship{
		{ID: "rId1", Type: relTypeImage, Target: "../media/image1.png"},
	})
	require.NoError(t, err)

	parts := map[string][]byte{
		"_rels/.rels":                        rootRelsBuf,
		"xl/workbook.xml":                    wbBuf,
		"xl/_rels/workbook.xml.rels":         wbRelsBuf,
		"xl/styles.xml":                      stylesBuf,
		"xl/theme/theme1.xml":                themeBuf,
		"docProps/core.xml":                  minimalCoreProps(),
		"docProps/app.xml":                    minimalAppProps(),
		"xl/worksheets/sheet1.xml":            wsBuf,
		"xl/worksheets/_rels/sheet1.xml.rels": wsRelsBuf,
		"xl/drawings/drawing1.xml":            drawingBuf,
		"xl/drawings/_rels/drawing1.xml.rels": drawingRelsBuf,
		"xl/media/image1.png":                 minimalPNG,
	}
	names := make([]string, 0, len(parts)+1)
	for n := range parts {
		names = append(names, n)
	}
	ctBuf, err := encodeContentTypes(names)
	require.NoError(t, err)
	parts["[Content_Types].xml"] = ctBuf
	names = append(names, "[Content_Types].xml")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write(parts[n])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes(), drawingBuf
}

func readZipPart(t *testing.T, zr *zip.Reader, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return data
	}
	t.Fatalf("part %q not found in package", name)
	return nil
}

// TestModifyCarriesDrawingRelForward covers the gap where re-encoding a
// sheet that owns an anchored picture (because an unrelated cell on that
// same sheet was edited) used to drop the sheet's <drawing> element and
// its drawing relationship, silently orphaning the image.
func TestModifyCarriesDrawingRelForward(t *testing.T) {
	raw, wantDrawingXML := buildFixtureWithDrawing(t)

	wb, err := OpenReader(bytes.NewReader(raw), Modify)
	require.NoError(t, err)
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	require.Len(t, sheet.Pictures(), 1)

	require.NoError(t, mustCell(t, sheet, "A1").SetString("mutated"))

	var out bytes.Buffer
	require.NoError(t, wb.SaveTo(&out))

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	wsXML := string(readZipPart(t, zr, "xl/worksheets/sheet1.xml"))
	assert.Contains(t, wsXML, "<drawing ")

	relsXML := string(readZipPart(t, zr, "xl/worksheets/_rels/sheet1.xml.rels"))
	assert.Contains(t, relsXML, "drawings/drawing1.xml")

	// the drawing part and its media stay pass-through, untouched.
	assert.Equal(t, wantDrawingXML, readZipPart(t, zr, "xl/drawings/drawing1.xml"))
	assert.Equal(t, minimalPNG, readZipPart(t, zr, "xl/media/image1.png"))

	reopened, err := OpenReader(bytes.NewReader(out.Bytes()), ReadOnly)
	require.NoError(t, err)
	rs, err := reopened.Sheet("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rs.Pictures(), 1)
	assert.Equal(t, "mutated", mustCell(t, rs, "A1").Value().Str)
}

// TestModifyAddTableDeclaresContentType is the table half of the gap where
// adding a table or comment to an existing sheet under Modify mode never
// set workbookDirty, so the new part never got a [Content_Types].xml
// declaration.
func TestModifyAddTableDeclaresContentType(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, mustCell(t, sheet, "A1").SetString("h"))
	require.NoError(t, mustCell(t, sheet, "A2").SetString("v"))

	var source bytes.Buffer
	require.NoError(t, wb.SaveTo(&source))

	reopened, err := OpenReader(bytes.NewReader(source.Bytes()), Modify)
	require.NoError(t, err)
	rs, err := reopened.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, rs.AddTable("Table1", "A1:A2", []string{"h"}, true))

	var out bytes.Buffer
	require.NoError(t, reopened.SaveTo(&out))

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	var sawTablePart bool
	for _, f := range zr.File {
		if f.Name == "xl/tables/table1_1.xml" {
			sawTablePart = true
		}
	}
	require.True(t, sawTablePart, "expected a table part to be written")

	ctXML := string(readZipPart(t, zr, "[Content_Types].xml"))
	assert.Contains(t, ctXML, "/xl/tables/table1_1.xml")
}

// TestModifyAddCommentDeclaresContentType mirrors the above for comments.
func TestModifyAddCommentDeclaresContentType(t *testing.T) {
	wb := NewFile()
	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, mustCell(t, sheet, "A1").SetString("h"))

	var source bytes.Buffer
	require.NoError(t, wb.SaveTo(&source))

	reopened, err := OpenReader(bytes.NewReader(source.Bytes()), Modify)
	require.NoError(t, err)
	rs, err := reopened.Sheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, rs.AddComment("A1", "author", "note"))

	var out bytes.Buffer
	require.NoError(t, reopened.SaveTo(&out))

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	var sawCommentsPart bool
	for _, f := range zr.File {
		if f.Name == "xl/comments1.xml" {
			sawCommentsPart = true
		}
	}
	require.True(t, sawCommentsPart, "expected a comments part to be written")

	ctXML := string(readZipPart(t, zr, "[Content_Types].xml"))
	assert.Contains(t, ctXML, "/xl/comments1.xml")
}
