// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// encodeWorksheet serializes one sheet to its worksheet XML part (C3),
// plus any relationships it needs (external hyperlinks, table parts). It
// never touches the shared-string table: per §4.5.4's resolved open
// question, new/changed values are always written inline (t="str"),
// avoiding any risk of re-indexing the sharedStrings part.
func encodeWorksheet(s *sheet, reg *styleRegistry, tableRIDs []string, tableFiles []string, drawingRID string) ([]byte, []xlsxRelationship, error) {
	ws := xlsxWorksheet{}

	if minRow, minCol, maxRow, maxCol, ok := s.dimension(); ok {
		ws.Dimension = &xlsxDimension{Ref: formatRange(minCol, minRow, maxCol, maxRow)}
	}

	if s.freeze != nil && s.freeze.active {
		state := "frozen"
		ws.SheetViews = &xlsxSheetViews{SheetView: []xlsxSheetView{{Pane: &xlsxPane{
			XSplit: float64(s.freeze.xSplit), YSplit: float64(s.freeze.ySplit),
			TopLeftCell: s.freeze.topLeftCell, ActivePane: "bottomRight", State: state,
		}}}}
	}

	if len(s.colWidths) > 0 {
		ws.Cols = &xlsxCols{}
		for col, w := range s.colWidths {
			ws.Cols.Col = append(ws.Cols.Col, xlsxCol{Min: col, Max: col, Width: applyColumnPadding(w)})
		}
	}

	rowCells := map[int][]xlsxC{}
	for _, coord := range s.sortedCoords() {
		row, col := coord[0], coord[1]
		c := s.cells[coord]
		ref, _ := CoordinatesToCellName(col, row)
		xc, err := cellValueToXML(ref, c)
		if err != nil {
			return nil, nil, err
		}
		rowCells[row] = append(rowCells[row], xc)
	}
	for row, cells := range rowCells {
		xr := xlsxRow{R: row, C: cells}
		if h, ok := s.rowHeights[row]; ok {
			xr.Ht = &h
		}
		ws.SheetData.Row = append(ws.SheetData.Row, xr)
	}
	sortRowsInPlace(ws.SheetData.Row)

	if len(s.merges) > 0 {
		ws.MergeCells = &xlsxMergeCells{Count: len(s.merges)}
		for _, m := range s.merges {
			ws.MergeCells.Cells = append(ws.MergeCells.Cells, xlsxMergeCell{Ref: formatRange(m.minCol, m.minRow, m.maxCol, m.maxRow)})
		}
	}

	var rels []xlsxRelationship
	nextRID := 1
	if len(s.hyperlinks) > 0 {
		ws.Hyperlinks = &xlsxHyperlinks{}
		for _, hl := range s.hyperlinks {
			ref, _ := CoordinatesToCellName(hl.col, hl.row)
			xhl := xlsxHyperlink{Ref: ref, Display: hl.display, Tooltip: hl.tooltip}
			if hl.isInternal {
				xhl.Location = hl.target
			} else {
				rid := fmt.Sprintf("rId%d", nextRID)
				nextRID++
				rels = append(rels, xlsxRelationship{ID: rid, Type: relTypeHyperlink, Target: hl.target, TargetMode: "External"})
				xhl.RID = rid
			}
			ws.Hyperlinks.Hyperlink = append(ws.Hyperlinks.Hyperlink, xhl)
		}
	}

	if len(s.validations) > 0 {
		ws.DataValidations = &xlsxDataValidations{Count: len(s.validations)}
		for _, v := range s.validations {
			ws.DataValidations.DataValidation = append(ws.DataValidations.DataValidation, xlsxDataValidation{
				Type: v.vtype, Operator: v.operator,
				AllowBlank: v.allowBlank, ShowInputMessage: v.showInput, ShowErrorMessage: v.showError,
				PromptTitle: v.promptTitle, Prompt: v.prompt, ErrorTitle: v.errorTitle, Error: v.errorMsg,
				Sqref: formatRange(v.minCol, v.minRow, v.maxCol, v.maxRow),
				Formula1: v.formula1, Formula2: v.formula2,
			})
		}
	}

	if len(s.conditionals) > 0 {
		byRange := map[string]*xlsxConditionalFormatting{}
		var order []string
		for _, r := range s.conditionals {
			rng := formatRange(r.minCol, r.minRow, r.maxCol, r.maxRow)
			block, ok := byRange[rng]
			if !ok {
				block = &xlsxConditionalFormatting{SQRef: rng}
				byRange[rng] = block
				order = append(order, rng)
			}
			rule := xlsxCfRule{Type: r.ruleType, Operator: r.operator, Priority: r.priority, StopIfTrue: r.stopIfTrue}
			if r.formula != "" {
				rule.Formula = []string{r.formula}
			}
			if r.dxfID >= 0 {
				id := r.dxfID
				rule.DxfID = &id
			}
			block.Rule = append(block.Rule, rule)
		}
		for _, rng := range order {
			ws.ConditionalFormatting = append(ws.ConditionalFormatting, *byRange[rng])
		}
	}

	if s.autoFilter != "" {
		ws.AutoFilter = &xlsxAutoFilter{Ref: s.autoFilter}
	}

	// Carry the sheet's existing drawing relationship forward whenever it
	// has one: re-encoding a sheet must not silently orphan its anchored
	// pictures (drawing/media parts are always pass-through, never
	// re-emitted themselves, so the link back to them has to survive here).
	if drawingRID != "" {
		ws.Drawing = &xlsxWorksheetDrawing{RID: drawingRID}
		rels = append(rels, xlsxRelationship{ID: drawingRID, Type: relTypeDrawing, Target: "../drawings/" + base(s.drawingPath)})
	}

	if len(s.tables) > 0 {
		ws.TableParts = &xlsxTableParts{Count: len(s.tables)}
		for i := range s.tables {
			rid := ""
			if i < len(tableRIDs) {
				rid = tableRIDs[i]
			}
			ws.TableParts.Part = append(ws.TableParts.Part, xlsxTablePart{RID: rid})
			file := fmt.Sprintf("table%d.xml", i+1)
			if i < len(tableFiles) {
				file = tableFiles[i]
			}
			rels = append(rels, xlsxRelationship{ID: rid, Type: relTypeTable, Target: "../tables/" + file})
		}
	}

	buf, err := xml.Marshal(ws)
	if err != nil {
		return nil, nil, err
	}
	return append([]byte(xml.Header), buf...), rels, nil
}

// sortRowsInPlace keeps <row> elements ascending by row number; cellValueToXML
// already produced cells in column order within each row via sortedCoords.
func sortRowsInPlace(rows []xlsxRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].R < rows[j].R })
}

// cellValueToXML implements §4.3's emit rules: strings inline by default,
// formulas with the leading '=' stripped (OOXML forbids it in <f>), errors
// as canonical tokens.
func cellValueToXML(ref string, c *cell) (xlsxC, error) {
	xc := xlsxC{R: ref, S: c.styleID}
	switch c.value.Type {
	case CellBlank:
		return xc, nil
	case CellString:
		xc.T = "str"
		xc.V = c.value.Str
	case CellNumber:
		xc.V = strconv.FormatFloat(c.value.Num, 'g', -1, 64)
	case CellDate, CellDateTime:
		xc.V = strconv.FormatFloat(c.value.Num, 'g', -1, 64)
	case CellBool:
		xc.T = "b"
		if c.value.Bool {
			xc.V = "1"
		} else {
			xc.V = "0"
		}
	case CellError:
		xc.T = "e"
		xc.V = c.value.ErrorCode
	case CellFormula:
		xc.F = &xlsxF{Content: stripLeadingEquals(c.value.Formula)}
		if c.value.CachedNumeric != nil {
			xc.V = strconv.FormatFloat(*c.value.CachedNumeric, 'g', -1, 64)
		}
	default:
		return xc, fmt.Errorf("xlengine: unknown cell value type %d", c.value.Type)
	}
	return xc, nil
}

func stripLeadingEquals(formula string) string {
	if len(formula) > 0 && formula[0] == '=' {
		return formula[1:]
	}
	return formula
}

// CanonicalErrorCodes enumerates the error tokens OOXML recognizes
// (§4.3); used by facade validation to reject anything else.
var CanonicalErrorCodes = []string{
	"#DIV/0!", "#N/A", "#NAME?", "#NULL!", "#NUM!", "#REF!", "#VALUE!",
}

func isCanonicalErrorCode(code string) bool {
	for _, c := range CanonicalErrorCodes {
		if c == code {
			return true
		}
	}
	return false
}
