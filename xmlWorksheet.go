// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"encoding/xml"
	"math"
	"strconv"
)

// The xlsxWorksheet family mirrors §4.2.5's "hot path": a single streaming
// pass over <sheetData> plus the Tier-2 sections (<mergeCells>,
// <hyperlinks>, <dataValidations>, <conditionalFormatting>,
// <sheetViews>/<pane>, <cols>, <dimension>). encoding/xml's own
// tokenizer is the streaming layer; we still materialize only the
// sub-elements the model understands, exactly as the teacher's decoder
// does for styles.

type xlsxWorksheet struct {
	XMLName               xml.Name                   `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main worksheet"`
	Dimension             *xlsxDimension             `xml:"dimension"`
	SheetViews            *xlsxSheetViews            `xml:"sheetViews"`
	Cols                  *xlsxCols                  `xml:"cols"`
	SheetData             xlsxSheetData              `xml:"sheetData"`
	MergeCells            *xlsxMergeCells            `xml:"mergeCells"`
	ConditionalFormatting []xlsxConditionalFormatting `xml:"conditionalFormatting"`
	DataValidations       *xlsxDataValidations       `xml:"dataValidations"`
	Hyperlinks            *xlsxHyperlinks            `xml:"hyperlinks"`
	AutoFilter            *xlsxAutoFilter            `xml:"autoFilter"`
	Drawing               *xlsxWorksheetDrawing      `xml:"drawing"`
	TableParts            *xlsxTableParts            `xml:"tableParts"`
}

// xlsxWorksheetDrawing is the <drawing r:id=".."/> element linking a
// worksheet to its drawingN.xml part; §4.2.7/drawing.go resolve the actual
// anchors via the sheet's rels by relationship type, so decode never reads
// this element directly, but the encoder needs it to carry a pre-existing
// drawing relationship forward when the sheet is re-encoded.
type xlsxWorksheetDrawing struct {
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xlsxDimension struct {
	Ref string `xml:"ref,attr"`
}

type xlsxSheetViews struct {
	SheetView []xlsxSheetView `xml:"sheetView"`
}

type xlsxSheetView struct {
	Pane *xlsxPane `xml:"pane"`
}

type xlsxPane struct {
	XSplit      float64 `xml:"xSplit,attr,omitempty"`
	YSplit      float64 `xml:"ySplit,attr,omitempty"`
	TopLeftCell string  `xml:"topLeftCell,attr,omitempty"`
	ActivePane  string  `xml:"activePane,attr,omitempty"`
	State       string  `xml:"state,attr,omitempty"`
}

type xlsxCols struct {
	Col []xlsxCol `xml:"col"`
}

type xlsxCol struct {
	Min   int     `xml:"min,attr"`
	Max   int     `xml:"max,attr"`
	Width float64 `xml:"width,attr"`
}

type xlsxSheetData struct {
	Row []xlsxRow `xml:"row"`
}

type xlsxRow struct {
	R      int      `xml:"r,attr"`
	Ht     *float64 `xml:"ht,attr"`
	C      []xlsxC  `xml:"c"`
}

// xlsxC is a single cell element; §4.2.5 enumerates its full decode rule
// set (r, t, s attrs; f/v children).
type xlsxC struct {
	R  string  `xml:"r,attr"`
	T  string  `xml:"t,attr,omitempty"`
	S  int     `xml:"s,attr,omitempty"`
	F  *xlsxF  `xml:"f"`
	V  string  `xml:"v"`
	Is *xlsxIs `xml:"is"`
}

type xlsxF struct {
	Content string `xml:",chardata"`
}

// xlsxIs is the inline-string child of a t="inlineStr" cell. Schema allows
// either a bare <t> or a run list (<r><t>...</t></r>); §4.2.3 flattens runs
// to plain text for value purposes, the same rule the shared-string decoder
// uses.
type xlsxIs struct {
	T string      `xml:"t"`
	R []xlsxIsRun `xml:"r"`
}

type xlsxIsRun struct {
	T string `xml:"t"`
}

func (is *xlsxIs) text() string {
	if is == nil {
		return ""
	}
	if is.T != "" || len(is.R) == 0 {
		return is.T
	}
	out := ""
	for _, r := range is.R {
		out += r.T
	}
	return out
}

type xlsxMergeCells struct {
	Count int                `xml:"count,attr,omitempty"`
	Cells []xlsxMergeCell    `xml:"mergeCell"`
}

type xlsxMergeCell struct {
	Ref string `xml:"ref,attr"`
}

type xlsxHyperlinks struct {
	Hyperlink []xlsxHyperlink `xml:"hyperlink"`
}

type xlsxHyperlink struct {
	Ref      string `xml:"ref,attr"`
	RID      string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	Location string `xml:"location,attr,omitempty"`
	Display  string `xml:"display,attr,omitempty"`
	Tooltip  string `xml:"tooltip,attr,omitempty"`
}

type xlsxDataValidations struct {
	Count         int                   `xml:"count,attr,omitempty"`
	DataValidation []xlsxDataValidation `xml:"dataValidation"`
}

type xlsxDataValidation struct {
	Type             string `xml:"type,attr,omitempty"`
	Operator         string `xml:"operator,attr,omitempty"`
	AllowBlank       bool   `xml:"allowBlank,attr,omitempty"`
	ShowInputMessage bool   `xml:"showInputMessage,attr,omitempty"`
	ShowErrorMessage bool   `xml:"showErrorMessage,attr,omitempty"`
	PromptTitle      string `xml:"promptTitle,attr,omitempty"`
	Prompt           string `xml:"prompt,attr,omitempty"`
	ErrorTitle       string `xml:"errorTitle,attr,omitempty"`
	Error            string `xml:"error,attr,omitempty"`
	Sqref            string `xml:"sqref,attr"`
	Formula1         string `xml:"formula1"`
	Formula2         string `xml:"formula2"`
}

type xlsxConditionalFormatting struct {
	SQRef string          `xml:"sqref,attr"`
	Rule  []xlsxCfRule    `xml:"cfRule"`
}

type xlsxCfRule struct {
	Type        string `xml:"type,attr,omitempty"`
	Operator    string `xml:"operator,attr,omitempty"`
	Priority    int    `xml:"priority,attr"`
	StopIfTrue  bool   `xml:"stopIfTrue,attr,omitempty"`
	DxfID       *int   `xml:"dxfId,attr"`
	Formula     []string `xml:"formula"`
}

type xlsxAutoFilter struct {
	Ref string `xml:"ref,attr"`
}

type xlsxTableParts struct {
	Count int               `xml:"count,attr,omitempty"`
	Part  []xlsxTablePart   `xml:"tablePart"`
}

type xlsxTablePart struct {
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// decodeWorksheet parses a worksheet part into the sheet model. strs and
// theme resolve shared-string and style-color references respectively;
// sheetRels resolves hyperlink/table/drawing rIds. Both may be nil for a
// rels-free sheet.
func decodeWorksheet(raw []byte, s *sheet, strs *sharedStringTable, date1904 bool, reg *styleRegistry, sheetRels *relTable) error {
	var ws xlsxWorksheet
	if err := unmarshalXML(raw, &ws); err != nil {
		return newCorruptPart("worksheet", err)
	}

	for _, row := range ws.SheetData.Row {
		if row.Ht != nil {
			s.rowHeights[row.R] = *row.Ht
		}
		for _, c := range row.C {
			col, r, err := CellNameToCoordinates(c.R)
			if err != nil {
				continue // category 3: malformed cell ref, skip
			}
			v, err := cellValueFromXML(c, strs, reg, date1904)
			if err != nil {
				continue
			}
			s.cells[[2]int{r, col}] = &cell{value: v, styleID: c.S}
		}
	}

	if ws.Cols != nil {
		for _, col := range ws.Cols.Col {
			w := stripColumnPadding(col.Width)
			for c := col.Min; c <= col.Max; c++ {
				s.colWidths[c] = w
			}
		}
	}

	if ws.MergeCells != nil {
		for _, mc := range ws.MergeCells.Cells {
			minCol, minRow, maxCol, maxRow, err := parseRange(mc.Ref)
			if err != nil {
				continue
			}
			s.merges = append(s.merges, mergeRange{minRow, minCol, maxRow, maxCol})
		}
	}

	if ws.Hyperlinks != nil {
		for _, hl := range ws.Hyperlinks.Hyperlink {
			col, row, err := CellNameToCoordinates(hl.Ref)
			if err != nil {
				continue
			}
			rec := hyperlinkRecord{row: row, col: col, display: hl.Display, tooltip: hl.Tooltip}
			// §4.2.7: internal iff location set and no r:id; if both
			// present, r:id wins (external).
			if hl.RID != "" && sheetRels != nil {
				if target, ok := sheetRels.target(hl.RID); ok {
					rec.target = target
					rec.isInternal = false
				}
			} else if hl.Location != "" {
				rec.target = hl.Location
				rec.isInternal = true
			}
			s.hyperlinks = append(s.hyperlinks, rec)
		}
	}

	if ws.DataValidations != nil {
		for _, dv := range ws.DataValidations.DataValidation {
			minCol, minRow, maxCol, maxRow, err := parseRange(firstSqref(dv.Sqref))
			if err != nil {
				continue
			}
			s.validations = append(s.validations, dataValidationRecord{
				minRow: minRow, minCol: minCol, maxRow: maxRow, maxCol: maxCol,
				vtype: dv.Type, operator: dv.Operator,
				formula1: dv.Formula1, formula2: dv.Formula2,
				allowBlank: dv.AllowBlank, showInput: dv.ShowInputMessage, showError: dv.ShowErrorMessage,
				promptTitle: dv.PromptTitle, prompt: dv.Prompt,
				errorTitle: dv.ErrorTitle, errorMsg: dv.Error,
			})
		}
	}

	for _, cf := range ws.ConditionalFormatting {
		minCol, minRow, maxCol, maxRow, err := parseRange(firstSqref(cf.SQRef))
		if err != nil {
			continue
		}
		for _, rule := range cf.Rule {
			dxfID := -1
			if rule.DxfID != nil {
				dxfID = *rule.DxfID
			}
			formula := ""
			if len(rule.Formula) > 0 {
				formula = rule.Formula[0]
			}
			s.conditionals = append(s.conditionals, conditionalRule{
				minRow: minRow, minCol: minCol, maxRow: maxRow, maxCol: maxCol,
				ruleType: rule.Type, operator: rule.Operator, formula: formula,
				priority: rule.Priority, stopIfTrue: rule.StopIfTrue, dxfID: dxfID,
			})
		}
	}

	if ws.SheetViews != nil {
		for _, sv := range ws.SheetViews.SheetView {
			if sv.Pane == nil {
				continue
			}
			// §4.2.7: only states containing "frozen" are surfaced.
			if !containsFrozen(sv.Pane.State) {
				continue
			}
			s.freeze = &freezePane{
				xSplit:      int(sv.Pane.XSplit),
				ySplit:      int(sv.Pane.YSplit),
				topLeftCell: sv.Pane.TopLeftCell,
				active:      true,
			}
		}
	}

	if ws.AutoFilter != nil {
		s.autoFilter = ws.AutoFilter.Ref
	}

	return nil
}

func containsFrozen(state string) bool {
	return state == "frozen" || state == "frozenSplit"
}

func firstSqref(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i]
		}
	}
	return s
}

// cellValueFromXML implements §4.2.5's per-cell type-discrimination rule.
func cellValueFromXML(c xlsxC, strs *sharedStringTable, reg *styleRegistry, date1904 bool) (CellValue, error) {
	var formula string
	var cached *float64
	if c.F != nil {
		formula = c.F.Content
	}
	if formula != "" {
		if n, err := strconv.ParseFloat(c.V, 64); err == nil {
			cached = &n
		}
		return CellValue{Type: CellFormula, Formula: formula, CachedNumeric: cached}, nil
	}

	switch c.T {
	case "s":
		idx, err := strconv.Atoi(c.V)
		if err != nil {
			return CellValue{}, err
		}
		return CellValue{Type: CellString, Str: strs.Get(idx)}, nil
	case "str":
		return CellValue{Type: CellString, Str: c.V}, nil
	case "inlineStr":
		if c.Is != nil {
			return CellValue{Type: CellString, Str: c.Is.text()}, nil
		}
		return CellValue{Type: CellString, Str: c.V}, nil
	case "b":
		return CellValue{Type: CellBool, Bool: c.V == "1"}, nil
	case "e":
		return CellValue{Type: CellError, ErrorCode: c.V}, nil
	case "d":
		// ECMA-376 ST_CellType "d" stores the value as an ISO 8601
		// string, not a serial number.
		t, err := parseISODateTime(c.V)
		if err != nil {
			return CellValue{}, err
		}
		n := timeToExcelSerial(t, date1904)
		if n == math.Trunc(n) {
			return CellValue{Type: CellDate, Num: n}, nil
		}
		return CellValue{Type: CellDateTime, Num: n}, nil
	default:
		if c.V == "" {
			return CellValue{Type: CellBlank}, nil
		}
		n, err := strconv.ParseFloat(c.V, 64)
		if err != nil {
			return CellValue{}, err
		}
		code := reg.numFmtCode(styleNumFmtID(reg, c.S))
		if classifyNumFmt(styleNumFmtID(reg, c.S), code) {
			if n == math.Trunc(n) {
				return CellValue{Type: CellDate, Num: n}, nil
			}
			return CellValue{Type: CellDateTime, Num: n}, nil
		}
		return CellValue{Type: CellNumber, Num: n}, nil
	}
}

func styleNumFmtID(reg *styleRegistry, styleID int) int {
	if styleID < 0 || styleID >= len(reg.xfs) {
		return 0
	}
	return reg.xfs[styleID].numFmtID
}
