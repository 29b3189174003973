// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"encoding/xml"
)

// xlsxStyleSheet is the root element of the Styles part, adapted from the
// teacher's xmlStyles.go down to the fields the decode/encode paths
// actually touch: numFmts/fonts/fills/borders/cellXfs/dxfs. cellStyleXfs,
// named cellStyles and tableStyles are intentionally not modeled; modify
// mode only re-emits styles.xml when new styles were interned, so a
// workbook that never touches them keeps them byte-identical via the
// pass-through path instead.
type xlsxStyleSheet struct {
	XMLName xml.Name     `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main styleSheet"`
	NumFmts *xlsxNumFmts `xml:"numFmts"`
	Fonts   *xlsxFonts   `xml:"fonts"`
	Fills   *xlsxFills   `xml:"fills"`
	Borders *xlsxBorders `xml:"borders"`
	CellXfs *xlsxCellXfs `xml:"cellXfs"`
	Dxfs    *xlsxDxfs    `xml:"dxfs"`
}

type xlsxNumFmts struct {
	Count  int           `xml:"count,attr"`
	NumFmt []*xlsxNumFmt `xml:"numFmt"`
}

type xlsxNumFmt struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

type xlsxFonts struct {
	Count int         `xml:"count,attr"`
	Font  []*xlsxFont `xml:"font"`
}

type xlsxFont struct {
	B      *attrValBool   `xml:"b"`
	I      *attrValBool   `xml:"i"`
	Strike *attrValBool   `xml:"strike"`
	U      *attrValString `xml:"u"`
	Sz     *attrValFloat  `xml:"sz"`
	Color  *xlsxColor     `xml:"color"`
	Name   *attrValString `xml:"name"`
}

type xlsxColor struct {
	Auto    bool    `xml:"auto,attr,omitempty"`
	RGB     string  `xml:"rgb,attr,omitempty"`
	Indexed int     `xml:"indexed,attr,omitempty"`
	Theme   *int    `xml:"theme,attr"`
	Tint    float64 `xml:"tint,attr,omitempty"`
}

type xlsxFills struct {
	Count int         `xml:"count,attr"`
	Fill  []*xlsxFill `xml:"fill"`
}

type xlsxFill struct {
	PatternFill *xlsxPatternFill `xml:"patternFill"`
}

type xlsxPatternFill struct {
	PatternType string     `xml:"patternType,attr,omitempty"`
	FgColor     *xlsxColor `xml:"fgColor"`
	BgColor     *xlsxColor `xml:"bgColor"`
}

type xlsxBorders struct {
	Count  int           `xml:"count,attr"`
	Border []*xlsxBorder `xml:"border"`
}

type xlsxBorder struct {
	DiagonalDown bool     `xml:"diagonalDown,attr,omitempty"`
	DiagonalUp   bool     `xml:"diagonalUp,attr,omitempty"`
	Left         xlsxLine `xml:"left"`
	Right        xlsxLine `xml:"right"`
	Top          xlsxLine `xml:"top"`
	Bottom       xlsxLine `xml:"bottom"`
	Diagonal     xlsxLine `xml:"diagonal"`
}

type xlsxLine struct {
	Style string     `xml:"style,attr,omitempty"`
	Color *xlsxColor `xml:"color"`
}

type xlsxAlignment struct {
	Horizontal   string `xml:"horizontal,attr,omitempty"`
	Vertical     string `xml:"vertical,attr,omitempty"`
	WrapText     bool   `xml:"wrapText,attr,omitempty"`
	TextRotation int    `xml:"textRotation,attr,omitempty"`
	Indent       int    `xml:"indent,attr,omitempty"`
}

type xlsxCellXfs struct {
	Count int      `xml:"count,attr"`
	Xf    []xlsxXf `xml:"xf"`
}

type xlsxXf struct {
	NumFmtID          *int           `xml:"numFmtId,attr"`
	FontID            *int           `xml:"fontId,attr"`
	FillID            *int           `xml:"fillId,attr"`
	BorderID          *int           `xml:"borderId,attr"`
	ApplyNumberFormat *bool          `xml:"applyNumberFormat,attr"`
	ApplyFont         *bool          `xml:"applyFont,attr"`
	ApplyFill         *bool          `xml:"applyFill,attr"`
	ApplyBorder       *bool          `xml:"applyBorder,attr"`
	ApplyAlignment    *bool          `xml:"applyAlignment,attr"`
	Alignment         *xlsxAlignment `xml:"alignment"`
}

// xlsxDxfs / xlsxDxf hold differential formats used by conditional
// formatting (§4.3's "only overrides are emitted" rule): unlike a cellXf,
// every field is a pointer and a nil field means "don't touch this aspect".
type xlsxDxfs struct {
	Count int        `xml:"count,attr"`
	Dxf   []*xlsxDxf `xml:"dxf"`
}

type xlsxDxf struct {
	Font      *xlsxFont      `xml:"font"`
	NumFmt    *xlsxNumFmt    `xml:"numFmt"`
	Fill      *xlsxFill      `xml:"fill"`
	Alignment *xlsxAlignment `xml:"alignment"`
	Border    *xlsxBorder    `xml:"border"`
}

// attrValBool/String/Float are the teacher's pattern for OOXML's "boolean
// element with optional val attribute defaulting to true" shape, e.g.
// <b/> and <b val="0"/> both appear in the wild.
type attrValBool struct {
	Val *bool `xml:"val,attr"`
}

func (a *attrValBool) bool() bool {
	if a == nil {
		return false
	}
	if a.Val == nil {
		return true
	}
	return *a.Val
}

func boolAttr(b bool) *attrValBool {
	if !b {
		return nil
	}
	return &attrValBool{}
}

type attrValString struct {
	Val string `xml:"val,attr"`
}

type attrValFloat struct {
	Val float64 `xml:"val,attr"`
}

// ---- built-in number formats (ECMA-376 §18.8.30) ----

var builtInNumFmt = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "m/d/yyyy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yyyy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

const firstCustomNumFmtID = 164

// decodeStyles parses a styles.xml part into a styleRegistry. Number
// formats below 164 are resolved against the built-in table; formats at or
// above 164 must carry an explicit formatCode (§4.2.2).
func decodeStyles(raw []byte, theme *Theme) (*styleRegistry, error) {
	var ss xlsxStyleSheet
	if err := unmarshalXML(raw, &ss); err != nil {
		return nil, newCorruptPart("xl/styles.xml", err)
	}
	reg := newStyleRegistry()
	if ss.NumFmts != nil {
		for _, nf := range ss.NumFmts.NumFmt {
			reg.numFmts[nf.NumFmtID] = nf.FormatCode
		}
	}
	if ss.Fonts != nil {
		for _, f := range ss.Fonts.Font {
			reg.fonts = append(reg.fonts, fontFromXML(f, theme))
		}
	}
	if ss.Fills != nil {
		for _, f := range ss.Fills.Fill {
			reg.fills = append(reg.fills, fillFromXML(f, theme))
		}
	}
	if ss.Borders != nil {
		for _, b := range ss.Borders.Border {
			reg.borders = append(reg.borders, borderFromXML(b, theme))
		}
	}
	if ss.CellXfs != nil {
		for _, xf := range ss.CellXfs.Xf {
			reg.xfs = append(reg.xfs, xfFromXML(xf))
		}
	}
	if ss.Dxfs != nil {
		for _, d := range ss.Dxfs.Dxf {
			reg.dxfs = append(reg.dxfs, dxfFromXML(d, theme))
		}
	}
	reg.rebuildDedup()
	return reg, nil
}

// encodeStyles serializes the style registry back to styles.xml, including
// Excel's mandatory default font/fill/border at index 0 regardless of
// whether anything references them (§4.3).
func encodeStyles(reg *styleRegistry) ([]byte, error) {
	ss := xlsxStyleSheet{
		NumFmts: &xlsxNumFmts{},
		Fonts:   &xlsxFonts{},
		Fills:   &xlsxFills{},
		Borders: &xlsxBorders{},
		CellXfs: &xlsxCellXfs{},
	}
	for id, code := range reg.numFmts {
		if id < firstCustomNumFmtID {
			continue
		}
		ss.NumFmts.NumFmt = append(ss.NumFmts.NumFmt, &xlsxNumFmt{NumFmtID: id, FormatCode: code})
	}
	ss.NumFmts.Count = len(ss.NumFmts.NumFmt)

	fonts := reg.fonts
	if len(fonts) == 0 {
		fonts = []Font{{Name: "Calibri", Size: 11}}
	}
	for _, f := range fonts {
		ss.Fonts.Font = append(ss.Fonts.Font, fontToXML(f))
	}
	ss.Fonts.Count = len(ss.Fonts.Font)

	fills := reg.fills
	if len(fills) == 0 {
		fills = []Fill{{Type: "none"}, {Type: "gray125"}}
	}
	for _, f := range fills {
		ss.Fills.Fill = append(ss.Fills.Fill, fillToXML(f))
	}
	ss.Fills.Count = len(ss.Fills.Fill)

	borders := reg.borders
	if len(borders) == 0 {
		borders = []Border{{}}
	}
	for _, b := range borders {
		ss.Borders.Border = append(ss.Borders.Border, borderToXML(b))
	}
	ss.Borders.Count = len(ss.Borders.Border)

	xfs := reg.xfs
	if len(xfs) == 0 {
		xfs = []cellXf{{}}
	}
	for _, xf := range xfs {
		ss.CellXfs.Xf = append(ss.CellXfs.Xf, xfToXML(xf))
	}
	ss.CellXfs.Count = len(ss.CellXfs.Xf)

	if len(reg.dxfs) > 0 {
		ss.Dxfs = &xlsxDxfs{Count: len(reg.dxfs)}
		for _, d := range reg.dxfs {
			ss.Dxfs.Dxf = append(ss.Dxfs.Dxf, dxfToXML(d))
		}
	}

	buf, err := xml.Marshal(ss)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), buf...), nil
}

func fontFromXML(f *xlsxFont, theme *Theme) Font {
	var out Font
	out.Bold = f.B.bool()
	out.Italic = f.I.bool()
	out.Strike = f.Strike.bool()
	if f.U != nil {
		out.Underline = f.U.Val
	}
	if f.Sz != nil {
		out.Size = f.Sz.Val
	}
	if f.Name != nil {
		out.Name = f.Name.Val
	}
	out.Color = colorFromXML(f.Color, theme)
	return out
}

func fontToXML(f Font) *xlsxFont {
	out := &xlsxFont{
		B:      boolAttr(f.Bold),
		I:      boolAttr(f.Italic),
		Strike: boolAttr(f.Strike),
	}
	if f.Underline != "" {
		out.U = &attrValString{Val: f.Underline}
	}
	if f.Size != 0 {
		out.Sz = &attrValFloat{Val: f.Size}
	}
	if f.Name != "" {
		out.Name = &attrValString{Val: f.Name}
	}
	if f.Color != "" {
		out.Color = colorToXML(f.Color)
	}
	return out
}

func fillFromXML(f *xlsxFill, theme *Theme) Fill {
	var out Fill
	if f.PatternFill != nil {
		out.Type = f.PatternFill.PatternType
		if f.PatternFill.FgColor != nil {
			out.FgColor = colorFromXML(f.PatternFill.FgColor, theme)
		}
		if f.PatternFill.BgColor != nil {
			out.BgColor = colorFromXML(f.PatternFill.BgColor, theme)
		}
	}
	return out
}

func fillToXML(f Fill) *xlsxFill {
	pf := &xlsxPatternFill{PatternType: f.Type}
	if f.FgColor != "" {
		pf.FgColor = colorToXML(f.FgColor)
	}
	if f.BgColor != "" {
		pf.BgColor = colorToXML(f.BgColor)
	}
	return &xlsxFill{PatternFill: pf}
}

func borderFromXML(b *xlsxBorder, theme *Theme) Border {
	return Border{
		Top:      sideFromXML(b.Top, theme),
		Bottom:   sideFromXML(b.Bottom, theme),
		Left:     sideFromXML(b.Left, theme),
		Right:    sideFromXML(b.Right, theme),
		Diagonal: sideFromXML(b.Diagonal, theme),
	}
}

func borderToXML(b Border) *xlsxBorder {
	return &xlsxBorder{
		Top:      sideToXML(b.Top),
		Bottom:   sideToXML(b.Bottom),
		Left:     sideToXML(b.Left),
		Right:    sideToXML(b.Right),
		Diagonal: sideToXML(b.Diagonal),
	}
}

func sideFromXML(l xlsxLine, theme *Theme) Side {
	return Side{Style: l.Style, Color: colorFromXML(l.Color, theme)}
}

func sideToXML(s Side) xlsxLine {
	l := xlsxLine{Style: s.Style}
	if s.Color != "" {
		l.Color = colorToXML(s.Color)
	}
	return l
}

func colorFromXML(c *xlsxColor, theme *Theme) string {
	if c == nil {
		return ""
	}
	if c.RGB != "" {
		return c.RGB
	}
	if c.Theme != nil {
		return theme.resolve(*c.Theme, c.Tint)
	}
	return ""
}

func colorToXML(rgb string) *xlsxColor {
	return &xlsxColor{RGB: rgb}
}

func xfFromXML(xf xlsxXf) cellXf {
	out := cellXf{}
	if xf.NumFmtID != nil {
		out.numFmtID = *xf.NumFmtID
	}
	if xf.FontID != nil {
		out.fontID = *xf.FontID
	}
	if xf.FillID != nil {
		out.fillID = *xf.FillID
	}
	if xf.BorderID != nil {
		out.borderID = *xf.BorderID
	}
	if xf.Alignment != nil {
		out.alignment = alignmentFromXML(xf.Alignment)
	}
	return out
}

func xfToXML(xf cellXf) xlsxXf {
	numFmtID, fontID, fillID, borderID := xf.numFmtID, xf.fontID, xf.fillID, xf.borderID
	out := xlsxXf{
		NumFmtID: &numFmtID,
		FontID:   &fontID,
		FillID:   &fillID,
		BorderID: &borderID,
	}
	if xf.alignment != (Alignment{}) {
		a := alignmentToXML(xf.alignment)
		out.Alignment = &a
		t := true
		out.ApplyAlignment = &t
	}
	return out
}

func alignmentFromXML(a *xlsxAlignment) Alignment {
	return Alignment{
		Horizontal:   a.Horizontal,
		Vertical:     a.Vertical,
		WrapText:     a.WrapText,
		TextRotation: a.TextRotation,
		Indent:       a.Indent,
	}
}

func alignmentToXML(a Alignment) xlsxAlignment {
	return xlsxAlignment{
		Horizontal:   a.Horizontal,
		Vertical:     a.Vertical,
		WrapText:     a.WrapText,
		TextRotation: a.TextRotation,
		Indent:       a.Indent,
	}
}

// dxfFromXML/dxfToXML round-trip a differential format. Per §4.3, only the
// aspects actually present are populated; nil fields are "no override".
func dxfFromXML(d *xlsxDxf, theme *Theme) Dxf {
	var out Dxf
	if d.Font != nil {
		f := fontFromXML(d.Font, theme)
		out.Font = &f
	}
	if d.Fill != nil {
		f := fillFromXML(d.Fill, theme)
		out.Fill = &f
	}
	if d.NumFmt != nil {
		out.NumFmtCode = d.NumFmt.FormatCode
	}
	return out
}

func dxfToXML(d Dxf) *xlsxDxf {
	out := &xlsxDxf{}
	if d.Font != nil {
		out.Font = fontToXML(*d.Font)
	}
	if d.Fill != nil {
		out.Fill = fillToXML(*d.Fill)
	}
	if d.NumFmtCode != "" {
		out.NumFmt = &xlsxNumFmt{NumFmtID: firstCustomNumFmtID, FormatCode: d.NumFmtCode}
	}
	return out
}
