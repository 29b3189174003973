// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
)

// Theme holds the 12-slot color scheme (dk1, lt1, dk2, lt2, accent1-6,
// hlink, folHlink) used to resolve <color theme="N" tint="T"/> to RGB hex
// (§4.2.4). Index order follows the schema's <a:clrScheme> child order,
// except that Excel's UI numbering swaps dk1/lt1 with lt1/dk1 for
// historical reasons, which themeIndexRemap accounts for.
type Theme struct {
	colors [12]string
}

// defaultTheme is Office's "Office" theme, used when a workbook carries no
// xl/theme/theme1.xml part (write-only mode before anything is themed).
func defaultTheme() *Theme {
	return &Theme{colors: [12]string{
		"000000", "FFFFFF", "1F497D", "EEECE1",
		"4F81BD", "C0504D", "9BBB59", "8064A2",
		"4BACC6", "F79646", "0000FF", "800080",
	}}
}

type xlsxTheme struct {
	ThemeElements xlsxThemeElements `xml:"themeElements"`
}

type xlsxThemeElements struct {
	ClrScheme xlsxClrScheme `xml:"clrScheme"`
}

type xlsxClrScheme struct {
	Dk1      xlsxColorChoice `xml:"dk1"`
	Lt1      xlsxColorChoice `xml:"lt1"`
	Dk2      xlsxColorChoice `xml:"dk2"`
	Lt2      xlsxColorChoice `xml:"lt2"`
	Accent1  xlsxColorChoice `xml:"accent1"`
	Accent2  xlsxColorChoice `xml:"accent2"`
	Accent3  xlsxColorChoice `xml:"accent3"`
	Accent4  xlsxColorChoice `xml:"accent4"`
	Accent5  xlsxColorChoice `xml:"accent5"`
	Accent6  xlsxColorChoice `xml:"accent6"`
	Hlink    xlsxColorChoice `xml:"hlink"`
	FolHlink xlsxColorChoice `xml:"folHlink"`
}

// xlsxColorChoice models DrawingML's choice between a theme-relative sRGB
// value and a system color; only sRGB is needed for resolution.
type xlsxColorChoice struct {
	SrgbClr *struct {
		Val string `xml:"val,attr"`
	} `xml:"srgbClr"`
	SysClr *struct {
		LastClr string `xml:"lastClr,attr"`
	} `xml:"sysClr"`
}

func (c xlsxColorChoice) hex() string {
	if c.SrgbClr != nil {
		return c.SrgbClr.Val
	}
	if c.SysClr != nil {
		return c.SysClr.LastClr
	}
	return ""
}

// decodeTheme parses xl/theme/theme1.xml into the 12-slot palette.
func decodeTheme(raw []byte) (*Theme, error) {
	var t xlsxTheme
	if err := unmarshalXML(raw, &t); err != nil {
		return nil, newCorruptPart("xl/theme/theme1.xml", err)
	}
	cs := t.ThemeElements.ClrScheme
	th := &Theme{colors: [12]string{
		cs.Dk1.hex(), cs.Lt1.hex(), cs.Dk2.hex(), cs.Lt2.hex(),
		cs.Accent1.hex(), cs.Accent2.hex(), cs.Accent3.hex(), cs.Accent4.hex(),
		cs.Accent5.hex(), cs.Accent6.hex(), cs.Hlink.hex(), cs.FolHlink.hex(),
	}}
	return th, nil
}

// themeIndexRemap maps an OOXML cell-color theme index (as Excel's UI
// numbers it: 0=lt1, 1=dk1, 2=lt2, 3=dk2, 4-9=accent1-6, 10=hlink,
// 11=folHlink) to our clrScheme-order slot.
var themeIndexRemap = [12]int{1, 0, 3, 2, 4, 5, 6, 7, 8, 9, 10, 11}

// resolve returns the RGB hex (no leading '#') for theme slot idx, tinted
// by tint using the linear lighten/darken formula from §4.2.4.
func (t *Theme) resolve(idx int, tint float64) string {
	if t == nil {
		t = defaultTheme()
	}
	if idx < 0 || idx >= len(themeIndexRemap) {
		return "000000"
	}
	hex := t.colors[themeIndexRemap[idx]]
	if hex == "" {
		return "000000"
	}
	if tint == 0 {
		return hex
	}
	return applyTint(hex, tint)
}

// applyTint lightens (tint > 0) or darkens (tint < 0) hex linearly in each
// channel, per ECMA-376's HSL-free approximation that Excel itself uses.
func applyTint(hex string, tint float64) string {
	r, g, b, err := parseHex(hex)
	if err != nil {
		return hex
	}
	r = tintChannel(r, tint)
	g = tintChannel(g, tint)
	b = tintChannel(b, tint)
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}

func tintChannel(c uint8, tint float64) uint8 {
	v := float64(c)
	if tint > 0 {
		v = v*(1-tint) + (255 * tint)
	} else if tint < 0 {
		v = v * (1 + tint)
	}
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func parseHex(hex string) (r, g, b uint8, err error) {
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("bad hex color %q", hex)
	}
	rv, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return
	}
	gv, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return
	}
	bv, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return
	}
	return uint8(rv), uint8(gv), uint8(bv), nil
}
