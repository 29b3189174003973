// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"bytes"
	"encoding/xml"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
)

// Image decode/encode is explicitly out of scope (§ Non-goals): this file
// only locates a sheet's anchored pictures and reads each one's pixel
// dimensions and format, via image.DecodeConfig, which sniffs the header
// without materializing the full bitmap. The underlying media bytes are
// never touched otherwise; a Modify-mode save passes xl/media/* through
// unmodified like any other part it doesn't understand.

// xlsxDrawing is drawingN.xml's root element, trimmed to the two-cell
// anchor shape Excel emits for a plain inserted picture.
type xlsxDrawing struct {
	XMLName        xml.Name            `xml:"http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing wsDr"`
	TwoCellAnchors []xlsxTwoCellAnchor `xml:"twoCellAnchor"`
	OneCellAnchors []xlsxOneCellAnchor `xml:"oneCellAnchor"`
}

type xlsxTwoCellAnchor struct {
	From xlsxAnchorPos `xml:"from"`
	Pic  xlsxPic       `xml:"pic"`
}

type xlsxOneCellAnchor struct {
	From xlsxAnchorPos `xml:"from"`
	Pic  xlsxPic       `xml:"pic"`
}

type xlsxAnchorPos struct {
	Col int `xml:"col"`
	Row int `xml:"row"`
}

type xlsxPic struct {
	BlipFill xlsxBlipFill `xml:"blipFill"`
}

type xlsxBlipFill struct {
	Blip xlsxBlip `xml:"blip"`
}

type xlsxBlip struct {
	Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
}

// decodeDrawing parses a drawingN.xml part plus its rels and package media
// bytes into pictureAnchor records, appended to s.pictures. A media part
// whose format image.DecodeConfig doesn't recognize is skipped with a
// warning rather than failing the whole load (§7 category 3).
func decodeDrawing(pkg *Package, drawingPath string, s *sheet, m *workbookModel) error {
	raw, err := pkg.Read(drawingPath)
	if err != nil {
		return err
	}
	var dr xlsxDrawing
	if err := unmarshalXML(raw, &dr); err != nil {
		return newCorruptPart(drawingPath, err)
	}
	rels, err := readRelsOrEmpty(pkg, relsPathFor(drawingPath))
	if err != nil {
		return err
	}

	add := func(row, col int, rID string) {
		target, ok := rels.target(rID)
		if !ok {
			return
		}
		mediaPath := resolveTarget(drawingPath, target)
		if !pkg.Has(mediaPath) {
			return
		}
		mediaRaw, err := pkg.Read(mediaPath)
		if err != nil {
			return
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(mediaRaw))
		if err != nil {
			m.warn("picture " + mediaPath + ": " + err.Error())
			return
		}
		s.pictures = append(s.pictures, pictureAnchor{
			row: row + 1, col: col + 1, // anchors are 0-based; model is 1-based
			mediaPath: mediaPath,
			width:     cfg.Width,
			height:    cfg.Height,
			extension: strings.ToLower(format),
		})
	}

	for _, a := range dr.TwoCellAnchors {
		add(a.From.Row, a.From.Col, a.Pic.BlipFill.Blip.Embed)
	}
	for _, a := range dr.OneCellAnchors {
		add(a.From.Row, a.From.Col, a.Pic.BlipFill.Blip.Embed)
	}
	return nil
}
