// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import "encoding/xml"

// xlsxComments is the root of a per-sheet commentsN.xml auxiliary part
// (§4.2.7 "Comments"), discovered via sheet rels with type ending
// "/comments" rather than a fixed name.
type xlsxComments struct {
	XMLName     xml.Name          `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main comments"`
	Authors     xlsxCommentAuthors `xml:"authors"`
	CommentList xlsxCommentList    `xml:"commentList"`
}

type xlsxCommentAuthors struct {
	Author []string `xml:"author"`
}

type xlsxCommentList struct {
	Comment []xlsxComment `xml:"comment"`
}

type xlsxComment struct {
	Ref      string        `xml:"ref,attr"`
	AuthorID int           `xml:"authorId,attr"`
	Text     xlsxCommentText `xml:"text"`
}

type xlsxCommentText struct {
	R []xlsxCommentRun `xml:"r"`
	T string           `xml:"t"`
}

type xlsxCommentRun struct {
	T string `xml:"t"`
}

func (t xlsxCommentText) flatten() string {
	if len(t.R) > 0 {
		out := ""
		for _, r := range t.R {
			out += r.T
		}
		return out
	}
	return t.T
}

// decodeComments parses a commentsN.xml part into the sheet's comment
// list. threaded comments (threadedComments.xml, a newer, separate part)
// are out of scope; legacy comments cover §3.1's Comment entity.
func decodeComments(raw []byte, s *sheet) error {
	var xc xlsxComments
	if err := unmarshalXML(raw, &xc); err != nil {
		return newCorruptPart("comments", err)
	}
	for _, c := range xc.CommentList.Comment {
		col, row, err := CellNameToCoordinates(c.Ref)
		if err != nil {
			continue
		}
		author := ""
		if c.AuthorID >= 0 && c.AuthorID < len(xc.Authors.Author) {
			author = xc.Authors.Author[c.AuthorID]
		}
		s.comments = append(s.comments, commentRecord{row: row, col: col, author: author, text: c.Text.flatten()})
	}
	return nil
}

// encodeComments serializes s's comments to a commentsN.xml part. Returns
// nil if the sheet has no comments (no part should be written).
func encodeComments(s *sheet) ([]byte, error) {
	if len(s.comments) == 0 {
		return nil, nil
	}
	authors := []string{}
	authorIdx := map[string]int{}
	xc := xlsxComments{}
	for _, c := range s.comments {
		idx, ok := authorIdx[c.author]
		if !ok {
			idx = len(authors)
			authors = append(authors, c.author)
			authorIdx[c.author] = idx
		}
		ref, _ := CoordinatesToCellName(c.col, c.row)
		xc.CommentList.Comment = append(xc.CommentList.Comment, xlsxComment{
			Ref: ref, AuthorID: idx, Text: xlsxCommentText{T: c.text},
		})
	}
	xc.Authors.Author = authors
	buf, err := xml.Marshal(xc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), buf...), nil
}
