// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"bytes"
	"encoding/binary"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

// cfbSignature is the OLE2 Compound File Binary header magic. An ECMA-376
// "Agile" or "Standard" encrypted workbook is a CFB container wrapping an
// EncryptionInfo stream and an EncryptedPackage stream (the real ZIP,
// encrypted). We never decrypt; DetectEncryption exists purely so Package
// I/O can report UnsupportedFeature("encrypted workbook") instead of the
// less specific InvalidPackage when callers hand us one.
var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

func looksLikeCFB(raw []byte) bool {
	return bytes.HasPrefix(raw, cfbSignature)
}

// EncryptionInfo is the best-effort metadata DetectEncryption recovers
// from an encrypted package without deriving any key.
type EncryptionInfo struct {
	// Major/Minor are the EncryptionInfo stream's version fields (4,4 for
	// agile encryption; 3,2 or 4,2 for standard/extensible encryption).
	Major, Minor uint16
	// SummaryAuthor and SummaryTitle are populated when the CFB container
	// also carries a legacy \x05SummaryInformation property stream,
	// decoded via msoleps. Either may be empty.
	SummaryAuthor string
	SummaryTitle  string
}

// DetectEncryption inspects an OLE2/CFB-wrapped workbook and returns
// whatever metadata can be recovered without a password. It always returns
// a non-nil error (ErrUnsupportedFeature-wrapped) because this engine does
// not implement decryption; the returned *EncryptionInfo may still be
// useful to the caller for diagnostics.
func DetectEncryption(raw []byte) (*EncryptionInfo, error) {
	if !looksLikeCFB(raw) {
		return nil, ErrInvalidPackage
	}
	doc, err := mscfb.New(bytes.NewReader(raw))
	if err != nil {
		return nil, newUnsupportedFeature("encrypted workbook: malformed CFB container")
	}
	info := &EncryptionInfo{}
	for entry, walkErr := doc.Next(); walkErr == nil; entry, walkErr = doc.Next() {
		switch entry.Name {
		case "EncryptionInfo":
			buf := make([]byte, 8)
			if n, _ := entry.Read(buf); n >= 4 {
				info.Major = binary.LittleEndian.Uint16(buf[0:2])
				info.Minor = binary.LittleEndian.Uint16(buf[2:4])
			}
		case "\x05SummaryInformation":
			if props, perr := msoleps.New(entry); perr == nil {
				for _, p := range props.Property {
					switch p.Name {
					case "Author":
						info.SummaryAuthor = p.String()
					case "Title":
						info.SummaryTitle = p.String()
					}
				}
			}
		}
	}
	return info, newUnsupportedFeature("encrypted workbook: decryption is not implemented")
}
